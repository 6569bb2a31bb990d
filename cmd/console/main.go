// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/umyo_receiver/internal/app"
	"github.com/relabs-tech/umyo_receiver/internal/config"
)

func main() {
	log.Println("starting umyo-receiver console (MQTT subscriber)")

	if err := config.InitGlobal("umyo_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
