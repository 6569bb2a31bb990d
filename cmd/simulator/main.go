package main

import (
	"log"

	"github.com/relabs-tech/umyo_receiver/internal/app"
	"github.com/relabs-tech/umyo_receiver/internal/config"
)

func main() {
	log.Println("starting umyo-receiver simulator (mock units, MQTT producer)")

	if err := config.InitGlobal("umyo_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunSimulator(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
