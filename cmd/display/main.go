package main

import (
	"log"

	"github.com/relabs-tech/umyo_receiver/internal/app"
	"github.com/relabs-tech/umyo_receiver/internal/config"
)

func main() {
	log.Println("starting umyo-receiver display (MQTT subscriber)")

	if err := config.InitGlobal("umyo_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
