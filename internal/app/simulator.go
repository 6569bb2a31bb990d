// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/umyo_receiver/internal/config"
	"github.com/relabs-tech/umyo_receiver/internal/umyo"
)

// RunSimulator publishes snapshots of synthetic units without any radio
// hardware attached. The mock bytes go through the real parser, so the
// whole downstream pipeline sees exactly what it would see from the
// bridge.
func RunSimulator() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDSimulator)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("simulator: connected to MQTT broker at %s", cfg.MQTTBroker)

	stream := umyo.NewMockStream(0x1001A2B3, 0x1001C4D5)
	parser := umyo.NewParser()
	pub := newPublisher(client, cfg)

	interval := cfg.SimulatorFrameInterval
	if interval <= 0 {
		interval = 20
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("simulator: streaming mock frames")

	for range ticker.C {
		backlog := parser.Feed(stream.Next())
		pub.maybePublish(parser.Devices(), backlog)
	}
	return nil
}
