package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/umyo_receiver/internal/config"
	"github.com/relabs-tech/umyo_receiver/internal/orientation"
	"github.com/relabs-tech/umyo_receiver/internal/umyo"
)

// RunConsole subscribes to the decoded device snapshots and prints a
// one-line summary per device as updates arrive.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to device snapshots
	devToken := client.Subscribe(cfg.TopicDevices, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var devices []umyo.Device
		if err := json.Unmarshal(msg.Payload(), &devices); err != nil {
			log.Printf("console: devices unmarshal error: %v", err)
			return
		}

		for _, d := range devices {
			emg := int16(0)
			if d.DataCount > 0 {
				emg = d.EMG[d.DataCount-1]
			}
			fmt.Printf(
				"[DEV %08X] n=%2d emg=%6d spec=%5d/%5d/%5d/%5d batt=%4dmV rssi=%3d id=%d\n",
				d.UnitID, d.DataCount, emg,
				d.Spectrum[0], d.Spectrum[1], d.Spectrum[2], d.Spectrum[3],
				d.BatteryMV, d.RSSI, d.DataID,
			)
		}
	})
	devToken.Wait()
	if devToken.Error() != nil {
		return devToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicDevices)

	// Subscribe to the primary device's pose
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[POSE %08X] HDG=%7.2f  YAW=%7.2f  PITCH=%7.2f  ROLL=%7.2f\n",
			p.UnitID, p.Heading, p.Yaw, p.Pitch, p.Roll,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
