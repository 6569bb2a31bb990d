package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/umyo_receiver/internal/config"
	"github.com/relabs-tech/umyo_receiver/internal/umyo"
)

// displayData holds the latest snapshot for the OLED update loop.
type displayData struct {
	mu         sync.RWMutex
	devices    []umyo.Device
	haveDevice bool
}

// RunDisplay drives a small SSD1306 status display showing the live
// device count and the primary device's telemetry.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicDevices, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var devices []umyo.Device
		if err := json.Unmarshal(msg.Payload(), &devices); err != nil {
			log.Printf("display: devices unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.devices = devices
		data.haveDevice = len(devices) > 0
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicDevices)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		devices := data.devices
		have := data.haveDevice
		data.mu.RUnlock()

		if err := updateDeviceDisplay(dev, devices, have); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func blankImage() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return img
}

func newDrawer(img *image1bit.VerticalLSB) *font.Drawer {
	return &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
}

func updateDeviceDisplay(dev *ssd1306.Dev, devices []umyo.Device, haveData bool) error {
	img := blankImage()
	drawer := newDrawer(img)

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("uMyo"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		d := devices[0]

		emg := int16(0)
		if d.DataCount > 0 {
			emg = d.EMG[d.DataCount-1]
		}

		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("%08X  x%d", d.UnitID, len(devices))))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("EMG %6d", emg)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("HDG %6.1f", d.Pose().Heading)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("%4dmV %3d", d.BatteryMV, d.RSSI)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := blankImage()
	drawer := newDrawer(img)

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("uMyo Receiver"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Listening for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("units"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
