package app

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/umyo_receiver/internal/config"
	"github.com/relabs-tech/umyo_receiver/internal/umyo"
)

// RunReceiver opens the USB-serial bridge, feeds the byte stream through
// the uMyo parser and publishes decoded device snapshots as JSON to MQTT.
func RunReceiver() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDReceiver)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("receiver: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open bridge serial port ----
	// The uMyo bridge streams at 921600 8N1; MinimumReadSize 1 keeps
	// Read returning as soon as any bytes arrive.
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("receiver: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	parser := umyo.NewParser()
	readBuf := make([]byte, 4096)
	pub := newPublisher(client, cfg)

	for {
		n, err := port.Read(readBuf)
		if err != nil {
			log.Printf("receiver: serial read error: %v", err)
			return err
		}
		backlog := parser.Feed(readBuf[:n])
		pub.maybePublish(parser.Devices(), backlog)
	}
}

// publisher throttles MQTT output: snapshots go out only once the
// primary device's data id has advanced far enough, with the threshold
// growing while the parser backlog is large so publishing never falls
// behind the stream.
type publisher struct {
	client   mqtt.Client
	cfg      *config.Config
	lastSent uint64
}

func newPublisher(client mqtt.Client, cfg *config.Config) *publisher {
	return &publisher{client: client, cfg: cfg}
}

func (p *publisher) maybePublish(devices []*umyo.Device, backlog int) {
	if len(devices) == 0 {
		return
	}

	dataID := devices[0].DataID
	threshold := uint64(p.cfg.PublishMinDelta) + uint64(backlog/200)
	if dataID-p.lastSent <= threshold {
		return
	}
	p.lastSent = dataID

	payload, err := json.Marshal(devices)
	if err != nil {
		log.Printf("receiver: devices marshal error: %v", err)
		return
	}
	if token := p.client.Publish(p.cfg.TopicDevices, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("receiver: MQTT publish error (devices): %v", token.Error())
		return
	}

	pose := devices[0].Pose()
	if payload, err := json.Marshal(pose); err != nil {
		log.Printf("receiver: pose marshal error: %v", err)
	} else if token := p.client.Publish(p.cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("receiver: MQTT publish error (pose): %v", token.Error())
	}
}
