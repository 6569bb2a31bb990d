package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "umyo_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validConfig = `# test config
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE=921600

MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_RECEIVER=umyo-receiver

TOPIC_DEVICES=umyo/devices
TOPIC_POSE=umyo/pose

PUBLISH_MIN_DELTA=2
WEB_SERVER_PORT=8080
DISPLAY_UPDATE_INTERVAL=200
SIMULATOR_FRAME_INTERVAL=20
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 921600, cfg.SerialBaudRate)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "umyo-receiver", cfg.MQTTClientIDReceiver)
	assert.Equal(t, "umyo/devices", cfg.TopicDevices)
	assert.Equal(t, "umyo/pose", cfg.TopicPose)
	assert.Equal(t, 2, cfg.PublishMinDelta)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, 200, cfg.DisplayUpdateInterval)
	assert.Equal(t, 20, cfg.SimulatorFrameInterval)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "unknown key",
			contents: validConfig + "NO_SUCH_KEY=1\n",
			wantErr:  "unknown config key",
		},
		{
			name:     "malformed line",
			contents: validConfig + "not a key value pair\n",
			wantErr:  "invalid config line",
		},
		{
			name:     "bad baud rate",
			contents: "SERIAL_BAUD_RATE=fast\n",
			wantErr:  "invalid SERIAL_BAUD_RATE",
		},
		{
			name:     "negative publish delta",
			contents: validConfig + "PUBLISH_MIN_DELTA=-1\n",
			wantErr:  "PUBLISH_MIN_DELTA must be >= 0",
		},
		{
			name:     "missing broker",
			contents: "SERIAL_PORT=/dev/ttyUSB0\nSERIAL_BAUD_RATE=921600\nTOPIC_DEVICES=umyo/devices\n",
			wantErr:  "MQTT_BROKER is required",
		},
		{
			name:     "missing serial port",
			contents: "MQTT_BROKER=tcp://localhost:1883\nSERIAL_BAUD_RATE=921600\nTOPIC_DEVICES=umyo/devices\n",
			wantErr:  "SERIAL_PORT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestCommentsAndWhitespaceIgnored(t *testing.T) {
	cfg, err := Load(writeConfig(t, "  # leading comment\n\n  SERIAL_PORT = /dev/ttyACM0  \nSERIAL_BAUD_RATE=921600\nMQTT_BROKER=tcp://broker:1883\nTOPIC_DEVICES=umyo/devices\n"))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
}
