package umyo

import (
	"math"

	"github.com/relabs-tech/umyo_receiver/internal/orientation"
)

// emgWindowSize is the scratch window kept per device. A single frame
// carries at most 39 samples; downstream code may treat the tail beyond
// DataCount as rolling history.
const emgWindowSize = 64

// spectrumBands is the number of spectral band magnitudes per frame.
const spectrumBands = 4

// Device is the decoded, mutable snapshot of one sensor unit's latest
// telemetry. One Device exists per unit id; the parser mutates it in
// place on every matching frame.
type Device struct {
	UnitID uint32 `json:"unit_id"`

	// EMG: only the first DataCount entries of EMG are from the latest
	// frame.
	DataCount uint8                 `json:"data_count"`
	EMG       [emgWindowSize]int16  `json:"emg"`
	Spectrum  [spectrumBands]uint16 `json:"spectrum"`

	// Raw IMU fields, fixed-point as transmitted.
	QuatW int16 `json:"quat_w"`
	QuatX int16 `json:"quat_x"`
	QuatY int16 `json:"quat_y"`
	QuatZ int16 `json:"quat_z"`
	Ax    int16 `json:"ax"`
	Ay    int16 `json:"ay"`
	Az    int16 `json:"az"`

	RawYaw   int16 `json:"yaw"`   // milliradians
	RawPitch int16 `json:"pitch"` // milliradians, as transmitted
	RawRoll  int16 `json:"roll"`  // milliradians

	// Derived orientation. SmoothedPitch persists across frames;
	// MagAngle is recomputed every frame and is 0 when the frame carried
	// no magnetometer payload.
	SmoothedPitch float64 `json:"smoothed_pitch"`
	MagAngle      float64 `json:"mag_angle"` // radians
	HasMag        bool    `json:"has_mag"`

	BatteryMV       int32 `json:"battery_mv"`
	RSSI            int32 `json:"rssi"`
	FirmwareVersion uint8 `json:"firmware_version"`

	// DataID accumulates the 8-bit wrapping wire counter into a
	// monotonic sequence number; consumers watch it to detect new data.
	DataID uint64 `json:"data_id"`

	prevWireDataID uint8
	unseen         uint32 // resolve calls since this unit last matched
}

func newDevice(unitID uint32) *Device {
	return &Device{UnitID: unitID}
}

// Accel returns the accelerometer reading as a vector in the sensor
// frame used by the heading computation (z negated).
func (d *Device) Accel() orientation.Vec {
	return orientation.Vec{X: float64(d.Ax), Y: float64(d.Ay), Z: -float64(d.Az)}
}

// Quat returns the raw orientation quaternion normalized to unit length.
func (d *Device) Quat() orientation.Quat {
	return orientation.NormalizeQuat(orientation.Quat{
		W: float64(d.QuatW),
		X: float64(d.QuatX),
		Y: float64(d.QuatY),
		Z: float64(d.QuatZ),
	})
}

// Pose converts the device's orientation fields to degrees for
// publication. Yaw and roll are the raw wire angles; pitch is the
// accelerometer-derived smoothed value; heading is the tilt-compensated
// magnetic angle.
func (d *Device) Pose() orientation.Pose {
	return orientation.Pose{
		UnitID:  d.UnitID,
		Heading: d.MagAngle * 180.0 / math.Pi,
		Yaw:     float64(d.RawYaw) / 1000.0 * 180.0 / math.Pi,
		Pitch:   d.SmoothedPitch / 1000.0 * 180.0 / math.Pi,
		Roll:    float64(d.RawRoll) / 1000.0 * 180.0 / math.Pi,
	}
}
