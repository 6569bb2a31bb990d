package orientation

// Pose is the derived orientation snapshot published for one device.
// All angles are in degrees.
type Pose struct {
	UnitID  uint32  `json:"unit_id"`
	Heading float64 `json:"heading"` // tilt-compensated magnetic heading
	Yaw     float64 `json:"yaw"`     // raw wire yaw, passed through
	Pitch   float64 `json:"pitch"`   // accelerometer-derived, smoothed
	Roll    float64 `json:"roll"`    // raw wire roll, passed through
}
