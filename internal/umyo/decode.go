package umyo

import (
	"encoding/binary"

	"github.com/relabs-tech/umyo_receiver/internal/orientation"
)

const (
	// Valid packet types sit strictly inside (packetTypeBase,
	// packetTypeLimit); the offset from the base is the EMG sample count
	// carried by the frame.
	packetTypeBase  = 80
	packetTypeLimit = 120

	// paramIDStatus marks frames whose reserved bytes carry battery and
	// firmware info.
	paramIDStatus = 0

	batteryBaseMV = 2000
	batteryStepMV = 10

	// Span offsets relative to the packet id byte. The variable-length
	// EMG samples start right after the wire data id.
	offUnitID     = 2
	offPacketType = 6
	offParamID    = 7
	offReserved   = 8
	offWireDataID = 11
	offSamples    = 12
)

// fixedTailSize is the byte count of the fixed fields following the EMG
// samples: 4 spectrum bands, quaternion w/x/y/z, accel x/y/z and
// yaw/pitch/roll, two bytes each.
const fixedTailSize = (4 + 4 + 3 + 3) * 2

func be16(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}

// decodeFrame decodes one complete frame. linkQuality is the byte
// between the marker and the packet id; b spans from the packet id byte
// through the end of the frame (the declared length plus the packet id
// and length bytes themselves).
//
// The registry is consulted before the packet type is validated, so a
// frame with a bad type byte still creates or touches its unit's slot.
// That matches the wire protocol's established receiver behavior and
// keeps eviction counters honest for units whose frames arrive mangled.
func (p *Parser) decodeFrame(linkQuality byte, b []byte) {
	unitID := binary.BigEndian.Uint32(b[offUnitID : offUnitID+4])
	dev := p.registry.resolve(unitID)

	packetType := b[offPacketType]
	if packetType <= packetTypeBase || packetType >= packetTypeLimit {
		return
	}
	sampleCount := int(packetType - packetTypeBase)
	if offSamples+2*sampleCount+fixedTailSize > len(b) {
		// Declared sample count does not fit the frame; drop the
		// payload rather than read past it.
		return
	}

	dev.DataCount = uint8(sampleCount)
	dev.RSSI = int32(linkQuality)

	if b[offParamID] == paramIDStatus {
		dev.BatteryMV = batteryBaseMV + int32(b[offReserved])*batteryStepMV
		dev.FirmwareVersion = b[offReserved+1]
	}

	// The 8-bit wire counter wraps; accumulate its delta into the
	// monotonic sequence number.
	wireID := b[offWireDataID]
	delta := int(wireID) - int(dev.prevWireDataID)
	if delta < 0 {
		delta += 256
	}
	dev.prevWireDataID = wireID
	dev.DataID += uint64(delta)

	off := offSamples
	for x := 0; x < sampleCount; x++ {
		dev.EMG[x] = be16(b[off:])
		off += 2
	}
	for x := 0; x < spectrumBands; x++ {
		dev.Spectrum[x] = binary.BigEndian.Uint16(b[off:])
		off += 2
	}

	dev.QuatW = be16(b[off:])
	dev.QuatX = be16(b[off+2:])
	dev.QuatY = be16(b[off+4:])
	dev.QuatZ = be16(b[off+6:])
	off += 8

	dev.Ax = be16(b[off:])
	dev.Ay = be16(b[off+2:])
	dev.Az = be16(b[off+4:])
	off += 6

	dev.RawYaw = be16(b[off:])
	dev.RawPitch = be16(b[off+2:])
	dev.RawRoll = be16(b[off+4:])
	off += 6

	// Trailing magnetometer triple is optional; its presence is implied
	// by the declared frame length (the span was sliced to exactly that
	// length by the scanner).
	var mag orientation.Vec
	if off+6 <= len(b) {
		mag.X = float64(be16(b[off:]))
		mag.Y = float64(be16(b[off+2:]))
		mag.Z = float64(be16(b[off+4:]))
	}

	dev.MagAngle, dev.HasMag = orientation.Heading(dev.Accel(), mag)

	rawPitch := orientation.PitchMillirad(float64(dev.Ay), float64(dev.Az))
	dev.SmoothedPitch = orientation.SmoothPitch(dev.SmoothedPitch, rawPitch)
}
