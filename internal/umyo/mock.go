// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package umyo

import (
	"encoding/binary"
	"math"
	"time"
)

// frame holds the field values of one wire frame for encoding. The
// radio bridge is the only real producer of frames; this encoder exists
// for the mock stream and for tests.
type frame struct {
	rssi       byte
	packetID   byte
	unitID     uint32
	packetType byte // packetTypeBase + sample count
	paramID    byte
	batteryRaw byte
	firmware   byte
	reserved3  byte
	wireDataID byte
	samples    []int16
	spectrum   [spectrumBands]uint16
	quat       [4]int16
	accel      [3]int16
	yaw        int16
	pitch      int16
	roll       int16
	mag        *[3]int16 // nil when the frame carries no magnetometer
}

func put16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

// encode serializes the frame in wire order: marker, link quality,
// packet id, frame length, then the payload counted by the length byte.
func (f frame) encode() []byte {
	frameLen := 4 + 1 + 1 + 3 + 1 + 2*len(f.samples) + fixedTailSize
	if f.mag != nil {
		frameLen += 6
	}

	buf := make([]byte, 0, headerSize+frameLen)
	buf = append(buf, markerByte0, markerByte1, f.rssi, f.packetID, byte(frameLen))
	buf = binary.BigEndian.AppendUint32(buf, f.unitID)
	buf = append(buf, f.packetType, f.paramID, f.batteryRaw, f.firmware, f.reserved3, f.wireDataID)
	for _, s := range f.samples {
		buf = put16(buf, uint16(s))
	}
	for _, s := range f.spectrum {
		buf = put16(buf, s)
	}
	for _, q := range f.quat {
		buf = put16(buf, uint16(q))
	}
	for _, a := range f.accel {
		buf = put16(buf, uint16(a))
	}
	buf = put16(buf, uint16(f.yaw))
	buf = put16(buf, uint16(f.pitch))
	buf = put16(buf, uint16(f.roll))
	if f.mag != nil {
		for _, m := range f.mag {
			buf = put16(buf, uint16(m))
		}
	}
	return buf
}

// MockStream synthesizes a plausible bridge byte stream for the given
// unit ids: smoothly varying EMG, a slow tumble on the IMU fields and a
// rotating magnetic field. Useful for development without radio
// hardware.
type MockStream struct {
	start  time.Time
	units  []uint32
	wireID uint8
}

// NewMockStream creates a mock stream for the given unit ids.
func NewMockStream(units ...uint32) *MockStream {
	return &MockStream{start: time.Now(), units: units}
}

// Next returns the next chunk of stream bytes, one frame per unit.
func (m *MockStream) Next() []byte {
	elapsed := time.Since(m.start).Seconds()
	m.wireID++

	var out []byte
	for i, id := range m.units {
		phase := elapsed + float64(i)

		samples := make([]int16, 8)
		for x := range samples {
			samples[x] = int16(800 * math.Sin(phase*8+float64(x)*0.4))
		}

		f := frame{
			rssi:       190 + byte(i*5),
			packetID:   byte(i),
			unitID:     id,
			packetType: packetTypeBase + byte(len(samples)),
			paramID:    paramIDStatus,
			batteryRaw: 110,
			firmware:   3,
			wireDataID: m.wireID,
			spectrum:   [spectrumBands]uint16{100, 80, 60, 40},
			quat:       [4]int16{32767, 0, 0, 0},
			accel: [3]int16{
				int16(2000 * math.Sin(phase*0.5)),
				int16(2000 * math.Cos(phase*0.5)),
				int16(-8000),
			},
			yaw:   int16(math.Mod(phase*500, 3000)),
			pitch: int16(300 * math.Sin(phase*0.3)),
			roll:  int16(300 * math.Cos(phase*0.3)),
			mag:   &[3]int16{int16(400 * math.Cos(phase)), int16(400 * math.Sin(phase)), 100},
		}
		f.samples = samples
		out = append(out, f.encode()...)
	}
	return out
}
