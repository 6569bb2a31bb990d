// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package umyo reconstructs per-device telemetry from the byte stream
// forwarded by the uMyo USB-serial radio bridge. The stream interleaves
// framed packets from any number of sensor units; the parser
// re-synchronizes frame boundaries, decodes each unit's EMG/IMU payload
// and maintains a bounded working set of recently heard devices.
package umyo

const (
	// Frame marker bytes preceding every radio packet on the bridge
	// stream.
	markerByte0 = 0x4F
	markerByte1 = 0xD5

	// headerSize covers marker (2), link quality (1), packet id (1) and
	// frame length (1). The frame length byte counts payload bytes from
	// the unit id onward; the header itself is not included.
	headerSize = 5

	// minFrameLength is the legacy plausibility check on the declared
	// frame length. Shorter values mark a false marker match.
	minFrameLength = 20
)

// Parser owns all decoding state: the accumulator for unconsumed stream
// bytes and the registry of device slots. The zero value is ready to
// use.
//
// All methods are plain synchronous computation over caller-fed bytes;
// Parser does no I/O and no locking. Callers running multiple goroutines
// must serialize access themselves.
type Parser struct {
	buf      []byte
	registry registry
}

// NewParser returns an empty parser context.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends newly read stream bytes and decodes every complete frame
// currently buffered, in stream order. Partial trailing frames are kept
// for the next call; garbage between frames is skipped one byte at a
// time until the next marker lines up. Malformed input never produces an
// error: the stream self-heals on the following valid marker.
//
// The return value is the number of bytes still buffered after the pass,
// for caller-side monitoring of parser backlog.
func (p *Parser) Feed(data []byte) int {
	p.buf = append(p.buf, data...)

	consumed := 0
	i := 0
	for i+headerSize <= len(p.buf) {
		if p.buf[i] != markerByte0 || p.buf[i+1] != markerByte1 {
			i++
			continue
		}
		frameLen := int(p.buf[i+4])
		if frameLen <= minFrameLength {
			// False marker match inside payload or noise.
			i++
			continue
		}
		end := i + headerSize + frameLen
		if end > len(p.buf) {
			// Truncated trailing frame; wait for more bytes.
			break
		}
		p.decodeFrame(p.buf[i+2], p.buf[i+3:end])
		consumed = end
		i = end
	}

	if consumed > 0 {
		p.buf = append(p.buf[:0], p.buf[consumed:]...)
	}
	return len(p.buf)
}

// Devices returns the live device slots in discovery order. The slots
// are the parser's working set: they are mutated in place by subsequent
// Feed calls.
func (p *Parser) Devices() []*Device {
	return p.registry.slots
}
