// scppg - extract a photoplethysmogram from smartphone camera frames
//  Copyright (C) 2024, the scppg authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dcajal/scppg/ppg"
)

// Each unixpacket datagram carries one frame, little-endian:
//
//	u8    plane count
//	i64   capture timestamp, unix nanoseconds (0 = unstamped)
//	u32×n per-plane byte lengths
//	...   plane bytes, back to back
//
// The capture bridge on the phone side produces this; plane layouts
// beyond the count sanity check are judged by the decoder, not here.

const (
	frameHeaderLen = 1 + 8
	maxWirePlanes  = 8
	maxFramePacket = 4 << 20
)

func parseFrame(data []byte, rng ppg.PlatformRange) (*ppg.RawFrame, error) {
	if len(data) < frameHeaderLen {
		return nil, fmt.Errorf("frame packet too short: %d bytes", len(data))
	}

	planeCount := int(data[0])
	if planeCount == 0 || planeCount > maxWirePlanes {
		return nil, fmt.Errorf("implausible plane count: %d", planeCount)
	}

	timestampNs := int64(binary.LittleEndian.Uint64(data[1:frameHeaderLen]))

	offset := frameHeaderLen
	if len(data) < offset+4*planeCount {
		return nil, fmt.Errorf("frame packet truncated in plane table")
	}
	lengths := make([]int, planeCount)
	for i := range lengths {
		lengths[i] = int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}

	planes := make([][]byte, planeCount)
	for i, length := range lengths {
		if len(data) < offset+length {
			return nil, fmt.Errorf("frame packet truncated in plane %d", i)
		}
		planes[i] = data[offset : offset+length]
		offset += length
	}
	if offset != len(data) {
		return nil, fmt.Errorf("frame packet has %d trailing bytes", len(data)-offset)
	}

	frame := &ppg.RawFrame{
		Planes: planes,
		Range:  rng,
	}
	if timestampNs != 0 {
		frame.Timestamp = time.Unix(0, timestampNs)
	}
	return frame, nil
}
