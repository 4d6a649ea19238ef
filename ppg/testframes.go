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

package ppg

// Helpers for building synthetic frames in tests. A real frame is a
// few hundred kilobytes; a handful of bytes with the right averages
// exercises exactly the same arithmetic.

const testPlaneLen = 64

func uniformPlane(value byte, n int) []byte {
	plane := make([]byte, n)
	for i := range plane {
		plane[i] = value
	}
	return plane
}

// makeSeparateFrame builds a 3-plane frame (Y, U, V) with uniform
// plane values.
func makeSeparateFrame(rng PlatformRange, y, u, v byte) *RawFrame {
	return &RawFrame{
		Planes: [][]byte{
			uniformPlane(y, testPlaneLen),
			uniformPlane(u, testPlaneLen/4),
			uniformPlane(v, testPlaneLen/4),
		},
		Range: rng,
	}
}

// makeInterleavedFrame builds a 2-plane frame whose chroma plane holds
// alternating U,V byte pairs.
func makeInterleavedFrame(rng PlatformRange, y, u, v byte) *RawFrame {
	chroma := make([]byte, testPlaneLen/2)
	for i := 0; i < len(chroma); i += 2 {
		chroma[i] = u
		chroma[i+1] = v
	}
	return &RawFrame{
		Planes: [][]byte{
			uniformPlane(y, testPlaneLen),
			chroma,
		},
		Range: rng,
	}
}
