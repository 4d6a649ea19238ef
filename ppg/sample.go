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

import (
	"math"
	"time"
)

// Sample is one calibrated colour measurement derived from a single
// camera frame. Red, Green and Blue are in [0,255] when a finger was
// detected, or all three are NaN when it wasn't; the NaN marker is a
// signalling convention, not an arithmetic error. Luma is the raw
// averaged Y value and is reported regardless of finger detection.
type Sample struct {
	Red       float64
	Green     float64
	Blue      float64
	Luma      float64
	Timestamp time.Time
}

// NewSample returns a valid sample carrying calibrated channels.
func NewSample(r, g, b, luma float64, timestamp time.Time) Sample {
	return Sample{
		Red:       r,
		Green:     g,
		Blue:      b,
		Luma:      luma,
		Timestamp: timestamp,
	}
}

// NewInvalidSample returns a no-finger sample: colour channels carry
// the NaN marker while luma and the timestamp remain usable.
func NewInvalidSample(luma float64, timestamp time.Time) Sample {
	nan := math.NaN()
	return Sample{
		Red:       nan,
		Green:     nan,
		Blue:      nan,
		Luma:      luma,
		Timestamp: timestamp,
	}
}

// Valid reports whether the sample carries real colour channels. The
// channels are invalidated together so checking one is enough.
func (s Sample) Valid() bool {
	return !math.IsNaN(s.Red)
}
