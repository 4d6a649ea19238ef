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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThresholdBoundary(t *testing.T) {
	// r=g=b=85 gives totalPower 255 and redRatio 1/3 ≈ 33.3%.
	assert.True(t, FingerDetected(85, 85, 85, 30))
	assert.False(t, FingerDetected(85, 85, 85, 34))
}

func TestExactEqualityCountsAsDetected(t *testing.T) {
	// redRatio exactly 30% with a 30% threshold.
	assert.True(t, FingerDetected(30, 35, 35, 30))
}

func TestDegenerateFrameIsInvalid(t *testing.T) {
	// Zero total power must be invalid at any threshold, including
	// zero, to guard the ratio division.
	assert.False(t, FingerDetected(0, 0, 0, 0))
	assert.False(t, FingerDetected(0, 0, 0, 30))
	assert.False(t, FingerDetected(0, 0, 0, 100))
}

func TestRedDominantFrameIsDetected(t *testing.T) {
	assert.True(t, FingerDetected(255, 81, 0, 30))
}

func TestBlueDominantFrameIsNotDetected(t *testing.T) {
	assert.False(t, FingerDetected(0, 135, 255, 30))
}

func TestZeroThresholdAcceptsAnyLitFrame(t *testing.T) {
	assert.True(t, FingerDetected(0, 1, 1, 0))
}

func TestInvalidSampleMarksAllChannels(t *testing.T) {
	s := NewInvalidSample(42.5, time.Now())

	// The sentinel always covers all three channels together.
	assert.True(t, math.IsNaN(s.Red))
	assert.True(t, math.IsNaN(s.Green))
	assert.True(t, math.IsNaN(s.Blue))
	assert.False(t, s.Valid())

	// Luma and timestamp stay usable.
	assert.Equal(t, 42.5, s.Luma)
	assert.False(t, s.Timestamp.IsZero())
}

func TestValidSample(t *testing.T) {
	s := NewSample(200, 40, 10, 90, time.Now())
	assert.True(t, s.Valid())
	assert.Equal(t, 200.0, s.Red)
}
