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

// Package ppg turns raw luma-chroma camera frames into calibrated,
// validity-checked colour samples suitable for downstream heart-rate
// estimation.
package ppg

import (
	"errors"
	"math"
	"time"
)

// PlatformRange describes the numeric convention used by the capture
// pipeline for Y/U/V bytes. It is a property of the platform's camera
// stack, not of an individual frame, and is resolved once at setup.
type PlatformRange int

const (
	RangeUnknown PlatformRange = iota

	// RangeLimited is the video-range convention: Y in 16-235, U/V in 16-240.
	RangeLimited

	// RangeFull uses the whole 0-255 range for all channels.
	RangeFull
)

func (r PlatformRange) String() string {
	switch r {
	case RangeLimited:
		return "limited"
	case RangeFull:
		return "full"
	default:
		return "unknown"
	}
}

// RawFrame is a single raw camera frame as delivered by the capture
// side. Planes[0] is always luma. Two layouts are supported:
//
//   - 3 planes: separate U and V chroma planes
//   - 2 planes: Planes[1] holds interleaved U,V byte pairs
//
// A zero Timestamp means the capture side didn't stamp the frame and
// the processor will use the arrival time instead.
type RawFrame struct {
	Planes    [][]byte
	Range     PlatformRange
	Timestamp time.Time
}

var (
	ErrUnsupportedLayout = errors.New("unsupported plane layout")
	ErrUnsupportedRange  = errors.New("unsupported platform range")
	ErrEmptyLumaPlane    = errors.New("empty luma plane")
	ErrEmptyChromaPlane  = errors.New("empty chroma plane")
	ErrOddChromaPlane    = errors.New("interleaved chroma plane has odd length")
)

// ITU-R BT.601 conversion coefficients.
const (
	redVWeight   = 1.402
	greenUWeight = 0.344136
	greenVWeight = 0.714136
	blueUWeight  = 1.772
)

// Decode converts a raw YUV frame into calibrated RGB channel
// intensities in [0,255] plus the raw averaged luma value. Whole
// planes are averaged rather than a region of interest: the finger is
// expected to cover the entire lens, so a global average is an
// adequate proxy.
//
// The returned y is the plain byte average of the luma plane, NOT
// range-normalized. It is a diagnostic channel and is reported even
// when no finger is present.
func Decode(frame *RawFrame) (r, g, b, y float64, err error) {
	if len(frame.Planes) != 2 && len(frame.Planes) != 3 {
		return 0, 0, 0, 0, ErrUnsupportedLayout
	}
	if len(frame.Planes[0]) == 0 {
		return 0, 0, 0, 0, ErrEmptyLumaPlane
	}

	yAvg := planeMean(frame.Planes[0])

	var uAvg, vAvg float64
	if len(frame.Planes) == 3 {
		if len(frame.Planes[1]) == 0 || len(frame.Planes[2]) == 0 {
			return 0, 0, 0, 0, ErrEmptyChromaPlane
		}
		uAvg = planeMean(frame.Planes[1])
		vAvg = planeMean(frame.Planes[2])
	} else {
		uAvg, vAvg, err = interleavedMeans(frame.Planes[1])
		if err != nil {
			return 0, 0, 0, 0, err
		}
	}

	var yN, uN, vN float64
	switch frame.Range {
	case RangeLimited:
		yN = (yAvg - 16) / 219
		uN = (uAvg - 16) / 224
		vN = (vAvg - 16) / 224
	case RangeFull:
		yN = yAvg / 255
		uN = uAvg / 255
		vN = vAvg / 255
	default:
		// Fail closed rather than guess; a wrong range silently
		// miscalibrates every channel.
		return 0, 0, 0, 0, ErrUnsupportedRange
	}

	uC := uN - 0.5
	vC := vN - 0.5

	r = scaleChannel(yN + redVWeight*vC)
	g = scaleChannel(yN - greenUWeight*uC - greenVWeight*vC)
	b = scaleChannel(yN + blueUWeight*uC)

	return r, g, b, yAvg, nil
}

func planeMean(plane []byte) float64 {
	var sum uint64
	for _, v := range plane {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(plane))
}

// interleavedMeans averages an interleaved chroma plane: even offsets
// hold U bytes, odd offsets hold V bytes. Getting this stride wrong
// swaps the colour channels without any other symptom.
func interleavedMeans(plane []byte) (uAvg, vAvg float64, err error) {
	if len(plane) == 0 {
		return 0, 0, ErrEmptyChromaPlane
	}
	if len(plane)%2 != 0 {
		return 0, 0, ErrOddChromaPlane
	}

	var uSum, vSum uint64
	for i := 0; i < len(plane); i += 2 {
		uSum += uint64(plane[i])
		vSum += uint64(plane[i+1])
	}
	pairs := float64(len(plane) / 2)
	return float64(uSum) / pairs, float64(vSum) / pairs, nil
}

func scaleChannel(v float64) float64 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return math.Round(v * 255)
}
