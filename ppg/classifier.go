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

// FingerDetected decides whether calibrated channel intensities look
// like a finger pressed against the lens. Tissue under flash
// illumination is strongly red-dominant, so the test is the share of
// total power carried by the red channel against a configurable
// percentage threshold. Equality counts as detected.
//
// This is a single-frame heuristic with no hysteresis; isolated
// negatives are expected noise and consumers apply their own
// windowing.
func FingerDetected(r, g, b float64, thresholdPercent int) bool {
	totalPower := r + g + b
	if totalPower <= 0 {
		// Zero-power frame. Guards the division below; common when
		// nothing covers the lens in the dark.
		return false
	}
	redRatio := r / totalPower
	return redRatio >= float64(thresholdPercent)/100.0
}
