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

package throttle

import "errors"

// ThrottlerConfig controls how much recording time may be spent before
// sessions get throttled. BucketSecs is the most recording the device
// will do back to back; the budget refills at RefillPerSec seconds of
// recording per wall-clock second.
type ThrottlerConfig struct {
	ApplyThrottling bool    `yaml:"apply-throttling"`
	BucketSecs      int     `yaml:"bucket-secs"`
	RefillPerSec    float64 `yaml:"refill-per-sec"`
}

func DefaultThrottlerConfig() ThrottlerConfig {
	return ThrottlerConfig{
		ApplyThrottling: true,
		BucketSecs:      600,
		RefillPerSec:    0.1,
	}
}

func (conf *ThrottlerConfig) Validate() error {
	if !conf.ApplyThrottling {
		return nil
	}
	if conf.BucketSecs <= 0 {
		return errors.New("bucket-secs should be positive")
	}
	if conf.RefillPerSec <= 0 {
		return errors.New("refill-per-sec should be positive")
	}
	return nil
}
