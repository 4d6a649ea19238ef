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

import "fmt"

type Config struct {
	RedRatioThreshPercent int    `yaml:"red-ratio-thresh-percent"`
	Range                 string `yaml:"platform-range"`
	FrameRate             int    `yaml:"frame-rate"`
	TriggerSamples        int    `yaml:"trigger-samples"`
}

func DefaultConfig() Config {
	return Config{
		RedRatioThreshPercent: 30,
		Range:                 "limited",
		FrameRate:             30,
		TriggerSamples:        2,
	}
}

func (conf *Config) Validate() error {
	if conf.RedRatioThreshPercent < 0 || conf.RedRatioThreshPercent > 100 {
		return fmt.Errorf("red-ratio-thresh-percent must be in 0..100, got %d", conf.RedRatioThreshPercent)
	}
	if conf.FrameRate <= 0 {
		return fmt.Errorf("frame-rate must be positive, got %d", conf.FrameRate)
	}
	if conf.TriggerSamples < 1 {
		return fmt.Errorf("trigger-samples must be at least 1, got %d", conf.TriggerSamples)
	}
	if _, err := conf.PlatformRange(); err != nil {
		return err
	}
	return nil
}

// PlatformRange resolves the configured range name once, at setup, so
// the per-frame path never inspects strings.
func (conf *Config) PlatformRange() (PlatformRange, error) {
	switch conf.Range {
	case "limited":
		return RangeLimited, nil
	case "full":
		return RangeFull, nil
	default:
		return RangeUnknown, fmt.Errorf("platform-range must be \"limited\" or \"full\", got %q", conf.Range)
	}
}
