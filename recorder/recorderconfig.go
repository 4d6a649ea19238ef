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

package recorder

import "errors"

// RecorderConfig bounds the length of one recorded finger-on session.
// PreviewSecs of history from before the trigger are written at the
// start of every recording.
type RecorderConfig struct {
	MinSecs     int `yaml:"min-secs"`
	MaxSecs     int `yaml:"max-secs"`
	PreviewSecs int `yaml:"preview-secs"`
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		MinSecs:     10,
		MaxSecs:     300,
		PreviewSecs: 1,
	}
}

func (conf *RecorderConfig) Validate() error {
	if conf.MinSecs <= 0 {
		return errors.New("min-secs should be positive")
	}
	if conf.MaxSecs < conf.MinSecs {
		return errors.New("max-secs should be larger than min-secs")
	}
	if conf.PreviewSecs < 0 {
		return errors.New("preview-secs should not be negative")
	}
	return nil
}
