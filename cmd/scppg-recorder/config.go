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
	"errors"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/dcajal/scppg/ppg"
	"github.com/dcajal/scppg/recorder"
	"github.com/dcajal/scppg/throttle"
)

type Config struct {
	FrameInput   string                   `yaml:"frame-input"`
	OutputDir    string                   `yaml:"output-dir"`
	MinDiskSpace uint64                   `yaml:"min-disk-space"`
	PPG          ppg.Config               `yaml:"ppg"`
	Recorder     recorder.RecorderConfig  `yaml:"recorder"`
	Throttler    throttle.ThrottlerConfig `yaml:"throttler"`
}

var defaultConfig = Config{
	FrameInput:   "/var/run/scppg-frames",
	OutputDir:    "/var/spool/scppg",
	MinDiskSpace: 200,
	PPG:          ppg.DefaultConfig(),
	Recorder:     recorder.DefaultRecorderConfig(),
	Throttler:    throttle.DefaultThrottlerConfig(),
}

func (conf *Config) Validate() error {
	if conf.FrameInput == "" {
		return errors.New("frame-input socket path is required")
	}
	if conf.OutputDir == "" {
		return errors.New("output-dir is required")
	}
	if err := conf.PPG.Validate(); err != nil {
		return err
	}
	if err := conf.Recorder.Validate(); err != nil {
		return err
	}
	if err := conf.Throttler.Validate(); err != nil {
		return err
	}
	return nil
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
