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
	"log"
	"net"
	"os"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"

	"github.com/dcajal/scppg/bus"
	"github.com/dcajal/scppg/loglimiter"
	"github.com/dcajal/scppg/ppg"
	"github.com/dcajal/scppg/throttle"
)

const (
	sessionTempExt = "csv.gz.temp"

	framesPerSdNotify = 5 // seconds worth of frames

	frameErrorLogInterval = time.Minute
)

var (
	version   = "<not set>"
	processor *ppg.Processor
)

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/scppg-recorder.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	log.Println("starting d-bus service")
	service, err := startService()
	if err != nil {
		return err
	}

	sampleBus := bus.New()
	defer sampleBus.Close()

	signalCh := make(chan ppg.Sample, 64)
	if err := sampleBus.Subscribe("dbus-signals", signalCh); err != nil {
		return err
	}
	go service.watchSamples(signalCh)

	log.Println("deleting temp files")
	if err := deleteTempFiles(conf.OutputDir); err != nil {
		return err
	}

	for {
		// Set up listener for frames sent by the capture bridge.
		os.Remove(conf.FrameInput)
		listener, err := net.Listen("unixpacket", conf.FrameInput)
		if err != nil {
			return err
		}
		log.Print("waiting for camera connection")

		conn, err := listener.Accept()
		if err != nil {
			log.Printf("socket accept failed: %v", err)
			listener.Close()
			continue
		}

		// Prevent concurrent connections.
		listener.Close()

		err = handleConn(conn, conf, sampleBus)
		conn.Close()
		log.Printf("camera connection ended with: %v", err)
	}
}

func handleConn(conn net.Conn, conf *Config, sampleBus *bus.Bus) error {
	frameRate := conf.PPG.FrameRate
	frameLogIntervalFirstMin := 15 * frameRate
	frameLogInterval := 60 * 5 * frameRate

	platformRange, err := conf.PPG.PlatformRange()
	if err != nil {
		return err
	}

	fileRecorder := NewSessionFileRecorder(conf)
	defer fileRecorder.Stop()
	var recorder ppg.Recorder = fileRecorder

	if conf.Throttler.ApplyThrottling {
		minRecordingLength := conf.Recorder.MinSecs + conf.Recorder.PreviewSecs
		recorder = throttle.NewThrottledRecorder(fileRecorder, &conf.Throttler, minRecordingLength, frameRate)
	}

	processor = ppg.NewProcessor(&conf.PPG, &conf.Recorder, nil, recorder)

	frameErrors := loglimiter.New(frameErrorLogInterval)
	buf := make([]byte, maxFramePacket)
	totalFrames := 0
	notifyCount := 0

	log.Print("new camera connection, reading frames")

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return err
		}
		totalFrames++

		if totalFrames%frameLogIntervalFirstMin == 0 &&
			totalFrames <= 60*frameRate || totalFrames%frameLogInterval == 0 {
			log.Printf("%d frames for this connection", totalFrames)
		}

		if notifyCount++; notifyCount >= framesPerSdNotify*frameRate {
			daemon.SdNotify(false, "WATCHDOG=1")
			notifyCount = 0
		}

		frame, err := parseFrame(buf[:n], platformRange)
		if err != nil {
			frameErrors.Printf("dropping frame: %v", err)
			continue
		}
		// One bad frame must not end the stream; log and wait for the next.
		if err := processor.Process(frame); err != nil {
			frameErrors.Printf("dropping frame: %v", err)
			continue
		}

		if sample, ok := processor.LatestSample(); ok {
			sampleBus.Publish(sample)
		}
	}
}

func logConfig(conf *Config) {
	log.Printf("frame input: %s", conf.FrameInput)
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("minimum disk space: %d", conf.MinDiskSpace)
	log.Printf("frame rate: %d, platform range: %s", conf.PPG.FrameRate, conf.PPG.Range)
	log.Printf("red ratio threshold: %d%%", conf.PPG.RedRatioThreshPercent)
	log.Printf("recording limits: %ds to %ds", conf.Recorder.MinSecs, conf.Recorder.MaxSecs)
	log.Printf("preview seconds: %d", conf.Recorder.PreviewSecs)
	log.Printf("throttler: %+v", conf.Throttler)
}
