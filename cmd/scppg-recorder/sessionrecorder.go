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
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/dcajal/scppg/output"
	"github.com/dcajal/scppg/ppg"
)

func NewSessionFileRecorder(config *Config) *SessionFileRecorder {
	return &SessionFileRecorder{
		outputDir:    config.OutputDir,
		minDiskSpace: config.MinDiskSpace,
	}
}

// SessionFileRecorder writes each finger-on session to its own
// compressed CSV file. Files are written under a temp name and only
// renamed once complete, so anything still carrying the temp suffix
// after a restart is a casualty and gets cleaned up.
type SessionFileRecorder struct {
	outputDir    string
	minDiskSpace uint64
	writer       *output.FileWriter
}

func (sfr *SessionFileRecorder) CheckCanRecord() error {
	enoughSpace, err := checkDiskSpace(sfr.minDiskSpace, sfr.outputDir)
	if err != nil {
		return fmt.Errorf("problem with checking disk space: %v", err)
	} else if !enoughSpace {
		return errors.New("not enough free disk space to start recording")
	}
	return nil
}

func (sfr *SessionFileRecorder) StartRecording() error {
	filename := filepath.Join(sfr.outputDir, newRecordingTempName())
	log.Printf("recording started: %s", filename)

	writer, err := output.NewFileWriter(filename)
	if err != nil {
		return err
	}

	if err = writer.WriteHeader(); err != nil {
		writer.Close()
		return err
	}

	sfr.writer = writer
	return nil
}

func (sfr *SessionFileRecorder) StopRecording() error {
	if sfr.writer != nil {
		name := sfr.writer.Name()
		err := sfr.writer.Close()
		sfr.writer = nil
		if err != nil {
			return err
		}

		finalName, err := renameTempRecording(name)
		log.Printf("recording stopped: %s", finalName)
		return err
	}
	return nil
}

// Stop aborts any session in progress, discarding its file.
func (sfr *SessionFileRecorder) Stop() {
	if sfr.writer != nil {
		sfr.writer.Close()
		os.Remove(sfr.writer.Name())
		sfr.writer = nil
	}
}

func (sfr *SessionFileRecorder) WriteSample(sample ppg.Sample) error {
	return sfr.writer.WriteSample(sample)
}

func newRecordingTempName() string {
	return time.Now().Format("20060102.150405.000." + sessionTempExt)
}

func renameTempRecording(tempName string) (string, error) {
	finalName := recordingFinalName(tempName)
	err := os.Rename(tempName, finalName)
	if err != nil {
		return "", err
	}
	return finalName, nil
}

var reTempName = regexp.MustCompile(`(.+)\.temp$`)

func recordingFinalName(filename string) string {
	return reTempName.ReplaceAllString(filename, `$1`)
}

func deleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*."+sessionTempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}

func checkDiskSpace(mb uint64, dir string) (bool, error) {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(dir, &fs); err != nil {
		return false, err
	}
	return fs.Bavail*uint64(fs.Bsize)/1024/1024 >= mb, nil
}
