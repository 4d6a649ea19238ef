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

// Package output writes recorded sessions as gzip-compressed CSV so
// they can be pulled straight into analysis tooling. Invalid samples
// keep their row (timestamp and luma) with empty colour fields, so
// downstream windowing can still see exactly where the finger left
// the lens.
package output

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/dcajal/scppg/ppg"
)

var csvHeader = []string{"timestamp_ns", "red", "green", "blue", "luma"}

func NewFileWriter(filename string) (*FileWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	gz := gzip.NewWriter(f)
	return &FileWriter{
		f:  f,
		gz: gz,
		w:  csv.NewWriter(gz),
	}, nil
}

type FileWriter struct {
	f  *os.File
	gz *gzip.Writer
	w  *csv.Writer
}

func (fw *FileWriter) WriteHeader() error {
	return fw.w.Write(csvHeader)
}

func (fw *FileWriter) WriteSample(s ppg.Sample) error {
	return fw.w.Write(sampleRow(s))
}

func (fw *FileWriter) Name() string {
	return fw.f.Name()
}

func (fw *FileWriter) Close() error {
	fw.w.Flush()
	err := fw.w.Error()
	if gzErr := fw.gz.Close(); err == nil {
		err = gzErr
	}
	if fErr := fw.f.Close(); err == nil {
		err = fErr
	}
	return err
}

func sampleRow(s ppg.Sample) []string {
	return []string{
		strconv.FormatInt(s.Timestamp.UnixNano(), 10),
		formatChannel(s.Red),
		formatChannel(s.Green),
		formatChannel(s.Blue),
		formatChannel(s.Luma),
	}
}

// formatChannel renders the NaN marker as an empty field rather than
// "NaN" so the files load cleanly into numeric tooling.
func formatChannel(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
