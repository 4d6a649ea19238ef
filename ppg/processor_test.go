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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcajal/scppg/recorder"
)

// One frame per second keeps the seconds-to-samples conversion trivial
// in these scenarios.
func testProcessorConfig() Config {
	conf := DefaultConfig()
	conf.FrameRate = 1
	conf.TriggerSamples = 2
	conf.Range = "full"
	return conf
}

func testRecorderConfig() recorder.RecorderConfig {
	return recorder.RecorderConfig{
		MinSecs:     2,
		MaxSecs:     4,
		PreviewSecs: 1,
	}
}

// fingerFrame is red-dominant, as a lit finger on the lens would be.
func fingerFrame() *RawFrame {
	return makeSeparateFrame(RangeFull, 128, 0, 255)
}

// openFrame is blue-dominant, like an uncovered lens.
func openFrame() *RawFrame {
	return makeSeparateFrame(RangeFull, 128, 255, 0)
}

type countingRecorder struct {
	starts      int
	stops       int
	writes      []Sample
	canRecord   error
	startErr    error
	isRecording bool
}

func (cr *countingRecorder) StartRecording() error {
	if cr.startErr != nil {
		return cr.startErr
	}
	cr.starts++
	cr.isRecording = true
	return nil
}

func (cr *countingRecorder) StopRecording() error {
	cr.stops++
	cr.isRecording = false
	return nil
}

func (cr *countingRecorder) WriteSample(s Sample) error {
	cr.writes = append(cr.writes, s)
	return nil
}

func (cr *countingRecorder) CheckCanRecord() error {
	return cr.canRecord
}

type countingListener struct {
	fingers    int
	recStarted int
	recEnded   int
}

func (cl *countingListener) FingerDetected()   { cl.fingers++ }
func (cl *countingListener) RecordingStarted() { cl.recStarted++ }
func (cl *countingListener) RecordingEnded()   { cl.recEnded++ }

func TestOneSamplePerFrame(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	p := NewProcessor(&conf, &recConf, nil, nil)

	_, ok := p.LatestSample()
	assert.False(t, ok)

	require.NoError(t, p.Process(fingerFrame()))
	valid, ok := p.LatestSample()
	require.True(t, ok)
	assert.True(t, valid.Valid())
	assert.Equal(t, 255.0, valid.Red)
	assert.Equal(t, 128.0, valid.Luma)
	assert.False(t, valid.Timestamp.IsZero())

	require.NoError(t, p.Process(openFrame()))
	invalid, ok := p.LatestSample()
	require.True(t, ok)
	assert.False(t, invalid.Valid())
	assert.True(t, math.IsNaN(invalid.Red))
	assert.True(t, math.IsNaN(invalid.Green))
	assert.True(t, math.IsNaN(invalid.Blue))
	assert.Equal(t, 128.0, invalid.Luma)
	assert.False(t, invalid.Timestamp.IsZero())
}

func TestFrameTimestampIsKept(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	p := NewProcessor(&conf, &recConf, nil, nil)

	captured := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	frame := fingerFrame()
	frame.Timestamp = captured
	require.NoError(t, p.Process(frame))

	sample, ok := p.LatestSample()
	require.True(t, ok)
	assert.Equal(t, captured, sample.Timestamp)
}

func TestDecodeErrorDropsFrame(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	p := NewProcessor(&conf, &recConf, nil, nil)

	bad := &RawFrame{
		Planes: [][]byte{uniformPlane(128, 8)},
		Range:  RangeFull,
	}
	assert.Equal(t, ErrUnsupportedLayout, p.Process(bad))

	// No sample was produced for the dropped frame.
	_, ok := p.LatestSample()
	assert.False(t, ok)
}

func TestThresholdUpdates(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	p := NewProcessor(&conf, &recConf, nil, nil)

	assert.Equal(t, 30, p.RedRatioThreshold())
	require.NoError(t, p.SetRedRatioThreshold(80))
	assert.Equal(t, 80, p.RedRatioThreshold())

	assert.Error(t, p.SetRedRatioThreshold(-1))
	assert.Error(t, p.SetRedRatioThreshold(101))
	assert.Equal(t, 80, p.RedRatioThreshold())

	// At 80% even the red-dominant frame fails the ratio test.
	require.NoError(t, p.Process(fingerFrame()))
	sample, ok := p.LatestSample()
	require.True(t, ok)
	assert.False(t, sample.Valid())
}

func TestRecordingSession(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	rec := new(countingRecorder)
	listener := new(countingListener)
	p := NewProcessor(&conf, &recConf, listener, rec)

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Process(fingerFrame()))
	}

	// Recording starts on the second consecutive valid sample, writes
	// one preview sample plus the four live ones, and stops once
	// max-secs worth of samples are written.
	assert.Equal(t, 1, rec.starts)
	assert.Equal(t, 1, rec.stops)
	assert.Len(t, rec.writes, 5)
	assert.Equal(t, 5, listener.fingers)
	assert.Equal(t, 1, listener.recStarted)
	assert.Equal(t, 1, listener.recEnded)
}

func TestInvalidPreviewWindowSuppressesRecording(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	rec := new(countingRecorder)
	p := NewProcessor(&conf, &recConf, nil, rec)

	require.NoError(t, p.Process(openFrame()))
	require.NoError(t, p.Process(fingerFrame()))
	require.NoError(t, p.Process(fingerFrame()))

	// The trigger count is satisfied but the preview window still
	// holds the no-finger sample.
	assert.Equal(t, 0, rec.starts)

	// One more valid sample pushes it out and recording begins.
	require.NoError(t, p.Process(fingerFrame()))
	assert.Equal(t, 1, rec.starts)
}

func TestCheckCanRecordBlocksRecording(t *testing.T) {
	conf := testProcessorConfig()
	recConf := testRecorderConfig()
	rec := &countingRecorder{canRecord: errors.New("no disk space")}
	p := NewProcessor(&conf, &recConf, nil, rec)

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Process(fingerFrame()))
	}
	assert.Equal(t, 0, rec.starts)
	assert.Empty(t, rec.writes)
}

func TestFingerRemovalResetsTrigger(t *testing.T) {
	conf := testProcessorConfig()
	conf.TriggerSamples = 3
	recConf := testRecorderConfig()
	rec := new(countingRecorder)
	p := NewProcessor(&conf, &recConf, nil, rec)

	// Never three valid samples in a row, so never a recording.
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Process(fingerFrame()))
		require.NoError(t, p.Process(fingerFrame()))
		require.NoError(t, p.Process(openFrame()))
	}
	assert.Equal(t, 0, rec.starts)
}
