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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dcajal/scppg/loglimiter"
	"github.com/dcajal/scppg/recorder"
)

const minLogInterval = time.Minute

// SampleListener is notified of pipeline events. All callbacks run on
// the frame-processing context and must return quickly.
type SampleListener interface {
	FingerDetected()
	RecordingStarted()
	RecordingEnded()
}

func NewProcessor(
	conf *Config,
	recorderConf *recorder.RecorderConfig,
	listener SampleListener,
	rec Recorder,
) *Processor {
	if rec == nil {
		rec = new(NoWriteRecorder)
	}
	p := &Processor{
		minSamples:     recorderConf.MinSecs * conf.FrameRate,
		maxSamples:     recorderConf.MaxSecs * conf.FrameRate,
		triggerSamples: conf.TriggerSamples,
		loop:           NewSampleLoop(recorderConf.PreviewSecs*conf.FrameRate + conf.TriggerSamples),
		listener:       listener,
		recorder:       rec,
		log:            loglimiter.New(minLogInterval),
	}
	p.threshold.Store(int64(conf.RedRatioThreshPercent))
	return p
}

// Processor runs the per-frame pipeline: decode the raw frame, decide
// whether a finger covers the lens, publish the resulting sample and
// drive session recording. Process is called from a single frame
// callback; the red-ratio threshold and the latest sample may be
// accessed concurrently by control-plane callers.
type Processor struct {
	minSamples     int
	maxSamples     int
	samplesWritten int
	writeUntil     int
	isRecording    bool
	triggerSamples int
	triggered      int
	threshold      atomic.Int64
	loop           *SampleLoop
	listener       SampleListener
	recorder       Recorder
	log            *loglimiter.LogLimiter

	mu        sync.RWMutex
	latest    Sample
	hasLatest bool
}

// Process handles one raw frame. A decode error means the frame was
// malformed; the caller should log it and carry on with the next frame.
// A frame with no finger on the lens is not an error: it yields a
// sample with NaN colour channels at the full frame rate.
func (p *Processor) Process(frame *RawFrame) error {
	r, g, b, y, err := Decode(frame)
	if err != nil {
		return err
	}

	timestamp := frame.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	// Snapshot the threshold once per frame so a concurrent update
	// can't produce a torn read partway through.
	threshold := int(p.threshold.Load())

	var sample Sample
	if FingerDetected(r, g, b, threshold) {
		sample = NewSample(r, g, b, y, timestamp)
	} else {
		sample = NewInvalidSample(y, timestamp)
	}

	p.setLatest(sample)
	p.loop.Add(sample)
	p.process(sample)
	return nil
}

func (p *Processor) process(sample Sample) {
	if sample.Valid() {
		if p.listener != nil {
			p.listener.FingerDetected()
		}
		p.triggered++

		if p.isRecording {
			// extend the recording
			p.writeUntil = min(p.samplesWritten+p.minSamples, p.maxSamples)
		} else if p.triggered < p.triggerSamples {
			// Only start recording after n consecutive valid samples.
		} else if err := p.canStartRecording(); err != nil {
			p.log.Printf("recording not started: %v", err)
		} else if err := p.startRecording(); err != nil {
			p.log.Printf("can't start recording session: %v", err)
		} else {
			p.writeUntil = p.minSamples
		}
	} else {
		p.triggered = 0
	}

	// While recording, invalid samples are written too; their NaN
	// markers let downstream windows reject the stretch.
	if p.isRecording {
		if err := p.recorder.WriteSample(sample); err != nil {
			p.log.Printf("failed to write sample: %v", err)
		}
		p.samplesWritten++
	}

	if p.isRecording && p.samplesWritten >= p.writeUntil {
		if err := p.stopRecording(); err != nil {
			p.log.Printf("failed to stop recording session: %v", err)
		}
	}
}

// SetRedRatioThreshold updates the finger-detection threshold. Safe to
// call while frames are being processed; each frame sees either the
// old or the new value, never a mix.
func (p *Processor) SetRedRatioThreshold(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("red ratio threshold must be in 0..100, got %d", percent)
	}
	p.threshold.Store(int64(percent))
	return nil
}

// RedRatioThreshold returns the current finger-detection threshold.
func (p *Processor) RedRatioThreshold() int {
	return int(p.threshold.Load())
}

// LatestSample returns the most recent output, if any. Collaborators
// may poll this asynchronously from the frame callback.
func (p *Processor) LatestSample() (Sample, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.hasLatest
}

func (p *Processor) setLatest(sample Sample) {
	p.mu.Lock()
	p.latest = sample
	p.hasLatest = true
	p.mu.Unlock()
}

func (p *Processor) canStartRecording() error {
	if !p.loop.AllValid() {
		return errors.New("invalid samples in preview window")
	}
	return p.recorder.CheckCanRecord()
}

func (p *Processor) startRecording() error {
	if err := p.recorder.StartRecording(); err != nil {
		return err
	}

	p.isRecording = true
	if p.listener != nil {
		p.listener.RecordingStarted()
	}

	return p.recordPreTriggerSamples()
}

func (p *Processor) stopRecording() error {
	if p.listener != nil {
		p.listener.RecordingEnded()
	}

	err := p.recorder.StopRecording()

	p.samplesWritten = 0
	p.writeUntil = 0
	p.isRecording = false
	p.triggered = 0
	// if it starts recording again very quickly it won't write the same samples again
	p.loop.SetAsOldest()

	return err
}

func (p *Processor) recordPreTriggerSamples() error {
	history := p.loop.History()

	// The current sample is not written here; it is written by the
	// regular recording path straight after.
	for _, sample := range history[:len(history)-1] {
		if err := p.recorder.WriteSample(sample); err != nil {
			return err
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
