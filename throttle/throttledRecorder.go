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

import (
	"log"

	"github.com/juju/ratelimit"

	"github.com/dcajal/scppg/ppg"
)

// ThrottledRecorder wraps a recorder so that recording stops (gets
// throttled) when sessions are requested too often. A finger left on
// the lens, or a pocket pressing against it, would otherwise record
// for hours of near-identical signal. The budget is a token bucket
// holding BucketSecs worth of samples, refilled in real time; a
// session may only start while at least one minimum-length recording's
// worth of tokens is available, and each written sample spends one.
type ThrottledRecorder struct {
	recorder         ppg.Recorder
	bucket           *ratelimit.Bucket
	minSamples       int64
	recording        bool
	throttledSamples uint32
	sampleCount      uint32
}

func NewThrottledRecorder(
	baseRecorder ppg.Recorder,
	config *ThrottlerConfig,
	minSeconds, frameRate int,
) *ThrottledRecorder {
	return newThrottledRecorder(baseRecorder, config, minSeconds, frameRate, nil)
}

func newThrottledRecorder(
	baseRecorder ppg.Recorder,
	config *ThrottlerConfig,
	minSeconds, frameRate int,
	clock ratelimit.Clock,
) *ThrottledRecorder {
	capacity := int64(config.BucketSecs) * int64(frameRate)
	rate := config.RefillPerSec * float64(frameRate)
	return &ThrottledRecorder{
		recorder:   baseRecorder,
		bucket:     ratelimit.NewBucketWithRateAndClock(rate, capacity, clock),
		minSamples: int64(minSeconds) * int64(frameRate),
	}
}

func (throttler *ThrottledRecorder) CheckCanRecord() error {
	return throttler.recorder.CheckCanRecord()
}

func (throttler *ThrottledRecorder) StartRecording() error {
	if throttler.bucket.Available() >= throttler.minSamples {
		throttler.recording = true
		return throttler.recorder.StartRecording()
	}
	throttler.recording = false
	log.Print("recording throttled")
	return nil
}

func (throttler *ThrottledRecorder) StopRecording() error {
	if throttler.recording && throttler.throttledSamples > 0 {
		log.Printf("stop recording; %d/%d samples throttled", throttler.throttledSamples, throttler.sampleCount)
	}
	throttler.throttledSamples = 0
	throttler.sampleCount = 0

	if throttler.recording {
		throttler.recording = false
		return throttler.recorder.StopRecording()
	}
	return nil
}

func (throttler *ThrottledRecorder) WriteSample(sample ppg.Sample) error {
	if !throttler.recording {
		return nil
	}

	throttler.sampleCount++
	if throttler.bucket.TakeAvailable(1) == 1 {
		return throttler.recorder.WriteSample(sample)
	}
	throttler.throttledSamples++
	return nil
}
