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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcajal/scppg/ppg"
)

const testFrameRate = 10

func testThrottlerConfig() ThrottlerConfig {
	return ThrottlerConfig{
		ApplyThrottling: true,
		BucketSecs:      2, // 20 samples of budget
		RefillPerSec:    0.5,
	}
}

type writeCounter struct {
	ppg.NoWriteRecorder
	starts int
	stops  int
	writes int
}

func (wc *writeCounter) StartRecording() error {
	wc.starts++
	return nil
}

func (wc *writeCounter) StopRecording() error {
	wc.stops++
	return nil
}

func (wc *writeCounter) WriteSample(ppg.Sample) error {
	wc.writes++
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestThrottler(base ppg.Recorder) (*ThrottledRecorder, *fakeClock) {
	conf := testThrottlerConfig()
	clock := &fakeClock{now: time.Now()}
	return newThrottledRecorder(base, &conf, 1, testFrameRate, clock), clock
}

func sample() ppg.Sample {
	return ppg.NewSample(200, 60, 20, 100, time.Now())
}

func TestWritesPassThroughWhileBudgetLasts(t *testing.T) {
	base := new(writeCounter)
	throttler, _ := newTestThrottler(base)

	require.NoError(t, throttler.StartRecording())
	assert.Equal(t, 1, base.starts)

	for i := 0; i < 15; i++ {
		require.NoError(t, throttler.WriteSample(sample()))
	}
	assert.Equal(t, 15, base.writes)

	require.NoError(t, throttler.StopRecording())
	assert.Equal(t, 1, base.stops)
}

func TestWritesThrottledWhenBudgetSpent(t *testing.T) {
	base := new(writeCounter)
	throttler, _ := newTestThrottler(base)

	require.NoError(t, throttler.StartRecording())
	for i := 0; i < 25; i++ {
		require.NoError(t, throttler.WriteSample(sample()))
	}

	// The bucket held 20 samples; the rest were dropped silently.
	assert.Equal(t, 20, base.writes)
	assert.Equal(t, uint32(5), throttler.throttledSamples)
}

func TestStartSuppressedWithoutMinimumBudget(t *testing.T) {
	base := new(writeCounter)
	throttler, _ := newTestThrottler(base)

	require.NoError(t, throttler.StartRecording())
	for i := 0; i < 20; i++ {
		require.NoError(t, throttler.WriteSample(sample()))
	}
	require.NoError(t, throttler.StopRecording())

	// Budget exhausted: the next session is refused and nothing is
	// forwarded to the wrapped recorder.
	require.NoError(t, throttler.StartRecording())
	assert.Equal(t, 1, base.starts)
	require.NoError(t, throttler.WriteSample(sample()))
	assert.Equal(t, 20, base.writes)
	require.NoError(t, throttler.StopRecording())
	assert.Equal(t, 1, base.stops)
}

func TestBudgetRefillsOverTime(t *testing.T) {
	base := new(writeCounter)
	throttler, clock := newTestThrottler(base)

	require.NoError(t, throttler.StartRecording())
	for i := 0; i < 20; i++ {
		require.NoError(t, throttler.WriteSample(sample()))
	}
	require.NoError(t, throttler.StopRecording())

	// 0.5 recording-seconds per second: after 2s the bucket holds the
	// minimum session length (1s = 10 samples) again.
	clock.Sleep(2 * time.Second)

	require.NoError(t, throttler.StartRecording())
	assert.Equal(t, 2, base.starts)
	require.NoError(t, throttler.WriteSample(sample()))
	assert.Equal(t, 21, base.writes)
}
