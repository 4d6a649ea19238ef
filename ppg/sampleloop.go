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

import "sync"

// NewSampleLoop returns a ring buffer holding the last size samples.
func NewSampleLoop(size int) *SampleLoop {
	return &SampleLoop{
		size:    size,
		samples: make([]Sample, size),
		ordered: make([]Sample, size),
	}
}

// SampleLoop stores the last n samples in a ring that is overwritten
// when full. It keeps the recent history needed to pre-fill a
// recording and to check whether a whole window of samples is valid.
type SampleLoop struct {
	size    int
	next    int
	count   int
	samples []Sample
	ordered []Sample
	mu      sync.Mutex
}

// Add appends a sample, overwriting the oldest one once the ring is full.
func (sl *SampleLoop) Add(s Sample) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.samples[sl.next] = s
	sl.next = (sl.next + 1) % sl.size
	if sl.count < sl.size {
		sl.count++
	}
}

// Latest returns the most recently added sample.
func (sl *SampleLoop) Latest() (Sample, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.count == 0 {
		return Sample{}, false
	}
	return sl.samples[(sl.next-1+sl.size)%sl.size], true
}

// History returns the remembered samples from oldest to newest.
// Note: the returned slice is rewritten on the next History call.
func (sl *SampleLoop) History() []Sample {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.history()
}

func (sl *SampleLoop) history() []Sample {
	start := (sl.next - sl.count + sl.size) % sl.size
	for i := 0; i < sl.count; i++ {
		sl.ordered[i] = sl.samples[(start+i)%sl.size]
	}
	return sl.ordered[:sl.count]
}

// SetAsOldest forgets everything before the most recent sample so a
// recording that starts again quickly won't replay the same history.
func (sl *SampleLoop) SetAsOldest() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.count > 1 {
		sl.count = 1
	}
}

// AllValid reports whether every remembered sample carries real colour
// channels. A single no-finger sample anywhere in the window is enough
// to suppress consumers that need a clean run.
func (sl *SampleLoop) AllValid() bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	for _, s := range sl.history() {
		if !s.Valid() {
			return false
		}
	}
	return true
}
