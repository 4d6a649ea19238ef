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

// Package bus fans processed samples out to interested consumers over
// plain channels. Publishing never blocks: the frame callback runs at
// the camera rate and a slow consumer must not apply backpressure to
// it, so samples that don't fit a subscriber's buffer are dropped and
// counted instead.
package bus

import (
	"errors"
	"sync"

	"github.com/dcajal/scppg/ppg"
)

var (
	ErrBusClosed          = errors.New("bus is closed")
	ErrSubscriberExists   = errors.New("subscriber id already registered")
	ErrSubscriberNotFound = errors.New("subscriber id not registered")
	ErrNilChannel         = errors.New("subscriber channel is nil")
)

// SubscriberStats counts deliveries and drops for one subscriber.
type SubscriberStats struct {
	Delivered uint64
	Dropped   uint64
}

type subscriber struct {
	ch    chan<- ppg.Sample
	stats SubscriberStats
}

// New returns an empty sample bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
	}
}

// Bus distributes samples to registered subscriber channels.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	published   uint64
	closed      bool
}

// Subscribe registers a channel to receive every published sample that
// fits its buffer. The caller keeps ownership of the channel and must
// Unsubscribe before closing it.
func (b *Bus) Subscribe(id string, ch chan<- ppg.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if ch == nil {
		return ErrNilChannel
	}
	if _, exists := b.subscribers[id]; exists {
		return ErrSubscriberExists
	}

	b.subscribers[id] = &subscriber{ch: ch}
	return nil
}

// Unsubscribe removes a subscriber. Its channel is not closed.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[id]; !exists {
		return ErrSubscriberNotFound
	}
	delete(b.subscribers, id)
	return nil
}

// Publish offers the sample to every subscriber without blocking.
func (b *Bus) Publish(s ppg.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.published++

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- s:
			sub.stats.Delivered++
		default:
			sub.stats.Dropped++
		}
	}
}

// Stats returns the delivery counters for one subscriber.
func (b *Bus) Stats(id string) (SubscriberStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.subscribers[id]
	if !exists {
		return SubscriberStats{}, ErrSubscriberNotFound
	}
	return sub.stats, nil
}

// Published returns the total number of samples offered to the bus.
func (b *Bus) Published() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published
}

// Close drops all subscribers and makes further publishes no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = make(map[string]*subscriber)
}
