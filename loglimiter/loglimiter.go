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

package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		seen:     make(map[string]entry),
	}
}

// LogLimiter suppresses repeated log messages seen within some time
// interval. Printf suppression is keyed on the format string rather
// than the rendered message: a bad frame arriving 30 times a second
// produces errors that differ only in their values, and those must not
// flood the log. Suppressed repeats are counted and reported when the
// message is next let through.
type LogLimiter struct {
	interval time.Duration
	nowFunc  func() time.Time
	seen     map[string]entry
}

type entry struct {
	last       time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.output(format, fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	limiter.output(s, s)
}

func (limiter *LogLimiter) output(key, s string) {
	now := limiter.nowFunc()
	e := limiter.seen[key]
	if now.Sub(e.last) < limiter.interval {
		e.suppressed++
		limiter.seen[key] = e
		return
	}

	if e.suppressed > 0 {
		log.Printf("%s (%d similar messages suppressed)", s, e.suppressed)
	} else {
		log.Print(s)
	}
	limiter.seen[key] = entry{last: now}
}
