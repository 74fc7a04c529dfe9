// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"sync"
	"time"
)

// Clock provides the scene time, as the duration since the clock started.
type Clock interface {
	Now() time.Duration
}

// SystemClock is a [Clock] that reads the wall clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a [SystemClock] starting now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock is a [Clock] that only moves when told to, for tests
// and for offline frame stepping.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Duration
}

// NewManualClock returns a [ManualClock] at the given time.
func NewManualClock(start time.Duration) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set sets the current time.
func (c *ManualClock) Set(now time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the current time forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	return c.now
}
