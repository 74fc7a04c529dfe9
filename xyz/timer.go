// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"time"

	"cogentcore.org/glam/events"
)

// Timer is a component that emits time events while running.
//
// On each update it emits a [events.Time] event. If it has a
// Duration, it also computes the phase of the elapsed time since
// start within the duration, emits a [events.Fraction] event with
// it, and, when the phase wraps around (it is less than the phase
// of the previous update), emits a [events.CycleTime] event and
// stops unless it loops. The phase comparison is the only cycle
// detection, so it holds for any tick spacing shorter than Duration.
type Timer struct {
	ComponentBase

	// Duration is the length of one cycle; 0 for no cycles.
	Duration time.Duration

	// Loop is whether to keep running after a cycle completes.
	Loop bool

	// AutoStart is whether to start when realized.
	AutoStart bool

	running      bool
	startTime    time.Duration
	currentTime  time.Duration
	lastFraction float32
	listeners    events.Listeners
}

// NewTimer returns a new stopped [Timer].
func NewTimer(duration time.Duration, loop bool) *Timer {
	return &Timer{Duration: duration, Loop: loop}
}

func (tm *Timer) Kind() Kinds { return KindTimer }

func (tm *Timer) Listeners() *events.Listeners { return &tm.listeners }

// On adds a listener for the given event type.
func (tm *Timer) On(typ events.Types, fun func(ev events.Event)) {
	tm.listeners.Add(typ, fun)
}

func (tm *Timer) Realize(sc *Scene) error {
	if tm.AutoStart {
		tm.StartAt(sc.Clock.Now())
	}
	return nil
}

// IsRunning returns whether the timer is running.
func (tm *Timer) IsRunning() bool { return tm.running }

// CurrentTime returns the time of the last update, or the start time.
func (tm *Timer) CurrentTime() time.Duration { return tm.currentTime }

// Start starts the timer at the current time of the scene clock.
func (tm *Timer) Start() {
	tm.StartAt(tm.now())
}

// StartAt starts the timer at the given time, resetting the phase.
func (tm *Timer) StartAt(now time.Duration) {
	tm.running = true
	tm.startTime = now
	tm.currentTime = now
	tm.lastFraction = 0
}

// Stop stops the timer. Events already emitted are not retracted.
func (tm *Timer) Stop() {
	tm.running = false
}

// Elapsed returns the time since the timer was started, as of the
// last update.
func (tm *Timer) Elapsed() time.Duration {
	return tm.currentTime - tm.startTime
}

// Fraction returns the phase of the last update.
func (tm *Timer) Fraction() float32 { return tm.lastFraction }

func (tm *Timer) Update(now time.Duration) {
	if !tm.running {
		return
	}
	delta := now - tm.currentTime
	tm.currentTime = now
	tm.emit(&tm.listeners, events.NewTick(events.Time, now, delta, 0))
	if tm.Duration <= 0 {
		return
	}
	elapsed := now - tm.startTime
	fraction := float32(elapsed%tm.Duration) / float32(tm.Duration)
	tm.emit(&tm.listeners, events.NewTick(events.Fraction, now, delta, fraction))
	if fraction < tm.lastFraction {
		if !tm.Loop {
			tm.Stop()
		}
		tm.emit(&tm.listeners, events.NewTick(events.CycleTime, now, delta, fraction))
	}
	tm.lastFraction = fraction
}
