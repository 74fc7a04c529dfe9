// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"fmt"
	"time"
)

// Tick is a [Time], [Fraction] or [CycleTime] event sent by a timer.
// Tick events do not bubble.
type Tick struct {
	Base

	// Now is the clock reading for the tick.
	Now time.Duration

	// Delta is the time elapsed since the previous tick.
	Delta time.Duration

	// Fraction is the normalized phase in [0,1), for [Fraction] events.
	Fraction float32
}

// NewTick returns a new tick event of the given type.
func NewTick(typ Types, now, delta time.Duration, fraction float32) *Tick {
	ev := &Tick{Now: now, Delta: delta, Fraction: fraction}
	ev.Init(typ)
	return ev
}

func (ev *Tick) String() string {
	return fmt.Sprintf("%v{Now: %v, Delta: %v, Fraction: %g}", ev.Type(), ev.Now, ev.Delta, ev.Fraction)
}
