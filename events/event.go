// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events defines the events that are dispatched on markup
// elements by scene components: pointer events translated from
// engine picking, timer ticks and load notifications.
package events

import (
	"fmt"
	"time"
)

// Event is the interface for all scene events.
type Event interface {
	fmt.Stringer

	// Type returns the type of event.
	Type() Types

	// AsBase returns the [Base] of the event.
	AsBase() *Base

	// Time returns the time at which the event was generated.
	Time() time.Time

	// IsHandled returns whether this event has already been processed.
	IsHandled() bool

	// SetHandled marks the event as handled, which stops
	// any further listeners from being called.
	SetHandled()

	// Bubbles returns whether the event propagates up the element tree.
	Bubbles() bool

	// StopPropagation prevents the event from reaching further ancestors.
	StopPropagation()

	// IsPropagationStopped returns whether StopPropagation was called.
	IsPropagationStopped() bool
}

// Base is the base type for events.
// It is designed to be embedded in other event types.
type Base struct {

	// Typ is the type of event.
	Typ Types

	// Flags records event state.
	Flags EventFlags

	// GenTime records the time when the event was first generated.
	GenTime time.Time

	// Target is the element on which the event was first dispatched.
	Target any

	// CurrentTarget is the element whose listeners are currently running.
	CurrentTarget any

	// Data is arbitrary data attached to the event.
	Data any
}

// Init sets the type and generation time.
func (ev *Base) Init(typ Types) {
	ev.Typ = typ
	ev.GenTime = time.Now()
}

func (ev *Base) Type() Types {
	return ev.Typ
}

func (ev *Base) AsBase() *Base {
	return ev
}

func (ev *Base) Time() time.Time {
	return ev.GenTime
}

// HasFlag returns whether the given flag is set.
func (ev *Base) HasFlag(f EventFlags) bool {
	return ev.Flags&(1<<f) != 0
}

// SetFlag sets the given flag on or off.
func (ev *Base) SetFlag(on bool, f EventFlags) {
	if on {
		ev.Flags |= 1 << f
	} else {
		ev.Flags &^= 1 << f
	}
}

func (ev *Base) IsHandled() bool {
	return ev.HasFlag(Handled)
}

func (ev *Base) SetHandled() {
	ev.SetFlag(true, Handled)
}

func (ev *Base) Bubbles() bool {
	return ev.HasFlag(Bubbles)
}

func (ev *Base) StopPropagation() {
	ev.SetFlag(true, PropagationStopped)
}

func (ev *Base) IsPropagationStopped() bool {
	return ev.HasFlag(PropagationStopped)
}

func (ev *Base) String() string {
	return fmt.Sprintf("%v{Data: %v, Time: %v}", ev.Typ, ev.Data, ev.GenTime.Format("04:05.000"))
}

// NewCustom returns a new [Custom] event carrying the given data.
func NewCustom(data any, bubbles bool) *Base {
	ev := &Base{}
	ev.Init(Custom)
	ev.Data = data
	ev.SetFlag(bubbles, Bubbles)
	return ev
}
