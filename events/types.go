// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"fmt"
	"strings"
)

// Types determines the type of scene event, and also the
// level at which one can select which events to listen to.
// The pointer types mirror the standard
// [JavaScript Event](https://developer.mozilla.org/en-US/docs/Web/Events)
// names so that markup authors see familiar names.
type Types int32

const (
	// zero value is an unknown type
	UnknownType Types = iota

	// Click is a pointer press and release on the same object.
	Click

	// MouseOver is when the pointer starts hovering over an object.
	MouseOver

	// MouseOut is when the pointer stops hovering over an object
	// that previously got a MouseOver.
	MouseOut

	// MouseDown happens when a pointer button is pressed over an object.
	MouseDown

	// MouseUp happens when a pointer button is released over an object.
	MouseUp

	// MouseMove is sent when the pointer moves over an object.
	MouseMove

	// ViewOver is when the pointer enters the whole view.
	// It does not bubble.
	ViewOver

	// ViewOut is when the pointer leaves the whole view.
	// It does not bubble.
	ViewOut

	// Time is sent by a running Timer on every update tick.
	Time

	// Fraction is sent by a running Timer with a duration,
	// carrying the normalized phase in [0,1).
	Fraction

	// CycleTime is sent by a Timer when its phase wraps around,
	// which marks the completion of a cycle.
	CycleTime

	// Loaded is sent when an asynchronous load completes.
	Loaded

	// Progress is sent while an asynchronous load is reading data.
	Progress

	// LoadError is sent when an asynchronous load fails.
	LoadError

	// Custom is a user-defined event with a data any field
	Custom

	// TypesN is the number of event types.
	TypesN
)

var typeNames = [TypesN]string{
	"unknown", "click", "mouseover", "mouseout", "mousedown", "mouseup", "mousemove",
	"viewover", "viewout", "time", "fraction", "cycleTime", "loaded", "progress",
	"loadError", "custom",
}

// String returns the markup-level name of the event type.
func (tp Types) String() string {
	if tp < 0 || tp >= TypesN {
		return fmt.Sprintf("Types(%d)", int32(tp))
	}
	return typeNames[tp]
}

// TypeFromString returns the type with the given markup-level name,
// ignoring case. An optional "on" prefix (as in onclick) is accepted.
func TypeFromString(s string) (Types, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, nm := range typeNames {
		lnm := strings.ToLower(nm)
		if s == lnm || s == "on"+lnm {
			return Types(i), nil
		}
	}
	return UnknownType, fmt.Errorf("events: unknown event type %q", s)
}

// IsPointer returns true for the pointer types that are
// delivered on individual objects.
func (tp Types) IsPointer() bool {
	return tp >= Click && tp <= MouseMove
}

// IsView returns true for the view-level pointer types.
func (tp Types) IsView() bool {
	return tp == ViewOver || tp == ViewOut
}

// PointerTypes are all of the object-level pointer types, in order.
var PointerTypes = []Types{Click, MouseOver, MouseOut, MouseDown, MouseUp, MouseMove}

// ViewTypes are the view-level pointer types.
var ViewTypes = []Types{ViewOver, ViewOut}

// EventFlags encode boolean event properties
type EventFlags int64

const (
	// Handled indicates that the event has been handled
	Handled EventFlags = iota

	// Bubbles indicates that the event propagates from the
	// target element up through its ancestors.
	Bubbles

	// PropagationStopped indicates that a listener has stopped
	// the event from propagating further up the tree.
	PropagationStopped
)
