// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xyz provides the retained scene graph: [Object] nodes that
// own typed [Component] values, each realized against the rendering
// [engine.Engine] once its object is live in a [Scene], and then
// updated on every tick of the scene.
package xyz

import (
	"errors"
	"time"

	"cogentcore.org/glam/events"
)

// ErrAlreadyBound is returned when adding a component that is
// already bound to an object.
var ErrAlreadyBound = errors.New("xyz: component is already bound to an object")

// Kinds are the kinds of component.
type Kinds int32

const (
	KindVisual Kinds = iota
	KindCamera
	KindLight
	KindTransform
	KindBehavior
	KindTimer
	KindPicker
	KindDecoration
	KindSceneVisual
	KindsN
)

var kindNames = [...]string{"Visual", "Camera", "Light", "Transform", "Behavior", "Timer", "Picker", "Decoration", "SceneVisual"}

func (k Kinds) String() string {
	if k < 0 || k >= KindsN {
		return "Unknown"
	}
	return kindNames[k]
}

// States are the lifecycle states of a component.
type States int32

const (
	// Unbound is the state of a newly constructed component.
	Unbound States = iota

	// Bound is the state after the component is added to an object.
	Bound

	// Realized is the state after engine resources have been created.
	Realized
)

var stateNames = [...]string{"Unbound", "Bound", "Realized"}

func (s States) String() string { return stateNames[s] }

// Component is a typed unit of state and behavior attached to
// exactly one [Object]. All components embed [ComponentBase].
// Optional capabilities are expressed by also implementing
// [Realizer], [Updater], [Destroyer] or [Emitter].
type Component interface {

	// Kind returns the kind of component.
	Kind() Kinds

	// AsComponent returns the embedded [ComponentBase].
	AsComponent() *ComponentBase
}

// Realizer is a component with engine-side resources to create
// once its object is live.
type Realizer interface {
	Realize(sc *Scene) error
}

// Updater is a component with time-varying state, updated on
// every tick with the current scene time.
type Updater interface {
	Update(now time.Duration)
}

// Destroyer is a component that releases resources when its
// object is destroyed.
type Destroyer interface {
	Destroy()
}

// Emitter is a component that emits events to its own listeners.
type Emitter interface {
	Listeners() *events.Listeners
}

// ComponentBase provides the binding to the owning object and
// the lifecycle state common to all components.
type ComponentBase struct {
	object *Object
	state  States
}

func (cb *ComponentBase) AsComponent() *ComponentBase {
	return cb
}

// Object returns the owning object, or nil if unbound.
func (cb *ComponentBase) Object() *Object {
	return cb.object
}

// State returns the lifecycle state.
func (cb *ComponentBase) State() States {
	return cb.state
}

// IsRealized returns whether the component has been realized.
func (cb *ComponentBase) IsRealized() bool {
	return cb.state == Realized
}

// Scene returns the scene of the owning object, or nil.
func (cb *ComponentBase) Scene() *Scene {
	if cb.object == nil {
		return nil
	}
	return cb.object.scene
}

// now returns the current time of the owning scene's clock, or 0.
func (cb *ComponentBase) now() time.Duration {
	if sc := cb.Scene(); sc != nil && sc.Clock != nil {
		return sc.Clock.Now()
	}
	return 0
}

// emit calls the given listeners and then dispatches the event
// on the element of the owning object. Handling the event in a
// listener of the component does not keep it from the element.
func (cb *ComponentBase) emit(ls *events.Listeners, ev events.Event) {
	ls.Call(ev)
	if cb.object != nil {
		ev.AsBase().SetFlag(false, events.Handled)
		cb.object.Dispatch(ev)
	}
}
