// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"

	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
)

// pickKinds maps pointer event types to engine pick kinds.
var pickKinds = map[events.Types]engine.PickKinds{
	events.Click:     engine.PickClick,
	events.MouseOver: engine.PickMouseOver,
	events.MouseOut:  engine.PickMouseOut,
	events.MouseDown: engine.PickMouseDown,
	events.MouseUp:   engine.PickMouseUp,
	events.MouseMove: engine.PickMouseMove,
	events.ViewOver:  engine.PickViewOver,
	events.ViewOut:   engine.PickViewOut,
}

// PickKind returns the engine pick kind for the pointer event type.
func PickKind(typ events.Types) (engine.PickKinds, bool) {
	k, ok := pickKinds[typ]
	return k, ok
}

// Picker turns engine pick notifications on its object into
// pointer events dispatched on the element of the object. Element
// level events bubble; view level events do not.
type Picker struct {
	ComponentBase

	// Types are the pointer event types to subscribe to.
	Types []events.Types

	listeners events.Listeners
	unsub     []func()
}

// NewPicker returns a new [Picker] for the given event types,
// or for all element level pointer types if none are given.
func NewPicker(types ...events.Types) *Picker {
	if len(types) == 0 {
		types = events.PointerTypes
	}
	return &Picker{Types: types}
}

func (pk *Picker) Kind() Kinds { return KindPicker }

func (pk *Picker) Listeners() *events.Listeners { return &pk.listeners }

// On adds a listener for the given event type.
func (pk *Picker) On(typ events.Types, fun func(ev events.Event)) {
	pk.listeners.Add(typ, fun)
}

// target returns the engine node to subscribe on: the mesh of the
// first visual, else the node of the object.
func (pk *Picker) target() engine.Node {
	if v := pk.object.Visual(); v != nil && v.Node != nil {
		return v.Node
	}
	return pk.object.Node
}

func (pk *Picker) Realize(sc *Scene) error {
	node := pk.target()
	for _, typ := range pk.Types {
		kind, ok := PickKind(typ)
		if !ok {
			return fmt.Errorf("%v is not a pointer event type", typ)
		}
		pk.unsub = append(pk.unsub, sc.Engine.Subscribe(node, kind, func(pe *engine.PickEvent) {
			pk.handle(typ, pe)
		}))
	}
	return nil
}

// handle copies the engine event into a pointer event and emits it.
func (pk *Picker) handle(typ events.Types, pe *engine.PickEvent) {
	if pk.object.destroyed {
		return
	}
	ev := NewPointerEvent(typ, pe)
	pk.emit(&pk.listeners, ev)
}

// NewPointerEvent returns a pointer event of the given type carrying
// all of the fields of the engine pick event.
func NewPointerEvent(typ events.Types, pe *engine.PickEvent) *events.Pointer {
	ev := events.NewPointer(typ, pe.Where)
	ev.Button = pe.Button
	ev.Point = pe.Point
	ev.Normal = pe.Normal
	ev.UV = pe.UV
	ev.Distance = pe.Distance
	ev.Face = pe.Face
	ev.Node = pe.Node
	if !pe.Time.IsZero() {
		ev.GenTime = pe.Time
	}
	return ev
}

func (pk *Picker) Destroy() {
	for _, u := range pk.unsub {
		u()
	}
	pk.unsub = nil
}
