// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
)

// Object is a scene graph node. It owns an ordered list of
// components and an ordered list of child objects, and has at
// most one parent.
//
// An object is live once it is attached under the root of a
// [Scene]. Components are only realized on live objects: adding
// a component or child to a live object realizes it immediately,
// and adding a subtree to a live object realizes each object,
// then its components in order, then its children.
type Object struct {

	// Name is used to name the engine nodes of the object.
	Name string

	// Element is the markup element the object was built from, if any.
	// Events from components of the object are dispatched on it.
	Element *dom.Element

	// Node is the engine transform node, made when the object goes live.
	Node engine.Node

	parent     *Object
	children   []*Object
	components []Component
	scene      *Scene
	live       bool
	destroyed  bool
	onDestroy  []func()
}

// NewObject returns a new object with the given name.
func NewObject(name string) *Object {
	return &Object{Name: name}
}

func (o *Object) String() string {
	return o.Path()
}

// Path returns the names of the objects from the root to this one,
// separated by /.
func (o *Object) Path() string {
	var names []string
	for p := o; p != nil; p = p.parent {
		names = append(names, p.Name)
	}
	slices.Reverse(names)
	return strings.Join(names, "/")
}

// Parent returns the parent object, or nil.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the child objects. The slice must not be modified.
func (o *Object) Children() []*Object { return o.children }

// Scene returns the scene the object is live in, or nil.
func (o *Object) Scene() *Scene { return o.scene }

// IsLive returns whether the object is attached to a running scene.
func (o *Object) IsLive() bool { return o.live }

// IsDestroyed returns whether [Object.Destroy] has been called.
func (o *Object) IsDestroyed() bool { return o.destroyed }

// AddComponent appends the component and binds it to this object.
// If the object is live the component is realized immediately.
func (o *Object) AddComponent(c Component) error {
	if o.destroyed {
		return fmt.Errorf("xyz: %v: adding %v component to a destroyed object", o, c.Kind())
	}
	cb := c.AsComponent()
	if cb.state != Unbound {
		return fmt.Errorf("xyz: %v: %v: %w", o, c.Kind(), ErrAlreadyBound)
	}
	cb.object = o
	cb.state = Bound
	o.components = append(o.components, c)
	if o.live {
		return o.realizeComponent(c)
	}
	return nil
}

// AddChild appends kid to the children, detaching it from any prior
// parent. If this object is live, the subtree of kid is realized.
func (o *Object) AddChild(kid *Object) error {
	if kid.destroyed || o.destroyed {
		return fmt.Errorf("xyz: %v: adding %v: object is destroyed", o, kid.Name)
	}
	for p := o; p != nil; p = p.parent {
		if p == kid {
			return fmt.Errorf("xyz: adding %v under %v would make a cycle", kid, o)
		}
	}
	if kid.parent != nil {
		kid.parent.RemoveChild(kid)
	}
	kid.parent = o
	o.children = append(o.children, kid)
	if o.live {
		return kid.realize(o.scene)
	}
	return nil
}

// RemoveChild removes kid from the children. The subtree of kid
// is no longer live, but keeps its realized components, so it
// can be added again.
func (o *Object) RemoveChild(kid *Object) bool {
	i := slices.Index(o.children, kid)
	if i < 0 {
		return false
	}
	o.children = slices.Delete(o.children, i, i+1)
	kid.parent = nil
	if kid.Node != nil && o.scene != nil {
		o.scene.Engine.Detach(kid.Node)
	}
	kid.WalkDown(func(d *Object) bool {
		d.live = false
		return true
	})
	return true
}

// realize makes the object live in sc: it makes and attaches the
// engine node, realizes the components in order and then realizes
// the children. Failures are collected and do not stop the rest
// of the subtree from being realized.
func (o *Object) realize(sc *Scene) error {
	if o.live {
		return nil
	}
	o.scene = sc
	if o.Node == nil {
		o.Node = sc.Engine.NewGroup(o.Name)
	}
	pnode := sc.Node
	if o.parent != nil && o.parent.Node != nil {
		pnode = o.parent.Node
	}
	if err := sc.Engine.Attach(pnode, o.Node); err != nil {
		return fmt.Errorf("xyz: %v: attaching: %w", o, err)
	}
	o.live = true
	var errs []error
	for _, c := range slices.Clone(o.components) {
		errs = append(errs, o.realizeComponent(c))
	}
	for _, kid := range slices.Clone(o.children) {
		errs = append(errs, kid.realize(sc))
	}
	return errors.Join(errs...)
}

// realizeComponent realizes c at most once.
func (o *Object) realizeComponent(c Component) error {
	cb := c.AsComponent()
	if cb.state != Bound {
		return nil
	}
	if r, ok := c.(Realizer); ok {
		if err := r.Realize(o.scene); err != nil {
			return fmt.Errorf("xyz: %v: realizing %v: %w", o, c.Kind(), err)
		}
	}
	cb.state = Realized
	return nil
}

// AllComponents returns all of the components in insertion order.
// The slice must not be modified.
func (o *Object) AllComponents() []Component {
	return o.components
}

// Components returns the components of the given kind, in insertion order.
func (o *Object) Components(kind Kinds) []Component {
	var res []Component
	for _, c := range o.components {
		if c.Kind() == kind {
			res = append(res, c)
		}
	}
	return res
}

// ComponentsOf returns the components of the object that have type T,
// in insertion order. T may be a concrete type or a capability interface.
func ComponentsOf[T any](o *Object) []T {
	var res []T
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			res = append(res, t)
		}
	}
	return res
}

// FirstOf returns the first component of the object that has type T.
func FirstOf[T any](o *Object) (T, bool) {
	for _, c := range o.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zt T
	return zt, false
}

// Visual returns the first [Visual] component, which is the
// canonical one for [Object.Geometry] and [Object.Material].
func (o *Object) Visual() *Visual {
	for _, c := range o.components {
		if c.Kind() == KindVisual {
			return c.(*Visual)
		}
	}
	return nil
}

// Geometry returns the geometry of the first [Visual], or nil.
func (o *Object) Geometry() engine.Geometry {
	if v := o.Visual(); v != nil {
		return v.Geometry
	}
	return nil
}

// Material returns the material of the first [Visual], or nil.
func (o *Object) Material() engine.Material {
	if v := o.Visual(); v != nil {
		return v.Material
	}
	return nil
}

// Transform returns the first [Transform] component, adding
// a new identity one if there is none.
func (o *Object) Transform() *Transform {
	if t, ok := FirstOf[*Transform](o); ok {
		return t
	}
	t := NewTransform(engine.NewPose())
	if err := o.AddComponent(t); err != nil {
		slog.Error("xyz: adding transform", "object", o.String(), "err", err)
	}
	return t
}

// Dispatch dispatches the event on the element of the object, if
// it has one. Dispatch errors, such as for a detached element, are logged.
func (o *Object) Dispatch(ev events.Event) {
	if o.Element == nil {
		return
	}
	if err := o.Element.DispatchEvent(ev); err != nil {
		slog.Warn("xyz: dispatching event", "object", o.String(), "event", ev.Type().String(), "err", err)
	}
}

// OnDestroy adds a function to be called when the object is destroyed.
func (o *Object) OnDestroy(fun func()) {
	o.onDestroy = append(o.onDestroy, fun)
}

// Destroy destroys the children, then the components of this object,
// runs the OnDestroy functions, and removes the object from its parent.
// Destroying an object twice does nothing.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	for _, kid := range slices.Clone(o.children) {
		kid.Destroy()
	}
	for _, c := range o.components {
		if d, ok := c.(Destroyer); ok && c.AsComponent().state == Realized {
			d.Destroy()
		}
	}
	for _, fun := range o.onDestroy {
		fun()
	}
	o.onDestroy = nil
	if o.parent != nil {
		o.parent.RemoveChild(o)
	} else if o.Node != nil && o.scene != nil {
		o.scene.Engine.Detach(o.Node)
	}
	o.live = false
}

// WalkDown calls fun on the object and its descendants in pre-order,
// skipping the children of any object for which fun returns false.
func (o *Object) WalkDown(fun func(o *Object) bool) {
	if !fun(o) {
		return
	}
	for _, kid := range slices.Clone(o.children) {
		kid.WalkDown(fun)
	}
}
