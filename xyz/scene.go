// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"fmt"
	"slices"
	"time"

	"cogentcore.org/glam/engine"
)

// Scene is a running scene: a live root [Object] whose subtree is
// realized against an engine, and the clock that drives updates.
type Scene struct {

	// Name is the name of the scene.
	Name string

	// Engine is the rendering engine the scene is realized against.
	Engine engine.Engine

	// Node is the engine scene node.
	Node engine.Node

	// Root is the live root object.
	Root *Object

	// Clock is the time source used by components that start
	// outside of an update, such as timers started on realization.
	Clock Clock

	// Now is the time of the last [Scene.Update].
	Now time.Duration
}

// NewScene returns a new scene with a live, empty root object,
// using a [SystemClock].
func NewScene(name string, eng engine.Engine) *Scene {
	sc := &Scene{Name: name, Engine: eng, Clock: NewSystemClock()}
	sc.Node = eng.NewScene(name)
	sc.Root = NewObject(name)
	sc.Root.scene = sc
	sc.Root.Node = sc.Node
	sc.Root.live = true
	return sc
}

// Add adds the object under the root, realizing its subtree.
func (sc *Scene) Add(obj *Object) error {
	return sc.Root.AddChild(obj)
}

// Update updates every realized [Updater] component of every live
// object, in pre-order over the tree and insertion order within
// each object.
func (sc *Scene) Update(now time.Duration) {
	sc.Now = now
	sc.Root.WalkDown(func(o *Object) bool {
		if !o.live {
			return false
		}
		for _, c := range slices.Clone(o.components) {
			u, ok := c.(Updater)
			if !ok || !c.AsComponent().IsRealized() {
				continue
			}
			u.Update(now)
		}
		return true
	})
}

// Cameras returns the realized cameras of the scene in tree order.
func (sc *Scene) Cameras() []*Camera {
	var cams []*Camera
	sc.Root.WalkDown(func(o *Object) bool {
		if !o.live {
			return false
		}
		for _, c := range ComponentsOf[*Camera](o) {
			if c.IsRealized() {
				cams = append(cams, c)
			}
		}
		return true
	})
	return cams
}

// ActiveCamera returns the first camera marked active, else the
// first camera, else nil.
func (sc *Scene) ActiveCamera() *Camera {
	cams := sc.Cameras()
	for _, c := range cams {
		if c.Params.Active {
			return c
		}
	}
	if len(cams) > 0 {
		return cams[0]
	}
	return nil
}

// Render renders the scene with the given camera, which may be nil.
func (sc *Scene) Render(cam *Camera) error {
	var node engine.Node
	if cam != nil {
		node = cam.Node
	}
	if err := sc.Engine.Render(sc.Node, node); err != nil {
		return fmt.Errorf("xyz: rendering scene %s: %w", sc.Name, err)
	}
	return nil
}

// Destroy destroys all of the objects in the scene.
func (sc *Scene) Destroy() {
	sc.Root.Destroy()
}
