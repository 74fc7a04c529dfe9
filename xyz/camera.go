// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import "cogentcore.org/glam/engine"

// Camera is a viewpoint on the scene, positioned by its object.
type Camera struct {
	ComponentBase

	// Params are the projection parameters.
	Params engine.CameraParams

	// Node is the engine camera node, made on realization.
	Node engine.Node
}

// NewCamera returns a new [Camera] with the given parameters.
func NewCamera(params engine.CameraParams) *Camera {
	return &Camera{Params: params}
}

func (c *Camera) Kind() Kinds { return KindCamera }

func (c *Camera) Realize(sc *Scene) error {
	n, err := sc.Engine.NewCamera(c.object.Name, c.Params)
	if err != nil {
		return err
	}
	c.Node = n
	return sc.Engine.Attach(c.object.Node, n)
}

func (c *Camera) Destroy() {
	if c.Node != nil {
		c.Scene().Engine.Detach(c.Node)
	}
}

// Light illuminates the scene, positioned by its object.
type Light struct {
	ComponentBase

	// LightKind is the kind of light.
	LightKind engine.LightKinds

	// Params are the light parameters.
	Params engine.LightParams

	// Node is the engine light node, made on realization.
	Node engine.Node
}

// NewLight returns a new [Light] of the given kind.
func NewLight(kind engine.LightKinds, params engine.LightParams) *Light {
	return &Light{LightKind: kind, Params: params}
}

func (l *Light) Kind() Kinds { return KindLight }

func (l *Light) Realize(sc *Scene) error {
	n, err := sc.Engine.NewLight(l.object.Name, l.LightKind, l.Params)
	if err != nil {
		return err
	}
	l.Node = n
	return sc.Engine.Attach(l.object.Node, n)
}

func (l *Light) Destroy() {
	if l.Node != nil {
		l.Scene().Engine.Detach(l.Node)
	}
}

// Transform holds the local pose of its object.
type Transform struct {
	ComponentBase

	// Pose is the local pose. Use [Transform.SetPose] to change it
	// so that a realized transform updates the engine.
	Pose engine.Pose
}

// NewTransform returns a new [Transform] with the given pose.
func NewTransform(p engine.Pose) *Transform {
	return &Transform{Pose: p}
}

func (t *Transform) Kind() Kinds { return KindTransform }

func (t *Transform) Realize(sc *Scene) error {
	sc.Engine.SetPose(t.object.Node, t.Pose)
	return nil
}

// SetPose sets the pose, applying it to the engine node of the
// object if the transform is realized.
func (t *Transform) SetPose(p engine.Pose) {
	t.Pose = p
	if t.IsRealized() && t.object.live {
		t.Scene().Engine.SetPose(t.object.Node, p)
	}
}
