// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"

	"cogentcore.org/glam/engine"
)

// Visual is a renderable mesh built from geometry and material.
type Visual struct {
	ComponentBase

	// Geometry is the geometry of the mesh.
	Geometry engine.Geometry

	// Material is the surface material of the mesh.
	Material engine.Material

	// Node is the engine mesh node, made on realization.
	Node engine.Node
}

// NewVisual returns a new [Visual] for the given geometry and material.
func NewVisual(g engine.Geometry, m engine.Material) *Visual {
	return &Visual{Geometry: g, Material: m}
}

func (v *Visual) Kind() Kinds { return KindVisual }

func (v *Visual) Realize(sc *Scene) error {
	return v.realizeMesh(sc, v.object.Name)
}

func (v *Visual) realizeMesh(sc *Scene, name string) error {
	if v.Geometry == nil || v.Material == nil {
		return errors.New("visual needs both geometry and material")
	}
	n, err := sc.Engine.NewMesh(name, v.Geometry, v.Material)
	if err != nil {
		return err
	}
	v.Node = n
	return sc.Engine.Attach(v.object.Node, n)
}

func (v *Visual) Destroy() {
	if v.Node != nil {
		v.Scene().Engine.Detach(v.Node)
	}
}

// Decoration is a mesh that is shown but is not the canonical
// visual of its object and does not take part in picking,
// such as an outline or a helper grid.
type Decoration struct {
	Visual
}

// NewDecoration returns a new [Decoration].
func NewDecoration(g engine.Geometry, m engine.Material) *Decoration {
	return &Decoration{Visual: Visual{Geometry: g, Material: m}}
}

func (d *Decoration) Kind() Kinds { return KindDecoration }

func (d *Decoration) Realize(sc *Scene) error {
	return d.realizeMesh(sc, d.object.Name+"-decoration")
}

// SceneVisual shows a decoded [engine.Model]: it makes one mesh
// per model mesh, grouped under one engine node.
type SceneVisual struct {
	ComponentBase

	// Model is the decoded model.
	Model *engine.Model

	// Node is the engine group holding the meshes.
	Node engine.Node

	// Meshes are the engine mesh nodes, in model order.
	Meshes []engine.Node
}

// NewSceneVisual returns a new [SceneVisual] for the model.
func NewSceneVisual(m *engine.Model) *SceneVisual {
	return &SceneVisual{Model: m}
}

func (sv *SceneVisual) Kind() Kinds { return KindSceneVisual }

func (sv *SceneVisual) Realize(sc *Scene) error {
	if sv.Model == nil {
		return errors.New("scene visual has no model")
	}
	eng := sc.Engine
	sv.Node = eng.NewGroup(sv.Model.Name)
	if err := eng.Attach(sv.object.Node, sv.Node); err != nil {
		return err
	}
	var errs []error
	for _, mm := range sv.Model.Meshes {
		g, err := eng.NewGeometry(engine.Mesh, mm.Params)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %s: %w", mm.Name, err))
			continue
		}
		mat, err := eng.NewMaterial(mm.Material)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %s: %w", mm.Name, err))
			continue
		}
		n, err := eng.NewMesh(mm.Name, g, mat)
		if err == nil {
			err = eng.Attach(sv.Node, n)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %s: %w", mm.Name, err))
			continue
		}
		sv.Meshes = append(sv.Meshes, n)
	}
	return errors.Join(errs...)
}

func (sv *SceneVisual) Destroy() {
	if sv.Node != nil {
		sv.Scene().Engine.Detach(sv.Node)
	}
}
