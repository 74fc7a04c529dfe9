// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offscreen provides an in-memory [engine.Engine] that keeps
// the scene graph it is given without drawing anything. It is used
// for headless runs and in tests.
package offscreen

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"cogentcore.org/glam/engine"
	"github.com/google/uuid"
)

// NodeTypes are the kinds of offscreen node.
type NodeTypes int32

const (
	SceneNode NodeTypes = iota
	GroupNode
	MeshNode
	CameraNode
	LightNode
)

var nodeTypeNames = [...]string{"scene", "group", "mesh", "camera", "light"}

func (t NodeTypes) String() string { return nodeTypeNames[t] }

// Node is an offscreen scene graph node.
type Node struct {

	// ID uniquely identifies the node.
	ID uuid.UUID

	Type NodeTypes
	name string

	Parent   *Node
	Children []*Node

	Pose engine.Pose

	Geometry  *Geometry
	Material  *Material
	Camera    engine.CameraParams
	Light     engine.LightParams
	LightKind engine.LightKinds

	// Detached is set by [Engine.Detach] and cleared by [Engine.Attach].
	Detached bool

	subs map[engine.PickKinds][]*subscription
}

type subscription struct {
	fn func(ev *engine.PickEvent)
}

func (n *Node) Name() string { return n.name }

func (n *Node) String() string {
	if n.name == "" {
		return n.Type.String()
	}
	return n.Type.String() + " " + n.name
}

// Geometry is offscreen geometry.
type Geometry struct {
	GeometryKind engine.GeometryKind
	Params       engine.Params
}

func (g *Geometry) Kind() engine.GeometryKind { return g.GeometryKind }

// Material is an offscreen material.
type Material struct {
	MaterialParams engine.MaterialParams
}

func (m *Material) Params() engine.MaterialParams { return m.MaterialParams }

// Engine is the offscreen engine.
type Engine struct {

	// Frames is the number of frames rendered.
	Frames int

	// LastCamera is the camera of the most recent render.
	LastCamera *Node

	// Logger receives debug messages; slog.Default() if nil.
	Logger *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New returns a new offscreen engine.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Engine) newNode(typ NodeTypes, name string) *Node {
	return &Node{ID: uuid.New(), Type: typ, name: name, Pose: engine.NewPose()}
}

func (e *Engine) NewScene(name string) engine.Node {
	return e.newNode(SceneNode, name)
}

func (e *Engine) NewGroup(name string) engine.Node {
	return e.newNode(GroupNode, name)
}

func (e *Engine) NewGeometry(kind engine.GeometryKind, params engine.Params) (engine.Geometry, error) {
	if kind < 0 || kind >= engine.GeometryKindN {
		return nil, fmt.Errorf("offscreen: unknown geometry kind %d", kind)
	}
	if (kind == engine.Line || kind == engine.Mesh) && len(params.Points) == 0 {
		return nil, fmt.Errorf("offscreen: %v geometry needs points", kind)
	}
	return &Geometry{GeometryKind: kind, Params: params}, nil
}

func (e *Engine) NewMaterial(params engine.MaterialParams) (engine.Material, error) {
	return &Material{MaterialParams: params}, nil
}

func (e *Engine) NewMesh(name string, g engine.Geometry, m engine.Material) (engine.Node, error) {
	gg, ok := g.(*Geometry)
	if !ok {
		return nil, fmt.Errorf("offscreen: geometry %T was not made by this engine", g)
	}
	mm, ok := m.(*Material)
	if !ok {
		return nil, fmt.Errorf("offscreen: material %T was not made by this engine", m)
	}
	n := e.newNode(MeshNode, name)
	n.Geometry = gg
	n.Material = mm
	return n, nil
}

func (e *Engine) NewCamera(name string, params engine.CameraParams) (engine.Node, error) {
	n := e.newNode(CameraNode, name)
	n.Camera = params
	return n, nil
}

func (e *Engine) NewLight(name string, kind engine.LightKinds, params engine.LightParams) (engine.Node, error) {
	if kind < 0 || kind >= engine.LightKindsN {
		return nil, fmt.Errorf("offscreen: unknown light kind %d", kind)
	}
	n := e.newNode(LightNode, name)
	n.LightKind = kind
	n.Light = params
	return n, nil
}

func asNode(n engine.Node) *Node {
	on, _ := n.(*Node)
	return on
}

func (e *Engine) Attach(parent, child engine.Node) error {
	p, c := asNode(parent), asNode(child)
	if p == nil || c == nil {
		return fmt.Errorf("offscreen: cannot attach %v to %v", child, parent)
	}
	for a := p; a != nil; a = a.Parent {
		if a == c {
			return fmt.Errorf("offscreen: attaching %v under %v makes a cycle", c, p)
		}
	}
	if c.Parent != nil {
		c.Parent.removeChild(c)
	}
	c.Parent = p
	c.Detached = false
	p.Children = append(p.Children, c)
	return nil
}

func (n *Node) removeChild(c *Node) {
	if i := slices.Index(n.Children, c); i >= 0 {
		n.Children = slices.Delete(n.Children, i, i+1)
	}
	c.Parent = nil
}

func (e *Engine) Detach(n engine.Node) {
	on := asNode(n)
	if on == nil {
		return
	}
	if on.Parent != nil {
		on.Parent.removeChild(on)
	}
	on.Detached = true
}

func (e *Engine) SetPose(n engine.Node, p engine.Pose) {
	if on := asNode(n); on != nil {
		on.Pose = p
	}
}

func (e *Engine) Subscribe(n engine.Node, kind engine.PickKinds, fn func(ev *engine.PickEvent)) func() {
	on := asNode(n)
	if on == nil {
		return func() {}
	}
	if on.subs == nil {
		on.subs = map[engine.PickKinds][]*subscription{}
	}
	s := &subscription{fn: fn}
	on.subs[kind] = append(on.subs[kind], s)
	return func() {
		if i := slices.Index(on.subs[kind], s); i >= 0 {
			on.subs[kind] = slices.Delete(on.subs[kind], i, i+1)
		}
	}
}

// Subscribers returns the number of subscriptions of the given kind on n.
func (e *Engine) Subscribers(n engine.Node, kind engine.PickKinds) int {
	if on := asNode(n); on != nil {
		return len(on.subs[kind])
	}
	return 0
}

// Fire delivers a pick event to the subscribers of n. The event's
// Node is set to n when it is nil.
func (e *Engine) Fire(n engine.Node, ev *engine.PickEvent) {
	on := asNode(n)
	if on == nil {
		return
	}
	if ev.Node == nil {
		ev.Node = n
	}
	for _, s := range slices.Clone(on.subs[ev.Kind]) {
		s.fn(ev)
	}
}

func (e *Engine) Render(scene, camera engine.Node) error {
	sc := asNode(scene)
	if sc == nil || sc.Type != SceneNode {
		return fmt.Errorf("offscreen: %v is not a scene", scene)
	}
	cam := asNode(camera)
	if cam != nil && cam.Type != CameraNode {
		return fmt.Errorf("offscreen: %v is not a camera", camera)
	}
	e.Frames++
	e.LastCamera = cam
	e.logger().Debug("offscreen render", "scene", sc.name, "frame", e.Frames, "camera", camera)
	return nil
}

// Walk calls fn on n and its descendants in pre-order.
func Walk(n *Node, fn func(n *Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(n *Node, depth int)) {
	fn(n, depth)
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Dump writes an indented outline of the tree under n.
func Dump(w io.Writer, n engine.Node) error {
	on := asNode(n)
	if on == nil {
		return fmt.Errorf("offscreen: %v is not an offscreen node", n)
	}
	var err error
	Walk(on, func(n *Node, depth int) {
		if err != nil {
			return
		}
		line := strings.Repeat("  ", depth) + n.String()
		switch {
		case n.Geometry != nil:
			line += fmt.Sprintf(" [%v]", n.Geometry.GeometryKind)
		case n.Type == LightNode:
			line += fmt.Sprintf(" [%v]", n.LightKind)
		}
		if n.Pose.Position != (engine.NewPose().Position) {
			line += fmt.Sprintf(" at %v", n.Pose.Position)
		}
		_, err = fmt.Fprintln(w, line)
	})
	return err
}
