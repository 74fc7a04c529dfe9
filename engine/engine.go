// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine defines the capability surface of the external
// rendering engine that scene components are realized against.
// The engine owns meshes, materials, cameras, lights and picking;
// this package only describes how they are requested.
package engine

import (
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Engine is the rendering capability consumed by scene components.
// All methods are called from the single update loop.
type Engine interface {

	// NewScene returns a new root node for a scene.
	NewScene(name string) Node

	// NewGroup returns a new empty transform node.
	NewGroup(name string) Node

	// NewGeometry constructs geometry of the given kind.
	NewGeometry(kind GeometryKind, params Params) (Geometry, error)

	// NewMaterial constructs a surface material.
	NewMaterial(params MaterialParams) (Material, error)

	// NewMesh constructs a renderable node from geometry and material.
	NewMesh(name string, g Geometry, m Material) (Node, error)

	// NewCamera constructs a camera node.
	NewCamera(name string, params CameraParams) (Node, error)

	// NewLight constructs a light node of the given kind.
	NewLight(name string, kind LightKinds, params LightParams) (Node, error)

	// Attach adds child under parent, detaching it from any prior parent.
	Attach(parent, child Node) error

	// Detach removes the node from its parent. Its own children stay
	// attached to it, and it may be attached again later.
	Detach(n Node)

	// SetPose sets the local transform of the node.
	SetPose(n Node, p Pose)

	// Subscribe registers fn for pick events of the given kind on
	// the node. The returned function removes the subscription.
	Subscribe(n Node, kind PickKinds, fn func(ev *PickEvent)) (unsubscribe func())

	// Render draws the scene as seen from the camera.
	Render(scene, camera Node) error
}

// Node is an engine-side scene graph node.
type Node interface {

	// Name returns the name given when the node was created.
	Name() string
}

// Geometry is engine-side geometry.
type Geometry interface {
	Kind() GeometryKind
}

// Material is an engine-side surface material.
type Material interface {
	Params() MaterialParams
}

// GeometryKind is the kind of primitive geometry.
type GeometryKind int32

const (
	Box GeometryKind = iota
	Sphere
	Cylinder
	Cone
	Circle
	Rect
	Arc
	Line
	Mesh
	GeometryKindN
)

var geometryNames = [...]string{"box", "sphere", "cylinder", "cone", "circle", "rect", "arc", "line", "mesh"}

func (k GeometryKind) String() string {
	if k < 0 || k >= GeometryKindN {
		return "unknown"
	}
	return geometryNames[k]
}

// Params are the construction parameters of a geometry.
type Params struct {

	// Values are named scalar parameters such as width or radiusSegments.
	Values map[string]float32

	// Points are vertex positions, for lines and meshes.
	Points []mgl32.Vec3

	// Normals are per-vertex normals, for meshes.
	Normals []mgl32.Vec3

	// UVs are per-vertex texture coordinates, for meshes.
	UVs []mgl32.Vec2

	// Indices are triangle vertex indices, for meshes.
	Indices []uint32
}

// Value returns the named scalar parameter, or def if it is not set.
func (p *Params) Value(name string, def float32) float32 {
	if v, ok := p.Values[name]; ok {
		return v
	}
	return def
}

// MaterialParams describe the surface of a mesh.
type MaterialParams struct {
	Color      color.RGBA
	Emissive   color.RGBA
	Opacity    float32
	Shiny      float32
	Reflective float32
	Bright     float32
	Wireframe  bool

	// EnvMap is the url of an environment map texture, if any.
	EnvMap string

	// Transition is how long property changes take to apply.
	Transition time.Duration
}

// Defaults sets default surface parameters.
func (mp *MaterialParams) Defaults() {
	mp.Color = color.RGBA{128, 128, 128, 255}
	mp.Emissive = color.RGBA{}
	mp.Opacity = 1
	mp.Shiny = 30
	mp.Reflective = 1
	mp.Bright = 1
}

// CameraParams are the projection parameters of a camera.
type CameraParams struct {

	// FOV is the vertical field of view in degrees.
	FOV float32

	Near float32
	Far  float32

	// Active marks the camera the viewer should render with.
	Active bool
}

// Defaults sets default camera parameters.
func (cp *CameraParams) Defaults() {
	cp.FOV = 30
	cp.Near = .01
	cp.Far = 1000
}

// LightKinds are the kinds of light.
type LightKinds int32

const (
	AmbientLight LightKinds = iota
	PointLight
	DirectionalLight
	LightKindsN
)

var lightNames = [...]string{"ambient", "point", "directional"}

func (k LightKinds) String() string {
	if k < 0 || k >= LightKindsN {
		return "unknown"
	}
	return lightNames[k]
}

// LightParams are the parameters of a light.
type LightParams struct {
	Color     color.RGBA
	Intensity float32

	// Distance is the cutoff distance of a point light; 0 is unlimited.
	Distance float32

	// Decay is the falloff exponent of a point light.
	Decay float32
}

// Defaults sets default light parameters.
func (lp *LightParams) Defaults() {
	lp.Color = color.RGBA{255, 255, 255, 255}
	lp.Intensity = 1
	lp.Decay = 1
}

// Pose is a local transform: position, Euler rotation in radians
// (XYZ order), and scale.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewPose returns the identity pose.
func NewPose() Pose {
	return Pose{Scale: mgl32.Vec3{1, 1, 1}}
}

// Quat returns the rotation as a quaternion, whose matrix is
// Rx * Ry * Rz.
func (p Pose) Quat() mgl32.Quat {
	qx := mgl32.QuatRotate(p.Rotation[0], mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(p.Rotation[1], mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(p.Rotation[2], mgl32.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz)
}

// SetQuat sets the rotation to the Euler angles of the quaternion.
// At a y angle of a quarter turn, the z angle is 0.
func (p *Pose) SetQuat(q mgl32.Quat) {
	m := q.Normalize().Mat4()
	sy := mgl32.Clamp(m.At(0, 2), -1, 1)
	p.Rotation[1] = math32.Asin(sy)
	if math32.Abs(sy) < 1-1e-6 {
		p.Rotation[0] = math32.Atan2(-m.At(1, 2), m.At(2, 2))
		p.Rotation[2] = math32.Atan2(-m.At(0, 1), m.At(0, 0))
		return
	}
	p.Rotation[0] = math32.Atan2(m.At(2, 1), m.At(1, 1))
	p.Rotation[1] = math32.Copysign(math32.Pi/2, sy)
	p.Rotation[2] = 0
}

// Matrix returns the local transform matrix: translate * rotate * scale.
func (p Pose) Matrix() mgl32.Mat4 {
	t := mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2])
	s := mgl32.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])
	return t.Mul4(p.Quat().Mat4()).Mul4(s)
}

// PickKinds are the pointer interactions the engine reports.
type PickKinds int32

const (
	PickClick PickKinds = iota
	PickMouseOver
	PickMouseOut
	PickMouseDown
	PickMouseUp
	PickMouseMove
	PickViewOver
	PickViewOut
	PickKindsN
)

// PickEvent is a pointer interaction reported by the engine.
type PickEvent struct {
	Kind PickKinds

	// Node is the engine node that was hit, if any.
	Node Node

	// Where is the pointer position in view pixels.
	Where image.Point

	Button int

	// Point is the hit position in world coordinates.
	Point mgl32.Vec3

	// Normal is the surface normal at the hit point.
	Normal mgl32.Vec3

	// UV is the texture coordinate at the hit point.
	UV mgl32.Vec2

	// Distance is the distance from the camera to the hit point.
	Distance float32

	// Face is the index of the hit face, or -1.
	Face int

	Time time.Time
}

// Model is decoded model data, ready to be turned into meshes.
type Model struct {
	Name   string
	Meshes []ModelMesh
}

// ModelMesh is one mesh of a [Model].
type ModelMesh struct {
	Name     string
	Params   Params
	Material MaterialParams
}
