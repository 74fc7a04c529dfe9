// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Pointer is a pointer event on a scene object, carrying every field
// of the picking result that produced it.
type Pointer struct {
	Base

	// Where is the position of the pointer in view coordinates.
	Where image.Point

	// Button is the pointer button, 0 for none.
	Button int

	// Point is the picked point in world coordinates.
	Point mgl32.Vec3

	// Normal is the surface normal at Point.
	Normal mgl32.Vec3

	// UV is the texture coordinate at Point.
	UV mgl32.Vec2

	// Distance is the distance from the camera to Point.
	Distance float32

	// Face is the index of the picked face, -1 if unknown.
	Face int

	// Node is the engine node that was hit.
	Node any
}

// NewPointer returns a new pointer event of the given type.
// Object-level types bubble; view-level types do not.
func NewPointer(typ Types, where image.Point) *Pointer {
	ev := &Pointer{}
	ev.Init(typ)
	ev.Where = where
	ev.Face = -1
	ev.SetFlag(!typ.IsView(), Bubbles)
	return ev
}

func (ev *Pointer) String() string {
	return fmt.Sprintf("%v{Pos: %v, Point: %v, Distance: %g, Time: %v}", ev.Type(), ev.Where, ev.Point, ev.Distance, ev.Time().Format("04:05.000"))
}
