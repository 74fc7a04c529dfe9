// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"time"

	"cogentcore.org/glam/engine"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TwoPi is a full turn in radians.
const TwoPi float32 = 2 * math32.Pi

// RotateBehavior spins its object about an axis at a constant
// angular velocity, starting from the rotation it had when started.
type RotateBehavior struct {
	ComponentBase

	// Velocity is in radians per second.
	Velocity float32

	// Axis is the axis of rotation.
	Axis mgl32.Vec3

	// Once is whether to stop after one full turn.
	Once bool

	// AutoStart is whether to start when realized.
	AutoStart bool

	// Angle is the current angle from the baseline rotation.
	Angle float32

	running   bool
	startTime time.Duration
	baseline  mgl32.Vec3
}

// NewRotateBehavior returns a new stopped [RotateBehavior] about the y axis.
func NewRotateBehavior(velocity float32) *RotateBehavior {
	return &RotateBehavior{Velocity: velocity, Axis: mgl32.Vec3{0, 1, 0}}
}

func (rb *RotateBehavior) Kind() Kinds { return KindBehavior }

func (rb *RotateBehavior) Realize(sc *Scene) error {
	if rb.AutoStart {
		rb.StartAt(sc.Clock.Now())
	}
	return nil
}

// IsRunning returns whether the behavior is running.
func (rb *RotateBehavior) IsRunning() bool { return rb.running }

// Start starts rotating at the current time of the scene clock.
func (rb *RotateBehavior) Start() {
	rb.StartAt(rb.now())
}

// StartAt starts rotating at the given time, capturing the current
// rotation of the object as the baseline.
func (rb *RotateBehavior) StartAt(now time.Duration) {
	rb.running = true
	rb.startTime = now
	rb.Angle = 0
	if rb.object != nil {
		rb.baseline = rb.object.Transform().Pose.Rotation
	}
}

// Stop stops rotating, leaving the object at its current rotation.
func (rb *RotateBehavior) Stop() {
	rb.running = false
}

func (rb *RotateBehavior) Update(now time.Duration) {
	if !rb.running || rb.object == nil {
		return
	}
	t := float32((now - rb.startTime).Seconds())
	angle := rb.Velocity * t
	done := false
	if rb.Once {
		if math32.Abs(angle) >= TwoPi {
			angle = math32.Copysign(TwoPi, angle)
			done = true
		}
	} else {
		angle = math32.Mod(angle, TwoPi)
	}
	rb.Angle = angle
	tr := rb.object.Transform()
	p := tr.Pose
	p.Rotation = rb.turn(angle)
	tr.SetPose(p)
	if done {
		rb.Stop()
	}
}

// turn returns the baseline rotation turned by angle about the axis.
// For a coordinate axis, the angle is added to the Euler angle of that
// axis. Other axes compose the turn with the baseline as quaternions.
func (rb *RotateBehavior) turn(angle float32) mgl32.Vec3 {
	axis := rb.Axis
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()
	for i := range 3 {
		if math32.Abs(axis[i]) == 1 {
			return rb.baseline.Add(axis.Mul(angle))
		}
	}
	base := engine.Pose{Rotation: rb.baseline}
	var p engine.Pose
	p.SetQuat(mgl32.QuatRotate(angle, axis).Mul(base.Quat()))
	return p.Rotation
}
