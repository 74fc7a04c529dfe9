// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"
	"log/slog"

	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/styles"
)

// PoseProperty is one animatable component of a pose.
type PoseProperty struct {

	// Name is the property name, such as x or ry.
	Name string

	// Angle is whether values are parsed as angles.
	Angle bool

	get func(p *engine.Pose) *float32
}

// PoseProperties are the transform properties that can be set from
// markup and animated: position, rotation and scale per axis.
var PoseProperties = []PoseProperty{
	{Name: "x", get: func(p *engine.Pose) *float32 { return &p.Position[0] }},
	{Name: "y", get: func(p *engine.Pose) *float32 { return &p.Position[1] }},
	{Name: "z", get: func(p *engine.Pose) *float32 { return &p.Position[2] }},
	{Name: "rx", Angle: true, get: func(p *engine.Pose) *float32 { return &p.Rotation[0] }},
	{Name: "ry", Angle: true, get: func(p *engine.Pose) *float32 { return &p.Rotation[1] }},
	{Name: "rz", Angle: true, get: func(p *engine.Pose) *float32 { return &p.Rotation[2] }},
	{Name: "sx", get: func(p *engine.Pose) *float32 { return &p.Scale[0] }},
	{Name: "sy", get: func(p *engine.Pose) *float32 { return &p.Scale[1] }},
	{Name: "sz", get: func(p *engine.Pose) *float32 { return &p.Scale[2] }},
}

// Field returns a pointer to the property in the pose.
func (pp *PoseProperty) Field(p *engine.Pose) *float32 {
	return pp.get(p)
}

// Parse parses a raw value of the property.
func (pp *PoseProperty) Parse(s string) (float32, error) {
	if pp.Angle {
		return styles.ParseAngle(s)
	}
	return styles.ParseFloat(s)
}

// track is the parsed keyframes of one property.
type track struct {
	prop    *PoseProperty
	offsets []float32
	values  []float32
}

// at returns the value at phase f, linearly interpolated between
// the surrounding keys and held constant outside of them.
func (tr *track) at(f float32) float32 {
	n := len(tr.offsets)
	if f <= tr.offsets[0] {
		return tr.values[0]
	}
	if f >= tr.offsets[n-1] {
		return tr.values[n-1]
	}
	for i := 1; i < n; i++ {
		if f > tr.offsets[i] {
			continue
		}
		o0, o1 := tr.offsets[i-1], tr.offsets[i]
		if o1 == o0 {
			return tr.values[i]
		}
		t := (f - o0) / (o1 - o0)
		return tr.values[i-1] + t*(tr.values[i]-tr.values[i-1])
	}
	return tr.values[n-1]
}

// Animator is a behavior that drives the transform of its object
// through the keyframes of an animation, at the phase reported by
// the [events.Fraction] events of a [Timer].
type Animator struct {
	ComponentBase

	// Animation is the keyframe animation.
	Animation *dom.Animation

	// Timer is the timer providing the phase.
	Timer *Timer

	tracks []*track
}

// NewAnimator returns a new [Animator] for the animation, driven by tm.
func NewAnimator(an *dom.Animation, tm *Timer) *Animator {
	return &Animator{Animation: an, Timer: tm}
}

func (an *Animator) Kind() Kinds { return KindBehavior }

func (an *Animator) Realize(sc *Scene) error {
	if an.Animation == nil || an.Timer == nil {
		return errors.New("animator needs an animation and a timer")
	}
	if err := an.compile(); err != nil {
		return err
	}
	an.Timer.On(events.Fraction, func(ev events.Event) {
		if an.object.destroyed {
			return
		}
		an.Apply(ev.(*events.Tick).Fraction)
	})
	an.Timer.On(events.CycleTime, func(ev events.Event) {
		if !an.Timer.IsRunning() && !an.object.destroyed {
			an.Apply(1)
		}
	})
	return nil
}

// compile parses the keyframe values into per-property tracks.
func (an *Animator) compile() error {
	an.tracks = nil
	var errs []error
	for i := range PoseProperties {
		pp := &PoseProperties[i]
		tr := &track{prop: pp}
		for _, k := range an.Animation.Keys {
			raw, ok := k.Values.Get(pp.Name)
			if !ok {
				continue
			}
			v, err := pp.Parse(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("animation %s: %s: %w", an.Animation.ID, pp.Name, err))
				continue
			}
			tr.offsets = append(tr.offsets, k.Offset)
			tr.values = append(tr.values, v)
		}
		if len(tr.offsets) > 0 {
			an.tracks = append(an.tracks, tr)
		}
	}
	return errors.Join(errs...)
}

// Apply sets the animated properties of the transform to their
// values at the given phase.
func (an *Animator) Apply(fraction float32) {
	if len(an.tracks) == 0 {
		return
	}
	tf := an.object.Transform()
	p := tf.Pose
	for _, tr := range an.tracks {
		*tr.prop.Field(&p) = tr.at(fraction)
	}
	tf.SetPose(p)
	slog.Debug("animated", "object", an.object.String(), "fraction", fraction, "position", p.Position)
}
