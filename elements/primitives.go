// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elements

import (
	"fmt"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/styles"
	"cogentcore.org/glam/xyz"
)

// ParamKinds are the value kinds of primitive parameters.
type ParamKinds int32

const (
	// FloatParam is a plain number.
	FloatParam ParamKinds = iota

	// IntParam is an integer count, such as a number of segments.
	IntParam

	// AngleParam is an angle with an optional unit, in radians.
	AngleParam
)

// Param is one geometry parameter of a primitive.
type Param struct {

	// Name is the property name, as used in attributes and styles.
	Name string

	// Default is used when neither the attribute nor the style is set.
	Default float32

	Kind ParamKinds

	// Rule is the validator rule the value must satisfy.
	Rule string
}

// Primitive is the attribute table of one geometry element.
type Primitive struct {
	Tag      string
	Geometry engine.GeometryKind
	Params   []Param
}

func size(name string) Param {
	return Param{Name: name, Default: 2, Rule: "gt=0"}
}

func segments(name string) Param {
	return Param{Name: name, Default: 32, Kind: IntParam, Rule: "min=3,max=1024"}
}

// Primitives are the geometry elements.
var Primitives = []Primitive{
	{Tag: "box", Geometry: engine.Box, Params: []Param{size("width"), size("height"), size("depth")}},
	{Tag: "sphere", Geometry: engine.Sphere, Params: []Param{size("radius"), segments("widthSegments"), segments("heightSegments")}},
	{Tag: "cylinder", Geometry: engine.Cylinder, Params: []Param{size("radius"), size("height"), segments("radiusSegments")}},
	{Tag: "cone", Geometry: engine.Cone, Params: []Param{size("radius"), size("height"), segments("radiusSegments")}},
	{Tag: "circle", Geometry: engine.Circle, Params: []Param{size("radius"), segments("segments")}},
	{Tag: "rect", Geometry: engine.Rect, Params: []Param{size("width"), size("height")}},
	{Tag: "arc", Geometry: engine.Arc, Params: []Param{
		size("radius"),
		{Name: "startAngle", Kind: AngleParam},
		{Name: "endAngle", Default: xyz.TwoPi, Kind: AngleParam},
		segments("segments"),
	}},
	{Tag: "line", Geometry: engine.Line},
}

// PrimitiveFor returns the primitive for the tag, or nil.
func PrimitiveFor(tag string) *Primitive {
	for i := range Primitives {
		if Primitives[i].Tag == tag {
			return &Primitives[i]
		}
	}
	return nil
}

// params reads the geometry parameters of the element.
func (pr *Primitive) params(p *props) (engine.Params, error) {
	gp := engine.Params{Values: map[string]float32{}}
	var errs []error
	for _, pm := range pr.Params {
		var v float32
		var err error
		switch pm.Kind {
		case IntParam:
			var n int
			n, err = p.Int(pm.Name, int(pm.Default), pm.Rule)
			v = float32(n)
		case AngleParam:
			v, err = p.Angle(pm.Name, pm.Default)
		default:
			v, err = p.Float(pm.Name, pm.Default, pm.Rule)
		}
		errs = append(errs, err)
		gp.Values[pm.Name] = v
	}
	if pr.Geometry == engine.Line {
		s, _ := p.get("vertices")
		pts, err := styles.ParsePoints(s)
		switch {
		case err != nil:
			errs = append(errs, p.invalid("vertices", s, err))
		case len(pts) < 2:
			errs = append(errs, p.invalid("vertices", s, errors.New("a line needs at least 2 points")))
		}
		gp.Points = pts
	}
	return gp, errors.Join(errs...)
}

// Construct makes the object for an element of the primitive:
// the geometry parameters are read from the attributes and the
// style, a mesh visual is attached, and then the transform,
// animation, picking and child markup of the element.
func (pr *Primitive) Construct(c *Context, el *dom.Element) (*xyz.Object, error) {
	p := c.props(el)
	gp, err := pr.params(p)
	if err != nil {
		return nil, err
	}
	mp, err := materialParams(p)
	if err != nil {
		return nil, err
	}
	geom, err := c.Engine.NewGeometry(pr.Geometry, gp)
	if err != nil {
		return nil, fmt.Errorf("element %s: %w", name(el), err)
	}
	mat, err := c.Engine.NewMaterial(mp)
	if err != nil {
		return nil, err
	}
	obj := newObject(el)
	if err := obj.AddComponent(xyz.NewVisual(geom, mat)); err != nil {
		return nil, err
	}
	el.Geometry, el.Material = geom, mat
	return obj, c.decorate(obj, p, true)
}

func newObject(el *dom.Element) *xyz.Object {
	obj := xyz.NewObject(name(el))
	obj.Element = el
	return obj
}

// materialParams reads the material properties.
func materialParams(p *props) (engine.MaterialParams, error) {
	var mp engine.MaterialParams
	mp.Defaults()
	var errs []error
	if s, ok := p.get("color"); ok {
		c, err := styles.ParseColor(s)
		if err != nil {
			errs = append(errs, p.invalid("color", s, err))
		}
		mp.Color = c
	}
	if s, ok := p.get("emissive"); ok {
		c, err := styles.ParseColor(s)
		if err != nil {
			errs = append(errs, p.invalid("emissive", s, err))
		}
		mp.Emissive = c
	}
	var err error
	mp.Opacity, err = p.Float("opacity", mp.Opacity, "gte=0,lte=1")
	errs = append(errs, err)
	mp.Shiny, err = p.Float("shiny", mp.Shiny, "gte=0")
	errs = append(errs, err)
	mp.Reflective, err = p.Float("reflective", mp.Reflective, "gte=0")
	errs = append(errs, err)
	mp.Bright, err = p.Float("bright", mp.Bright, "gte=0")
	errs = append(errs, err)
	mp.Wireframe, err = p.Bool("wireframe", false)
	errs = append(errs, err)
	mp.EnvMap, _ = p.get("envmap")
	if s, ok := p.get("transition"); ok {
		d, err := styles.ParseDuration(s)
		if err != nil {
			errs = append(errs, p.invalid("transition", s, err))
		}
		mp.Transition = d
	}
	return mp, errors.Join(errs...)
}
