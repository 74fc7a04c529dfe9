// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elements

import (
	"fmt"
	"time"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/styles"
	"cogentcore.org/glam/xyz"
)

// ComponentFactory makes a component from a component element,
// such as rotate, for the object of the enclosing element.
type ComponentFactory func(c *Context, el *dom.Element) (xyz.Component, error)

// Components are the component factories by tag.
var Components = map[string]ComponentFactory{
	"rotate": Rotate,
	"timer":  Timer,
}

// decorate attaches the parts shared by all elements: the transform,
// the animation, the picker of visual elements and the child markup.
func (c *Context) decorate(obj *xyz.Object, p *props, visual bool) error {
	var errs []error
	pose := engine.NewPose()
	posed := false
	for i := range xyz.PoseProperties {
		pp := &xyz.PoseProperties[i]
		s, ok := p.get(pp.Name)
		if !ok {
			continue
		}
		v, err := pp.Parse(s)
		if err != nil {
			errs = append(errs, p.invalid(pp.Name, s, err))
			continue
		}
		*pp.Field(&pose) = v
		posed = true
	}
	if posed {
		errs = append(errs, obj.AddComponent(xyz.NewTransform(pose)))
	}
	if id, ok := p.get("animation"); ok && id != "" {
		errs = append(errs, c.animate(obj, p, id))
	}
	if visual {
		pick, err := p.Bool("pickable", true)
		errs = append(errs, err)
		if pick {
			errs = append(errs, obj.AddComponent(xyz.NewPicker()))
		}
	}
	errs = append(errs, c.children(obj, p.el))
	return errors.Join(errs...)
}

// animate attaches a timer and a keyframe animator for the named animation.
func (c *Context) animate(obj *xyz.Object, p *props, id string) error {
	var an *dom.Animation
	if c.Registry != nil {
		an = c.Registry.Animation(id)
	}
	if an == nil {
		return p.invalid("animation", id, errors.New("no such animation"))
	}
	tm := xyz.NewTimer(an.Duration, an.Loop)
	tm.AutoStart = true
	return errors.Join(obj.AddComponent(tm), obj.AddComponent(xyz.NewAnimator(an, tm)))
}

// children builds the child markup of el under obj.
func (c *Context) children(obj *xyz.Object, el *dom.Element) error {
	var errs []error
	for _, kid := range el.Children {
		if skipTags[kid.Tag] {
			continue
		}
		if cf, ok := Components[kid.Tag]; ok {
			cm, err := cf(c, kid)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			errs = append(errs, obj.AddComponent(cm))
			continue
		}
		ko, err := Build(c, kid)
		errs = append(errs, err)
		if ko != nil {
			errs = append(errs, obj.AddChild(ko))
		}
	}
	return errors.Join(errs...)
}

// Group makes an object with no components of its own, holding
// the objects of its child markup.
func Group(c *Context, el *dom.Element) (*xyz.Object, error) {
	obj := newObject(el)
	return obj, c.decorate(obj, c.props(el), false)
}

// Camera makes a camera: fov (degrees), near, far and active.
func Camera(c *Context, el *dom.Element) (*xyz.Object, error) {
	p := c.props(el)
	var cp engine.CameraParams
	cp.Defaults()
	var errs []error
	var err error
	cp.FOV, err = p.Float("fov", cp.FOV, "gt=0,lt=180")
	errs = append(errs, err)
	cp.Near, err = p.Float("near", cp.Near, "gt=0")
	errs = append(errs, err)
	cp.Far, err = p.Float("far", cp.Far, "gt=0")
	errs = append(errs, err)
	cp.Active, err = p.Bool("active", false)
	errs = append(errs, err)
	if cp.Far <= cp.Near {
		errs = append(errs, p.invalid("far", fmt.Sprint(cp.Far), fmt.Errorf("must be beyond near %g", cp.Near)))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	obj := newObject(el)
	if err := obj.AddComponent(xyz.NewCamera(cp)); err != nil {
		return nil, err
	}
	return obj, c.decorate(obj, p, false)
}

// lightFactory returns the factory for lights of the given kind:
// color, intensity, distance and decay.
func lightFactory(kind engine.LightKinds) Factory {
	return func(c *Context, el *dom.Element) (*xyz.Object, error) {
		p := c.props(el)
		var lp engine.LightParams
		lp.Defaults()
		var errs []error
		if s, ok := p.get("color"); ok {
			clr, err := styles.ParseColor(s)
			if err != nil {
				errs = append(errs, p.invalid("color", s, err))
			}
			lp.Color = clr
		}
		var err error
		lp.Intensity, err = p.Float("intensity", lp.Intensity, "gte=0")
		errs = append(errs, err)
		if kind == engine.PointLight {
			lp.Distance, err = p.Float("distance", lp.Distance, "gte=0")
			errs = append(errs, err)
			lp.Decay, err = p.Float("decay", lp.Decay, "gte=0")
			errs = append(errs, err)
		}
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}
		obj := newObject(el)
		if err := obj.AddComponent(xyz.NewLight(kind, lp)); err != nil {
			return nil, err
		}
		return obj, c.decorate(obj, p, false)
	}
}

// Import makes an object for the model at src, loaded asynchronously.
// The model is attached as a [xyz.SceneVisual] when it arrives, and the
// load events are also dispatched on the element. Destroying the object
// cancels the load, so no events arrive after that.
func Import(c *Context, el *dom.Element) (*xyz.Object, error) {
	p := c.props(el)
	src, _ := p.get("src")
	if src == "" {
		return nil, p.invalid("src", src, errors.New("import needs a model url"))
	}
	if c.Loader == nil {
		return nil, fmt.Errorf("element %s: no loader for import of %s", name(el), src)
	}
	obj := newObject(el)
	task := c.Loader.LoadFrom(c.Ctx, c.Base, src)
	obj.OnDestroy(task.Cancel)
	task.On(events.Progress, obj.Dispatch)
	task.On(events.LoadError, obj.Dispatch)
	task.On(events.Loaded, func(ev events.Event) {
		errors.Log(obj.AddComponent(xyz.NewSceneVisual(task.Model)))
		obj.Dispatch(ev)
	})
	return obj, c.decorate(obj, p, true)
}

// Rotate makes a [xyz.RotateBehavior]: velocity (an angle per second,
// one turn by default), axis, once and autostart.
func Rotate(c *Context, el *dom.Element) (xyz.Component, error) {
	p := c.props(el)
	v, err := p.Angle("velocity", xyz.TwoPi)
	errs := []error{err}
	rb := xyz.NewRotateBehavior(v)
	if s, ok := p.get("axis"); ok {
		ax, err := styles.ParseVec3(s)
		if err == nil && ax.Len() == 0 {
			err = errors.New("axis must not be zero")
		}
		if err != nil {
			errs = append(errs, p.invalid("axis", s, err))
		} else {
			rb.Axis = ax
		}
	}
	rb.Once, err = p.Bool("once", false)
	errs = append(errs, err)
	rb.AutoStart, err = p.Bool("autostart", false)
	errs = append(errs, err)
	return rb, errors.Join(errs...)
}

// Timer makes a [xyz.Timer]: duration, loop and autostart.
// Its events are dispatched on the element of the enclosing object.
func Timer(c *Context, el *dom.Element) (xyz.Component, error) {
	p := c.props(el)
	d := time.Second
	var errs []error
	if s, ok := p.get("duration"); ok {
		v, err := styles.ParseDuration(s)
		if err == nil && v < 0 {
			err = errors.New("duration must not be negative")
		}
		if err != nil {
			errs = append(errs, p.invalid("duration", s, err))
		} else {
			d = v
		}
	}
	loop, err := p.Bool("loop", false)
	errs = append(errs, err)
	tm := xyz.NewTimer(d, loop)
	tm.AutoStart, err = p.Bool("autostart", false)
	errs = append(errs, err)
	return tm, errors.Join(errs...)
}
