// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elements builds scene objects from markup elements.
// Each tag has a [Factory] that reads the attributes of its element,
// lets the resolved style override them, and attaches the
// resulting components to a new [xyz.Object].
package elements

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/loader"
	"cogentcore.org/glam/styles"
	"cogentcore.org/glam/xyz"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/go-playground/validator/v10"
)

// ErrUnknownTag is returned for an element with no [Factory].
var ErrUnknownTag = errors.New("no factory for element")

// ValidationError is a property value that could not be used
// to construct an element.
type ValidationError struct {

	// Element is the id of the element, or its tag if it has no id.
	Element string

	// Property is the property name.
	Property string

	// Value is the raw value.
	Value string

	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("element %s: invalid %s %q: %v", e.Element, e.Property, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Factory makes the object for an element. It may return an object
// together with an error when only part of the element failed.
type Factory func(c *Context, el *dom.Element) (*xyz.Object, error)

// Factories are the built in factories by tag.
var Factories map[string]Factory

func init() {
	Factories = map[string]Factory{
		"camera":            Camera,
		"ambient-light":     lightFactory(engine.AmbientLight),
		"point-light":       lightFactory(engine.PointLight),
		"directional-light": lightFactory(engine.DirectionalLight),
		"group":             Group,
		"scene":             Group,
		dom.SceneTag:        Group,
		"import":            Import,
	}
	for i := range Primitives {
		pr := &Primitives[i]
		Factories[pr.Tag] = pr.Construct
	}
}

// skipTags are elements that are read elsewhere and make no object.
var skipTags = map[string]bool{
	"style":     true,
	"animation": true,
	"key":       true,
}

// validate checks property values against the rules of the
// attribute tables.
var validate = validator.New()

// Context is the state shared by the factories while building a scene.
type Context struct {

	// Registry supplies the style sheet and the animations.
	Registry *dom.Registry

	// Engine makes the geometry and materials.
	Engine engine.Engine

	// Loader loads the models of import elements.
	Loader *loader.Loader

	// Ctx is the context of model loads.
	Ctx context.Context

	// Handlers override the factory for their tags.
	Handlers map[string]Factory

	// Base resolves relative model urls; the loader base if empty.
	Base string
}

// NewContext returns a new [Context].
func NewContext(reg *dom.Registry, eng engine.Engine, ld *loader.Loader) *Context {
	return &Context{
		Registry: reg,
		Engine:   eng,
		Loader:   ld,
		Ctx:      context.Background(),
		Handlers: map[string]Factory{},
	}
}

// ForScene returns a copy of the context for building the given scene.
func (c *Context) ForScene(sc *dom.Scene) *Context {
	cc := *c
	cc.Base = sc.Base
	return &cc
}

// Factory returns the factory for the tag, or nil.
func (c *Context) Factory(tag string) Factory {
	if f, ok := c.Handlers[tag]; ok {
		return f
	}
	return Factories[tag]
}

// Build builds the object for the element and its child markup.
// Failures are isolated: an element that fails is left out and
// logged, and the rest of the tree is still built. All failures
// are returned joined.
func Build(c *Context, el *dom.Element) (*xyz.Object, error) {
	f := c.Factory(el.Tag)
	if f == nil {
		err := fmt.Errorf("%w: %s", ErrUnknownTag, el.Tag)
		if s := c.suggest(el.Tag); s != "" {
			err = fmt.Errorf("%w (did you mean %q?)", err, s)
		}
		slog.Warn("skipping element", "element", name(el), "err", err)
		return nil, err
	}
	obj, err := f(c, el)
	if err != nil {
		slog.Warn("element failed", "element", name(el), "err", err)
	}
	return obj, err
}

// suggest returns the known tag most similar to the given unknown
// tag, or "" if none is similar enough.
func (c *Context) suggest(tag string) string {
	tags := slices.Sorted(maps.Keys(Factories))
	tags = append(tags, slices.Sorted(maps.Keys(c.Handlers))...)
	lev := metrics.NewLevenshtein()
	best, bestSim := "", 0.6
	for _, t := range tags {
		if sim := strutil.Similarity(tag, t, lev); sim >= bestSim {
			best, bestSim = t, sim
		}
	}
	return best
}

// name returns the id of the element, or its tag.
func name(el *dom.Element) string {
	if el.ID != "" {
		return el.ID
	}
	return el.Tag
}

// props looks up property values for one element: the resolved
// style overrides the attribute, which overrides the default.
type props struct {
	el   *dom.Element
	decl styles.Declaration
}

func (c *Context) props(el *dom.Element) *props {
	var decl styles.Declaration
	if c.Registry != nil {
		decl = c.Registry.Styles.Merged(el)
	}
	return &props{el: el, decl: decl}
}

// get returns the raw value of the property.
func (p *props) get(prop string) (string, bool) {
	if v, ok := p.decl.Get(prop); ok {
		return v, true
	}
	return p.el.Attr(prop)
}

func (p *props) invalid(prop, value string, err error) error {
	return &ValidationError{Element: name(p.el), Property: prop, Value: value, Err: err}
}

// check validates v against the validator rule, if any.
func (p *props) check(prop, value string, v any, rule string) error {
	if rule == "" {
		return nil
	}
	if err := validate.Var(v, rule); err != nil {
		return p.invalid(prop, value, err)
	}
	return nil
}

func (p *props) Float(prop string, def float32, rule string) (float32, error) {
	s, ok := p.get(prop)
	if !ok {
		return def, nil
	}
	v, err := styles.ParseFloat(s)
	if err != nil {
		return def, p.invalid(prop, s, err)
	}
	return v, p.check(prop, s, v, rule)
}

func (p *props) Int(prop string, def int, rule string) (int, error) {
	s, ok := p.get(prop)
	if !ok {
		return def, nil
	}
	v, err := styles.ParseInt(s)
	if err != nil {
		return def, p.invalid(prop, s, err)
	}
	return v, p.check(prop, s, v, rule)
}

func (p *props) Angle(prop string, def float32) (float32, error) {
	s, ok := p.get(prop)
	if !ok {
		return def, nil
	}
	v, err := styles.ParseAngle(s)
	if err != nil {
		return def, p.invalid(prop, s, err)
	}
	return v, nil
}

func (p *props) Bool(prop string, def bool) (bool, error) {
	s, ok := p.get(prop)
	if !ok {
		return def, nil
	}
	v, err := styles.ParseBool(s)
	if err != nil {
		return def, p.invalid(prop, s, err)
	}
	return v, nil
}
