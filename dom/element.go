// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dom provides the markup element tree that scenes are
// built from, with event dispatch onto elements, and the [Registry]
// of scenes, styles and animations found in a host document.
package dom

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/styles"
	"golang.org/x/net/html"
)

// ErrDetached is returned when dispatching an event on an element
// that has been removed from its tree.
var ErrDetached = errors.New("dom: element is detached")

// Element is one markup element.
type Element struct {

	// Tag is the lowercase element name, such as box or camera.
	Tag string

	// ID is the value of the id attribute.
	ID string

	// Class is the value of the class attribute, used verbatim.
	Class string

	// Attrs are all of the attributes in source order.
	Attrs []html.Attribute

	// Text is the trimmed text directly inside the element.
	Text string

	Parent   *Element
	Children []*Element

	// Source is the parsed html node, if the element came from a document.
	Source *html.Node

	// Listeners are the event listeners on this element.
	Listeners events.Listeners

	// Geometry is the geometry of the visual built from this element, if any.
	Geometry engine.Geometry

	// Material is the material of the visual built from this element, if any.
	Material engine.Material

	detached bool
}

// NewElement returns a new element with the given tag and
// attributes, given as alternating keys and values.
func NewElement(tag string, kv ...string) *Element {
	el := &Element{Tag: strings.ToLower(tag)}
	for i := 0; i+1 < len(kv); i += 2 {
		el.SetAttr(kv[i], kv[i+1])
	}
	return el
}

func (el *Element) String() string {
	s := el.Tag
	if el.ID != "" {
		s += "#" + el.ID
	}
	if el.Class != "" {
		s += "." + el.Class
	}
	return s
}

// Attr returns the value of the named attribute. Names are
// compared in normalized form, so radiusSegments matches the
// radiussegments attribute that html parsing produces.
func (el *Element) Attr(name string) (string, bool) {
	nm := styles.NormalizeProperty(name)
	for _, a := range el.Attrs {
		if styles.NormalizeProperty(a.Key) == nm {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr returns whether the named attribute is present.
func (el *Element) HasAttr(name string) bool {
	_, ok := el.Attr(name)
	return ok
}

// SetAttr sets the named attribute, replacing any existing value.
func (el *Element) SetAttr(name, value string) {
	switch strings.ToLower(name) {
	case "id":
		el.ID = value
	case "class":
		el.Class = value
	}
	nm := styles.NormalizeProperty(name)
	for i, a := range el.Attrs {
		if styles.NormalizeProperty(a.Key) == nm {
			el.Attrs[i].Val = value
			return
		}
	}
	el.Attrs = append(el.Attrs, html.Attribute{Key: name, Val: value})
}

func (el *Element) StyleID() string    { return el.ID }
func (el *Element) StyleClass() string { return el.Class }

func (el *Element) InlineStyle() string {
	v, _ := el.Attr("style")
	return v
}

// AppendChild adds kid as the last child, removing it from any prior parent.
func (el *Element) AppendChild(kid *Element) {
	if kid.Parent != nil {
		kid.Parent.removeChild(kid)
	}
	kid.Parent = el
	kid.setDetached(el.detached)
	el.Children = append(el.Children, kid)
}

func (el *Element) removeChild(kid *Element) {
	if i := slices.Index(el.Children, kid); i >= 0 {
		el.Children = slices.Delete(el.Children, i, i+1)
	}
	kid.Parent = nil
}

// Remove removes the element from its parent. The element and its
// descendants are then detached, and events can no longer be
// dispatched on them.
func (el *Element) Remove() {
	if el.Parent != nil {
		el.Parent.removeChild(el)
	}
	el.setDetached(true)
}

func (el *Element) setDetached(d bool) {
	el.WalkDown(func(e *Element) bool {
		e.detached = d
		return true
	})
}

// IsDetached returns whether the element has been removed.
func (el *Element) IsDetached() bool {
	return el.detached
}

// WalkDown calls fn on the element and its descendants in pre-order,
// skipping the children of any element for which fn returns false.
func (el *Element) WalkDown(fn func(e *Element) bool) {
	if !fn(el) {
		return
	}
	for _, kid := range slices.Clone(el.Children) {
		kid.WalkDown(fn)
	}
}

// On adds a listener for the given event type.
func (el *Element) On(typ events.Types, fun func(ev events.Event)) {
	el.Listeners.Add(typ, fun)
}

// Off removes all listeners for the given event type.
func (el *Element) Off(typ events.Types) {
	el.Listeners.Delete(typ)
}

// DispatchEvent dispatches the event on the element, then, if the
// event bubbles, on each of its ancestors until propagation is
// stopped. It returns [ErrDetached] if the element is detached.
func (el *Element) DispatchEvent(ev events.Event) error {
	if el == nil {
		return errors.New("dom: dispatching on a nil element")
	}
	if el.detached {
		return fmt.Errorf("%w: %v", ErrDetached, el)
	}
	b := ev.AsBase()
	b.Target = el
	for cur := el; cur != nil; cur = cur.Parent {
		b.CurrentTarget = cur
		if cur.Listeners.Has(ev.Type()) {
			cur.Listeners.Call(ev)
		}
		if !ev.Bubbles() || ev.IsPropagationStopped() {
			break
		}
	}
	b.CurrentTarget = nil
	return nil
}
