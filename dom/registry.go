// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dom

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cogentcore.org/glam/base/ordmap"
	"cogentcore.org/glam/styles"
	"golang.org/x/net/html"
)

// Scene is one scene block registered from a host document.
type Scene struct {

	// ID is the id of the scene element, or a generated id.
	ID string

	// Host is the html node containing the scene element.
	Host *html.Node

	// Root is the scene element.
	Root *Element

	// Base is the url or directory that the relative model urls of
	// the scene are resolved against; the loader base if empty.
	Base string
}

// KeyFrame is the set of property values an animation
// reaches at a given offset.
type KeyFrame struct {

	// Offset is the normalized position in [0,1].
	Offset float32

	// Values are the property values at Offset.
	Values styles.Declaration
}

// Animation is a named keyframe animation.
type Animation struct {
	ID       string
	Duration time.Duration
	Loop     bool

	// Keys are sorted by offset.
	Keys []KeyFrame
}

// Registry holds everything registered from host documents.
// It is populated by [Parse] and then only read, except for
// additive registration when another document is parsed.
type Registry struct {

	// Scenes are the scenes by id, in registration order.
	// Registering an id again replaces the earlier scene.
	Scenes *ordmap.Map[string, *Scene]

	// Styles is the style sheet, shared by all scenes.
	Styles *styles.Sheet

	// Animations are the animations by id.
	Animations *ordmap.Map[string, *Animation]
}

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Scenes:     ordmap.New[string, *Scene](),
		Styles:     styles.NewSheet(),
		Animations: ordmap.New[string, *Animation](),
	}
}

// AddScene registers the scene, replacing any scene with the same id.
func (r *Registry) AddScene(sc *Scene) {
	r.Scenes.Add(sc.ID, sc)
}

// Scene returns the scene with the given id, or nil.
func (r *Registry) Scene(id string) *Scene {
	return r.Scenes.ValueByKey(id)
}

// AddAnimation registers the animation, replacing any with the same id.
func (r *Registry) AddAnimation(an *Animation) {
	r.Animations.Add(an.ID, an)
}

// Animation returns the animation with the given id, or nil.
func (r *Registry) Animation(id string) *Animation {
	return r.Animations.ValueByKey(id)
}

// Reset removes everything from the registry.
func (r *Registry) Reset() {
	r.Scenes.Reset()
	r.Styles.Reset()
	r.Animations.Reset()
}

// AnimationFromElement reads an animation element:
//
//	<animation id="spin" duration="2s" loop>
//	  <key offset="0" ry="0"></key>
//	  <key offset="100%" ry="360deg"></key>
//	</animation>
//
// Every attribute of a key other than offset is a property value.
func AnimationFromElement(el *Element) (*Animation, error) {
	if el.ID == "" {
		return nil, fmt.Errorf("dom: %v: animation has no id", el)
	}
	an := &Animation{ID: el.ID}
	if v, ok := el.Attr("duration"); ok {
		d, err := styles.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("dom: animation %s: duration: %w", el.ID, err)
		}
		an.Duration = d
	}
	if v, ok := el.Attr("loop"); ok {
		l, err := styles.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("dom: animation %s: loop: %w", el.ID, err)
		}
		an.Loop = l
	}
	for _, k := range el.Children {
		if k.Tag != "key" {
			continue
		}
		kf := KeyFrame{Values: styles.Declaration{}}
		for _, a := range k.Attrs {
			if strings.ToLower(a.Key) != "offset" {
				kf.Values.Set(a.Key, a.Val)
			}
		}
		if v, ok := k.Attr("offset"); ok {
			off, err := parseOffset(v)
			if err != nil {
				return nil, fmt.Errorf("dom: animation %s: key offset: %w", el.ID, err)
			}
			kf.Offset = off
		}
		an.Keys = append(an.Keys, kf)
	}
	sort.SliceStable(an.Keys, func(i, j int) bool { return an.Keys[i].Offset < an.Keys[j].Offset })
	return an, nil
}

func parseOffset(s string) (float32, error) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	f, err := styles.ParseFloat(strings.TrimSuffix(s, "%"))
	if err != nil {
		return 0, err
	}
	if pct {
		f /= 100
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("offset %q is outside [0,1]", s)
	}
	return f, nil
}
