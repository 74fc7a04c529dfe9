// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package styles maps markup elements to style declarations
// registered under exact selector strings, and coerces the raw
// declaration values into typed values.
package styles

import (
	"maps"
	"strings"
)

// Declaration maps normalized property names to raw values.
// Use [Declaration.Get] and [Declaration.Set] so that names are normalized.
type Declaration map[string]string

// NormalizeProperty returns the lookup form of a property name:
// lower case, with '-' and '_' removed. This lets radiusSegments,
// radius-segments and radiussegments (as lowercased by HTML) match.
func NormalizeProperty(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// Set sets the given property to the given raw value.
func (d Declaration) Set(prop, value string) {
	d[NormalizeProperty(prop)] = strings.TrimSpace(value)
}

// Get returns the raw value of the given property.
func (d Declaration) Get(prop string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d[NormalizeProperty(prop)]
	return v, ok
}

// Clone returns a copy of the declaration.
func (d Declaration) Clone() Declaration {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Overlay returns a new declaration with the properties of o
// set on top of those of d. Either may be nil.
func (d Declaration) Overlay(o Declaration) Declaration {
	if d == nil && o == nil {
		return nil
	}
	res := make(Declaration, len(d)+len(o))
	maps.Copy(res, d)
	maps.Copy(res, o)
	return res
}

// Rule is one registration of a declaration under a selector.
type Rule struct {

	// Selector is the exact selector string, such as #id or .class.
	Selector string

	// Declaration holds the property values.
	Declaration Declaration
}

// Sheet is a direct selector to declaration dictionary.
// Rules are kept in registration order and are never deduplicated;
// a lookup returns the last declaration registered for a selector.
// There is no specificity, combination or inheritance.
type Sheet struct {

	// Rules are all of the registered rules, in order.
	Rules []Rule

	// index maps a selector to the index of its last rule.
	index map[string]int
}

// NewSheet returns a new empty [Sheet].
func NewSheet() *Sheet {
	return &Sheet{index: map[string]int{}}
}

// Register adds the declaration for the exact selector string.
// It overrides any earlier registration for the same selector.
func (s *Sheet) Register(selector string, decl Declaration) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	selector = strings.TrimSpace(selector)
	s.index[selector] = len(s.Rules)
	s.Rules = append(s.Rules, Rule{Selector: selector, Declaration: decl})
}

// Lookup returns the last declaration registered for the exact selector.
func (s *Sheet) Lookup(selector string) (Declaration, bool) {
	if s == nil {
		return nil, false
	}
	idx, ok := s.index[selector]
	if !ok {
		return nil, false
	}
	return s.Rules[idx].Declaration, true
}

// Len returns the number of registered rules.
func (s *Sheet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rules)
}

// Selectors returns the distinct selectors in order of first registration.
func (s *Sheet) Selectors() []string {
	var sels []string
	seen := map[string]bool{}
	for _, r := range s.Rules {
		if seen[r.Selector] {
			continue
		}
		seen[r.Selector] = true
		sels = append(sels, r.Selector)
	}
	return sels
}

// Reset removes all rules.
func (s *Sheet) Reset() {
	s.Rules = nil
	s.index = map[string]int{}
}

// Selectable is an element that can be matched by id and class selectors.
type Selectable interface {

	// StyleID returns the id of the element, or "".
	StyleID() string

	// StyleClass returns the class attribute of the element, or "".
	StyleClass() string
}

// InlineStyler is a [Selectable] that can also carry an inline
// style attribute, which is applied after the sheet declarations.
type InlineStyler interface {
	InlineStyle() string
}

// Resolve returns the declaration registered for "#"+id if the element
// has an id, else the one for "."+class if the element has a class,
// else nil. The class is not consulted for an element with an id; use
// [Sheet.Merged] to combine both. The class attribute is used verbatim.
func (s *Sheet) Resolve(el Selectable) Declaration {
	if id := el.StyleID(); id != "" {
		d, _ := s.Lookup("#" + id)
		return d
	}
	if cl := strings.TrimSpace(el.StyleClass()); cl != "" {
		if d, ok := s.Lookup("." + cl); ok {
			return d
		}
	}
	return nil
}

// Merged returns the combined declaration for the element: the id
// declaration, then the class declaration on top of it (so class wins
// when both define a property), then any inline style on top of both.
func (s *Sheet) Merged(el Selectable) Declaration {
	var res Declaration
	if id := el.StyleID(); id != "" {
		if d, ok := s.Lookup("#" + id); ok {
			res = res.Overlay(d)
		}
	}
	if cl := strings.TrimSpace(el.StyleClass()); cl != "" {
		if d, ok := s.Lookup("." + cl); ok {
			res = res.Overlay(d)
		}
	}
	if is, ok := el.(InlineStyler); ok {
		if d := ParseInline(is.InlineStyle()); d != nil {
			res = res.Overlay(d)
		}
	}
	return res
}
