// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package styles

import (
	"fmt"
	"strings"

	"cogentcore.org/glam/base/errors"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// ParseCSS parses the given style sheet text and registers a
// declaration for every selector of every rule, in source order.
// At-rules are not supported and are skipped.
func (s *Sheet) ParseCSS(text string) error {
	ss, err := parser.Parse(text)
	if err != nil {
		return fmt.Errorf("styles: parsing style sheet: %w", err)
	}
	for _, r := range ss.Rules {
		if r.Kind == css.AtRule {
			continue
		}
		if len(r.Declarations) == 0 {
			continue
		}
		for _, sel := range r.Selectors {
			s.Register(sel, FromDeclarations(r.Declarations))
		}
	}
	return nil
}

// FromDeclarations converts parsed css declarations into a [Declaration].
func FromDeclarations(decls []*css.Declaration) Declaration {
	d := make(Declaration, len(decls))
	for _, de := range decls {
		d.Set(de.Property, de.Value)
	}
	return d
}

// ParseInline parses the contents of an inline style attribute.
// Errors are logged and result in a nil declaration.
func ParseInline(style string) Declaration {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil
	}
	// the parser is strict about semicolons, but they
	// aren't needed in normal inline styles in HTML
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if errors.Log(err) != nil {
		return nil
	}
	return FromDeclarations(decls)
}
