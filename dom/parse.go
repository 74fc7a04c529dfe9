// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dom

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	selcss "github.com/ericchiang/css"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// SceneTag is the tag of the element that marks a scene block.
const SceneTag = "glam"

// Document is a parsed host document.
type Document struct {

	// Root is the root html node.
	Root *html.Node

	// Scenes are the scenes found in this document, in order.
	Scenes []*Scene

	elements map[*html.Node]*Element
}

// Parse parses the host document from r and registers every scene
// block, style block and animation it contains in reg. Scene blocks
// are keyed by id, so parsing the same document twice replaces its
// scenes, while its style rules are appended again.
//
// Markup elements must be closed explicitly: html parsing ignores
// the self-closing flag on non-void elements.
func Parse(r io.Reader, reg *Registry) (*Document, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parsing html: %w", err)
	}
	return ParseNode(n, reg)
}

// ParseString is a helper for [Parse] on a string.
func ParseString(s string, reg *Registry) (*Document, error) {
	return Parse(strings.NewReader(s), reg)
}

// ParseNode registers the contents of an already parsed html tree.
func ParseNode(root *html.Node, reg *Registry) (*Document, error) {
	doc := &Document{Root: root, elements: map[*html.Node]*Element{}}
	var errs []error
	var walk func(n *html.Node, scene *Element)
	walk = func(n *html.Node, scene *Element) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style":
				if err := reg.Styles.ParseCSS(nodeText(n)); err != nil {
					errs = append(errs, err)
				}
			case "animation":
				an, err := AnimationFromElement(doc.convert(n))
				if err != nil {
					errs = append(errs, err)
				} else {
					reg.AddAnimation(an)
				}
			case SceneTag:
				if scene == nil {
					scene = doc.convert(n)
					sc := &Scene{ID: scene.ID, Host: n.Parent, Root: scene}
					if sc.ID == "" {
						sc.ID = uuid.NewString()
					}
					reg.AddScene(sc)
					doc.Scenes = append(doc.Scenes, sc)
					slog.Debug("registered scene", "id", sc.ID, "elements", len(scene.Children))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, scene)
		}
	}
	walk(root, nil)
	return doc, errors.Join(errs...)
}

// convert returns the element tree for the html element n,
// converting it on first use.
func (doc *Document) convert(n *html.Node) *Element {
	if el, ok := doc.elements[n]; ok {
		return el
	}
	el := &Element{Tag: n.Data, Source: n}
	for _, a := range n.Attr {
		el.SetAttr(a.Key, a.Val)
	}
	var text []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el.AppendChild(doc.convert(c))
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" {
				text = append(text, t)
			}
		}
	}
	el.Text = strings.Join(text, " ")
	doc.elements[n] = el
	return el
}

// nodeText returns the concatenated text children of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// Element returns the element converted from the given html node, or nil.
func (doc *Document) Element(n *html.Node) *Element {
	return doc.elements[n]
}

// Query returns the elements inside scene blocks that match the
// given CSS selector, in document order.
func (doc *Document) Query(selector string) ([]*Element, error) {
	sel, err := selcss.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid selector %q: %w", selector, err)
	}
	var res []*Element
	for _, n := range sel.Select(doc.Root) {
		if el, ok := doc.elements[n]; ok {
			res = append(res, el)
		}
	}
	return res, nil
}
