// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package glam renders 3D scenes described by markup embedded in
// HTML documents. A document contains glam scene blocks made of
// primitives such as box, sphere and camera, style blocks with
// CSS rules for them, and keyframe animations:
//
//	<style>#spinner { color: orange; radius-segments: 64 }</style>
//	<glam id="main">
//	  <camera z="10" active></camera>
//	  <point-light y="5"></point-light>
//	  <cylinder id="spinner" height="3">
//	    <rotate velocity="90deg" autostart></rotate>
//	  </cylinder>
//	</glam>
//
// A [Runtime] parses documents, then makes one [viewer.Viewer]
// per scene and runs them against an [engine.Engine].
package glam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/config"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/elements"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/loader"
	"cogentcore.org/glam/viewer"
	"cogentcore.org/glam/xyz"
)

// Runtime owns the registry of parsed documents and the viewers
// of their scenes.
type Runtime struct {

	// Config is the runtime configuration.
	Config *config.Config

	// Registry holds the scenes, styles and animations of all documents.
	Registry *dom.Registry

	// Engine renders the scenes.
	Engine engine.Engine

	// Loader loads imported models.
	Loader *loader.Loader

	// Context is the element factory context shared by the viewers.
	Context *elements.Context

	// Documents are the parsed documents, in order.
	Documents []*dom.Document

	// Viewers are the viewers made by [Runtime.CreateViewers].
	Viewers []*viewer.Viewer

	// Clock is the time source of new viewers; a [xyz.SystemClock] if nil.
	Clock xyz.Clock
}

// New returns a new runtime rendering with eng. The runtime keeps a
// copy of cfg; a nil cfg uses the default configuration.
func New(eng engine.Engine, cfg *config.Config) *Runtime {
	if cfg == nil {
		cfg = config.New()
	} else {
		cfg = cfg.Clone()
	}
	rt := &Runtime{Config: cfg, Registry: dom.NewRegistry(), Engine: eng}
	rt.Loader = loader.New(cfg.BaseURL, time.Duration(cfg.LoadTimeout), cfg.MaxLoads)
	rt.Context = elements.NewContext(rt.Registry, eng, rt.Loader)
	return rt
}

// ParseDocument parses a host document and registers its scenes,
// styles and animations. Scenes with the id of an already registered
// scene replace it.
func (rt *Runtime) ParseDocument(r io.Reader) (*dom.Document, error) {
	doc, err := dom.Parse(r, rt.Registry)
	if doc != nil {
		rt.Documents = append(rt.Documents, doc)
		slog.Info("parsed document", "scenes", len(doc.Scenes), "styles", rt.Registry.Styles.Len())
	}
	return doc, err
}

// ParseFile parses the host document in the file. Model urls are
// relative to the directory of the file unless the config sets a base.
func (rt *Runtime) ParseFile(file string) (*dom.Document, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := rt.ParseDocument(f)
	if doc != nil && rt.Config.BaseURL == "" {
		dir := filepath.Dir(errors.Log1(filepath.Abs(file)))
		for _, sc := range doc.Scenes {
			sc.Base = dir
		}
	}
	if err != nil {
		return doc, fmt.Errorf("%s: %w", file, err)
	}
	return doc, nil
}

// CreateViewers makes and starts one viewer per registered scene,
// replacing any viewers made before. Scenes that fail to build in
// part are still shown; the errors are returned joined.
func (rt *Runtime) CreateViewers() ([]*viewer.Viewer, error) {
	rt.closeViewers()
	var errs []error
	for _, sc := range rt.Registry.Scenes.All() {
		v := viewer.New(sc, rt.Context)
		v.FPS = rt.Config.FPS
		v.Clock = rt.Clock
		if err := v.Start(); err != nil {
			errs = append(errs, fmt.Errorf("scene %s: %w", sc.ID, err))
		}
		rt.Viewers = append(rt.Viewers, v)
	}
	return rt.Viewers, errors.Join(errs...)
}

// Run runs the viewers on the calling goroutine until ctx is done,
// or for the configured number of frames.
func (rt *Runtime) Run(ctx context.Context) error {
	if len(rt.Viewers) == 0 {
		return errors.New("glam: no viewers to run")
	}
	return viewer.Loop(ctx, rt.Config.FPS, rt.Config.Frames, rt.Viewers...)
}

func (rt *Runtime) closeViewers() {
	for _, v := range rt.Viewers {
		v.Close()
	}
	rt.Viewers = nil
}

// Close closes the viewers, cancels pending loads and resets the registry.
func (rt *Runtime) Close() {
	rt.closeViewers()
	rt.Loader.Close()
	rt.Registry.Reset()
	rt.Documents = nil
}
