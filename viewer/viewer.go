// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package viewer displays one registered scene: it builds the scene
// from its markup and runs the update and render loop for it.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/elements"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/xyz"
)

// DefaultFPS is the frame rate used when none is set.
const DefaultFPS = 60

// Viewer displays one scene.
type Viewer struct {

	// Source is the registered scene markup.
	Source *dom.Scene

	// Context is used to build the scene.
	Context *elements.Context

	// Scene is the live scene, made by [Viewer.Start].
	Scene *xyz.Scene

	// Root is the object built from the scene element.
	Root *xyz.Object

	// Picker dispatches the view level pointer events on the
	// scene element.
	Picker *xyz.Picker

	// Clock is the time source of the scene; a [xyz.SystemClock] if nil.
	Clock xyz.Clock

	// FPS is the frame rate of [Viewer.Run].
	FPS int

	// Frames is the number of frames rendered.
	Frames int

	running bool
	camera  *xyz.Camera
}

// New returns a new stopped viewer for the scene.
func New(src *dom.Scene, c *elements.Context) *Viewer {
	return &Viewer{Source: src, Context: c, FPS: DefaultFPS}
}

func (v *Viewer) String() string {
	return "viewer " + v.Source.ID
}

// IsRunning returns whether the viewer is started.
func (v *Viewer) IsRunning() bool { return v.running }

// Start builds the scene on first use and starts updating it.
// Elements that fail to build are left out; their errors are
// returned joined, and the viewer is started regardless.
func (v *Viewer) Start() error {
	if v.running {
		return nil
	}
	var err error
	if v.Scene == nil {
		err = v.build()
	}
	v.running = true
	slog.Info("viewer started", "scene", v.Source.ID)
	return err
}

func (v *Viewer) build() error {
	sc := xyz.NewScene(v.Source.ID, v.Context.Engine)
	if v.Clock != nil {
		sc.Clock = v.Clock
	}
	v.Scene = sc
	root, berr := elements.Build(v.Context.ForScene(v.Source), v.Source.Root)
	if root == nil {
		return berr
	}
	v.Root = root
	v.Picker = xyz.NewPicker(events.ViewTypes...)
	errs := []error{berr, root.AddComponent(v.Picker), sc.Add(root)}
	if len(sc.Cameras()) == 0 {
		errs = append(errs, v.addDefaultCamera())
	}
	return errors.Join(errs...)
}

// addDefaultCamera adds a camera looking down the z axis at the origin.
func (v *Viewer) addDefaultCamera() error {
	var cp engine.CameraParams
	cp.Defaults()
	obj := xyz.NewObject("default-camera")
	pose := engine.NewPose()
	pose.Position[2] = 10
	err := errors.Join(obj.AddComponent(xyz.NewTransform(pose)), obj.AddComponent(xyz.NewCamera(cp)))
	if err != nil {
		return err
	}
	slog.Debug("no camera in scene, using default", "scene", v.Source.ID)
	return v.Scene.Add(obj)
}

// Stop stops updating the scene. It is kept, and [Viewer.Start]
// resumes it.
func (v *Viewer) Stop() {
	v.running = false
}

// Frame runs one frame at the given scene time: it delivers finished
// model loads, updates the components of the scene, and renders it
// with the active camera. It does nothing while the viewer is stopped.
func (v *Viewer) Frame(now time.Duration) error {
	if !v.running || v.Scene == nil {
		return nil
	}
	if v.Context.Loader != nil {
		v.Context.Loader.Poll()
	}
	v.Scene.Update(now)
	cam := v.Scene.ActiveCamera()
	if cam != v.camera {
		slog.Debug("active camera", "scene", v.Source.ID, "camera", cameraName(cam))
		v.camera = cam
	}
	if err := v.Scene.Render(cam); err != nil {
		return err
	}
	v.Frames++
	return nil
}

func cameraName(cam *xyz.Camera) string {
	if cam == nil {
		return ""
	}
	return cam.Object().Path()
}

// Run runs frames at [Viewer.FPS] until ctx is done, or until
// frames frames have run if frames is positive.
func (v *Viewer) Run(ctx context.Context, frames int) error {
	if err := v.Start(); err != nil {
		errors.Log(err)
	}
	return Loop(ctx, v.FPS, frames, v)
}

// Close stops the viewer and destroys its scene.
func (v *Viewer) Close() {
	v.Stop()
	if v.Scene != nil {
		v.Scene.Destroy()
		v.Scene = nil
		v.Root = nil
	}
}

// Loop runs frames for all of the viewers on the calling goroutine,
// at fps frames per second, until ctx is done, or until frames frames
// have run if frames is positive. A viewer whose frame fails is
// stopped and the others keep running; the errors are returned joined.
func Loop(ctx context.Context, fps, frames int, viewers ...*Viewer) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()
	var errs []error
	for n := 0; frames <= 0 || n < frames; n++ {
		if ctx.Err() != nil {
			break
		}
		for _, v := range viewers {
			if !v.running || v.Scene == nil {
				continue
			}
			if err := v.Frame(v.Scene.Clock.Now()); err != nil {
				slog.Error("frame failed, stopping viewer", "scene", v.Source.ID, "err", err)
				errs = append(errs, fmt.Errorf("%v: %w", v, err))
				v.Stop()
			}
		}
		if frames > 0 && n == frames-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(errs...)
		case <-tick.C:
		}
	}
	return errors.Join(errs...)
}
