// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elements

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/engine/offscreen"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/loader"
	"cogentcore.org/glam/xyz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build parses the scene markup and builds it into a live scene.
func build(t *testing.T, markup string) (*xyz.Scene, *Context, error) {
	reg := dom.NewRegistry()
	doc, err := dom.ParseString("<html><body>"+markup+"</body></html>", reg)
	require.NoError(t, err)
	require.Len(t, doc.Scenes, 1)
	eng := offscreen.New()
	c := NewContext(reg, eng, nil)
	sc := xyz.NewScene("test", eng)
	sc.Clock = xyz.NewManualClock(0)
	obj, err := Build(c, doc.Scenes[0].Root)
	require.NotNil(t, obj)
	require.NoError(t, sc.Add(obj))
	return sc, c, err
}

// find returns the object whose element has the given id.
func find(t *testing.T, sc *xyz.Scene, id string) *xyz.Object {
	var res *xyz.Object
	sc.Root.WalkDown(func(o *xyz.Object) bool {
		if o.Element != nil && o.Element.ID == id {
			res = o
			return false
		}
		return true
	})
	require.NotNil(t, res, id)
	return res
}

func geometry(t *testing.T, o *xyz.Object) *offscreen.Geometry {
	g, ok := o.Geometry().(*offscreen.Geometry)
	require.True(t, ok)
	return g
}

func TestPrimitiveDefaults(t *testing.T) {
	for _, pr := range Primitives {
		if pr.Geometry == engine.Line {
			continue
		}
		t.Run(pr.Tag, func(t *testing.T) {
			sc, _, err := build(t, "<glam><"+pr.Tag+` id="p"></`+pr.Tag+"></glam>")
			require.NoError(t, err)
			g := geometry(t, find(t, sc, "p"))
			assert.Equal(t, pr.Geometry, g.Kind())
			assert.Len(t, g.Params.Values, len(pr.Params))
			for _, pm := range pr.Params {
				assert.Equal(t, pm.Default, g.Params.Values[pm.Name], pm.Name)
			}
		})
	}
	assert.Equal(t, float32(2), PrimitiveFor("box").Params[0].Default)
	assert.Equal(t, xyz.TwoPi, PrimitiveFor("arc").Params[2].Default)
	assert.Nil(t, PrimitiveFor("teapot"))
}

func TestStyleOverridesAttribute(t *testing.T) {
	sc, _, err := build(t, `<style>
		#s { radius: 5 }
		.thin { radius-segments: 8 }
	</style>
	<glam>
		<sphere id="s" radius="3" widthSegments="10"></sphere>
		<cylinder id="c" class="thin" radiusSegments="16" height="4"></cylinder>
		<cone id="i" radius="1" style="radius: 7"></cone>
	</glam>`)
	require.NoError(t, err)

	s := geometry(t, find(t, sc, "s")).Params
	assert.Equal(t, float32(5), s.Value("radius", 0))
	assert.Equal(t, float32(10), s.Value("widthSegments", 0))
	assert.Equal(t, float32(32), s.Value("heightSegments", 0))

	c := geometry(t, find(t, sc, "c")).Params
	assert.Equal(t, float32(8), c.Value("radiusSegments", 0))
	assert.Equal(t, float32(4), c.Value("height", 0))
	assert.Equal(t, float32(2), c.Value("radius", 0))

	assert.Equal(t, float32(7), geometry(t, find(t, sc, "i")).Params.Value("radius", 0))
}

func TestGeometryRoundTrip(t *testing.T) {
	sc, _, err := build(t, `<glam><box id="b" width="3"></box></glam>`)
	require.NoError(t, err)
	b := find(t, sc, "b")
	assert.Same(t, b.Element.Geometry, b.Geometry())
	assert.Same(t, b.Element.Material, b.Material())
	assert.Equal(t, float32(3), b.Element.Geometry.(*offscreen.Geometry).Params.Value("width", 0))
	v := b.Visual()
	require.NotNil(t, v)
	assert.True(t, v.IsRealized())
	assert.NotNil(t, v.Node)
}

func TestValidationError(t *testing.T) {
	sc, _, err := build(t, `<glam>
		<box id="bad" width="abc"></box>
		<box id="neg" width="-1"></box>
		<sphere id="few" widthSegments="2"></sphere>
		<sphere id="ok"></sphere>
	</glam>`)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "bad", ve.Element)
	assert.Equal(t, "width", ve.Property)
	assert.Equal(t, "abc", ve.Value)
	assert.Contains(t, err.Error(), "element neg")
	assert.Contains(t, err.Error(), "element few")

	find(t, sc, "ok")
	assert.Len(t, sc.Root.Children()[0].Children(), 1)
}

func TestUnknownTagIsolated(t *testing.T) {
	sc, _, err := build(t, `<glam><teapot id="t"></teapot><box id="b"></box></glam>`)
	assert.True(t, errors.Is(err, ErrUnknownTag))
	assert.NotContains(t, err.Error(), "did you mean")
	find(t, sc, "b")

	_, _, err = build(t, `<glam><sphre id="s"></sphre></glam>`)
	assert.True(t, errors.Is(err, ErrUnknownTag))
	assert.Contains(t, err.Error(), `did you mean "sphere"?`)
}

func TestMaterial(t *testing.T) {
	sc, _, err := build(t, `<style>.glow { emissive: #0f0; transition: 250ms }</style>
	<glam><box id="b" class="glow" color="red" opacity="0.5" wireframe envmap="sky"></box></glam>`)
	require.NoError(t, err)
	mp := find(t, sc, "b").Material().Params()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, mp.Color)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, mp.Emissive)
	assert.Equal(t, float32(0.5), mp.Opacity)
	assert.True(t, mp.Wireframe)
	assert.Equal(t, "sky", mp.EnvMap)
	assert.Equal(t, 250*time.Millisecond, mp.Transition)
	assert.Equal(t, float32(30), mp.Shiny)

	_, _, err = build(t, `<glam><box id="b" opacity="2"></box></glam>`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "opacity", ve.Property)
}

func TestLine(t *testing.T) {
	sc, _, err := build(t, `<glam>
		<line id="l" vertices="0 0 0, 1 1 1, 2 0 0"></line>
		<line id="short" vertices="0 0 0"></line>
	</glam>`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "short", ve.Element)
	assert.Len(t, geometry(t, find(t, sc, "l")).Params.Points, 3)
}

func TestTransformAndComponents(t *testing.T) {
	sc, _, err := build(t, `<glam>
		<box id="b" x="1" y="2" ry="90deg" sx="3">
			<rotate velocity="180deg" axis="0 0 1" autostart></rotate>
			<timer duration="2s" loop></timer>
		</box>
	</glam>`)
	require.NoError(t, err)
	b := find(t, sc, "b")
	pose := b.Transform().Pose
	assert.Equal(t, float32(1), pose.Position[0])
	assert.Equal(t, float32(2), pose.Position[1])
	assert.InDelta(t, xyz.TwoPi/4, pose.Rotation[1], 1e-6)
	assert.Equal(t, float32(3), pose.Scale[0])
	assert.Equal(t, float32(1), pose.Scale[1])

	rb, ok := xyz.FirstOf[*xyz.RotateBehavior](b)
	require.True(t, ok)
	assert.InDelta(t, xyz.TwoPi/2, rb.Velocity, 1e-6)
	assert.Equal(t, float32(1), rb.Axis[2])
	assert.True(t, rb.IsRunning())

	tm, ok := xyz.FirstOf[*xyz.Timer](b)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, tm.Duration)
	assert.True(t, tm.Loop)
	assert.False(t, tm.IsRunning())

	assert.Len(t, b.Components(xyz.KindPicker), 1)
}

func TestPickableFalse(t *testing.T) {
	sc, _, err := build(t, `<glam><box id="b" pickable="false"></box></glam>`)
	require.NoError(t, err)
	assert.Empty(t, find(t, sc, "b").Components(xyz.KindPicker))
}

func TestCameraAndLights(t *testing.T) {
	sc, _, err := build(t, `<glam>
		<camera id="cam" fov="45" near="0.1" far="100" active z="10"></camera>
		<ambient-light id="amb" intensity="0.3"></ambient-light>
		<point-light id="pt" color="#ffcc00" distance="20" decay="2"></point-light>
		<directional-light id="sun"></directional-light>
		<camera id="bad" near="10" far="1"></camera>
	</glam>`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "bad", ve.Element)

	cam := sc.ActiveCamera()
	require.NotNil(t, cam)
	assert.Equal(t, "cam", cam.Object().Element.ID)
	assert.Equal(t, float32(45), cam.Params.FOV)
	assert.Equal(t, float32(100), cam.Params.Far)
	assert.Equal(t, float32(10), cam.Object().Transform().Pose.Position[2])

	amb, ok := xyz.FirstOf[*xyz.Light](find(t, sc, "amb"))
	require.True(t, ok)
	assert.Equal(t, engine.AmbientLight, amb.LightKind)
	assert.Equal(t, float32(0.3), amb.Params.Intensity)

	pt, _ := xyz.FirstOf[*xyz.Light](find(t, sc, "pt"))
	assert.Equal(t, color.RGBA{0xff, 0xcc, 0, 0xff}, pt.Params.Color)
	assert.Equal(t, float32(20), pt.Params.Distance)
	assert.Equal(t, float32(2), pt.Params.Decay)

	sun, _ := xyz.FirstOf[*xyz.Light](find(t, sc, "sun"))
	assert.Equal(t, engine.DirectionalLight, sun.LightKind)
	assert.Equal(t, float32(1), sun.Params.Intensity)
}

func TestGroupNesting(t *testing.T) {
	sc, _, err := build(t, `<glam>
		<group id="g" x="5">
			<box id="b"></box>
			<group id="inner"><sphere id="s"></sphere></group>
		</group>
	</glam>`)
	require.NoError(t, err)
	g := find(t, sc, "g")
	assert.Len(t, g.Children(), 2)
	assert.Same(t, g, find(t, sc, "b").Parent())
	assert.Equal(t, "inner", find(t, sc, "s").Parent().Name)
	assert.Nil(t, g.Visual())
}

func TestAnimationAttribute(t *testing.T) {
	sc, _, err := build(t, `<animation id="spin" duration="2s" loop>
		<key offset="0" ry="0"></key>
		<key offset="100%" ry="180deg"></key>
	</animation>
	<glam>
		<box id="b" animation="spin"></box>
		<box id="missing" animation="nope"></box>
	</glam>`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "missing", ve.Element)
	assert.Equal(t, "animation", ve.Property)

	b := find(t, sc, "b")
	tm, ok := xyz.FirstOf[*xyz.Timer](b)
	require.True(t, ok)
	assert.True(t, tm.IsRunning())
	_, ok = xyz.FirstOf[*xyz.Animator](b)
	assert.True(t, ok)

	sc.Update(time.Second)
	assert.InDelta(t, xyz.TwoPi/4, b.Transform().Pose.Rotation[1], 1e-5)
}

func TestHandlersOverride(t *testing.T) {
	reg := dom.NewRegistry()
	eng := offscreen.New()
	c := NewContext(reg, eng, nil)
	called := 0
	c.Handlers["box"] = func(c *Context, el *dom.Element) (*xyz.Object, error) {
		called++
		return Group(c, el)
	}
	el := dom.NewElement("glam")
	el.AppendChild(dom.NewElement("box", "id", "b"))
	obj, err := Build(c, el)
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	require.Len(t, obj.Children(), 1)
	assert.Nil(t, obj.Children()[0].Visual())
}

const triObj = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triObj), 0o644))
	ld := loader.New(dir, time.Second, 0)
	defer ld.Close()

	reg := dom.NewRegistry()
	doc, err := dom.ParseString(`<glam>
		<import id="m" src="tri.obj"></import>
		<import id="gone" src="tri.obj"></import>
		<import id="bad" src="none.obj"></import>
	</glam>`, reg)
	require.NoError(t, err)
	eng := offscreen.New()
	c := NewContext(reg, eng, ld)
	sc := xyz.NewScene("test", eng)
	root, err := Build(c, doc.Scenes[0].Root)
	require.NoError(t, err)
	require.NoError(t, sc.Add(root))

	var got []events.Types
	m := find(t, sc, "m")
	m.Element.On(events.Loaded, func(ev events.Event) { got = append(got, ev.Type()) })
	bad := find(t, sc, "bad")
	bad.Element.On(events.LoadError, func(ev events.Event) { got = append(got, ev.Type()) })
	gone := find(t, sc, "gone")
	gone.Element.On(events.Loaded, func(ev events.Event) { got = append(got, ev.Type()) })
	gone.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ld.Wait(ctx))

	assert.ElementsMatch(t, []events.Types{events.Loaded, events.LoadError}, got)
	sv, ok := xyz.FirstOf[*xyz.SceneVisual](m)
	require.True(t, ok)
	assert.True(t, sv.IsRealized())
	require.Len(t, sv.Model.Meshes, 1)
	assert.Len(t, sv.Model.Meshes[0].Params.Points, 3)
	_, ok = xyz.FirstOf[*xyz.SceneVisual](gone)
	assert.False(t, ok)
	_, ok = xyz.FirstOf[*xyz.SceneVisual](bad)
	assert.False(t, ok)
}

func TestImportNeedsSrc(t *testing.T) {
	_, _, err := build(t, `<glam><import id="i"></import></glam>`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "src", ve.Property)
}
