// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xyz

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"cogentcore.org/glam/dom"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/engine/offscreen"
	"cogentcore.org/glam/events"
	"cogentcore.org/glam/styles"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs its realization and counts its updates.
type recorder struct {
	ComponentBase
	name    string
	log     *[]string
	updates int
}

func (r *recorder) Kind() Kinds { return KindBehavior }

func (r *recorder) Realize(sc *Scene) error {
	o := r.Object()
	*r.log = append(*r.log, fmt.Sprintf("%s live=%v node=%v", r.name, o.IsLive(), o.Node != nil))
	return nil
}

func (r *recorder) Update(now time.Duration) { r.updates++ }

func newTestScene() (*Scene, *offscreen.Engine, *ManualClock) {
	eng := offscreen.New()
	sc := NewScene("test", eng)
	clock := NewManualClock(0)
	sc.Clock = clock
	return sc, eng, clock
}

func TestRealizationOrder(t *testing.T) {
	sc, _, _ := newTestScene()
	var log []string
	rec := func(name string) *recorder { return &recorder{name: name, log: &log} }

	parent := NewObject("parent")
	child := NewObject("child")
	grand := NewObject("grand")
	require.NoError(t, parent.AddComponent(rec("p1")))
	require.NoError(t, parent.AddComponent(rec("p2")))
	require.NoError(t, child.AddComponent(rec("c1")))
	require.NoError(t, grand.AddComponent(rec("g1")))
	require.NoError(t, child.AddChild(grand))
	require.NoError(t, parent.AddChild(child))
	assert.Empty(t, log)
	assert.False(t, grand.IsLive())

	require.NoError(t, sc.Add(parent))
	assert.Equal(t, []string{
		"p1 live=true node=true",
		"p2 live=true node=true",
		"c1 live=true node=true",
		"g1 live=true node=true",
	}, log)

	log = nil
	require.NoError(t, child.AddComponent(rec("late")))
	assert.Equal(t, []string{"late live=true node=true"}, log)

	log = nil
	require.NoError(t, sc.Add(parent))
	assert.Empty(t, log, "components are realized once")
}

func TestAlreadyBound(t *testing.T) {
	a, b := NewObject("a"), NewObject("b")
	c := NewTransform(engine.NewPose())
	require.NoError(t, a.AddComponent(c))
	assert.Equal(t, Bound, c.State())
	err := b.AddComponent(c)
	assert.True(t, errors.Is(err, ErrAlreadyBound))
	assert.Same(t, a, c.Object())
}

func TestAddChildReparents(t *testing.T) {
	sc, _, _ := newTestScene()
	a, b, kid := NewObject("a"), NewObject("b"), NewObject("kid")
	require.NoError(t, sc.Add(a))
	require.NoError(t, sc.Add(b))
	require.NoError(t, a.AddChild(kid))
	require.NoError(t, b.AddChild(kid))
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Object{kid}, b.Children())
	assert.Same(t, b, kid.Parent())
	assert.True(t, kid.IsLive())
	assert.Same(t, b.Node, kid.Node.(*offscreen.Node).Parent)
	assert.Equal(t, "test/b/kid", kid.Path())

	assert.Error(t, kid.AddChild(b))
}

func TestComponentsLookup(t *testing.T) {
	sc, eng, _ := newTestScene()
	o := NewObject("o")
	g1, _ := eng.NewGeometry(engine.Box, engine.Params{})
	g2, _ := eng.NewGeometry(engine.Sphere, engine.Params{})
	m, _ := eng.NewMaterial(engine.MaterialParams{})
	require.NoError(t, o.AddComponent(NewDecoration(g2, m)))
	require.NoError(t, o.AddComponent(NewVisual(g1, m)))
	require.NoError(t, o.AddComponent(NewVisual(g2, m)))
	require.NoError(t, sc.Add(o))

	assert.Len(t, o.Components(KindVisual), 2)
	assert.Len(t, o.Components(KindDecoration), 1)
	assert.Len(t, ComponentsOf[Realizer](o), 3)
	assert.Same(t, g1, o.Geometry())
	assert.Same(t, m, o.Material())
	v, ok := FirstOf[*Visual](o)
	require.True(t, ok)
	assert.Same(t, g1, v.Geometry)
	_, ok = FirstOf[*Camera](o)
	assert.False(t, ok)

	mesh := o.Visual().Node.(*offscreen.Node)
	assert.Same(t, o.Node, mesh.Parent)
	assert.Same(t, g1, mesh.Geometry)
}

func TestUpdateOnlyRealized(t *testing.T) {
	sc, _, _ := newTestScene()
	var log []string
	live := &recorder{name: "live", log: &log}
	idle := &recorder{name: "idle", log: &log}
	a := NewObject("a")
	require.NoError(t, a.AddComponent(live))
	require.NoError(t, sc.Add(a))
	b := NewObject("b")
	require.NoError(t, b.AddComponent(idle))

	sc.Update(time.Second)
	sc.Update(2 * time.Second)
	assert.Equal(t, 2, live.updates)
	assert.Equal(t, 0, idle.updates)

	sc.Root.RemoveChild(a)
	sc.Update(3 * time.Second)
	assert.Equal(t, 2, live.updates)
}

func countEvents(tm *Timer) map[events.Types]int {
	counts := map[events.Types]int{}
	for _, typ := range []events.Types{events.Time, events.Fraction, events.CycleTime} {
		tm.On(typ, func(ev events.Event) { counts[ev.Type()]++ })
	}
	return counts
}

func TestTimerLoop(t *testing.T) {
	sc, _, _ := newTestScene()
	o := NewObject("o")
	tm := NewTimer(time.Second, true)
	require.NoError(t, o.AddComponent(tm))
	require.NoError(t, sc.Add(o))
	counts := countEvents(tm)

	tm.StartAt(0)
	for now := 100 * time.Millisecond; now <= 5*time.Second; now += 100 * time.Millisecond {
		sc.Update(now)
	}
	assert.Equal(t, 5, counts[events.CycleTime])
	assert.Equal(t, 50, counts[events.Fraction])
	assert.Equal(t, 50, counts[events.Time])
	assert.True(t, tm.IsRunning())
}

func TestTimerLoopUnevenTicks(t *testing.T) {
	tm := NewTimer(time.Second, true)
	counts := countEvents(tm)
	tm.StartAt(0)
	for _, ms := range []int{300, 950, 1200, 1250, 1990, 2010, 2700, 3100} {
		tm.Update(time.Duration(ms) * time.Millisecond)
	}
	assert.Equal(t, 3, counts[events.CycleTime])
}

func TestTimerStopsOnFirstWrap(t *testing.T) {
	tm := NewTimer(time.Second, false)
	counts := countEvents(tm)
	tm.StartAt(0)
	for now := 100 * time.Millisecond; now <= 3*time.Second; now += 100 * time.Millisecond {
		tm.Update(now)
	}
	assert.False(t, tm.IsRunning())
	assert.Equal(t, 1, counts[events.CycleTime])
	assert.Equal(t, 10, counts[events.Fraction])

	tm.StartAt(3 * time.Second)
	tm.Update(3500 * time.Millisecond)
	assert.Equal(t, 11, counts[events.Fraction])
	assert.InDelta(t, 0.5, tm.Fraction(), 1e-6)
}

func TestTimerStopped(t *testing.T) {
	tm := NewTimer(time.Second, true)
	counts := countEvents(tm)
	tm.Update(time.Second)
	assert.Empty(t, counts)
}

func TestTimerEventsReachElement(t *testing.T) {
	sc, _, clock := newTestScene()
	o := NewObject("o")
	o.Element = dom.NewElement("box")
	var fractions []float32
	o.Element.On(events.Fraction, func(ev events.Event) {
		fractions = append(fractions, ev.(*events.Tick).Fraction)
	})
	tm := NewTimer(2*time.Second, true)
	tm.AutoStart = true
	clock.Set(time.Second)
	require.NoError(t, o.AddComponent(tm))
	require.NoError(t, sc.Add(o))
	assert.True(t, tm.IsRunning())
	sc.Update(1500 * time.Millisecond)
	assert.Equal(t, []float32{0.25}, fractions)
}

func TestTimerHandledEventsReachElement(t *testing.T) {
	sc, _, _ := newTestScene()
	o := NewObject("o")
	o.Element = dom.NewElement("box")
	var onTimer, onElement int
	tm := NewTimer(time.Second, true)
	tm.On(events.Fraction, func(ev events.Event) {
		onTimer++
		ev.SetHandled()
	})
	o.Element.On(events.Fraction, func(ev events.Event) { onElement++ })
	require.NoError(t, o.AddComponent(tm))
	require.NoError(t, sc.Add(o))
	tm.StartAt(0)
	sc.Update(100 * time.Millisecond)
	sc.Update(200 * time.Millisecond)
	assert.Equal(t, 2, onTimer)
	assert.Equal(t, 2, onElement)
}

func TestRotateOnce(t *testing.T) {
	sc, _, _ := newTestScene()
	o := NewObject("o")
	rb := NewRotateBehavior(3.14159265)
	rb.Once = true
	require.NoError(t, o.AddComponent(rb))
	require.NoError(t, sc.Add(o))
	rb.StartAt(0)

	for now := 300 * time.Millisecond; now <= 1800*time.Millisecond; now += 300 * time.Millisecond {
		sc.Update(now)
		assert.True(t, rb.IsRunning())
		assert.Less(t, rb.Angle, TwoPi)
	}
	sc.Update(2100 * time.Millisecond)
	assert.False(t, rb.IsRunning())
	assert.Equal(t, TwoPi, rb.Angle)
	assert.Equal(t, TwoPi, o.Transform().Pose.Rotation[1])

	sc.Update(5 * time.Second)
	assert.Equal(t, TwoPi, rb.Angle)
}

func TestRotateWraps(t *testing.T) {
	sc, _, _ := newTestScene()
	o := NewObject("o")
	require.NoError(t, o.AddComponent(NewTransform(engine.Pose{Rotation: [3]float32{0, 1, 0}, Scale: [3]float32{1, 1, 1}})))
	rb := NewRotateBehavior(2)
	require.NoError(t, o.AddComponent(rb))
	require.NoError(t, sc.Add(o))
	rb.StartAt(0)
	sc.Update(4 * time.Second)
	assert.True(t, rb.IsRunning())
	assert.InDelta(t, 8-TwoPi, rb.Angle, 1e-5)
	assert.InDelta(t, 1+8-TwoPi, o.Transform().Pose.Rotation[1], 1e-5)
	assert.InDelta(t, 1+8-TwoPi, o.Node.(*offscreen.Node).Pose.Rotation[1], 1e-5)
}

func TestRotateDiagonalAxis(t *testing.T) {
	sc, _, _ := newTestScene()
	o := NewObject("o")
	base := engine.Pose{Rotation: mgl32.Vec3{0.3, 0, 0}, Scale: mgl32.Vec3{1, 1, 1}}
	require.NoError(t, o.AddComponent(NewTransform(base)))
	rb := NewRotateBehavior(TwoPi / 4)
	rb.Axis = mgl32.Vec3{1, 1, 0}
	require.NoError(t, o.AddComponent(rb))
	require.NoError(t, sc.Add(o))
	rb.StartAt(0)
	sc.Update(time.Second)

	axis := rb.Axis.Normalize()
	want := mgl32.QuatRotate(TwoPi/4, axis).Mul(base.Quat())
	got := o.Transform().Pose.Quat()
	for _, v := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		w, g := want.Rotate(v), got.Rotate(v)
		for i := range 3 {
			assert.InDelta(t, w[i], g[i], 1e-5)
		}
	}

	rb.baseline = mgl32.Vec3{}
	fixed := engine.Pose{Rotation: rb.turn(1.2)}.Quat().Rotate(axis)
	for i := range 3 {
		assert.InDelta(t, axis[i], fixed[i], 1e-5)
	}
}

func TestPicker(t *testing.T) {
	sc, eng, _ := newTestScene()
	parentEl := dom.NewElement("group")
	el := dom.NewElement("box", "id", "b")
	parentEl.AppendChild(el)

	o := NewObject("b")
	o.Element = el
	g, _ := eng.NewGeometry(engine.Box, engine.Params{})
	m, _ := eng.NewMaterial(engine.MaterialParams{})
	require.NoError(t, o.AddComponent(NewVisual(g, m)))
	pk := NewPicker()
	require.NoError(t, o.AddComponent(pk))
	require.NoError(t, sc.Add(o))

	var got *events.Pointer
	bubbled := 0
	el.On(events.Click, func(ev events.Event) { got = ev.(*events.Pointer) })
	parentEl.On(events.Click, func(ev events.Event) { bubbled++ })

	mesh := o.Visual().Node
	eng.Fire(mesh, &engine.PickEvent{Kind: engine.PickClick, Where: image.Pt(3, 4), Button: 1, Distance: 2.5, Face: 7})
	require.NotNil(t, got)
	assert.Equal(t, image.Pt(3, 4), got.Where)
	assert.Equal(t, 1, got.Button)
	assert.Equal(t, float32(2.5), got.Distance)
	assert.Equal(t, 7, got.Face)
	assert.Equal(t, mesh, got.Node)
	assert.Same(t, el, got.Target)
	assert.Equal(t, 1, bubbled)

	o.Destroy()
	assert.Equal(t, 0, eng.Subscribers(mesh, engine.PickClick))
}

func TestPickerViewEventsDoNotBubble(t *testing.T) {
	sc, eng, _ := newTestScene()
	host := dom.NewElement("div")
	el := dom.NewElement("glam")
	host.AppendChild(el)
	sc.Root.Element = el
	require.NoError(t, sc.Root.AddComponent(NewPicker(events.ViewTypes...)))

	over, hostSaw := 0, 0
	el.On(events.ViewOver, func(ev events.Event) { over++ })
	host.On(events.ViewOver, func(ev events.Event) { hostSaw++ })
	eng.Fire(sc.Node, &engine.PickEvent{Kind: engine.PickViewOver})
	assert.Equal(t, 1, over)
	assert.Equal(t, 0, hostSaw)

	el.Remove()
	eng.Fire(sc.Node, &engine.PickEvent{Kind: engine.PickViewOver})
	assert.Equal(t, 1, over)
}

func TestDestroy(t *testing.T) {
	sc, eng, _ := newTestScene()
	parent, kid := NewObject("p"), NewObject("k")
	require.NoError(t, parent.AddChild(kid))
	cam := NewCamera(engine.CameraParams{})
	require.NoError(t, kid.AddComponent(cam))
	require.NoError(t, sc.Add(parent))
	require.Same(t, cam, sc.ActiveCamera())

	hooks := 0
	kid.OnDestroy(func() { hooks++ })
	parent.Destroy()
	parent.Destroy()
	assert.Equal(t, 1, hooks)
	assert.True(t, kid.IsDestroyed())
	assert.False(t, kid.IsLive())
	assert.Empty(t, sc.Root.Children())
	assert.True(t, cam.Node.(*offscreen.Node).Detached)
	assert.Nil(t, sc.ActiveCamera())
	assert.Error(t, kid.AddComponent(NewTimer(0, false)))
	require.NoError(t, sc.Render(nil))
	assert.Equal(t, 1, eng.Frames)
}

func TestActiveCamera(t *testing.T) {
	sc, eng, _ := newTestScene()
	a, b := NewObject("a"), NewObject("b")
	require.NoError(t, a.AddComponent(NewCamera(engine.CameraParams{})))
	active := NewCamera(engine.CameraParams{Active: true})
	require.NoError(t, b.AddComponent(active))
	require.NoError(t, sc.Add(a))
	require.NoError(t, sc.Add(b))
	assert.Len(t, sc.Cameras(), 2)
	assert.Same(t, active, sc.ActiveCamera())
	require.NoError(t, sc.Render(sc.ActiveCamera()))
	assert.Equal(t, active.Node, eng.LastCamera)
}

func TestAnimator(t *testing.T) {
	sc, _, _ := newTestScene()
	an := &dom.Animation{ID: "slide", Duration: time.Second, Keys: []dom.KeyFrame{
		{Offset: 0, Values: styles.Declaration{"x": "0", "ry": "0"}},
		{Offset: 1, Values: styles.Declaration{"x": "10", "ry": "90deg"}},
	}}
	o := NewObject("o")
	tm := NewTimer(an.Duration, an.Loop)
	require.NoError(t, o.AddComponent(tm))
	require.NoError(t, o.AddComponent(NewAnimator(an, tm)))
	require.NoError(t, sc.Add(o))
	tm.StartAt(0)

	sc.Update(500 * time.Millisecond)
	p := o.Transform().Pose
	assert.InDelta(t, 5, p.Position[0], 1e-5)
	assert.InDelta(t, TwoPi/8, p.Rotation[1], 1e-5)

	sc.Update(1100 * time.Millisecond)
	assert.False(t, tm.IsRunning())
	assert.InDelta(t, 10, o.Transform().Pose.Position[0], 1e-5)
}

func TestAnimatorBadValue(t *testing.T) {
	sc, _, _ := newTestScene()
	an := &dom.Animation{ID: "bad", Duration: time.Second, Keys: []dom.KeyFrame{
		{Offset: 0, Values: styles.Declaration{"x": "left"}},
	}}
	o := NewObject("o")
	tm := NewTimer(an.Duration, false)
	require.NoError(t, o.AddComponent(tm))
	require.NoError(t, o.AddComponent(NewAnimator(an, tm)))
	assert.Error(t, sc.Add(o))
	assert.True(t, o.IsLive())
}
