package chart

import (
	"sync"

	"github.com/google/uuid"
)

// Canvas is the drawing surface a chart binds to. It can host one live
// instance at a time; binding a second one fails with ErrCanvasInUse.
type Canvas struct {
	ID string

	mu    sync.Mutex
	bound *Instance
	binds int
}

// NewCanvas returns an empty canvas.
func NewCanvas(id string) *Canvas {
	return &Canvas{ID: id}
}

// Bound returns the live instance, or nil.
func (c *Canvas) Bound() *Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// Live is the number of instances currently bound (0 or 1).
func (c *Canvas) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound == nil {
		return 0
	}
	return 1
}

// Binds counts every instance ever bound to the canvas.
func (c *Canvas) Binds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.binds
}

func (c *Canvas) bind(i *Instance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound != nil {
		return ErrCanvasInUse
	}
	c.bound = i
	c.binds++
	return nil
}

func (c *Canvas) unbind(i *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound == i {
		c.bound = nil
	}
}

// Instance is one rendered chart bound to a canvas. It carries the plotted
// series and the current pan/zoom window.
type Instance struct {
	id     string
	canvas *Canvas
	series Series

	mu        sync.Mutex
	view      Viewport
	destroyed bool
}

// NewInstance binds a chart of s to canvas, fully zoomed out.
func NewInstance(canvas *Canvas, s Series) (*Instance, error) {
	i := &Instance{
		id:     uuid.NewString(),
		canvas: canvas,
		series: s,
		view:   FullViewport(s.Len()),
	}
	if err := canvas.bind(i); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Instance) ID() string     { return i.id }
func (i *Instance) Series() Series { return i.series }

// Destroy releases the canvas. Calling it twice is a no-op.
func (i *Instance) Destroy() {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return
	}
	i.destroyed = true
	i.mu.Unlock()
	i.canvas.unbind(i)
}

func (i *Instance) Destroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Viewport returns the visible window.
func (i *Instance) Viewport() Viewport {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.view
}

// Config is the Chart.js configuration of the instance at its current window.
func (i *Instance) Config() Config {
	return i.series.Config(i.Viewport())
}

// Pan moves the window by delta points.
func (i *Instance) Pan(delta int) (Viewport, error) {
	return i.update(func(v Viewport, n int) Viewport { return v.Pan(delta, n) })
}

// Zoom scales the window around its center (wheel zoom).
func (i *Instance) Zoom(factor float64) (Viewport, error) {
	return i.update(func(v Viewport, n int) Viewport { return v.Zoom(factor, n) })
}

// ZoomTo shows [from, to] (drag selection). Bounds are clamped.
func (i *Instance) ZoomTo(from, to int) (Viewport, error) {
	return i.update(func(_ Viewport, n int) Viewport { return Viewport{Min: from, Max: to}.Clamp(n) })
}

// SetViewport replaces the window with one reported by the page. Unlike
// ZoomTo it rejects windows that fall outside the data.
func (i *Instance) SetViewport(v Viewport) (Viewport, error) {
	n := i.series.Len()
	if v.Min < 0 || v.Max >= n || v.Min > v.Max {
		return i.Viewport(), ErrInvalidWindow
	}
	return i.update(func(Viewport, int) Viewport { return v })
}

// ResetZoom shows every point again.
func (i *Instance) ResetZoom() (Viewport, error) {
	return i.update(func(_ Viewport, n int) Viewport { return FullViewport(n) })
}

func (i *Instance) update(fn func(Viewport, int) Viewport) (Viewport, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return i.view, ErrDestroyed
	}
	i.view = fn(i.view, i.series.Len())
	return i.view, nil
}

// Slot owns the optional chart instance of a canvas.
type Slot struct {
	mu      sync.Mutex
	canvas  *Canvas
	current *Instance
}

// NewSlot returns an empty slot for canvas.
func NewSlot(canvas *Canvas) *Slot {
	return &Slot{canvas: canvas}
}

// Canvas returns the canvas the slot draws on.
func (s *Slot) Canvas() *Canvas { return s.canvas }

// Replace destroys the current instance, if any, and binds a new one for
// series. Both steps happen under the slot lock, so no caller ever sees two
// instances or an unbound gap.
func (s *Slot) Replace(series Series) (*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}

	inst, err := NewInstance(s.canvas, series)
	if err != nil {
		return nil, err
	}
	s.current = inst
	return inst, nil
}

// Current returns the live instance, or nil.
func (s *Slot) Current() *Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear destroys the live instance.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Destroy()
		s.current = nil
	}
}
