package chart

import "math"

// Viewport is the visible window of the x (time) axis, as inclusive label
// indexes. Pan and zoom only ever move this window; the y axis follows the data.
type Viewport struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FullViewport shows all n points.
func FullViewport(n int) Viewport {
	if n <= 0 {
		return Viewport{}
	}
	return Viewport{Min: 0, Max: n - 1}
}

// Width is the number of visible points.
func (v Viewport) Width() int { return v.Max - v.Min + 1 }

// IsFull reports whether v shows all n points.
func (v Viewport) IsFull(n int) bool { return v == FullViewport(n) }

// Clamp orders the bounds and keeps them inside [0, n-1].
func (v Viewport) Clamp(n int) Viewport {
	if n <= 0 {
		return Viewport{}
	}
	if v.Min > v.Max {
		v.Min, v.Max = v.Max, v.Min
	}
	v.Min = clampInt(v.Min, 0, n-1)
	v.Max = clampInt(v.Max, 0, n-1)
	return v
}

// Pan shifts the window by delta points keeping its width, stopping at the edges.
func (v Viewport) Pan(delta, n int) Viewport {
	if n <= 0 {
		return Viewport{}
	}
	v = v.Clamp(n)
	w := v.Width()
	v.Min = clampInt(v.Min+delta, 0, n-w)
	v.Max = v.Min + w - 1
	return v
}

// Zoom scales the window around its center. factor > 1 zooms in, < 1 zooms out.
// The window never shrinks below two points (one when n == 1).
func (v Viewport) Zoom(factor float64, n int) Viewport {
	v = v.Clamp(n)
	if factor <= 0 || n <= 1 {
		return v
	}

	minWidth := 2
	w := clampInt(int(math.Round(float64(v.Width())/factor)), minWidth, n)

	center := float64(v.Min+v.Max) / 2
	lo := int(math.Round(center - float64(w-1)/2))
	lo = clampInt(lo, 0, n-w)
	return Viewport{Min: lo, Max: lo + w - 1}
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
