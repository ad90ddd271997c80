// seehuhn.de/go/maprender - a streaming map renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package raster converts vector paths into anti-aliased pixel coverage.
//
// Coverage is computed exactly (up to floating point precision) from the
// signed area of the path inside every pixel, and is delivered one
// scanline at a time through an emit callback. The [Canvas] type turns
// coverage into colour on an RGBA image.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives the coverage values of one scanline, for the pixels
// xMin, xMin+1, ... of row y. The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// FillRule decides which points are inside a path.
type FillRule int

// These are the supported fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
}

func (e *edge) yMin() float64 { return min(e.y0, e.y1) }
func (e *edge) yMax() float64 { return max(e.y0, e.y1) }

// Rasteriser converts paths to coverage values.
// A Rasteriser can be reused for many paths; its buffers are kept between
// calls. It must not be used concurrently.
type Rasteriser struct {
	// CTM maps user coordinates to device coordinates.
	CTM matrix.Matrix

	// Clip is the device region for which coverage is computed.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the maximal distance, in device pixels, between a curve
	// and the line segments which replace it.
	Flatness float64

	// Width is the line width for Stroke, in user units.
	Width float64

	// Cap and Join select the shape of line ends and corners.
	Cap  graphics.LineCapStyle
	Join graphics.LineJoinStyle

	// MiterLimit bounds the length of miter joins, relative to the line
	// width. Longer miters are drawn as bevels.
	MiterLimit float64

	// Dash is the dash pattern for Stroke, in user units.
	// An empty pattern draws solid lines.
	Dash      []float64
	DashPhase float64

	cover     []float32
	area      []float32
	edges     []edge
	active    []int
	crossings []float64

	haveBox          bool
	boxXMin, boxXMax float64
	boxYMin, boxYMax float64

	lines []polyline
	polys []polygon
}

// Default parameter values.
const (
	defaultFlatness   = 0.25
	defaultMiterLimit = 10.0
)

// Numerical tolerances.
const (
	// horizontalEdge is the minimal vertical extent of a contributing edge.
	horizontalEdge = 1e-10

	// zeroLength is the minimal length of a stroked segment.
	zeroLength = 1e-10

	// collinear is the minimal |sin| of the turning angle which needs a
	// join.
	collinear = 1e-6
)

// NewRasteriser returns a Rasteriser for the given device region, with an
// identity CTM, a line width of 1, butt caps and miter joins.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	r := &Rasteriser{}
	r.Reset(clip)
	return r
}

// Reset restores all parameters to their defaults and sets a new clip
// rectangle. Buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
	r.Dash = nil
	r.DashPhase = 0
}

// toDevice applies the CTM to a point.
func (r *Rasteriser) toDevice(p vec.Vec2) vec.Vec2 {
	m := r.CTM
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// deviceLength returns the device length of the user space vector v,
// ignoring translation.
func (r *Rasteriser) deviceLength(v vec.Vec2) float64 {
	m := r.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}.Length()
}

// quadSegments flattens a quadratic Bézier curve into line segments.
func (r *Rasteriser) quadSegments(p0, p1, p2 vec.Vec2, emit func(a, b vec.Vec2)) {
	// the deviation from the chord is at most |p0 - 2 p1 + p2| / 4
	dev := r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25))
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// cubeSegments flattens a cubic Bézier curve into line segments, with the
// number of segments chosen by Wang's formula.
func (r *Rasteriser) cubeSegments(p0, p1, p2, p3 vec.Vec2, emit func(a, b vec.Vec2)) {
	d1 := r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2))
	d2 := r.deviceLength(p1.Sub(p2.Mul(2)).Add(p3))
	n := 1
	if m := max(d1, d2); m > 0 {
		if k := math.Sqrt(3 * m / (4 * r.Flatness)); k > 1 {
			n = int(math.Ceil(k))
		}
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

// walk calls seg for every line segment of p, with curves flattened.
// If closeAll is set, open subpaths get a closing segment. Subpath
// boundaries are reported through start and end, which may be nil.
func (r *Rasteriser) walk(p path.Path, closeAll bool, start func(vec.Vec2), seg func(a, b vec.Vec2), end func(closed bool)) {
	var cur, first vec.Vec2
	open := false
	finish := func(closed bool) {
		if !open {
			return
		}
		if (closed || closeAll) && cur != first {
			seg(cur, first)
		}
		if end != nil {
			end(closed)
		}
		cur = first
		open = false
	}
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			finish(false)
			cur, first = pts[0], pts[0]
			open = true
			if start != nil {
				start(cur)
			}
		case path.CmdLineTo:
			if !open {
				continue
			}
			seg(cur, pts[0])
			cur = pts[0]
		case path.CmdQuadTo:
			if !open {
				continue
			}
			r.quadSegments(cur, pts[0], pts[1], seg)
			cur = pts[1]
		case path.CmdCubeTo:
			if !open {
				continue
			}
			r.cubeSegments(cur, pts[0], pts[1], pts[2], seg)
			cur = pts[2]
		case path.CmdClose:
			finish(true)
		}
	}
	finish(false)
}

// Fill computes the coverage of the interior of p under the given fill
// rule and passes it to emit, one scanline at a time. Rows without
// coverage are skipped.
func (r *Rasteriser) Fill(p path.Path, rule FillRule, emit EmitFunc) {
	r.beginEdges()
	r.walk(p, true, nil, r.addEdge, nil)
	r.scan(rule, emit)
}

func (r *Rasteriser) beginEdges() {
	r.edges = r.edges[:0]
	r.haveBox = false
}

// addEdge transforms a user space segment to device space and records it.
func (r *Rasteriser) addEdge(a, b vec.Vec2) {
	p0 := r.toDevice(a)
	p1 := r.toDevice(b)
	dy := p1.Y - p0.Y
	if math.Abs(dy) < horizontalEdge {
		return
	}
	r.edges = append(r.edges, edge{
		x0: p0.X, y0: p0.Y,
		x1: p1.X, y1: p1.Y,
		dxdy: (p1.X - p0.X) / dy,
	})

	xl, xh := min(p0.X, p1.X), max(p0.X, p1.X)
	yl, yh := min(p0.Y, p1.Y), max(p0.Y, p1.Y)
	if !r.haveBox {
		r.boxXMin, r.boxXMax, r.boxYMin, r.boxYMax = xl, xh, yl, yh
		r.haveBox = true
		return
	}
	r.boxXMin = min(r.boxXMin, xl)
	r.boxXMax = max(r.boxXMax, xh)
	r.boxYMin = min(r.boxYMin, yl)
	r.boxYMax = max(r.boxYMax, yh)
}

// scan rasterises the collected edges with an active edge list.
//
// For every pixel two quantities are accumulated: cover, the signed
// vertical extent of the edge pieces inside the pixel column, and area,
// the part of that extent lying to the right of the edge within the
// pixel. Summing cover from the left and adding area gives the signed
// area of the path inside each pixel.
func (r *Rasteriser) scan(rule FillRule, emit EmitFunc) {
	if len(r.edges) == 0 {
		return
	}
	xMin := max(int(math.Floor(r.boxXMin)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.boxXMax))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.boxYMin)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.boxYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}

	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yMin(), b.yMin())
	})
	r.active = r.active[:0]
	next := 0

	for y := yMin; y < yMax; y++ {
		top, bottom := float64(y), float64(y+1)

		for next < len(r.edges) && r.edges[next].yMin() < bottom {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.yMax() <= top {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			if r.accumulate(e, y, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		if rule == EvenOdd {
			integrateEvenOdd(r.cover, r.area)
		} else {
			integrateNonZero(r.cover, r.area)
		}
		if row, offs := trim(r.cover); row != nil {
			emit(y, xMin+offs, row)
		}
	}
}

// accumulate adds the contribution of e within scanline y.
// Pieces left of the clip region are added to the first pixel, pieces to
// the right are dropped. The result tells whether anything was added.
func (r *Rasteriser) accumulate(e *edge, y, xMin, xMax int) bool {
	top := max(float64(y), e.yMin())
	bottom := min(float64(y+1), e.yMax())
	if bottom <= top {
		return false
	}
	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(top-e.y0)
	xBottom := e.x0 + e.dxdy*(bottom-e.y0)
	left, right := min(xTop, xBottom), max(xTop, xBottom)
	pixLeft := int(math.Floor(left))
	pixRight := int(math.Floor(right))

	if pixLeft >= xMax {
		return false
	}

	// split the piece where it crosses vertical pixel boundaries
	r.crossings = append(r.crossings[:0], top, bottom)
	if pixLeft != pixRight {
		dydx := 1 / e.dxdy
		for x := pixLeft + 1; x <= pixRight; x++ {
			yx := e.y0 + dydx*(float64(x)-e.x0)
			if yx > top && yx < bottom {
				r.crossings = append(r.crossings, yx)
			}
		}
		slices.Sort(r.crossings)
	}

	for i := 1; i < len(r.crossings); i++ {
		a, b := r.crossings[i-1], r.crossings[i]
		if b <= a {
			continue
		}
		c := sign * float32(b-a)
		xm := e.x0 + e.dxdy*((a+b)/2-e.y0)
		pix := int(math.Floor(xm))
		switch {
		case pix < xMin:
			r.cover[0] += c
			r.area[0] += c
		case pix < xMax:
			k := pix - xMin
			r.cover[k] += c
			r.area[k] += c * float32(1-(xm-float64(pix)))
		}
	}
	return true
}

// integrateNonZero turns accumulated cover and area into coverage for
// the nonzero winding rule. The result is stored in cover.
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

// integrateEvenOdd turns accumulated cover and area into coverage for the
// even-odd rule. The result is stored in cover.
func integrateEvenOdd(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		v -= 2 * float32(int(v/2))
		if v > 1 {
			v = 2 - v
		}
		cover[i] = v
	}
}

// trim removes zero coverage at both ends of a row.
func trim(row []float32) ([]float32, int) {
	lo, hi := 0, len(row)
	for lo < hi && row[lo] == 0 {
		lo++
	}
	for hi > lo && row[hi-1] == 0 {
		hi--
	}
	if lo == hi {
		return nil, 0
	}
	return row[lo:hi], lo
}
