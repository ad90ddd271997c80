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

package raster

import (
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// polyline is a flattened subpath in user coordinates.
// Consecutive points are distinct; closed rings do not repeat their first
// point.
type polyline struct {
	pts    []vec.Vec2
	closed bool
}

// polygon is a closed outline in user coordinates.
type polygon []vec.Vec2

// Stroke computes the coverage of the outline of p, using the line width,
// caps, joins and dash pattern of r, and passes it to emit.
//
// The outline is assembled from one quadrilateral per segment plus join
// and cap pieces. All pieces are given the same orientation and are
// filled together with the nonzero rule, so that overlaps are painted
// only once.
func (r *Rasteriser) Stroke(p path.Path, emit EmitFunc) {
	if r.Width <= 0 {
		return
	}

	r.lines = r.lines[:0]
	var cur []vec.Vec2
	r.walk(p, false,
		func(pt vec.Vec2) {
			cur = []vec.Vec2{pt}
		},
		func(_, b vec.Vec2) {
			if b.Sub(cur[len(cur)-1]).Length() > zeroLength {
				cur = append(cur, b)
			}
		},
		func(closed bool) {
			if closed && len(cur) > 1 && cur[len(cur)-1].Sub(cur[0]).Length() <= zeroLength {
				cur = cur[:len(cur)-1]
			}
			r.lines = append(r.lines, polyline{pts: cur, closed: closed})
		})

	lines := r.lines
	if len(r.Dash) > 0 {
		lines = r.dashed(lines)
	}

	r.polys = r.polys[:0]
	d := r.Width / 2
	for _, ln := range lines {
		r.outline(ln, d)
	}
	r.fillPolygons(emit)
}

// fillPolygons fills r.polys with the nonzero rule, after orienting all
// of them counter-clockwise.
func (r *Rasteriser) fillPolygons(emit EmitFunc) {
	r.beginEdges()
	for _, poly := range r.polys {
		n := len(poly)
		if n < 3 {
			continue
		}
		a := signedArea(poly)
		switch {
		case a > 0:
			for i := range n {
				r.addEdge(poly[i], poly[(i+1)%n])
			}
		case a < 0:
			for i := range n {
				r.addEdge(poly[(i+1)%n], poly[i])
			}
		}
	}
	r.scan(NonZero, emit)
}

func signedArea(poly polygon) float64 {
	var a float64
	n := len(poly)
	for i := range n {
		p, q := poly[i], poly[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// normal returns t rotated by 90° counter-clockwise.
func normal(t vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -t.Y, Y: t.X}
}

// outline appends the pieces of the stroke outline of ln to r.polys.
func (r *Rasteriser) outline(ln polyline, d float64) {
	pts := ln.pts
	n := len(pts)
	switch {
	case n == 0:
		return
	case n == 1:
		// a dot: only caps with extent produce output
		switch r.Cap {
		case graphics.LineCapRound:
			r.polys = append(r.polys, r.circle(pts[0], d))
		case graphics.LineCapSquare:
			c := pts[0]
			r.polys = append(r.polys, polygon{
				{X: c.X - d, Y: c.Y - d}, {X: c.X + d, Y: c.Y - d},
				{X: c.X + d, Y: c.Y + d}, {X: c.X - d, Y: c.Y + d},
			})
		}
		return
	}

	nSeg := n - 1
	if ln.closed {
		nSeg = n
	}
	tangent := func(i int) vec.Vec2 {
		a, b := pts[i%n], pts[(i+1)%n]
		v := b.Sub(a)
		return v.Mul(1 / v.Length())
	}

	for i := range nSeg {
		a, b := pts[i%n], pts[(i+1)%n]
		off := normal(tangent(i)).Mul(d)
		r.polys = append(r.polys, polygon{a.Add(off), b.Add(off), b.Sub(off), a.Sub(off)})
	}

	if ln.closed {
		for i := range n {
			r.join(pts[i], tangent((i+n-1)%n), tangent(i), d)
		}
		return
	}
	for i := 1; i < n-1; i++ {
		r.join(pts[i], tangent(i-1), tangent(i), d)
	}
	r.lineCap(pts[0], tangent(0).Mul(-1), d)
	r.lineCap(pts[n-1], tangent(nSeg-1), d)
}

// join adds the corner piece at p between segments with unit tangents
// t1 and t2.
func (r *Rasteriser) join(p, t1, t2 vec.Vec2, d float64) {
	cross := t1.X*t2.Y - t1.Y*t2.X
	dot := t1.Dot(t2)
	if math.Abs(cross) < collinear && dot > 0 {
		return
	}
	if r.Join == graphics.LineJoinRound {
		r.polys = append(r.polys, r.circle(p, d))
		return
	}

	// the outer side of a left turn is on the right
	s := d
	if cross > 0 {
		s = -d
	}
	n1 := normal(t1).Mul(s)
	n2 := normal(t2).Mul(s)
	a, b := p.Add(n1), p.Add(n2)

	if r.Join == graphics.LineJoinMiter {
		cosHalf := math.Sqrt((1 + dot) / 2)
		if cosHalf > 1e-9 && 1/cosHalf <= r.MiterLimit {
			bis := n1.Add(n2)
			if l := bis.Length(); l > zeroLength {
				tip := p.Add(bis.Mul(d / cosHalf / l))
				r.polys = append(r.polys, polygon{p, a, tip, b})
				return
			}
		}
	}
	r.polys = append(r.polys, polygon{p, a, b})
}

// lineCap adds the cap at the line end p; t points away from the line.
func (r *Rasteriser) lineCap(p, t vec.Vec2, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.polys = append(r.polys, r.circle(p, d))
	case graphics.LineCapSquare:
		n := normal(t).Mul(d)
		ext := t.Mul(d)
		r.polys = append(r.polys, polygon{
			p.Add(n), p.Add(n).Add(ext), p.Sub(n).Add(ext), p.Sub(n),
		})
	}
}

// circle approximates a circle by a regular polygon. The number of
// vertices keeps the deviation from the circle below the flatness in
// device space, and the vertex radius is chosen so that the polygon has
// the area of the circle.
func (r *Rasteriser) circle(c vec.Vec2, radius float64) polygon {
	devR := max(r.deviceLength(vec.Vec2{X: radius}), r.deviceLength(vec.Vec2{Y: radius}))
	n := 8
	if devR > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devR)
		if step > 0 {
			n = max(n, int(math.Ceil(2*math.Pi/step)))
		}
	}
	alpha := 2 * math.Pi / float64(n)
	rv := radius * math.Sqrt(alpha/math.Sin(alpha))
	res := make(polygon, n)
	for i := range n {
		phi := alpha * float64(i)
		res[i] = vec.Vec2{X: c.X + rv*math.Cos(phi), Y: c.Y + rv*math.Sin(phi)}
	}
	return res
}

// dashed splits lines according to the dash pattern.
// A dash which runs through the start of a closed ring is joined with the
// dash which ends there.
func (r *Rasteriser) dashed(lines []polyline) []polyline {
	pattern := r.Dash
	if len(pattern)%2 == 1 {
		pattern = append(slices.Clone(pattern), pattern...)
	}
	var total float64
	for _, v := range pattern {
		if v < 0 {
			return lines
		}
		total += v
	}
	if total <= 0 {
		return lines
	}

	var out []polyline
	for _, ln := range lines {
		pts := ln.pts
		if len(pts) < 2 {
			out = append(out, ln)
			continue
		}
		if ln.closed {
			pts = append(slices.Clone(pts), pts[0])
		}

		idx := 0
		phase := math.Mod(r.DashPhase, total)
		if phase < 0 {
			phase += total
		}
		for phase > 0 && phase >= pattern[idx] {
			phase -= pattern[idx]
			idx = (idx + 1) % len(pattern)
		}
		rem := pattern[idx] - phase
		on := idx%2 == 0
		startedOn := on
		first := len(out)

		var cur []vec.Vec2
		if on {
			cur = []vec.Vec2{pts[0]}
		}
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			seg := b.Sub(a)
			l := seg.Length()
			t := 0.0
			for rem <= l-t {
				t += rem
				pt := a.Add(seg.Mul(t / l))
				if on {
					out = append(out, polyline{pts: append(cur, pt)})
					cur = nil
				} else {
					cur = []vec.Vec2{pt}
				}
				on = !on
				idx = (idx + 1) % len(pattern)
				rem = pattern[idx]
			}
			rem -= l - t
			if on {
				cur = append(cur, b)
			}
		}

		switch {
		case !on || len(cur) == 0:
		case ln.closed && len(out) == first:
			out = append(out, ln)
		case ln.closed && startedOn:
			out[first].pts = append(cur, out[first].pts[1:]...)
		default:
			out = append(out, polyline{pts: cur})
		}
	}

	// zero length dashes collapse to dots
	for i := range out {
		out[i].pts = dedup(out[i].pts)
	}
	return out
}

func dedup(pts []vec.Vec2) []vec.Vec2 {
	res := pts[:0:0]
	for _, p := range pts {
		if len(res) == 0 || p.Sub(res[len(res)-1]).Length() > zeroLength {
			res = append(res, p)
		}
	}
	return res
}
