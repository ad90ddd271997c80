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

// Package testcases collects geometry rendering cases for the rasteriser.
//
// Where a case has a simple closed-form answer, the expected amount of ink
// is recorded in [TestCase.Area], so that implementations can be checked
// without reference images.
package testcases

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// TestCase defines a single rendering test.
type TestCase struct {
	Name   string        // lowercase a-z and _ only
	Path   path.Path     // the geometry to render
	Width  int           // canvas width in pixels
	Height int           // canvas height in pixels
	Op     Operation     // fill or stroke
	CTM    matrix.Matrix // transformation matrix (zero-value means no transform)

	// Area is the expected sum of the coverage values, in square pixels.
	// Zero means that the area is not checked.
	Area float64
}

// Operation is the rendering operation to apply to the path.
type Operation interface {
	isOperation()
}

// FillRule specifies the rule for determining interior points.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// Fill specifies a fill operation.
type Fill struct {
	Rule FillRule
}

func (Fill) isOperation() {}

// Stroke specifies a stroke operation.
type Stroke struct {
	Width      float64                // line width (>0)
	Cap        graphics.LineCapStyle  // LineCapButt, LineCapRound, LineCapSquare
	Join       graphics.LineJoinStyle // LineJoinMiter, LineJoinRound, LineJoinBevel
	MiterLimit float64                // miter limit
	Dash       []float64              // dash pattern (nil for solid)
	DashPhase  float64                // dash phase offset
}

func (Stroke) isOperation() {}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// polygon builds a path with one closed subpath per ring.
func polygon(rings ...[]vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, ring := range rings {
			if !yield(path.CmdMoveTo, []vec.Vec2{ring[0]}) {
				return
			}
			for _, p := range ring[1:] {
				if !yield(path.CmdLineTo, []vec.Vec2{p}) {
					return
				}
			}
			if !yield(path.CmdClose, nil) {
				return
			}
		}
	}
}

// polyline builds an open path through the given points.
func polyline(pts ...vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if !yield(path.CmdMoveTo, []vec.Vec2{pts[0]}) {
			return
		}
		for _, p := range pts[1:] {
			if !yield(path.CmdLineTo, []vec.Vec2{p}) {
				return
			}
		}
	}
}

// rectangle builds a rectangular path.
func rectangle(x1, y1, x2, y2 float64) path.Path {
	return polygon([]vec.Vec2{pt(x1, y1), pt(x2, y1), pt(x2, y2), pt(x1, y2)})
}

// circle builds a circle from four cubic Bézier curves, counter-clockwise
// in device space if ccw is set.
func circle(cx, cy, r float64, ccw bool) path.Path {
	const k = 0.5522847498
	kr := k * r
	s := 1.0
	if ccw {
		s = -1
	}
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if !yield(path.CmdMoveTo, []vec.Vec2{pt(cx+r, cy)}) {
			return
		}
		quarters := [][]vec.Vec2{
			{pt(cx+r, cy+s*kr), pt(cx+kr, cy+s*r), pt(cx, cy+s*r)},
			{pt(cx-kr, cy+s*r), pt(cx-r, cy+s*kr), pt(cx-r, cy)},
			{pt(cx-r, cy-s*kr), pt(cx-kr, cy-s*r), pt(cx, cy-s*r)},
			{pt(cx+kr, cy-s*r), pt(cx+r, cy-s*kr), pt(cx+r, cy)},
		}
		for _, q := range quarters {
			if !yield(path.CmdCubeTo, q) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// star builds a self-intersecting five-pointed star.
func star(cx, cy, r float64) path.Path {
	pts := make([]vec.Vec2, 5)
	for i, k := range []int{0, 2, 4, 1, 3} {
		angle := float64(k)*2*math.Pi/5 - math.Pi/2
		pts[i] = pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return polygon(pts)
}
