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

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Polygon returns a path consisting of one closed subpath per ring.
// Rings with fewer than two points are skipped.
func Polygon(rings ...[]vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, ring := range rings {
			if len(ring) < 2 {
				continue
			}
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

// Polyline returns a path consisting of one open subpath per line.
// A line with a single point is a dot, which is visible when stroked
// with round or square caps.
func Polyline(lines ...[]vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, line := range lines {
			if len(line) == 0 {
				continue
			}
			if !yield(path.CmdMoveTo, []vec.Vec2{line[0]}) {
				return
			}
			for _, p := range line[1:] {
				if !yield(path.CmdLineTo, []vec.Vec2{p}) {
					return
				}
			}
		}
	}
}

// circleK is the control point distance for approximating a quarter
// circle of radius 1 by a cubic Bézier curve.
const circleK = 0.5522847498307936

// Circle returns a closed path approximating the circle with centre c and
// radius r by four cubic Bézier curves.
func Circle(c vec.Vec2, r float64) path.Path {
	k := circleK * r
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if !yield(path.CmdMoveTo, []vec.Vec2{{X: c.X + r, Y: c.Y}}) {
			return
		}
		quarters := [4][3]vec.Vec2{
			{{X: c.X + r, Y: c.Y + k}, {X: c.X + k, Y: c.Y + r}, {X: c.X, Y: c.Y + r}},
			{{X: c.X - k, Y: c.Y + r}, {X: c.X - r, Y: c.Y + k}, {X: c.X - r, Y: c.Y}},
			{{X: c.X - r, Y: c.Y - k}, {X: c.X - k, Y: c.Y - r}, {X: c.X, Y: c.Y - r}},
			{{X: c.X + k, Y: c.Y - r}, {X: c.X + r, Y: c.Y - k}, {X: c.X + r, Y: c.Y}},
		}
		for _, q := range quarters {
			if !yield(path.CmdCubeTo, q[:]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// Mark returns the outline of a well-known mark, scaled to fit the square
// [-0.5, 0.5]×[-0.5, 0.5]. The second result is false for unknown names.
//
// Supported names are square, circle, triangle, star, cross and x.
func Mark(name string) (path.Path, bool) {
	switch name {
	case "square":
		return Polygon([]vec.Vec2{
			{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5},
		}), true
	case "circle":
		return Circle(vec.Vec2{}, 0.5), true
	case "triangle":
		h := math.Sqrt(3) / 4
		return Polygon([]vec.Vec2{
			{X: -0.5, Y: -h}, {X: 0.5, Y: -h}, {X: 0, Y: h},
		}), true
	case "star":
		pts := make([]vec.Vec2, 10)
		for i := range pts {
			r := 0.5
			if i%2 == 1 {
				r = 0.2
			}
			phi := math.Pi/2 + float64(i)*math.Pi/5
			pts[i] = vec.Vec2{X: r * math.Cos(phi), Y: r * math.Sin(phi)}
		}
		return Polygon(pts), true
	case "cross":
		const a, b = 0.5, 0.125
		return Polygon([]vec.Vec2{
			{X: -b, Y: -a}, {X: b, Y: -a}, {X: b, Y: -b}, {X: a, Y: -b},
			{X: a, Y: b}, {X: b, Y: b}, {X: b, Y: a}, {X: -b, Y: a},
			{X: -b, Y: b}, {X: -a, Y: b}, {X: -a, Y: -b}, {X: -b, Y: -b},
		}), true
	case "x":
		// the cross, rotated by 45°
		const a, b = 0.5, 0.125
		c := math.Sqrt2 / 2
		src := []vec.Vec2{
			{X: -b, Y: -a}, {X: b, Y: -a}, {X: b, Y: -b}, {X: a, Y: -b},
			{X: a, Y: b}, {X: b, Y: b}, {X: b, Y: a}, {X: -b, Y: a},
			{X: -b, Y: b}, {X: -a, Y: b}, {X: -a, Y: -b}, {X: -b, Y: -b},
		}
		pts := make([]vec.Vec2, len(src))
		for i, p := range src {
			pts[i] = vec.Vec2{X: c * (p.X - p.Y), Y: c * (p.X + p.Y)}
		}
		return Polygon(pts), true
	}
	return nil, false
}
