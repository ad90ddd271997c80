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
	"fmt"
	"image"
	"image/color"
	"maps"
	"slices"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/maprender/testcases"
)

// BenchmarkRasteriserO benchmarks our rasteriser drawing an "O" shape.
func BenchmarkRasteriserO(b *testing.B) {
	sizes := []int{20, 200, 2000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{LLx: 0, LLy: 0, URx: float64(size), URy: float64(size)}
			r := NewRasteriser(clip)

			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			center := vec.Vec2{X: float64(size) / 2, Y: float64(size) / 2}
			o := makeOPath(center, float64(size)*0.45, float64(size)*0.30)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(clip)
				r.Fill(o, EvenOdd, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, c := range coverage {
						row[i] = uint8(c * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorO benchmarks x/image/vector drawing an "O" shape.
func BenchmarkVectorO(b *testing.B) {
	sizes := []int{20, 200, 2000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)

			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})

			center := float32(size) / 2
			outerR := float32(size) * 0.45
			innerR := float32(size) * 0.30

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				addCircleToVector(r, center, center, outerR, false)
				addCircleToVector(r, center, center, innerR, true)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// BenchmarkStrokeRoad benchmarks a wide, dashed polyline with round
// joins, as used for road casings.
func BenchmarkStrokeRoad(b *testing.B) {
	const size = 512
	clip := rect.Rect{URx: size, URy: size}
	r := NewRasteriser(clip)

	pts := make([]vec.Vec2, 50)
	for i := range pts {
		pts[i] = vec.Vec2{X: float64(i) * 10, Y: 256 + 100*float64(i%3-1)}
	}
	road := Polyline(pts)

	b.ReportAllocs()
	for b.Loop() {
		r.Reset(clip)
		r.Width = 6
		r.Join = graphics.LineJoinRound
		r.Cap = graphics.LineCapRound
		r.Dash = []float64{20, 10}
		r.Stroke(road, func(y, xMin int, coverage []float32) {})
	}
}

// BenchmarkRasteriseAll measures steady-state performance by reusing a
// single Rasteriser across all test cases.
func BenchmarkRasteriseAll(b *testing.B) {
	var cases []testcases.TestCase
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		cases = append(cases, testcases.All[category]...)
	}

	r := NewRasteriser(rect.Rect{})

	b.ReportAllocs()
	for b.Loop() {
		for _, tc := range cases {
			renderCase(r, tc)
		}
	}
}

// makeOPath creates an "O" shape: the outer circle counter-clockwise, the
// inner circle clockwise.
func makeOPath(c vec.Vec2, outerR, innerR float64) path.Path {
	outer := Circle(c, outerR)
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for cmd, pts := range outer {
			if !yield(cmd, pts) {
				return
			}
		}
		// mirror the circle to reverse its orientation
		for cmd, pts := range Circle(vec.Vec2{}, innerR) {
			mirrored := make([]vec.Vec2, len(pts))
			for i, p := range pts {
				mirrored[i] = vec.Vec2{X: c.X + p.X, Y: c.Y - p.Y}
			}
			if !yield(cmd, mirrored) {
				return
			}
		}
	}
}

// addCircleToVector adds a circle to a vector.Rasterizer using cubic
// Bézier curves.
func addCircleToVector(r *vector.Rasterizer, cx, cy, radius float32, clockwise bool) {
	const k = float32(0.5522847498)
	kr := k * radius

	if clockwise {
		r.MoveTo(cx, cy-radius)
		r.CubeTo(cx-kr, cy-radius, cx-radius, cy-kr, cx-radius, cy)
		r.CubeTo(cx-radius, cy+kr, cx-kr, cy+radius, cx, cy+radius)
		r.CubeTo(cx+kr, cy+radius, cx+radius, cy+kr, cx+radius, cy)
		r.CubeTo(cx+radius, cy-kr, cx+kr, cy-radius, cx, cy-radius)
	} else {
		r.MoveTo(cx, cy-radius)
		r.CubeTo(cx+kr, cy-radius, cx+radius, cy-kr, cx+radius, cy)
		r.CubeTo(cx+radius, cy+kr, cx+kr, cy+radius, cx, cy+radius)
		r.CubeTo(cx-kr, cy+radius, cx-radius, cy+kr, cx-radius, cy)
		r.CubeTo(cx-radius, cy-kr, cx-kr, cy-radius, cx, cy-radius)
	}
	r.ClosePath()
}
