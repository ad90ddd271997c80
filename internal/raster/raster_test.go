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
	"math"
	"slices"
	"sort"
	"strings"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/maprender/testcases"
)

// renderCase renders a test case into a coverage buffer in row-major
// order.
func renderCase(r *Rasteriser, tc testcases.TestCase) []float32 {
	w, h := tc.Width, tc.Height
	r.Reset(rect.Rect{URx: float64(w), URy: float64(h)})
	if tc.CTM != (matrix.Matrix{}) {
		r.CTM = tc.CTM
	}

	buf := make([]float32, w*h)
	emit := func(y, xMin int, coverage []float32) {
		copy(buf[y*w+xMin:], coverage)
	}

	switch op := tc.Op.(type) {
	case testcases.Fill:
		rule := NonZero
		if op.Rule == testcases.EvenOdd {
			rule = EvenOdd
		}
		r.Fill(tc.Path, rule, emit)
	case testcases.Stroke:
		r.Width = op.Width
		r.Cap = op.Cap
		r.Join = op.Join
		r.MiterLimit = op.MiterLimit
		r.Dash = op.Dash
		r.DashPhase = op.DashPhase
		r.Stroke(tc.Path, emit)
	}
	return buf
}

func allCases() map[string]testcases.TestCase {
	res := make(map[string]testcases.TestCase)
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			res[category+"_"+tc.Name] = tc
		}
	}
	return res
}

func TestCaseArea(t *testing.T) {
	r := NewRasteriser(rect.Rect{})
	cases := allCases()
	for _, name := range slices.Sorted(maps.Keys(cases)) {
		tc := cases[name]
		if tc.Area == 0 {
			continue
		}
		t.Run(name, func(t *testing.T) {
			var total float64
			for _, c := range renderCase(r, tc) {
				if c < 0 || c > 1 {
					t.Fatalf("coverage %g out of range", c)
				}
				total += float64(c)
			}
			if tol := 0.02*tc.Area + 0.5; math.Abs(total-tc.Area) > tol {
				t.Errorf("area = %.2f, want %.2f", total, tc.Area)
			}
		})
	}
}

// TestFillAgainstVector compares nonzero fills with the output of
// golang.org/x/image/vector.
func TestFillAgainstVector(t *testing.T) {
	r := NewRasteriser(rect.Rect{})
	cases := allCases()
	for _, name := range slices.Sorted(maps.Keys(cases)) {
		tc := cases[name]
		op, ok := tc.Op.(testcases.Fill)
		if !ok || op.Rule != testcases.NonZero {
			continue
		}
		t.Run(name, func(t *testing.T) {
			w, h := tc.Width, tc.Height
			ref := renderVector(tc)
			actual := make([]byte, w*h)
			for i, c := range renderCase(r, tc) {
				actual[i] = byte(max(0, min(255, int(c*255+0.5))))
			}
			if err := compareImages(ref, actual); err != nil {
				t.Error(err)
			}
		})
	}
}

func renderVector(tc testcases.TestCase) []byte {
	m := tc.CTM
	if m == (matrix.Matrix{}) {
		m = matrix.Identity
	}
	dev := func(p vec.Vec2) (float32, float32) {
		return float32(m[0]*p.X + m[2]*p.Y + m[4]), float32(m[1]*p.X + m[3]*p.Y + m[5])
	}

	v := vector.NewRasterizer(tc.Width, tc.Height)
	for cmd, pts := range tc.Path {
		switch cmd {
		case path.CmdMoveTo:
			v.MoveTo(dev(pts[0]))
		case path.CmdLineTo:
			v.LineTo(dev(pts[0]))
		case path.CmdQuadTo:
			x1, y1 := dev(pts[0])
			x2, y2 := dev(pts[1])
			v.QuadTo(x1, y1, x2, y2)
		case path.CmdCubeTo:
			x1, y1 := dev(pts[0])
			x2, y2 := dev(pts[1])
			x3, y3 := dev(pts[2])
			v.CubeTo(x1, y1, x2, y2, x3, y3)
		case path.CmdClose:
			v.ClosePath()
		}
	}
	dst := image.NewAlpha(image.Rect(0, 0, tc.Width, tc.Height))
	v.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst.Pix
}

func compareImages(expected, actual []byte) error {
	total := len(expected)

	diffs := make([]int, total)
	for i := range total {
		diff := int(expected[i]) - int(actual[i])
		if diff < 0 {
			diff = -diff
		}
		diffs[i] = diff
	}
	sort.Ints(diffs)

	p80 := diffs[int(math.Round(0.80*float64(total-1)))]
	p95 := diffs[int(math.Round(0.95*float64(total-1)))]
	p99 := diffs[int(math.Round(0.99*float64(total-1)))]

	var failures []string
	if p80 > 0 {
		failures = append(failures, fmt.Sprintf("80th percentile diff is %d (want 0)", p80))
	}
	if p95 >= 64 {
		failures = append(failures, fmt.Sprintf("95th percentile diff is %d (want <64)", p95))
	}
	if p99 >= 128 {
		failures = append(failures, fmt.Sprintf("99th percentile diff is %d (want <128)", p99))
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}

// TestTriangleCoverage verifies exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1)→close has a diagonal edge y = x/10.
// Each pixel X should have coverage (2X+1)/20: 0.05, 0.15, ..., 0.95.
func TestTriangleCoverage(t *testing.T) {
	triangle := Polygon([]vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 1}})

	r := NewRasteriser(rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 1})

	coverage := make([]float32, 10)
	r.Fill(triangle, NonZero, func(y, xMin int, cov []float32) {
		if y == 0 {
			copy(coverage[xMin:], cov)
		}
	})

	const epsilon = 1e-6
	for x := range 10 {
		expected := float32(2*x+1) / 20.0
		if math.Abs(float64(coverage[x]-expected)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, expected, coverage[x])
		}
	}
}

func TestEvenOddHole(t *testing.T) {
	tc := testcases.All["fill"][5]
	if tc.Name != "ring_evenodd" {
		t.Fatalf("unexpected test case %q", tc.Name)
	}
	buf := renderCase(NewRasteriser(rect.Rect{}), tc)
	at := func(x, y int) float32 { return buf[y*tc.Width+x] }
	if c := at(32, 32); c != 0 {
		t.Errorf("coverage inside hole = %g", c)
	}
	if c := at(12, 12); c != 1 {
		t.Errorf("coverage inside ring = %g", c)
	}
	if c := at(2, 2); c != 0 {
		t.Errorf("coverage outside = %g", c)
	}
}

func TestStrokeRows(t *testing.T) {
	r := NewRasteriser(rect.Rect{URx: 20, URy: 20})
	r.Width = 2
	rows := map[int]float32{}
	r.Stroke(Polyline([]vec.Vec2{{X: 0, Y: 10}, {X: 20, Y: 10}}), func(y, xMin int, cov []float32) {
		for _, c := range cov {
			rows[y] += c
		}
	})
	if len(rows) != 2 {
		t.Fatalf("stroke touches rows %v, want 9 and 10", slices.Sorted(maps.Keys(rows)))
	}
	for _, y := range []int{9, 10} {
		if math.Abs(float64(rows[y])-20) > 1e-4 {
			t.Errorf("row %d: total coverage %g, want 20", y, rows[y])
		}
	}
}

func TestDashGaps(t *testing.T) {
	r := NewRasteriser(rect.Rect{URx: 40, URy: 10})
	r.Width = 2
	r.Dash = []float64{8, 4}
	cols := make([]float32, 40)
	r.Stroke(Polyline([]vec.Vec2{{X: 0, Y: 5}, {X: 40, Y: 5}}), func(y, xMin int, cov []float32) {
		for i, c := range cov {
			cols[xMin+i] += c
		}
	})
	for x, c := range cols {
		inDash := x%12 < 8
		if inDash && math.Abs(float64(c)-2) > 1e-4 {
			t.Errorf("column %d: coverage %g, want 2", x, c)
		}
		if !inDash && c > 1e-4 {
			t.Errorf("column %d: coverage %g inside a gap", x, c)
		}
	}
}

func TestMiterLimit(t *testing.T) {
	sharp := Polyline([]vec.Vec2{{X: 10, Y: 50}, {X: 32, Y: 10}, {X: 34, Y: 50}})
	area := func(join graphics.LineJoinStyle, limit float64) float64 {
		r := NewRasteriser(rect.Rect{URx: 64, URy: 64})
		r.Width = 4
		r.Join = join
		r.MiterLimit = limit
		var total float64
		r.Stroke(sharp, func(y, xMin int, cov []float32) {
			for _, c := range cov {
				total += float64(c)
			}
		})
		return total
	}

	bevel := area(graphics.LineJoinBevel, 10)
	limited := area(graphics.LineJoinMiter, 1.5)
	miter := area(graphics.LineJoinMiter, 100)
	if math.Abs(bevel-limited) > 1e-3 {
		t.Errorf("limited miter area %g differs from bevel area %g", limited, bevel)
	}
	if miter <= bevel+1 {
		t.Errorf("miter area %g not larger than bevel area %g", miter, bevel)
	}
}

func TestMarks(t *testing.T) {
	for _, name := range []string{"square", "circle", "triangle", "star", "cross", "x"} {
		p, ok := Mark(name)
		if !ok {
			t.Errorf("mark %q not found", name)
			continue
		}
		r := NewRasteriser(rect.Rect{URx: 64, URy: 64})
		r.CTM = matrix.Matrix{40, 0, 0, 40, 32, 32}
		var total float64
		r.Fill(p, NonZero, func(y, xMin int, cov []float32) {
			if y < 12 || y >= 52 || xMin < 12 || xMin+len(cov) > 52 {
				t.Errorf("mark %q exceeds its box in row %d", name, y)
			}
			for _, c := range cov {
				total += float64(c)
			}
		})
		if total <= 0 || total > 1600 {
			t.Errorf("mark %q: area %g", name, total)
		}
	}
	if _, ok := Mark("hexagon"); ok {
		t.Error("unknown mark reported as found")
	}
}

func TestCanvas(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := NewCanvas(img)
	square := Polygon([]vec.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}})

	c.Fill(square, NonZero, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 0.5)
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 64, G: 64, B: 64, A: 128}) {
		t.Errorf("half transparent grey: got %v", got)
	}

	c.Fill(square, NonZero, color.RGBA{R: 255, A: 255}, 1)
	if got := img.RGBAAt(2, 2); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("opaque red over grey: got %v", got)
	}

	c.Fill(square, NonZero, color.RGBA{B: 255, A: 255}, 0)
	if got := img.RGBAAt(2, 2); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("zero opacity changed the image: got %v", got)
	}
}
