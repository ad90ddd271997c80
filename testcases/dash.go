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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

var dashCases = []TestCase{
	{
		Name:   "dash_basic",
		Path:   polyline(pt(5, 32), pt(59, 32)),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{8, 4},
		},
		// dashes 0-8, 12-20, 24-32, 36-44, 48-54
		Area: 38 * 4,
	},
	{
		// a single element is used for both dashes and gaps
		Name:   "dash_single_element",
		Path:   polyline(pt(5, 32), pt(59, 32)),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{10},
		},
		Area: 30 * 4,
	},
	{
		Name:   "dash_phase",
		Path:   polyline(pt(5, 32), pt(59, 32)),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{10, 10},
			DashPhase:  5,
		},
		// dashes 0-5, 15-25, 35-45
		Area: 25 * 4,
	},
	{
		Name:   "dash_round_dots",
		Path:   polyline(pt(5, 32), pt(59, 32)),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapRound,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{0, 10},
		},
		// dots at 5, 15, ..., 55
		Area: 6 * 4 * math.Pi,
	},
	{
		Name:   "dash_corner",
		Path:   polyline(pt(10, 50), pt(32, 14), pt(54, 50)),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{12, 5},
		},
	},
	{
		// the last dash continues through the start of the ring
		Name:   "dash_closed",
		Path:   polygon([]vec.Vec2{pt(22, 22), pt(42, 22), pt(42, 42), pt(22, 42)}),
		Width:  64,
		Height: 64,
		Op: Stroke{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
			Dash:       []float64{30, 10},
			DashPhase:  15,
		},
	},
}
