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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

var fillCases = []TestCase{
	{
		Name:   "triangle",
		Path:   polygon([]vec.Vec2{pt(10, 10), pt(54, 10), pt(54, 54)}),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		Area:   968,
	},
	{
		Name:   "rectangle",
		Path:   rectangle(10, 10, 44, 44),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		Area:   1156,
	},
	{
		Name:   "rectangle_fractional",
		Path:   rectangle(10.25, 5.5, 20.75, 9.5),
		Width:  32,
		Height: 16,
		Op:     Fill{Rule: NonZero},
		Area:   42,
	},
	{
		Name:   "rectangle_clipped",
		Path:   rectangle(-10, -10, 20, 20),
		Width:  32,
		Height: 32,
		Op:     Fill{Rule: NonZero},
		Area:   400,
	},
	{
		Name:   "circle",
		Path:   circle(32, 32, 20, false),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		Area:   400 * math.Pi,
	},
	{
		Name: "ring_evenodd",
		Path: polygon(
			[]vec.Vec2{pt(8, 8), pt(56, 8), pt(56, 56), pt(8, 56)},
			[]vec.Vec2{pt(20, 20), pt(44, 20), pt(44, 44), pt(20, 44)},
		),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: EvenOdd},
		Area:   2304 - 576,
	},
	{
		Name: "ring_nonzero_reversed",
		Path: polygon(
			[]vec.Vec2{pt(8, 8), pt(56, 8), pt(56, 56), pt(8, 56)},
			[]vec.Vec2{pt(20, 20), pt(20, 44), pt(44, 44), pt(44, 20)},
		),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		Area:   2304 - 576,
	},
	{
		Name: "ring_nonzero_same",
		Path: polygon(
			[]vec.Vec2{pt(8, 8), pt(56, 8), pt(56, 56), pt(8, 56)},
			[]vec.Vec2{pt(20, 20), pt(44, 20), pt(44, 44), pt(20, 44)},
		),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		Area:   2304,
	},
	{
		Name:   "star_nonzero",
		Path:   star(32, 32, 28),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
	},
	{
		Name:   "star_evenodd",
		Path:   star(32, 32, 28),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: EvenOdd},
	},
	{
		Name:   "scaled",
		Path:   rectangle(0, 0, 10, 10),
		Width:  64,
		Height: 64,
		Op:     Fill{Rule: NonZero},
		CTM:    matrix.Matrix{3, 0, 0, 3, 2, 2},
		Area:   900,
	},
}
