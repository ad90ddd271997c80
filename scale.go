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

package maprender

import (
	"math"

	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/crs"
)

const (
	// pixelSize is the standardised rendering pixel size in metres
	// (0.28 mm), as used by WMS and SLD scale denominators.
	pixelSize = 0.00028

	// metresPerDegree is the length of one degree on the equator of the
	// WGS84 ellipsoid.
	metresPerDegree = 2 * math.Pi * 6378137 / 360
)

// ScaleDenominator computes the map scale denominator for an extent
// rendered at the given width in pixels. Geographic extents are measured
// in degrees along the equator, all other extents in metres.
func ScaleDenominator(bounds orb.Bound, ref crs.CRS, width int) float64 {
	if width <= 0 {
		return 0
	}
	ground := bounds.Max[0] - bounds.Min[0]
	if ref.Geographic {
		ground *= metresPerDegree
	}
	return ground / (float64(width) * pixelSize)
}

// Scale returns the scale denominator used for rule selection.
func (m *MapContent) Scale() float64 {
	if m.ScaleDenominator > 0 {
		return m.ScaleDenominator
	}
	return ScaleDenominator(m.Bounds, m.CRS, m.Width)
}
