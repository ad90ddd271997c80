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
	"image/color"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/coverage"
	"seehuhn.de/go/maprender/crs"
	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/style"
)

// MapContent describes one render request: the layers, in painting order,
// and the output raster.
type MapContent struct {
	Layers []Layer

	// Bounds is the map extent in CRS units. The output raster covers
	// exactly this extent.
	Bounds orb.Bound
	CRS    crs.CRS

	// Width and Height give the size of the output raster in pixels.
	Width, Height int

	// Background fills the output before the layers are composited.
	// If nil, the background is transparent.
	Background color.Color

	// ScaleDenominator is used for rule selection. If zero, it is computed
	// from the bounds and the width, see [ScaleDenominator].
	ScaleDenominator float64
}

// Layer is one of [*FeatureLayer] or [*CoverageLayer].
type Layer interface {
	LayerName() string
	isLayer()
}

// FeatureLayer draws vector features.
type FeatureLayer struct {
	Name   string
	Source feature.Collection
	Style  *style.Style
}

// CoverageLayer draws a raster coverage.
type CoverageLayer struct {
	Name   string
	Source coverage.Coverage
	Style  *style.Style
}

// LayerName returns the name used in events and log messages.
func (l *FeatureLayer) LayerName() string { return l.Name }

// LayerName returns the name used in events and log messages.
func (l *CoverageLayer) LayerName() string { return l.Name }

func (*FeatureLayer) isLayer()  {}
func (*CoverageLayer) isLayer() {}

// ErrInvalidRequest marks render requests which cannot be rendered at all.
var ErrInvalidRequest = errors.New("invalid render request")

func (m *MapContent) validate() error {
	switch {
	case m == nil:
		return errors.Mark(errors.New("no map content"), ErrInvalidRequest)
	case m.Width <= 0 || m.Height <= 0:
		return errors.Mark(errors.Newf("invalid raster size %dx%d", m.Width, m.Height), ErrInvalidRequest)
	case !(m.Bounds.Max[0] > m.Bounds.Min[0]) || !(m.Bounds.Max[1] > m.Bounds.Min[1]):
		return errors.Mark(errors.Newf("empty map extent %v", m.Bounds), ErrInvalidRequest)
	case m.ScaleDenominator < 0 || math.IsNaN(m.ScaleDenominator):
		return errors.Mark(errors.Newf("invalid scale denominator %g", m.ScaleDenominator), ErrInvalidRequest)
	}
	for i, l := range m.Layers {
		if l == nil {
			return errors.Mark(errors.Newf("layer %d is nil", i), ErrInvalidRequest)
		}
	}
	return nil
}
