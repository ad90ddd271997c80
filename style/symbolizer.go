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

package style

import (
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/maprender/filter"
)

// Symbolizer describes how a feature or coverage is painted.
//
// Accept dispatches to the matching method of v and returns the node
// produced by the visitor, which may be nil.
type Symbolizer interface {
	Accept(v Visitor) Symbolizer
	isSymbolizer()
}

// Stroke describes how a line is painted.
type Stroke struct {
	Color      filter.Expression
	Width      filter.Expression
	Opacity    filter.Expression
	LineCap    graphics.LineCapStyle
	LineJoin   graphics.LineJoinStyle
	DashArray  []float64
	DashOffset filter.Expression
}

// PointSymbolizer draws a graphic at the location of a feature.
// Geometry names the geometry attribute; empty selects the default
// geometry.
type PointSymbolizer struct {
	Geometry string
	Graphic  *Graphic
}

// LineSymbolizer strokes the outline of a feature.
// PerpendicularOffset shifts the line sideways by a number of pixels;
// positive values shift to the left of the drawing direction.
type LineSymbolizer struct {
	Geometry            string
	Stroke              *Stroke
	PerpendicularOffset filter.Expression
}

// PolygonSymbolizer fills the interior of an area and strokes its
// boundary.
type PolygonSymbolizer struct {
	Geometry     string
	Fill         *Fill
	Stroke       *Stroke
	Displacement *Displacement
}

// TextSymbolizer draws a label.
//
// The option "followLine" with value "true" requests placement along the
// line geometry; without an explicit placement the label is then placed
// with a LinePlacement.
type TextSymbolizer struct {
	Geometry  string
	Label     filter.Expression
	Font      *Font
	Fill      *Fill
	Halo      *Halo
	Placement LabelPlacement
	Options   map[string]string
}

// RasterSymbolizer paints coverage data.
type RasterSymbolizer struct {
	Opacity  filter.Expression
	ColorMap *ColorMap
}

// Accept implements [Symbolizer].
func (s *PointSymbolizer) Accept(v Visitor) Symbolizer { return v.VisitPointSymbolizer(s) }

// Accept implements [Symbolizer].
func (s *LineSymbolizer) Accept(v Visitor) Symbolizer { return v.VisitLineSymbolizer(s) }

// Accept implements [Symbolizer].
func (s *PolygonSymbolizer) Accept(v Visitor) Symbolizer { return v.VisitPolygonSymbolizer(s) }

// Accept implements [Symbolizer].
func (s *TextSymbolizer) Accept(v Visitor) Symbolizer { return v.VisitTextSymbolizer(s) }

// Accept implements [Symbolizer].
func (s *RasterSymbolizer) Accept(v Visitor) Symbolizer { return v.VisitRasterSymbolizer(s) }

func (*PointSymbolizer) isSymbolizer()   {}
func (*LineSymbolizer) isSymbolizer()    {}
func (*PolygonSymbolizer) isSymbolizer() {}
func (*TextSymbolizer) isSymbolizer()    {}
func (*RasterSymbolizer) isSymbolizer()  {}

// LabelPlacement positions a label relative to its geometry.
type LabelPlacement interface {
	Accept(v Visitor) LabelPlacement
	isPlacement()
}

// PointPlacement anchors a label at a point.
// The anchor is given as a fraction of the label size: (0, 0) is the
// lower left corner, (0.5, 0.5) the centre.
type PointPlacement struct {
	AnchorX, AnchorY filter.Expression
	Displacement     *Displacement
	Rotation         filter.Expression
}

// LinePlacement places a label along a line.
type LinePlacement struct {
	PerpendicularOffset filter.Expression
}

// Accept implements [LabelPlacement].
func (p *PointPlacement) Accept(v Visitor) LabelPlacement { return v.VisitPointPlacement(p) }

// Accept implements [LabelPlacement].
func (p *LinePlacement) Accept(v Visitor) LabelPlacement { return v.VisitLinePlacement(p) }

func (*PointPlacement) isPlacement() {}
func (*LinePlacement) isPlacement()  {}
