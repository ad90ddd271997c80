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
	"maps"
	"slices"

	"seehuhn.de/go/maprender/filter"
)

// Visitor transforms style tree nodes.
//
// Every method receives a node of the input tree and returns the node to
// use in its place. Returning nil removes the node from its parent.
// Methods must not modify their argument.
type Visitor interface {
	VisitStyle(s *Style) *Style
	VisitFeatureTypeStyle(fts *FeatureTypeStyle) *FeatureTypeStyle
	VisitRule(r *Rule) *Rule
	VisitTransformation(t *Transformation) *Transformation

	VisitPointSymbolizer(s *PointSymbolizer) Symbolizer
	VisitLineSymbolizer(s *LineSymbolizer) Symbolizer
	VisitPolygonSymbolizer(s *PolygonSymbolizer) Symbolizer
	VisitTextSymbolizer(s *TextSymbolizer) Symbolizer
	VisitRasterSymbolizer(s *RasterSymbolizer) Symbolizer

	VisitFill(f *Fill) *Fill
	VisitStroke(s *Stroke) *Stroke
	VisitGraphic(g *Graphic) *Graphic
	VisitMark(m *Mark) *Mark
	VisitFont(f *Font) *Font
	VisitHalo(h *Halo) *Halo
	VisitDisplacement(d *Displacement) *Displacement
	VisitColorMap(c *ColorMap) *ColorMap
	VisitPointPlacement(p *PointPlacement) LabelPlacement
	VisitLinePlacement(p *LinePlacement) LabelPlacement

	VisitFilter(f filter.Filter) filter.Filter
	VisitExpression(e filter.Expression) filter.Expression
}

// Duplicator is a Visitor which returns a deep copy of every node.
//
// Other visitors embed a Duplicator and override the methods for the
// nodes they change. The embedding visitor must set Outer to itself, so
// that children are dispatched through the overriding methods.
type Duplicator struct {
	Outer Visitor
}

func (d *Duplicator) v() Visitor {
	if d.Outer != nil {
		return d.Outer
	}
	return d
}

// Apply visits the root of s with v and returns the resulting tree.
func Apply(v Visitor, s *Style) *Style {
	return v.VisitStyle(s)
}

// Copy returns a deep copy of s.
func Copy(s *Style) *Style {
	return Apply(&Duplicator{}, s)
}

// VisitStyle implements [Visitor].
func (d *Duplicator) VisitStyle(s *Style) *Style {
	if s == nil {
		return nil
	}
	v := d.v()
	res := &Style{Name: s.Name}
	for _, fts := range s.FeatureTypeStyles {
		if c := v.VisitFeatureTypeStyle(fts); c != nil {
			res.FeatureTypeStyles = append(res.FeatureTypeStyles, c)
		}
	}
	return res
}

// VisitFeatureTypeStyle implements [Visitor].
func (d *Duplicator) VisitFeatureTypeStyle(fts *FeatureTypeStyle) *FeatureTypeStyle {
	if fts == nil {
		return nil
	}
	v := d.v()
	res := &FeatureTypeStyle{
		Name:           fts.Name,
		Transformation: v.VisitTransformation(fts.Transformation),
		Evaluation:     fts.Evaluation,
	}
	for _, r := range fts.Rules {
		if c := v.VisitRule(r); c != nil {
			res.Rules = append(res.Rules, c)
		}
	}
	return res
}

// VisitRule implements [Visitor].
func (d *Duplicator) VisitRule(r *Rule) *Rule {
	if r == nil {
		return nil
	}
	v := d.v()
	res := &Rule{
		Name:     r.Name,
		Filter:   v.VisitFilter(r.Filter),
		Else:     r.Else,
		MinScale: r.MinScale,
		MaxScale: r.MaxScale,
	}
	for _, s := range r.Symbolizers {
		if s == nil {
			continue
		}
		if c := s.Accept(v); c != nil {
			res.Symbolizers = append(res.Symbolizers, c)
		}
	}
	return res
}

// VisitTransformation implements [Visitor].
func (d *Duplicator) VisitTransformation(t *Transformation) *Transformation {
	if t == nil {
		return nil
	}
	v := d.v()
	res := &Transformation{Name: t.Name}
	if t.Args != nil {
		res.Args = make([]Argument, len(t.Args))
		for i, a := range t.Args {
			res.Args[i] = Argument{Name: a.Name, Value: v.VisitExpression(a.Value)}
		}
	}
	return res
}

// VisitPointSymbolizer implements [Visitor].
func (d *Duplicator) VisitPointSymbolizer(s *PointSymbolizer) Symbolizer {
	return &PointSymbolizer{
		Geometry: s.Geometry,
		Graphic:  d.v().VisitGraphic(s.Graphic),
	}
}

// VisitLineSymbolizer implements [Visitor].
func (d *Duplicator) VisitLineSymbolizer(s *LineSymbolizer) Symbolizer {
	v := d.v()
	return &LineSymbolizer{
		Geometry:            s.Geometry,
		Stroke:              v.VisitStroke(s.Stroke),
		PerpendicularOffset: v.VisitExpression(s.PerpendicularOffset),
	}
}

// VisitPolygonSymbolizer implements [Visitor].
func (d *Duplicator) VisitPolygonSymbolizer(s *PolygonSymbolizer) Symbolizer {
	v := d.v()
	return &PolygonSymbolizer{
		Geometry:     s.Geometry,
		Fill:         v.VisitFill(s.Fill),
		Stroke:       v.VisitStroke(s.Stroke),
		Displacement: v.VisitDisplacement(s.Displacement),
	}
}

// VisitTextSymbolizer implements [Visitor].
func (d *Duplicator) VisitTextSymbolizer(s *TextSymbolizer) Symbolizer {
	v := d.v()
	res := &TextSymbolizer{
		Geometry: s.Geometry,
		Label:    v.VisitExpression(s.Label),
		Font:     v.VisitFont(s.Font),
		Fill:     v.VisitFill(s.Fill),
		Halo:     v.VisitHalo(s.Halo),
		Options:  maps.Clone(s.Options),
	}
	if s.Placement != nil {
		res.Placement = s.Placement.Accept(v)
	}
	return res
}

// VisitRasterSymbolizer implements [Visitor].
func (d *Duplicator) VisitRasterSymbolizer(s *RasterSymbolizer) Symbolizer {
	v := d.v()
	return &RasterSymbolizer{
		Opacity:  v.VisitExpression(s.Opacity),
		ColorMap: v.VisitColorMap(s.ColorMap),
	}
}

// VisitFill implements [Visitor].
func (d *Duplicator) VisitFill(f *Fill) *Fill {
	if f == nil {
		return nil
	}
	v := d.v()
	return &Fill{
		Color:   v.VisitExpression(f.Color),
		Opacity: v.VisitExpression(f.Opacity),
	}
}

// VisitStroke implements [Visitor].
func (d *Duplicator) VisitStroke(s *Stroke) *Stroke {
	if s == nil {
		return nil
	}
	v := d.v()
	return &Stroke{
		Color:      v.VisitExpression(s.Color),
		Width:      v.VisitExpression(s.Width),
		Opacity:    v.VisitExpression(s.Opacity),
		LineCap:    s.LineCap,
		LineJoin:   s.LineJoin,
		DashArray:  slices.Clone(s.DashArray),
		DashOffset: v.VisitExpression(s.DashOffset),
	}
}

// VisitGraphic implements [Visitor].
func (d *Duplicator) VisitGraphic(g *Graphic) *Graphic {
	if g == nil {
		return nil
	}
	v := d.v()
	return &Graphic{
		Mark:         v.VisitMark(g.Mark),
		Size:         v.VisitExpression(g.Size),
		Opacity:      v.VisitExpression(g.Opacity),
		Rotation:     v.VisitExpression(g.Rotation),
		Displacement: v.VisitDisplacement(g.Displacement),
	}
}

// VisitMark implements [Visitor].
func (d *Duplicator) VisitMark(m *Mark) *Mark {
	if m == nil {
		return nil
	}
	v := d.v()
	return &Mark{
		WellKnownName: m.WellKnownName,
		Fill:          v.VisitFill(m.Fill),
		Stroke:        v.VisitStroke(m.Stroke),
	}
}

// VisitFont implements [Visitor].
func (d *Duplicator) VisitFont(f *Font) *Font {
	if f == nil {
		return nil
	}
	return &Font{Family: f.Family, Size: d.v().VisitExpression(f.Size)}
}

// VisitHalo implements [Visitor].
func (d *Duplicator) VisitHalo(h *Halo) *Halo {
	if h == nil {
		return nil
	}
	v := d.v()
	return &Halo{Radius: v.VisitExpression(h.Radius), Fill: v.VisitFill(h.Fill)}
}

// VisitDisplacement implements [Visitor].
func (d *Duplicator) VisitDisplacement(disp *Displacement) *Displacement {
	if disp == nil {
		return nil
	}
	v := d.v()
	return &Displacement{X: v.VisitExpression(disp.X), Y: v.VisitExpression(disp.Y)}
}

// VisitColorMap implements [Visitor].
func (d *Duplicator) VisitColorMap(c *ColorMap) *ColorMap {
	if c == nil {
		return nil
	}
	v := d.v()
	res := &ColorMap{Type: c.Type}
	if c.Entries != nil {
		res.Entries = make([]ColorMapEntry, len(c.Entries))
		for i, e := range c.Entries {
			e.Opacity = v.VisitExpression(e.Opacity)
			res.Entries[i] = e
		}
	}
	return res
}

// VisitPointPlacement implements [Visitor].
func (d *Duplicator) VisitPointPlacement(p *PointPlacement) LabelPlacement {
	v := d.v()
	return &PointPlacement{
		AnchorX:      v.VisitExpression(p.AnchorX),
		AnchorY:      v.VisitExpression(p.AnchorY),
		Displacement: v.VisitDisplacement(p.Displacement),
		Rotation:     v.VisitExpression(p.Rotation),
	}
}

// VisitLinePlacement implements [Visitor].
func (d *Duplicator) VisitLinePlacement(p *LinePlacement) LabelPlacement {
	return &LinePlacement{PerpendicularOffset: d.v().VisitExpression(p.PerpendicularOffset)}
}

// VisitFilter implements [Visitor].
func (d *Duplicator) VisitFilter(f filter.Filter) filter.Filter {
	return filter.CopyFilter(f)
}

// VisitExpression implements [Visitor].
func (d *Duplicator) VisitExpression(e filter.Expression) filter.Expression {
	return filter.CopyExpression(e)
}
