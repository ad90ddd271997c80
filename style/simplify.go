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
	"seehuhn.de/go/maprender/filter"
)

// Simplifier is a Visitor which removes parts of a style tree that can
// never have an effect.
//
// Filters and expressions are constant folded. Rules whose filter is
// Exclude or whose scale range is empty are removed, Include filters are
// dropped, symbolizers which paint nothing are removed, and feature type
// styles without rules are removed. Rules left without symbolizers are
// kept, since they still suppress else-rules.
//
// Simplifying a simplified tree returns an equal tree.
type Simplifier struct {
	Duplicator
}

// NewSimplifier returns a ready to use Simplifier.
func NewSimplifier() *Simplifier {
	s := &Simplifier{}
	s.Outer = s
	return s
}

// Simplify returns a simplified copy of st.
func Simplify(st *Style) *Style {
	return Apply(NewSimplifier(), st)
}

// VisitFeatureTypeStyle implements [Visitor].
func (s *Simplifier) VisitFeatureTypeStyle(fts *FeatureTypeStyle) *FeatureTypeStyle {
	res := s.Duplicator.VisitFeatureTypeStyle(fts)
	if res == nil || len(res.Rules) == 0 {
		return nil
	}
	return res
}

// VisitRule implements [Visitor].
func (s *Simplifier) VisitRule(r *Rule) *Rule {
	res := s.Duplicator.VisitRule(r)
	if res == nil {
		return nil
	}
	switch res.Filter {
	case filter.Exclude:
		return nil
	case filter.Include:
		res.Filter = nil
	}
	if res.MaxScale > 0 && res.MinScale >= res.MaxScale {
		return nil
	}
	return res
}

// VisitPointSymbolizer implements [Visitor].
func (s *Simplifier) VisitPointSymbolizer(ps *PointSymbolizer) Symbolizer {
	res := s.Duplicator.VisitPointSymbolizer(ps).(*PointSymbolizer)
	if g := res.Graphic; g != nil && (isZero(g.Size) || isZero(g.Opacity)) {
		return nil
	}
	return res
}

// VisitLineSymbolizer implements [Visitor].
func (s *Simplifier) VisitLineSymbolizer(ls *LineSymbolizer) Symbolizer {
	res := s.Duplicator.VisitLineSymbolizer(ls).(*LineSymbolizer)
	if invisibleStroke(res.Stroke) {
		return nil
	}
	return res
}

// VisitPolygonSymbolizer implements [Visitor].
func (s *Simplifier) VisitPolygonSymbolizer(ps *PolygonSymbolizer) Symbolizer {
	res := s.Duplicator.VisitPolygonSymbolizer(ps).(*PolygonSymbolizer)
	if invisibleFill(res.Fill) && invisibleStroke(res.Stroke) {
		return nil
	}
	return res
}

// VisitTextSymbolizer implements [Visitor].
func (s *Simplifier) VisitTextSymbolizer(ts *TextSymbolizer) Symbolizer {
	res := s.Duplicator.VisitTextSymbolizer(ts).(*TextSymbolizer)
	if res.Label == nil {
		return nil
	}
	if l, ok := res.Label.(*filter.Literal); ok && (l.Value == nil || l.Value == "") {
		return nil
	}
	return res
}

// VisitRasterSymbolizer implements [Visitor].
func (s *Simplifier) VisitRasterSymbolizer(rs *RasterSymbolizer) Symbolizer {
	res := s.Duplicator.VisitRasterSymbolizer(rs).(*RasterSymbolizer)
	if isZero(res.Opacity) {
		return nil
	}
	return res
}

// VisitFilter implements [Visitor].
func (s *Simplifier) VisitFilter(f filter.Filter) filter.Filter {
	return filter.SimplifyFilter(f)
}

// VisitExpression implements [Visitor].
func (s *Simplifier) VisitExpression(e filter.Expression) filter.Expression {
	return filter.SimplifyExpression(e)
}

func invisibleFill(f *Fill) bool {
	return f == nil || isZero(f.Opacity)
}

func invisibleStroke(st *Stroke) bool {
	return st == nil || isZero(st.Width) || isZero(st.Opacity)
}

// isZero reports whether e is a numeric literal with value 0.
func isZero(e filter.Expression) bool {
	l, ok := e.(*filter.Literal)
	if !ok {
		return false
	}
	x, ok := filter.ToFloat(l.Value)
	return ok && x == 0
}
