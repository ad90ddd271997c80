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

// OffsetInjector is a Visitor which sets the perpendicular offset of line
// symbolizers and of line label placements to a fixed value.
//
// Text symbolizers with the option "followLine" and no placement receive
// a new LinePlacement carrying the offset. All other nodes are copied
// unchanged.
type OffsetInjector struct {
	Duplicator
	Offset float64
}

// NewOffsetInjector returns an OffsetInjector for the given offset in
// pixels.
func NewOffsetInjector(offset float64) *OffsetInjector {
	v := &OffsetInjector{Offset: offset}
	v.Outer = v
	return v
}

// InjectOffset returns a copy of st with all line offsets set to offset.
func InjectOffset(st *Style, offset float64) *Style {
	return Apply(NewOffsetInjector(offset), st)
}

// VisitLineSymbolizer implements [Visitor].
func (o *OffsetInjector) VisitLineSymbolizer(ls *LineSymbolizer) Symbolizer {
	res := o.Duplicator.VisitLineSymbolizer(ls).(*LineSymbolizer)
	res.PerpendicularOffset = filter.Lit(o.Offset)
	return res
}

// VisitTextSymbolizer implements [Visitor].
func (o *OffsetInjector) VisitTextSymbolizer(ts *TextSymbolizer) Symbolizer {
	res := o.Duplicator.VisitTextSymbolizer(ts).(*TextSymbolizer)
	if res.Placement == nil && res.Options["followLine"] == "true" {
		res.Placement = &LinePlacement{PerpendicularOffset: filter.Lit(o.Offset)}
	}
	return res
}

// VisitLinePlacement implements [Visitor].
func (o *OffsetInjector) VisitLinePlacement(p *LinePlacement) LabelPlacement {
	res := o.Duplicator.VisitLinePlacement(p).(*LinePlacement)
	res.PerpendicularOffset = filter.Lit(o.Offset)
	return res
}
