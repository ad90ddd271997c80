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

// Package style defines the style tree used to symbolize map layers,
// a visitor framework producing transformed copies of style trees, and the
// rule selection which decides which symbolizers apply to a feature.
//
// Style trees are never modified by this package. All visitors return new
// trees which share no nodes with their input.
package style

import (
	"seehuhn.de/go/maprender/filter"
)

// Style is the root of a style tree.
type Style struct {
	Name              string
	FeatureTypeStyles []*FeatureTypeStyle
}

// EvaluationMode selects how the rules of a FeatureTypeStyle are matched.
type EvaluationMode int

const (
	// EvaluateAll applies every matching rule.
	EvaluateAll EvaluationMode = iota

	// EvaluateFirst stops after the first matching rule.
	EvaluateFirst
)

func (m EvaluationMode) String() string {
	if m == EvaluateFirst {
		return "first"
	}
	return "all"
}

// FeatureTypeStyle is a group of rules which is painted in its own pass.
// If Transformation is set, the layer data is replaced by the result of
// the named rendering transformation before the rules are applied.
type FeatureTypeStyle struct {
	Name           string
	Rules          []*Rule
	Transformation *Transformation
	Evaluation     EvaluationMode
}

// Rule attaches symbolizers to the features accepted by a filter, within a
// range of scale denominators.
//
// The scale range is [MinScale, MaxScale); a MaxScale <= 0 means that there
// is no upper bound. A rule with a nil Filter which is not an else-rule
// matches every feature. Else-rules apply only to features which no other
// rule of the same FeatureTypeStyle matched.
type Rule struct {
	Name        string
	Filter      filter.Filter
	Else        bool
	MinScale    float64
	MaxScale    float64
	Symbolizers []Symbolizer
}

// Transformation names a rendering transformation and its arguments.
type Transformation struct {
	Name string
	Args []Argument
}

// Argument is a single transformation argument.
// Arguments without a name are matched to parameters by position.
type Argument struct {
	Name  string
	Value filter.Expression
}

// Fill describes how an area is painted.
// Color is a "#rrggbb" or "#rrggbbaa" string.
type Fill struct {
	Color   filter.Expression
	Opacity filter.Expression
}

// Displacement shifts a symbol by a number of pixels.
type Displacement struct {
	X, Y filter.Expression
}

// Font selects the typeface of a label.
type Font struct {
	Family string
	Size   filter.Expression
}

// Halo draws an outline around the glyphs of a label.
type Halo struct {
	Radius filter.Expression
	Fill   *Fill
}

// Mark is a well-known shape used as a point symbol.
// Supported names are "square", "circle", "triangle", "star", "cross"
// and "x".
type Mark struct {
	WellKnownName string
	Fill          *Fill
	Stroke        *Stroke
}

// Graphic is a point symbol.
// A nil Mark draws a grey square.
type Graphic struct {
	Mark         *Mark
	Size         filter.Expression
	Opacity      filter.Expression
	Rotation     filter.Expression
	Displacement *Displacement
}

// ColorMapType selects how values are mapped to colours.
type ColorMapType int

// These are the supported colour map types.
const (
	ColorMapRamp ColorMapType = iota
	ColorMapIntervals
	ColorMapValues
)

// ColorMap maps raster values to colours.
// Entries are sorted by increasing Quantity.
type ColorMap struct {
	Type    ColorMapType
	Entries []ColorMapEntry
}

// ColorMapEntry is one stop of a colour map.
type ColorMapEntry struct {
	Color    string
	Opacity  filter.Expression
	Quantity float64
	Label    string
}
