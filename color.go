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
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/filter"
	"seehuhn.de/go/maprender/style"
)

// Default paint, following the SLD defaults.
var (
	defaultFill   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	defaultStroke = color.NRGBA{A: 0xff}
	defaultHalo   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// ParseColor parses a colour of the form "#rrggbb" or "#rrggbbaa".
// The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, errors.Mark(errors.Newf("invalid colour %q", s), filter.ErrEvaluation)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Mark(errors.Newf("invalid colour %q", s), filter.ErrEvaluation)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// evalColor evaluates a colour expression. A nil expression gives def.
func evalColor(e filter.Expression, f *feature.Feature, def color.NRGBA) (color.NRGBA, error) {
	s, err := filter.String(e, f, "")
	if err != nil {
		return color.NRGBA{}, err
	}
	if s == "" {
		return def, nil
	}
	return ParseColor(s)
}

// evalOpacity evaluates an opacity expression and clamps it to [0, 1].
// A nil expression gives 1.
func evalOpacity(e filter.Expression, f *feature.Feature) (float64, error) {
	v, err := filter.Float(e, f, 1)
	if err != nil {
		return 0, err
	}
	return min(max(v, 0), 1), nil
}

// paint is a resolved fill.
type paint struct {
	color   color.NRGBA
	opacity float64
}

func evalFill(fill *style.Fill, f *feature.Feature, def color.NRGBA) (paint, error) {
	if fill == nil {
		return paint{color: def, opacity: 1}, nil
	}
	c, err := evalColor(fill.Color, f, def)
	if err != nil {
		return paint{}, errors.Wrap(err, "fill colour")
	}
	op, err := evalOpacity(fill.Opacity, f)
	if err != nil {
		return paint{}, errors.Wrap(err, "fill opacity")
	}
	return paint{color: c, opacity: op}, nil
}

// withOpacity returns c with its alpha scaled by opacity.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*min(max(opacity, 0), 1) + 0.5)
	return c
}
