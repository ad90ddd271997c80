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
	"image"
	"image/color"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/style"
)

// rasterStyle is a resolved raster symbolizer.
type rasterStyle struct {
	opacity float64
	cmap    *colorMap
}

// colorMap is a resolved colour map.
type colorMap struct {
	kind     style.ColorMapType
	colors   []color.NRGBA
	quantity []float64
}

func evalRaster(s *style.RasterSymbolizer, f *feature.Feature) (*rasterStyle, error) {
	op, err := evalOpacity(s.Opacity, f)
	if err != nil {
		return nil, errors.Wrap(err, "raster opacity")
	}
	rs := &rasterStyle{opacity: op}
	if s.ColorMap == nil || len(s.ColorMap.Entries) == 0 {
		return rs, nil
	}

	cm := &colorMap{kind: s.ColorMap.Type}
	for i, e := range s.ColorMap.Entries {
		c, err := ParseColor(e.Color)
		if err != nil {
			return nil, errors.Wrapf(err, "colour map entry %d", i)
		}
		a, err := evalOpacity(e.Opacity, f)
		if err != nil {
			return nil, errors.Wrapf(err, "colour map entry %d", i)
		}
		cm.colors = append(cm.colors, withOpacity(c, a))
		cm.quantity = append(cm.quantity, e.Quantity)
	}
	rs.cmap = cm
	return rs, nil
}

// lookup maps a band value to a colour.
//
// Ramps interpolate linearly between entries and extend the end colours.
// For intervals, an entry covers the values below its quantity which are
// not covered by an earlier entry. Values must match an entry exactly.
// Values outside the map are transparent.
func (cm *colorMap) lookup(v float64) color.NRGBA {
	n := len(cm.quantity)
	switch cm.kind {
	case style.ColorMapIntervals:
		for i, q := range cm.quantity {
			if v < q {
				return cm.colors[i]
			}
		}
	case style.ColorMapValues:
		for i, q := range cm.quantity {
			if v == q {
				return cm.colors[i]
			}
		}
	default:
		if v <= cm.quantity[0] {
			return cm.colors[0]
		}
		for i := 1; i < n; i++ {
			q0, q1 := cm.quantity[i-1], cm.quantity[i]
			if v > q1 {
				continue
			}
			t := 0.0
			if q1 > q0 {
				t = (v - q0) / (q1 - q0)
			}
			return lerp(cm.colors[i-1], cm.colors[i], t)
		}
		return cm.colors[n-1]
	}
	return color.NRGBA{}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// apply converts a single-band image to colour, using the grey level
// (0-255) of every pixel as the band value.
func (cm *colorMap) apply(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			dst.SetNRGBA(x, y, cm.lookup(float64(g.Y)))
		}
	}
	return dst
}

// tile draws a coverage tile covering the map extent b.
func (p *painter) tile(img image.Image, b orb.Bound, rs *rasterStyle) {
	if img == nil || rs.opacity == 0 {
		return
	}
	ul := p.toPixel(orb.Point{b.Min[0], b.Max[1]})
	lr := p.toPixel(orb.Point{b.Max[0], b.Min[1]})
	r := image.Rect(
		int(math.Round(ul.X)), int(math.Round(ul.Y)),
		int(math.Round(lr.X)), int(math.Round(lr.Y)),
	)
	dst := p.canvas.Image
	if r.Intersect(dst.Bounds()).Empty() {
		return
	}

	var src image.Image = img
	if rs.cmap != nil {
		src = rs.cmap.apply(img)
	}
	if rs.opacity >= 1 {
		xdraw.NearestNeighbor.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
		return
	}

	tmp := image.NewRGBA(r)
	xdraw.NearestNeighbor.Scale(tmp, r, src, src.Bounds(), xdraw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(rs.opacity * 255))})
	xdraw.DrawMask(dst, r, tmp, r.Min, mask, image.Point{}, xdraw.Over)
}

// coverageFeature is the pseudo-feature against which the rules of a
// coverage layer are evaluated.
func coverageFeature(name string, b orb.Bound) *feature.Feature {
	return &feature.Feature{ID: name, Geometry: b, Properties: map[string]any{}}
}
