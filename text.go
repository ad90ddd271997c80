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
	"math"

	"github.com/cockroachdb/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/filter"
	"seehuhn.de/go/maprender/style"
)

// labelFace is the bitmap face used for all labels. Other sizes are
// obtained by scaling the rendered glyphs.
var labelFace font.Face = basicfont.Face7x13

// renderLabel draws text into an alpha mask whose height is the font
// size in pixels.
func renderLabel(text string, size float64) *image.Alpha {
	m := labelFace.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	width := font.MeasureString(labelFace, text).Ceil()
	if width <= 0 || height <= 0 {
		return nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: labelFace,
		Dot:  fixed.P(0, ascent),
	}
	d.DrawString(text)

	k := size / float64(height)
	if math.Abs(k-1) < 0.01 {
		return mask
	}
	w := max(int(math.Round(float64(width)*k)), 1)
	h := max(int(math.Round(float64(height)*k)), 1)
	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)
	return scaled
}

func (p *painter) text(s *style.TextSymbolizer, f *feature.Feature) error {
	label, err := filter.String(s.Label, f, "")
	if err != nil {
		return errors.Wrap(err, "label")
	}
	label = norm.NFC.String(label)
	if label == "" {
		return nil
	}
	g, err := geometry(f, s.Geometry)
	if err != nil || g == nil {
		return err
	}

	size := float64(defaultFontSize)
	if s.Font != nil {
		if size, err = filter.Float(s.Font.Size, f, defaultFontSize); err != nil {
			return errors.Wrap(err, "font size")
		}
	}
	fill, err := evalFill(s.Fill, f, defaultStroke)
	if err != nil {
		return err
	}
	var halo paint
	haloRadius := 0
	if s.Halo != nil {
		r, err := filter.Float(s.Halo.Radius, f, defaultHaloWidth)
		if err != nil {
			return errors.Wrap(err, "halo radius")
		}
		haloRadius = int(math.Round(r))
		if halo, err = evalFill(s.Halo.Fill, f, defaultHalo); err != nil {
			return err
		}
	}
	if size <= 0 {
		return nil
	}

	// anchor (0, 0) is the lower left corner of the label
	ax, ay := 0.0, 0.5
	var shift vec.Vec2
	var at []vec.Vec2
	switch pl := s.Placement.(type) {
	case *style.LinePlacement:
		ax, ay = 0.5, 0.5
		offset, err := filter.Float(pl.PerpendicularOffset, f, 0)
		if err != nil {
			return errors.Wrap(err, "perpendicular offset")
		}
		open, closed := p.linework(g, nil, nil)
		for _, l := range append(open, closed...) {
			if mid, dir, ok := midpoint(l); ok {
				at = append(at, mid.Add(vec.Vec2{X: dir.Y, Y: -dir.X}.Mul(offset)))
			}
		}
		if len(at) == 0 {
			at = p.anchors(g, nil)
		}
	case *style.PointPlacement:
		if ax, err = filter.Float(pl.AnchorX, f, ax); err != nil {
			return errors.Wrap(err, "anchor")
		}
		if ay, err = filter.Float(pl.AnchorY, f, ay); err != nil {
			return errors.Wrap(err, "anchor")
		}
		if shift, err = displacement(pl.Displacement, f); err != nil {
			return err
		}
		at = p.anchors(g, nil)
	default:
		at = p.anchors(g, nil)
	}
	if len(at) == 0 {
		return nil
	}

	mask := renderLabel(label, size)
	if mask == nil {
		return nil
	}
	w, h := float64(mask.Rect.Dx()), float64(mask.Rect.Dy())
	img := p.canvas.Image
	for _, pt := range at {
		left := int(math.Round(pt.X - ax*w + shift.X))
		top := int(math.Round(pt.Y - (1-ay)*h + shift.Y))
		if haloRadius > 0 && halo.opacity > 0 {
			src := solid(withOpacity(halo.color, halo.opacity))
			for dy := -haloRadius; dy <= haloRadius; dy++ {
				for dx := -haloRadius; dx <= haloRadius; dx++ {
					if dx == 0 && dy == 0 || dx*dx+dy*dy > haloRadius*haloRadius {
						continue
					}
					r := mask.Rect.Add(image.Pt(left+dx, top+dy))
					xdraw.DrawMask(img, r, src, image.Point{}, mask, image.Point{}, xdraw.Over)
				}
			}
		}
		src := solid(withOpacity(fill.color, fill.opacity))
		r := mask.Rect.Add(image.Pt(left, top))
		xdraw.DrawMask(img, r, src, image.Point{}, mask, image.Point{}, xdraw.Over)
	}
	return nil
}
