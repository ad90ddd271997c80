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

package raster

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// Canvas paints coverage onto an RGBA image, using Porter-Duff source-over
// compositing in premultiplied alpha.
type Canvas struct {
	Image *image.RGBA

	// R is the rasteriser used by Fill and Stroke. Its parameters may be
	// changed between calls.
	R *Rasteriser
}

// NewCanvas returns a canvas drawing onto img. The rasteriser clip
// covers the image bounds.
func NewCanvas(img *image.RGBA) *Canvas {
	b := img.Bounds()
	clip := rect.Rect{
		LLx: float64(b.Min.X),
		LLy: float64(b.Min.Y),
		URx: float64(b.Max.X),
		URy: float64(b.Max.Y),
	}
	return &Canvas{Image: img, R: NewRasteriser(clip)}
}

// Fill paints the interior of p.
func (c *Canvas) Fill(p path.Path, rule FillRule, col color.Color, opacity float64) {
	c.R.Fill(p, rule, c.Painter(col, opacity))
}

// Stroke paints the outline of p, using the stroke parameters of c.R.
func (c *Canvas) Stroke(p path.Path, col color.Color, opacity float64) {
	c.R.Stroke(p, c.Painter(col, opacity))
}

// Painter returns an EmitFunc which composites col, scaled by opacity
// and by the emitted coverage, over the image.
func (c *Canvas) Painter(col color.Color, opacity float64) EmitFunc {
	img := c.Image
	bounds := img.Bounds()
	sr, sg, sb, sa := col.RGBA()
	opacity = min(max(opacity, 0), 1)
	if sa == 0 || opacity == 0 {
		return func(int, int, []float32) {}
	}
	r := float64(sr) / 257
	g := float64(sg) / 257
	b := float64(sb) / 257
	a := float64(sa) / 257

	return func(y, xMin int, coverage []float32) {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			return
		}
		for i, cv := range coverage {
			x := xMin + i
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			k := float64(cv) * opacity
			if k <= 0 {
				continue
			}
			inv := 1 - a*k/255
			off := img.PixOffset(x, y)
			px := img.Pix[off : off+4 : off+4]
			px[0] = toByte(r*k + float64(px[0])*inv)
			px[1] = toByte(g*k + float64(px[1])*inv)
			px[2] = toByte(b*k + float64(px[2])*inv)
			px[3] = toByte(a*k + float64(px[3])*inv)
		}
	}
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
