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

// Package coverage provides gridded raster data sources.
package coverage

import (
	"image"
	"image/color"
	"image/draw"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/crs"
)

// DefaultTileRows is the strip height used by a Grid with TileRows == 0.
const DefaultTileRows = 64

// Coverage is a georeferenced raster.
//
// Tiles returns a fresh iterator on every call. Tiles are yielded top to
// bottom; a non-nil error ends the iteration.
type Coverage interface {
	Name() string
	Bounds() orb.Bound
	CRS() crs.CRS
	Tiles() iter.Seq2[Tile, error]
}

// Tile is a rectangular piece of a coverage.
// Bounds gives the world extent covered by Image.
type Tile struct {
	Image  image.Image
	Bounds orb.Bound
}

// Grid is an in-memory coverage.
// The image is stretched over Extent; the first image row is the northern
// edge.
type Grid struct {
	ID     string
	Image  image.Image
	Extent orb.Bound
	Ref    crs.CRS

	// TileRows is the number of image rows per tile.
	// The value 0 selects DefaultTileRows.
	TileRows int
}

// Name implements [Coverage].
func (g *Grid) Name() string { return g.ID }

// Bounds implements [Coverage].
func (g *Grid) Bounds() orb.Bound { return g.Extent }

// CRS implements [Coverage].
func (g *Grid) CRS() crs.CRS { return g.Ref }

// Tiles implements [Coverage].
func (g *Grid) Tiles() iter.Seq2[Tile, error] {
	return func(yield func(Tile, error) bool) {
		if g.Image == nil {
			yield(Tile{}, errors.Newf("coverage %q has no image data", g.ID))
			return
		}
		r := g.Image.Bounds()
		if r.Empty() {
			return
		}

		rows := g.TileRows
		if rows <= 0 {
			rows = DefaultTileRows
		}
		sub, canSub := g.Image.(interface {
			SubImage(image.Rectangle) image.Image
		})

		height := g.Extent.Max[1] - g.Extent.Min[1]
		dy := height / float64(r.Dy())
		for y0 := r.Min.Y; y0 < r.Max.Y; y0 += rows {
			y1 := min(y0+rows, r.Max.Y)
			strip := image.Rect(r.Min.X, y0, r.Max.X, y1)

			var img image.Image
			if canSub {
				img = sub.SubImage(strip)
			} else {
				rgba := image.NewRGBA(strip)
				draw.Draw(rgba, strip, g.Image, strip.Min, draw.Src)
				img = rgba
			}

			top := g.Extent.Max[1] - float64(y0-r.Min.Y)*dy
			bottom := g.Extent.Max[1] - float64(y1-r.Min.Y)*dy
			if y1 == r.Max.Y {
				bottom = g.Extent.Min[1]
			}
			tile := Tile{
				Image: img,
				Bounds: orb.Bound{
					Min: orb.Point{g.Extent.Min[0], bottom},
					Max: orb.Point{g.Extent.Max[0], top},
				},
			}
			if !yield(tile, nil) {
				return
			}
		}
	}
}

// Uniform returns a w×h grid filled with a single colour.
func Uniform(id string, c color.Color, w, h int, extent orb.Bound, ref crs.CRS) *Grid {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return &Grid{ID: id, Image: img, Extent: extent, Ref: ref}
}

// Failing returns a coverage whose tile iteration fails with err.
// It stands in for a broken data source.
func Failing(id string, extent orb.Bound, ref crs.CRS, err error) Coverage {
	return &failing{id: id, extent: extent, ref: ref, err: err}
}

type failing struct {
	id     string
	extent orb.Bound
	ref    crs.CRS
	err    error
}

func (f *failing) Name() string      { return f.id }
func (f *failing) Bounds() orb.Bound { return f.extent }
func (f *failing) CRS() crs.CRS      { return f.ref }

func (f *failing) Tiles() iter.Seq2[Tile, error] {
	return func(yield func(Tile, error) bool) {
		yield(Tile{}, f.err)
	}
}
