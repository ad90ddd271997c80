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

package feature

import (
	"iter"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"seehuhn.de/go/maprender/crs"
)

// MapFunc transforms a single feature.
// The argument must not be modified; return a new feature instead.
// Returning (nil, nil) removes the feature from the collection.
type MapFunc func(f *Feature) (*Feature, error)

// mapped applies a MapFunc to every feature at iteration time.
type mapped struct {
	src    Collection
	crs    crs.CRS
	bounds orb.Bound
	fn     MapFunc
}

// Map returns a collection which applies fn lazily to every feature of src.
// A failure of fn is reported for that feature only; iteration continues.
func Map(src Collection, c crs.CRS, bounds orb.Bound, fn MapFunc) Collection {
	return &mapped{src: src, crs: c, bounds: bounds, fn: fn}
}

func (m *mapped) Bounds() orb.Bound { return m.bounds }
func (m *mapped) CRS() crs.CRS      { return m.crs }

func (m *mapped) All() iter.Seq2[*Feature, error] {
	return func(yield func(*Feature, error) bool) {
		for f, err := range m.src.All() {
			if err != nil {
				if !yield(f, err) {
					return
				}
				continue
			}
			g, err := m.fn(f)
			if err != nil {
				g = f
			} else if g == nil {
				continue
			}
			if !yield(g, err) {
				return
			}
		}
	}
}

// WithGeometry returns a shallow copy of f carrying the geometry g.
func (f *Feature) WithGeometry(g orb.Geometry) *Feature {
	return &Feature{ID: f.ID, Geometry: g, Properties: f.Properties}
}

// Reproject returns a collection whose features are projected into the
// reference system to. Projection happens per feature during iteration.
// Features whose projected coordinates are not finite are reported as
// feature-level errors.
func Reproject(src Collection, to crs.CRS, proj orb.Projection) Collection {
	bounds := crs.TransformBound(src.Bounds(), proj)
	return Map(src, to, bounds, func(f *Feature) (*Feature, error) {
		if f.Geometry == nil {
			return f, nil
		}
		g := project.Geometry(orb.Clone(f.Geometry), proj)
		if !finite(g.Bound()) {
			return nil, errors.Newf("feature %s cannot be projected to %s", f.ID, to)
		}
		return f.WithGeometry(g), nil
	})
}

func finite(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
