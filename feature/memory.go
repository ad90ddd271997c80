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

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/crs"
)

// minExtent is the smallest side length of an index rectangle.
// The R-tree rejects degenerate rectangles, e.g. for point features.
const minExtent = 1e-9

// Memory is an in-memory collection with an R-tree spatial index.
// Features are iterated in insertion order.
type Memory struct {
	crs      crs.CRS
	features []*Feature
	bounds   orb.Bound
	index    *rtreego.Rtree
}

// indexed wraps a feature for storage in the R-tree.
type indexed struct {
	pos  int
	rect rtreego.Rect
}

func (e *indexed) Bounds() rtreego.Rect {
	return e.rect
}

// NewMemory builds an indexed collection from the given features.
// Features without geometry are kept but never returned by Query.
func NewMemory(c crs.CRS, features ...*Feature) *Memory {
	m := &Memory{
		crs:      c,
		features: features,
		index:    rtreego.NewTree(2, 25, 50),
	}
	first := true
	for i, f := range features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if first {
			m.bounds = b
			first = false
		} else {
			m.bounds = m.bounds.Union(b)
		}
		m.index.Insert(&indexed{pos: i, rect: toRect(b)})
	}
	return m
}

func toRect(b orb.Bound) rtreego.Rect {
	point := rtreego.Point{b.Min[0], b.Min[1]}
	lengths := []float64{
		max(b.Max[0]-b.Min[0], minExtent),
		max(b.Max[1]-b.Min[1], minExtent),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Bounds implements [Collection].
func (m *Memory) Bounds() orb.Bound {
	return m.bounds
}

// CRS implements [Collection].
func (m *Memory) CRS() crs.CRS {
	return m.crs
}

// Len returns the number of features in m.
func (m *Memory) Len() int {
	return len(m.features)
}

// All implements [Collection].
func (m *Memory) All() iter.Seq2[*Feature, error] {
	return sliceSeq(m.features)
}

// Query implements [Querier]. The result keeps insertion order.
func (m *Memory) Query(b orb.Bound) Collection {
	hits := m.index.SearchIntersect(toRect(b))
	mask := make([]bool, len(m.features))
	for _, h := range hits {
		mask[h.(*indexed).pos] = true
	}
	var sel []*Feature
	for i, f := range m.features {
		if mask[i] {
			sel = append(sel, f)
		}
	}
	return &slice{crs: m.crs, bounds: b, features: sel}
}

// slice is a plain collection over a fixed list of features.
type slice struct {
	crs      crs.CRS
	bounds   orb.Bound
	features []*Feature
}

// FromSlice returns a collection iterating the given features.
// The bounds are computed from the feature geometries.
func FromSlice(c crs.CRS, features ...*Feature) Collection {
	s := &slice{crs: c, features: features}
	first := true
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		if first {
			s.bounds = f.Geometry.Bound()
			first = false
		} else {
			s.bounds = s.bounds.Union(f.Geometry.Bound())
		}
	}
	return s
}

func (s *slice) Bounds() orb.Bound { return s.bounds }
func (s *slice) CRS() crs.CRS      { return s.crs }

func (s *slice) All() iter.Seq2[*Feature, error] {
	return sliceSeq(s.features)
}

func sliceSeq(features []*Feature) iter.Seq2[*Feature, error] {
	return func(yield func(*Feature, error) bool) {
		for _, f := range features {
			if !yield(f, nil) {
				return
			}
		}
	}
}
