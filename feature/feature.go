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

// Package feature defines vector features and lazily iterated feature
// collections.
package feature

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/crs"
)

// ErrDataAccess marks failures of the underlying data source while a
// collection is being iterated.
var ErrDataAccess = errors.New("data access failed")

// GeometryAttribute is the attribute name under which a feature exposes its
// default geometry.
const GeometryAttribute = "geometry"

// Feature is a single vector feature.
type Feature struct {
	ID         string
	Geometry   orb.Geometry
	Properties map[string]any
}

// Attribute returns the value of the named attribute.
// The name [GeometryAttribute] refers to the default geometry unless a
// property of that name exists.
func (f *Feature) Attribute(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	if v, ok := f.Properties[name]; ok {
		return v, true
	}
	if name == GeometryAttribute && f.Geometry != nil {
		return f.Geometry, true
	}
	return nil, false
}

// Collection is a finite sequence of features with a known envelope.
//
// All returns a fresh iterator on every call. The iterator yields
//   - (f, nil) for every feature,
//   - (f, err) for a feature which could not be produced correctly; iteration
//     continues with the next feature,
//   - (nil, err) if the data source failed; this ends the iteration.
//
// Implementations are not required to be safe for concurrent iteration.
type Collection interface {
	Bounds() orb.Bound
	CRS() crs.CRS
	All() iter.Seq2[*Feature, error]
}

// Querier is implemented by collections which can restrict iteration to a
// region without scanning every feature.
type Querier interface {
	Query(b orb.Bound) Collection
}

// Count iterates c and returns the number of features produced.
// Feature-level errors are counted; the first data access error is returned.
func Count(c Collection) (int, error) {
	n := 0
	for f, err := range c.All() {
		if f == nil && err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
