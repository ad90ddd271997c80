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

// Package crs resolves coordinate reference system identifiers and builds
// point transformations between them.
//
// Only a small table of well-known systems is built in: geographic WGS84
// and spherical Web Mercator, under their common aliases. Callers needing
// more systems supply their own [Resolver].
package crs

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrUnknownCRS marks errors for identifiers which cannot be resolved.
var ErrUnknownCRS = errors.New("unknown coordinate reference system")

// ErrNoTransform marks errors for pairs of systems without a known
// transformation.
var ErrNoTransform = errors.New("no transformation between reference systems")

// CRS identifies a coordinate reference system.
// The zero value means "unspecified"; it is compatible with every system.
type CRS struct {
	// Code is the canonical identifier, e.g. "EPSG:4326".
	Code string

	// Geographic is true if coordinates are longitude/latitude in degrees.
	Geographic bool
}

// Well-known reference systems.
var (
	WGS84       = CRS{Code: "EPSG:4326", Geographic: true}
	WebMercator = CRS{Code: "EPSG:3857"}
)

// IsZero reports whether c is unspecified.
func (c CRS) IsZero() bool {
	return c.Code == ""
}

// Equal reports whether c and other denote the same system.
// An unspecified system equals every system.
func (c CRS) Equal(other CRS) bool {
	return c.IsZero() || other.IsZero() || c.Code == other.Code
}

func (c CRS) String() string {
	if c.IsZero() {
		return "<unspecified>"
	}
	return c.Code
}

// Resolver looks up reference systems and transformations between them.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// Resolve maps an identifier to a reference system.
	// Errors are marked with ErrUnknownCRS.
	Resolve(id string) (CRS, error)

	// Transformer returns a function mapping points from one system to
	// another. Errors are marked with ErrNoTransform.
	Transformer(from, to CRS) (orb.Projection, error)
}

// Registry is the built-in Resolver.
// The zero value is not usable; use [NewRegistry].
type Registry struct {
	aliases    map[string]CRS
	transforms map[[2]string]orb.Projection
}

// NewRegistry returns a Registry knowing WGS84 and Web Mercator.
func NewRegistry() *Registry {
	r := &Registry{
		aliases:    make(map[string]CRS),
		transforms: make(map[[2]string]orb.Projection),
	}
	for _, id := range []string{"EPSG:4326", "CRS:84", "WGS84", "URN:OGC:DEF:CRS:EPSG::4326", "URN:OGC:DEF:CRS:OGC:1.3:CRS84"} {
		r.aliases[id] = WGS84
	}
	for _, id := range []string{"EPSG:3857", "EPSG:900913", "EPSG:3785", "EPSG:102100", "URN:OGC:DEF:CRS:EPSG::3857"} {
		r.aliases[id] = WebMercator
	}
	r.transforms[[2]string{WGS84.Code, WebMercator.Code}] = project.WGS84.ToMercator
	r.transforms[[2]string{WebMercator.Code, WGS84.Code}] = project.Mercator.ToWGS84
	return r
}

// Resolve implements [Resolver]. Identifiers are case-insensitive.
func (r *Registry) Resolve(id string) (CRS, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	if c, ok := r.aliases[key]; ok {
		return c, nil
	}
	return CRS{}, errors.Mark(errors.Newf("cannot resolve %q", id), ErrUnknownCRS)
}

// Transformer implements [Resolver].
// Transformations between equal systems are the identity.
func (r *Registry) Transformer(from, to CRS) (orb.Projection, error) {
	if from.Equal(to) {
		return Identity, nil
	}
	if p, ok := r.transforms[[2]string{from.Code, to.Code}]; ok {
		return p, nil
	}
	return nil, errors.Mark(errors.Newf("%s -> %s", from, to), ErrNoTransform)
}

// Identity is the projection which leaves every point unchanged.
func Identity(p orb.Point) orb.Point {
	return p
}

// TransformBound maps the corners of b and returns their bounding box.
// This is exact for the axis-aligned systems of the built-in table.
func TransformBound(b orb.Bound, proj orb.Projection) orb.Bound {
	lo := proj(b.Min)
	hi := proj(b.Max)
	return orb.Bound{Min: lo, Max: lo}.Extend(hi)
}
