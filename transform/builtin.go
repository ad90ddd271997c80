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

package transform

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/simplify"

	"seehuhn.de/go/maprender/feature"
)

// Names of the built-in transformations.
const (
	NoOpName             = "NoOp"
	CoverageCentroidName = "CoverageCentroid"
	ReprojectName        = "Reproject"
	SimplifyName         = "Simplify"
	ClipName             = "Clip"
)

func builtins() []*Function {
	return []*Function{
		{
			Name:     NoOpName,
			ArgCount: Variadic,
			Apply:    noOp,
		},
		{
			Name:     CoverageCentroidName,
			ArgCount: 0,
			Apply:    coverageCentroid,
		},
		{
			Name:     ReprojectName,
			Params:   []Param{{Name: "targetCRS", Kind: Text, Required: true}},
			ArgCount: 1,
			Apply:    reproject,
		},
		{
			Name:     SimplifyName,
			Params:   []Param{{Name: "distance", Kind: Number, Required: true}},
			ArgCount: 1,
			Apply:    simplifyFeatures,
		},
		{
			Name:     ClipName,
			Params:   []Param{{Name: "bbox", Kind: Envelope}},
			ArgCount: 1,
			Apply:    clipFeatures,
		},
	}
}

func noOp(_ *Context, _ Args, in Data) (Data, error) {
	return in, nil
}

// coverageCentroid replaces a coverage by a single point feature at the
// centre of its envelope.
func coverageCentroid(_ *Context, _ Args, in Data) (Data, error) {
	cd, ok := in.(CoverageData)
	if !ok {
		return nil, errors.Mark(errors.New("input is not a coverage"), ErrTransformation)
	}
	cov := cd.Coverage
	f := &feature.Feature{
		ID:         cov.Name() + ".centroid",
		Geometry:   cov.Bounds().Center(),
		Properties: map[string]any{"name": cov.Name()},
	}
	return FeatureData{Features: feature.FromSlice(cov.CRS(), f)}, nil
}

// reproject projects features into the system named by targetCRS.
// Projection happens while the result is iterated.
func reproject(ctx *Context, args Args, in Data) (Data, error) {
	fd, ok := in.(FeatureData)
	if !ok {
		return nil, errors.Mark(errors.New("only feature data can be reprojected"), ErrTransformation)
	}
	id, _ := args.String("targetCRS")
	target, err := ctx.Resolver.Resolve(id)
	if err != nil {
		return nil, errors.Mark(err, ErrTransformation)
	}
	src := fd.Features
	proj, err := ctx.Resolver.Transformer(src.CRS(), target)
	if err != nil {
		return nil, errors.Mark(err, ErrTransformation)
	}
	return FeatureData{Features: feature.Reproject(src, target, proj)}, nil
}

// simplifyFeatures applies Douglas-Peucker simplification with the given
// tolerance in data units.
func simplifyFeatures(_ *Context, args Args, in Data) (Data, error) {
	fd, ok := in.(FeatureData)
	if !ok {
		return nil, errors.Mark(errors.New("only feature data can be simplified"), ErrTransformation)
	}
	d, _ := args.Float("distance")
	if d < 0 {
		return nil, errors.Mark(errors.Newf("negative distance %g", d), ErrConfiguration)
	}
	s := simplify.DouglasPeucker(d)
	src := fd.Features
	out := feature.Map(src, src.CRS(), src.Bounds(), func(f *feature.Feature) (*feature.Feature, error) {
		if f.Geometry == nil {
			return f, nil
		}
		return f.WithGeometry(s.Simplify(orb.Clone(f.Geometry))), nil
	})
	return FeatureData{Features: out}, nil
}

// clipFeatures cuts features to a bounding box, by default the map
// extent. Features entirely outside the box are dropped.
func clipFeatures(ctx *Context, args Args, in Data) (Data, error) {
	fd, ok := in.(FeatureData)
	if !ok {
		return nil, errors.Mark(errors.New("only feature data can be clipped"), ErrTransformation)
	}
	b, ok := args.Bound("bbox")
	if !ok {
		b = ctx.Bounds
	}
	src := fd.Features
	out := feature.Map(src, src.CRS(), b, func(f *feature.Feature) (*feature.Feature, error) {
		if f.Geometry == nil || !f.Geometry.Bound().Intersects(b) {
			return nil, nil
		}
		g := clip.Geometry(b, orb.Clone(f.Geometry))
		if g == nil {
			return nil, nil
		}
		return f.WithGeometry(g), nil
	})
	return FeatureData{Features: out}, nil
}
