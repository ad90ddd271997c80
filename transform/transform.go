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

// Package transform implements rendering transformations, which replace
// the data of a layer by computed data before it is symbolized.
//
// Transformations are looked up by name in a [Registry]. The arguments
// given in the style are bound once per layer: they are evaluated against
// an environment describing the requested map, converted to the declared
// parameter types, and checked against the function's signature.
package transform

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/coverage"
	"seehuhn.de/go/maprender/crs"
	"seehuhn.de/go/maprender/feature"
)

// ErrConfiguration marks errors caused by an invalid transformation
// binding: an unknown name, a wrong number of arguments, or a required
// argument which cannot be evaluated.
var ErrConfiguration = errors.New("invalid configuration")

// ErrTransformation marks failures while a transformation runs.
var ErrTransformation = errors.New("transformation failed")

// Data is the input or output of a transformation.
// It is either a [FeatureData] or a [CoverageData].
type Data interface {
	isData()
}

// FeatureData holds vector features.
type FeatureData struct {
	Features feature.Collection
}

// CoverageData holds raster data.
type CoverageData struct {
	Coverage coverage.Coverage
}

func (FeatureData) isData()  {}
func (CoverageData) isData() {}

// Variadic is the ArgCount of functions accepting any number of
// arguments.
const Variadic = -1

// Kind is the type of a transformation parameter.
type Kind int

// These are the supported parameter kinds.
const (
	Any Kind = iota
	Number
	Text
	Envelope
)

// Param describes a transformation parameter.
type Param struct {
	Name     string
	Kind     Kind
	Required bool
}

// Function is a rendering transformation.
//
// ArgCount is the maximal number of arguments, or Variadic. Arguments
// beyond Params are only accepted by variadic functions; they are
// passed in Args.Rest.
type Function struct {
	Name     string
	Params   []Param
	ArgCount int
	Apply    func(ctx *Context, args Args, in Data) (Data, error)
}

// Context describes the map being rendered.
type Context struct {
	Bounds        orb.Bound
	CRS           crs.CRS
	Width, Height int
	Resolver      crs.Resolver
}

// Registry maps names to transformation functions.
// Names are matched case-insensitively.
// A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	funcs    map[string]*Function
	resolver crs.Resolver
}

// NewRegistry returns a registry holding the built-in transformations.
// If resolver is nil, the built-in CRS table is used.
func NewRegistry(resolver crs.Resolver) *Registry {
	if resolver == nil {
		resolver = crs.NewRegistry()
	}
	r := &Registry{
		funcs:    make(map[string]*Function),
		resolver: resolver,
	}
	for _, fn := range builtins() {
		if err := r.Register(fn); err != nil {
			panic(err)
		}
	}
	return r
}

// Resolver returns the CRS resolver passed to transformations.
func (r *Registry) Resolver() crs.Resolver {
	return r.resolver
}

// Register adds fn to the registry, replacing any function of the same
// name.
func (r *Registry) Register(fn *Function) error {
	switch {
	case fn == nil || fn.Name == "":
		return errors.New("transformation without name")
	case fn.Apply == nil:
		return errors.Newf("transformation %q has no implementation", fn.Name)
	case fn.ArgCount < Variadic:
		return errors.Newf("transformation %q: invalid argument count %d", fn.Name, fn.ArgCount)
	case fn.ArgCount != Variadic && len(fn.Params) > fn.ArgCount:
		return errors.Newf("transformation %q: %d parameters but argument count %d",
			fn.Name, len(fn.Params), fn.ArgCount)
	}
	r.mu.Lock()
	r.funcs[strings.ToLower(fn.Name)] = fn
	r.mu.Unlock()
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()
	return fn, ok
}

// Names returns the names of all registered functions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]string, 0, len(r.funcs))
	for _, fn := range r.funcs {
		res = append(res, fn.Name)
	}
	return res
}
