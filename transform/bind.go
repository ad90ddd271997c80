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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/filter"
	"seehuhn.de/go/maprender/internal/logging"
	"seehuhn.de/go/maprender/style"
)

// Names of the environment values visible to transformation arguments.
const (
	EnvBBox       = "outputBBOX"
	EnvWidth      = "outputWidth"
	EnvHeight     = "outputHeight"
	EnvCRS        = "outputCRS"
	EnvResolution = "resolution"
)

// Binding is a transformation with its arguments resolved for one layer.
type Binding struct {
	Func *Function
	Args Args
	ctx  *Context
}

// environment returns the pseudo-feature against which argument
// expressions are evaluated.
func (ctx *Context) environment() *feature.Feature {
	props := map[string]any{
		EnvBBox:   ctx.Bounds,
		EnvWidth:  ctx.Width,
		EnvHeight: ctx.Height,
		EnvCRS:    ctx.CRS.Code,
	}
	if ctx.Width > 0 {
		props[EnvResolution] = (ctx.Bounds.Max[0] - ctx.Bounds.Min[0]) / float64(ctx.Width)
	}
	return &feature.Feature{ID: "environment", Properties: props}
}

// Bind resolves the transformation t for the map described by ctx.
//
// Unknown names, surplus arguments, and required arguments which are
// missing or cannot be evaluated give an error marked ErrConfiguration.
// Optional arguments which cannot be evaluated are left out.
func (r *Registry) Bind(t *style.Transformation, ctx *Context) (*Binding, error) {
	if t == nil {
		return nil, errors.Mark(errors.New("missing transformation"), ErrConfiguration)
	}
	fn, ok := r.Lookup(t.Name)
	if !ok {
		return nil, errors.Mark(errors.Newf("unknown transformation %q", t.Name), ErrConfiguration)
	}
	if fn.ArgCount != Variadic && len(t.Args) > fn.ArgCount {
		return nil, errors.Mark(
			errors.Newf("%s: %d arguments given, at most %d allowed", fn.Name, len(t.Args), fn.ArgCount),
			ErrConfiguration)
	}

	bctx := *ctx
	if bctx.Resolver == nil {
		bctx.Resolver = r.resolver
	}
	env := bctx.environment()
	log := logging.Get()

	args := Args{Named: make(map[string]any)}
	for i, a := range t.Args {
		param, positional, err := fn.param(a.Name, i)
		if err != nil {
			return nil, err
		}
		v, err := evaluate(a.Value, env, param.Kind)
		if err != nil {
			if param.Required {
				return nil, errors.Mark(
					errors.Wrapf(err, "%s: argument %q", fn.Name, param.Name), ErrConfiguration)
			}
			log.Warn("ignoring transformation argument",
				"transformation", fn.Name, "argument", param.Name, "error", err)
			continue
		}
		if positional {
			args.Rest = append(args.Rest, v)
		} else {
			args.Named[param.Name] = v
		}
	}

	for _, p := range fn.Params {
		if p.Required && !args.Has(p.Name) {
			return nil, errors.Mark(
				errors.Newf("%s: missing argument %q", fn.Name, p.Name), ErrConfiguration)
		}
	}
	return &Binding{Func: fn, Args: args, ctx: &bctx}, nil
}

// param finds the parameter for the i-th argument. The result
// positional is true for surplus arguments of variadic functions.
func (fn *Function) param(name string, i int) (Param, bool, error) {
	if name != "" {
		for _, p := range fn.Params {
			if p.Name == name {
				return p, false, nil
			}
		}
		if fn.ArgCount == Variadic {
			return Param{Name: name}, false, nil
		}
		return Param{}, false, errors.Mark(
			errors.Newf("%s: unknown argument %q", fn.Name, name), ErrConfiguration)
	}
	if i < len(fn.Params) {
		return fn.Params[i], false, nil
	}
	return Param{Name: fmt.Sprintf("#%d", i+1)}, true, nil
}

// evaluate computes an argument value and converts it to kind.
func evaluate(e filter.Expression, env *feature.Feature, kind Kind) (any, error) {
	if e == nil {
		return nil, errors.New("missing expression")
	}
	v, err := e.Evaluate(env)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.Newf("%s has no value", e)
	}
	switch kind {
	case Number:
		x, ok := filter.ToFloat(v)
		if !ok {
			return nil, errors.Newf("%s: %v is not a number", e, v)
		}
		return x, nil
	case Text:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf("%s: %v is not a string", e, v)
		}
		return s, nil
	case Envelope:
		switch b := v.(type) {
		case orb.Bound:
			return b, nil
		case orb.Geometry:
			return b.Bound(), nil
		}
		return nil, errors.Newf("%s: %v is not an envelope", e, v)
	}
	return v, nil
}

// Invoke runs the bound transformation on in.
// Failures which are not configuration errors are marked
// ErrTransformation.
func (b *Binding) Invoke(in Data) (Data, error) {
	out, err := b.Func.Apply(b.ctx, b.Args, in)
	if err != nil {
		if !errors.Is(err, ErrConfiguration) && !errors.Is(err, ErrTransformation) {
			err = errors.Mark(err, ErrTransformation)
		}
		return nil, errors.Wrapf(err, "%s", b.Func.Name)
	}
	if out == nil {
		return nil, errors.Mark(errors.Newf("%s returned no data", b.Func.Name), ErrTransformation)
	}
	return out, nil
}

// Invoke binds t and applies it to in.
func (r *Registry) Invoke(t *style.Transformation, ctx *Context, in Data) (Data, error) {
	b, err := r.Bind(t, ctx)
	if err != nil {
		return nil, err
	}
	return b.Invoke(in)
}
