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

// Package maprender draws maps from vector features and raster coverages,
// styled by rule-based style trees.
//
// A [Renderer] paints every layer of a [MapContent] into its own raster,
// with layers rendered in parallel and features streamed through a small
// queue, and then composites the layer rasters in order. Problems with
// single features or layers are reported to the registered listeners and
// never abort the whole request.
package maprender

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"

	"seehuhn.de/go/maprender/coverage"
	"seehuhn.de/go/maprender/crs"
	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/internal/logging"
	"seehuhn.de/go/maprender/style"
	"seehuhn.de/go/maprender/transform"
)

// queryMargin extends the spatial query of a layer, in pixels, so that
// wide strokes and symbols of features just outside the map are drawn.
const queryMargin = 32

// Renderer draws maps. A Renderer can be used for many requests, also
// concurrently.
type Renderer struct {
	workers  int
	depth    int
	registry *transform.Registry
	resolver crs.Resolver

	mu        sync.Mutex
	listeners listeners
}

// NewRenderer returns a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		workers:  max(opts.Workers, 1),
		depth:    opts.QueueDepth,
		registry: opts.Registry,
		resolver: opts.Resolver,
	}
	if r.depth < 1 {
		r.depth = DefaultQueueDepth
	}
	if r.registry == nil {
		r.registry = transform.NewRegistry(opts.Resolver)
	}
	if r.resolver == nil {
		r.resolver = r.registry.Resolver()
	}
	return r
}

// Registry returns the transformation registry used by r.
func (r *Renderer) Registry() *transform.Registry {
	return r.registry
}

// AddListener registers l for the events of all subsequent calls to
// Render. Listeners are notified in registration order.
func (r *Renderer) AddListener(l Listener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// state is a stage of a render request.
type state int

const (
	stateIdle state = iota
	statePreparing
	stateStreaming
	stateCompositing
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePreparing:
		return "preparing"
	case stateStreaming:
		return "streaming"
	case stateCompositing:
		return "compositing"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// request holds the state of one call to Render.
type request struct {
	m         *MapContent
	depth     int
	registry  *transform.Registry
	resolver  crs.Resolver
	listeners listeners
	scale     float64
	tctx      *transform.Context
}

func (q *request) enter(s state, layer string) {
	log := logging.Get()
	if layer == "" {
		log.Debug("render state", "state", s)
	} else {
		log.Debug("render state", "state", s, "layer", layer)
	}
}

// Render draws the map m.
//
// An error is returned only if m cannot be rendered at all, or if ctx was
// cancelled. In the latter case the returned image holds the layers as
// far as they were painted. All other problems are reported to the
// listeners, and the affected features or layers are left out.
func (r *Renderer) Render(ctx context.Context, m *MapContent) (*image.RGBA, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	ls := make(listeners, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.Unlock()

	q := &request{
		m:         m,
		depth:     r.depth,
		registry:  r.registry,
		resolver:  r.resolver,
		listeners: ls,
		scale:     m.Scale(),
		tctx: &transform.Context{
			Bounds:   m.Bounds,
			CRS:      m.CRS,
			Width:    m.Width,
			Height:   m.Height,
			Resolver: r.resolver,
		},
	}
	q.enter(stateIdle, "")

	frame := image.Rect(0, 0, m.Width, m.Height)
	targets := make([]*image.RGBA, len(m.Layers))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i, l := range m.Layers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			target := image.NewRGBA(frame)
			q.layer(ctx, l, newPainter(target, m))
			targets[i] = target
		}()
	}
	wg.Wait()

	q.enter(stateCompositing, "")
	out := image.NewRGBA(frame)
	if m.Background != nil {
		xdraw.Draw(out, frame, image.NewUniform(m.Background), image.Point{}, xdraw.Src)
	}
	for _, t := range targets {
		if t != nil {
			xdraw.Draw(out, frame, t, image.Point{}, xdraw.Over)
		}
	}
	q.enter(stateDone, "")
	return out, ctx.Err()
}

// layer renders one layer. A layer-level failure is reported once, and
// what has been painted so far is kept.
func (q *request) layer(ctx context.Context, l Layer, p *painter) {
	name := l.LayerName()
	err := q.layerPasses(ctx, l, p)
	if err == nil || ctx.Err() != nil {
		return
	}
	err = errors.Wrapf(err, "layer %q", name)
	logging.Get().Warn("layer aborted", "layer", name, "error", err)
	q.listeners.error(name, err, nil)
}

func (q *request) layerPasses(ctx context.Context, l Layer, p *painter) error {
	name := l.LayerName()
	var in transform.Data
	var st *style.Style
	switch l := l.(type) {
	case *FeatureLayer:
		if l.Source == nil {
			return errors.Mark(errors.New("no data source"), transform.ErrConfiguration)
		}
		in = transform.FeatureData{Features: q.query(l.Source)}
		st = l.Style
	case *CoverageLayer:
		if l.Source == nil {
			return errors.Mark(errors.New("no data source"), transform.ErrConfiguration)
		}
		in = transform.CoverageData{Coverage: l.Source}
		st = l.Style
	default:
		return errors.Mark(errors.Newf("unsupported layer type %T", l), transform.ErrConfiguration)
	}
	if st == nil {
		return errors.Mark(errors.New("no style"), transform.ErrConfiguration)
	}
	if err := style.Validate(st); err != nil {
		return errors.Mark(err, transform.ErrConfiguration)
	}

	for _, fts := range st.FeatureTypeStyles {
		if ctx.Err() != nil {
			return nil
		}
		q.enter(statePreparing, name)
		data, err := q.prepare(fts, in)
		if err != nil {
			return err
		}

		q.enter(stateStreaming, name)
		switch d := data.(type) {
		case transform.FeatureData:
			err = q.streamFeatures(ctx, name, fts, d.Features, p)
		case transform.CoverageData:
			err = q.streamTiles(ctx, name, fts, d.Coverage, p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// query restricts an indexed source in the map CRS to the map extent.
func (q *request) query(c feature.Collection) feature.Collection {
	qr, ok := c.(feature.Querier)
	if !ok || !c.CRS().Equal(q.m.CRS) {
		return c
	}
	b := q.m.Bounds
	mx := queryMargin * (b.Max[0] - b.Min[0]) / float64(q.m.Width)
	my := queryMargin * (b.Max[1] - b.Min[1]) / float64(q.m.Height)
	return qr.Query(orb.Bound{
		Min: orb.Point{b.Min[0] - mx, b.Min[1] - my},
		Max: orb.Point{b.Max[0] + mx, b.Max[1] + my},
	})
}

// prepare applies the rendering transformation of fts, if any, and
// reprojects vector results into the map CRS.
func (q *request) prepare(fts *style.FeatureTypeStyle, in transform.Data) (transform.Data, error) {
	data := in
	if fts.Transformation != nil {
		b, err := q.registry.Bind(fts.Transformation, q.tctx)
		if err != nil {
			return nil, err
		}
		data, err = b.Invoke(in)
		if err != nil {
			return nil, err
		}
	}

	fd, ok := data.(transform.FeatureData)
	if !ok {
		return data, nil
	}
	from := fd.Features.CRS()
	if from.Equal(q.m.CRS) {
		return data, nil
	}
	proj, err := q.resolver.Transformer(from, q.m.CRS)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reprojecting from %s", from), transform.ErrTransformation)
	}
	return transform.FeatureData{Features: feature.Reproject(fd.Features, q.m.CRS, proj)}, nil
}

// item is a queue entry between the reader and the painter of a layer.
type item struct {
	f   *feature.Feature
	err error
}

// streamFeatures reads the features of c on a separate goroutine and
// paints them in order. A data access error ends the pass.
func (q *request) streamFeatures(ctx context.Context, layer string, fts *style.FeatureTypeStyle, c feature.Collection, p *painter) error {
	readCtx, stop := context.WithCancel(ctx)
	queue := make(chan item, q.depth)
	go func() {
		defer close(queue)
		for f, err := range c.All() {
			select {
			case queue <- item{f: f, err: err}:
			case <-readCtx.Done():
				return
			}
			if f == nil && err != nil {
				return
			}
		}
	}()
	defer func() {
		stop()
		for range queue {
		}
	}()

	for it := range queue {
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case it.f == nil && it.err != nil:
			return dataAccess(it.err)
		case it.f == nil:
			continue
		case it.err != nil:
			q.featureError(ctx, layer, it.err, it.f)
			continue
		}

		syms, err := style.Select(fts.Rules, fts.Evaluation, it.f, q.scale)
		if err != nil {
			q.featureError(ctx, layer, err, it.f)
			continue
		}
		if err := p.paintFeature(syms, it.f); err != nil {
			q.featureError(ctx, layer, err, it.f)
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		q.listeners.featureRendered(layer, it.f)
	}
	return nil
}

// streamTiles paints the tiles of a coverage with the raster symbolizers
// selected for it.
func (q *request) streamTiles(ctx context.Context, layer string, fts *style.FeatureTypeStyle, c coverage.Coverage, p *painter) error {
	log := logging.Get()
	env := coverageFeature(c.Name(), c.Bounds())
	syms, err := style.Select(fts.Rules, fts.Evaluation, env, q.scale)
	if err != nil {
		q.featureError(ctx, layer, err, env)
		return nil
	}
	var styles []*rasterStyle
	for _, s := range syms {
		rs, ok := s.(*style.RasterSymbolizer)
		if !ok {
			log.Debug("symbolizer ignored for coverage", "layer", layer, "type", fmt.Sprintf("%T", s))
			continue
		}
		st, err := evalRaster(rs, env)
		if err != nil {
			q.featureError(ctx, layer, err, env)
			continue
		}
		styles = append(styles, st)
	}
	if len(styles) == 0 {
		return nil
	}

	var proj orb.Projection
	if from := c.CRS(); !from.Equal(q.m.CRS) {
		proj, err = q.resolver.Transformer(from, q.m.CRS)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "reprojecting from %s", from), transform.ErrTransformation)
		}
	}

	for tile, err := range c.Tiles() {
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return dataAccess(err)
		}
		b := tile.Bounds
		if proj != nil {
			b = crs.TransformBound(b, proj)
		}
		for _, st := range styles {
			p.tile(tile.Image, b, st)
		}
	}
	return nil
}

// featureError reports a failure to paint f, unless the request has been
// cancelled.
func (q *request) featureError(ctx context.Context, layer string, err error, f *feature.Feature) {
	if ctx.Err() != nil {
		return
	}
	logging.Get().Debug("feature skipped", "layer", layer, "feature", f.ID, "error", err)
	q.listeners.error(layer, err, f)
}

func dataAccess(err error) error {
	if errors.Is(err, feature.ErrDataAccess) {
		return err
	}
	return errors.Mark(err, feature.ErrDataAccess)
}
