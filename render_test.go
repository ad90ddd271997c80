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

package maprender

import (
	"context"
	"image"
	"image/color"
	"iter"
	"math"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/coverage"
	"seehuhn.de/go/maprender/crs"
	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/filter"
	"seehuhn.de/go/maprender/style"
	"seehuhn.de/go/maprender/transform"
)

var extent = orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}

func testMap(layers ...Layer) *MapContent {
	return &MapContent{
		Layers: layers,
		Bounds: extent,
		Width:  10,
		Height: 10,
	}
}

func singleRule(rule *style.Rule) *style.Style {
	return &style.Style{FeatureTypeStyles: []*style.FeatureTypeStyle{{
		Rules: []*style.Rule{rule},
	}}}
}

func fillStyle(c string, opacity float64) *style.Style {
	return singleRule(&style.Rule{Symbolizers: []style.Symbolizer{
		&style.PolygonSymbolizer{Fill: &style.Fill{Color: filter.Lit(c), Opacity: filter.Lit(opacity)}},
	}})
}

func markStyle(name, c string, size float64) *style.Style {
	return singleRule(&style.Rule{Symbolizers: []style.Symbolizer{
		&style.PointSymbolizer{Graphic: &style.Graphic{
			Mark: &style.Mark{WellKnownName: name, Fill: &style.Fill{Color: filter.Lit(c)}},
			Size: filter.Lit(size),
		}},
	}})
}

func rasterStyle(opacity float64) *style.Style {
	return singleRule(&style.Rule{Symbolizers: []style.Symbolizer{
		&style.RasterSymbolizer{Opacity: filter.Lit(opacity)},
	}})
}

func box(id string, b orb.Bound) *feature.Feature {
	return &feature.Feature{ID: id, Geometry: b.ToPolygon(), Properties: map[string]any{}}
}

func pointFeatures(n int) []*feature.Feature {
	res := make([]*feature.Feature, n)
	for i := range n {
		res[i] = &feature.Feature{
			ID:         string(rune('A' + i%26)),
			Geometry:   orb.Point{float64(i%10) + 0.5, float64(i/10%10) + 0.5},
			Properties: map[string]any{"n": i},
		}
	}
	return res
}

func render(t *testing.T, r *Renderer, m *MapContent) *image.RGBA {
	t.Helper()
	img, err := r.Render(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// TestOpaqueRasterOverPolygon checks that an opaque raster layer hides the
// layers below it completely.
func TestOpaqueRasterOverPolygon(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	m := testMap(
		&FeatureLayer{
			Name:   "grey",
			Source: feature.FromSlice(crs.CRS{}, box("area", extent)),
			Style:  fillStyle("#808080", 0.5),
		},
		&CoverageLayer{
			Name:   "red",
			Source: coverage.Uniform("red", red, 4, 4, extent, crs.CRS{}),
			Style:  rasterStyle(1),
		},
	)

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	img := render(t, r, m)

	for y := range 10 {
		for x := range 10 {
			if got := img.RGBAAt(x, y); got != red {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, red)
			}
		}
	}
	if errs := log.Errors(); len(errs) > 0 {
		t.Errorf("unexpected errors: %v", errs)
	}

	// without the raster, the grey shows
	m.Layers = m.Layers[:1]
	img = render(t, r, m)
	if got, want := img.RGBAAt(5, 5), (color.RGBA{R: 64, G: 64, B: 64, A: 128}); got != want {
		t.Errorf("grey polygon: got %v, want %v", got, want)
	}
}

// TestOutOfScale checks that rules outside their scale range paint
// nothing, while the features are still reported.
func TestOutOfScale(t *testing.T) {
	const n = 7
	st := singleRule(&style.Rule{
		MinScale: 0,
		MaxScale: 1000,
		Symbolizers: []style.Symbolizer{
			&style.PointSymbolizer{Graphic: &style.Graphic{Size: filter.Lit(4.0)}},
		},
	})
	m := testMap(&FeatureLayer{
		Name:   "points",
		Source: feature.FromSlice(crs.CRS{}, pointFeatures(n)...),
		Style:  st,
	})
	m.ScaleDenominator = 5000

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	img := render(t, r, m)

	if got := log.Count(FeatureRendered); got != n {
		t.Errorf("got %d FeatureRendered events, want %d", got, n)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("byte %d of the output is %d, want 0", i, v)
		}
	}

	// the same map in scale
	m.ScaleDenominator = 500
	img = render(t, r, m)
	if img.RGBAAt(0, 9).A == 0 {
		t.Error("point at (0.5, 0.5) not painted in scale")
	}
}

func TestCancellation(t *testing.T) {
	const n = 100
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	rendered := 0
	errorsAfterCancel := 0
	cancelled := false
	r := NewRenderer(Options{Workers: 1, QueueDepth: 1})
	r.AddListener(ListenerFuncs{
		OnFeature: func(string, *feature.Feature) {
			mu.Lock()
			defer mu.Unlock()
			rendered++
			if rendered == 10 {
				cancel()
				cancelled = true
			}
		},
		OnError: func(string, error, *feature.Feature) {
			mu.Lock()
			defer mu.Unlock()
			if cancelled {
				errorsAfterCancel++
			}
		},
	})

	m := testMap(&FeatureLayer{
		Name:   "points",
		Source: feature.FromSlice(crs.CRS{}, pointFeatures(n)...),
		Style:  markStyle("circle", "#ff0000", 3),
	})
	img, err := r.Render(ctx, m)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if img == nil {
		t.Fatal("no partial image returned")
	}
	if rendered >= n {
		t.Errorf("%d features rendered after cancellation, want fewer than %d", rendered, n)
	}
	if errorsAfterCancel > 0 {
		t.Errorf("%d error events after cancellation", errorsAfterCancel)
	}
}

// TestLayerFailure checks that a failing layer is reported once and does
// not stop the other layers.
func TestLayerFailure(t *testing.T) {
	broken := fillStyle("#0000ff", 1)
	broken.FeatureTypeStyles[0].Transformation = &style.Transformation{Name: "NoSuchThing"}

	m := testMap(
		&FeatureLayer{
			Name:   "broken",
			Source: feature.FromSlice(crs.CRS{}, box("a", extent)),
			Style:  broken,
		},
		&FeatureLayer{
			Name:   "fine",
			Source: feature.FromSlice(crs.CRS{}, box("b", extent)),
			Style:  fillStyle("#00ff00", 1),
		},
	)

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	img := render(t, r, m)

	errs := log.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d error events, want 1", len(errs))
	}
	e := errs[0]
	if e.Layer != "broken" || e.Feature != nil || !errors.Is(e.Err, transform.ErrConfiguration) {
		t.Errorf("unexpected error event %+v", e)
	}
	if got := img.RGBAAt(3, 3); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("second layer not painted: %v", got)
	}
}

// brokenSource yields some features and then fails.
type brokenSource struct {
	good []*feature.Feature
	err  error
}

func (s *brokenSource) Bounds() orb.Bound { return extent }
func (s *brokenSource) CRS() crs.CRS      { return crs.CRS{} }

func (s *brokenSource) All() iter.Seq2[*feature.Feature, error] {
	return func(yield func(*feature.Feature, error) bool) {
		for _, f := range s.good {
			if !yield(f, nil) {
				return
			}
		}
		yield(nil, s.err)
	}
}

func TestDataAccessError(t *testing.T) {
	src := &brokenSource{
		good: []*feature.Feature{
			box("left", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{5, 10}}),
		},
		err: errors.New("connection reset"),
	}
	m := testMap(&FeatureLayer{Name: "db", Source: src, Style: fillStyle("#ff0000", 1)})

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	img := render(t, r, m)

	if got := log.Count(FeatureRendered); got != 1 {
		t.Errorf("got %d FeatureRendered events, want 1", got)
	}
	errs := log.Errors()
	if len(errs) != 1 || !errors.Is(errs[0].Err, feature.ErrDataAccess) || errs[0].Feature != nil {
		t.Fatalf("unexpected errors %+v", errs)
	}
	// the features painted before the failure are kept
	if got := img.RGBAAt(2, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("partial result lost: %v", got)
	}
}

func TestEvaluationError(t *testing.T) {
	features := []*feature.Feature{
		{ID: "ok", Geometry: orb.Point{1, 1}, Properties: map[string]any{"rank": 1}},
		{ID: "bad", Geometry: orb.Point{2, 2}, Properties: map[string]any{"rank": "high"}},
		{ID: "ok2", Geometry: orb.Point{3, 3}, Properties: map[string]any{"rank": 5}},
	}
	st := singleRule(&style.Rule{
		Filter: &filter.Comparison{Op: filter.Lt, Left: filter.Prop("rank"), Right: filter.Lit(3)},
		Symbolizers: []style.Symbolizer{
			&style.PointSymbolizer{},
		},
	})
	m := testMap(&FeatureLayer{Name: "ranked", Source: feature.FromSlice(crs.CRS{}, features...), Style: st})

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	render(t, r, m)

	var rendered []string
	for _, e := range log.Events() {
		switch e.Kind {
		case FeatureRendered:
			rendered = append(rendered, e.Feature.ID)
		case ErrorOccurred:
			if e.Feature == nil || e.Feature.ID != "bad" || !errors.Is(e.Err, filter.ErrEvaluation) {
				t.Errorf("unexpected error event %+v", e)
			}
		}
	}
	if len(rendered) != 2 || rendered[0] != "ok" || rendered[1] != "ok2" {
		t.Errorf("rendered %v, want [ok ok2]", rendered)
	}
	if log.Count(ErrorOccurred) != 1 {
		t.Errorf("got %d error events, want 1", log.Count(ErrorOccurred))
	}
}

func TestListenerPanic(t *testing.T) {
	const n = 5
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	r := NewRenderer(DefaultOptions())
	r.AddListener(ListenerFuncs{OnFeature: func(string, *feature.Feature) {
		record("first")
		panic("listener bug")
	}})
	r.AddListener(ListenerFuncs{OnFeature: func(string, *feature.Feature) {
		record("second")
	}})

	m := testMap(&FeatureLayer{
		Name:   "points",
		Source: feature.FromSlice(crs.CRS{}, pointFeatures(n)...),
		Style:  markStyle("square", "#000000", 2),
	})
	render(t, r, m)

	if len(order) != 2*n {
		t.Fatalf("got %d listener calls, want %d", len(order), 2*n)
	}
	for i := 0; i < len(order); i += 2 {
		if order[i] != "first" || order[i+1] != "second" {
			t.Fatalf("listeners called out of order: %v", order)
		}
	}
}

func TestLayerOrder(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	layer := func(name, c string) Layer {
		return &FeatureLayer{
			Name:   name,
			Source: feature.FromSlice(crs.CRS{}, box(name, extent)),
			Style:  fillStyle(c, 1),
		}
	}

	r := NewRenderer(Options{Workers: 4})
	for _, tc := range []struct {
		layers []Layer
		want   color.RGBA
	}{
		{[]Layer{layer("b", "#0000ff"), layer("g", "#00ff00")}, green},
		{[]Layer{layer("g", "#00ff00"), layer("b", "#0000ff")}, blue},
	} {
		img := render(t, r, testMap(tc.layers...))
		if got := img.RGBAAt(5, 5); got != tc.want {
			t.Errorf("top layer %s: got %v, want %v", tc.layers[1].LayerName(), got, tc.want)
		}
	}
}

func TestBackground(t *testing.T) {
	m := testMap()
	m.Background = color.White
	img := render(t, NewRenderer(DefaultOptions()), m)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v", got)
	}
}

func TestReprojectLayer(t *testing.T) {
	m := &MapContent{
		Layers: []Layer{&FeatureLayer{
			Name: "origin",
			Source: feature.FromSlice(crs.WGS84, &feature.Feature{
				ID: "null island", Geometry: orb.Point{0, 0},
			}),
			Style: markStyle("square", "#0000ff", 6),
		}},
		Bounds: orb.Bound{Min: orb.Point{-1e6, -1e6}, Max: orb.Point{1e6, 1e6}},
		CRS:    crs.WebMercator,
		Width:  20,
		Height: 20,
	}
	img := render(t, NewRenderer(DefaultOptions()), m)
	if got := img.RGBAAt(10, 10); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("centre pixel = %v", got)
	}
	if got := img.RGBAAt(2, 2); got.A != 0 {
		t.Errorf("corner pixel = %v", got)
	}
}

func TestCoverageCentroidLayer(t *testing.T) {
	st := markStyle("circle", "#ff0000", 4)
	st.FeatureTypeStyles[0].Transformation = &style.Transformation{Name: "CoverageCentroid"}
	m := testMap(&CoverageLayer{
		Name:   "elevation",
		Source: coverage.Uniform("dem", color.Gray{Y: 100}, 5, 5, extent, crs.CRS{}),
		Style:  st,
	})

	log := &EventLog{}
	r := NewRenderer(DefaultOptions())
	r.AddListener(log)
	img := render(t, r, m)

	events := log.Events()
	if len(events) != 1 || events[0].Kind != FeatureRendered || events[0].Feature.ID != "dem.centroid" {
		t.Fatalf("unexpected events %+v", events)
	}
	if got := img.RGBAAt(4, 4); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel at centroid = %v", got)
	}
	if got := img.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("pixel away from centroid = %v", got)
	}
}

func TestColorMapLayer(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.Pix[0], img.Pix[1] = 10, 200
	grid := &coverage.Grid{ID: "classes", Image: img, Extent: extent}
	st := singleRule(&style.Rule{Symbolizers: []style.Symbolizer{
		&style.RasterSymbolizer{ColorMap: &style.ColorMap{
			Type: style.ColorMapIntervals,
			Entries: []style.ColorMapEntry{
				{Color: "#0000ff", Quantity: 100},
				{Color: "#ff0000", Quantity: 256},
			},
		}},
	}})
	out := render(t, NewRenderer(DefaultOptions()), testMap(&CoverageLayer{Name: "classes", Source: grid, Style: st}))
	if got := out.RGBAAt(2, 5); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("left half = %v", got)
	}
	if got := out.RGBAAt(7, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("right half = %v", got)
	}
}

func TestTextLabel(t *testing.T) {
	st := singleRule(&style.Rule{Symbolizers: []style.Symbolizer{
		&style.TextSymbolizer{
			Label: filter.Prop("name"),
			Fill:  &style.Fill{Color: filter.Lit("#000000")},
			Halo:  &style.Halo{Radius: filter.Lit(1)},
			Placement: &style.PointPlacement{
				AnchorX: filter.Lit(0.5),
				AnchorY: filter.Lit(0.5),
			},
		},
	}})
	m := &MapContent{
		Layers: []Layer{&FeatureLayer{
			Name: "labels",
			Source: feature.FromSlice(crs.CRS{}, &feature.Feature{
				ID: "town", Geometry: orb.Point{50, 20}, Properties: map[string]any{"name": "Zürich"},
			}),
			Style: st,
		}},
		Bounds: orb.Bound{Max: orb.Point{100, 40}},
		Width:  100,
		Height: 40,
	}
	img := render(t, NewRenderer(DefaultOptions()), m)

	var dark, light int
	for y := range 40 {
		for x := range 100 {
			c := img.RGBAAt(x, y)
			switch {
			case c.A == 0:
			case c.R < 64:
				dark++
			case c.R > 192:
				light++
			}
			if c.A != 0 && (x < 20 || x >= 80) {
				t.Fatalf("label pixel at (%d,%d) too far from the anchor", x, y)
			}
		}
	}
	if dark == 0 || light == 0 {
		t.Errorf("found %d text and %d halo pixels", dark, light)
	}
}

func TestScaleDenominator(t *testing.T) {
	b := orb.Bound{Max: orb.Point{1000, 1000}}
	if got, want := ScaleDenominator(b, crs.WebMercator, 1000), 1/0.00028; math.Abs(got-want) > 1e-6 {
		t.Errorf("projected: got %g, want %g", got, want)
	}
	geo := orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}
	want := 360 * 2 * math.Pi * 6378137 / 360 / (1000 * 0.00028)
	if got := ScaleDenominator(geo, crs.WGS84, 1000); math.Abs(got-want)/want > 1e-12 {
		t.Errorf("geographic: got %g, want %g", got, want)
	}

	m := &MapContent{Bounds: b, Width: 1000, ScaleDenominator: 25000}
	if m.Scale() != 25000 {
		t.Errorf("explicit scale ignored: %g", m.Scale())
	}
}

func TestInvalidRequest(t *testing.T) {
	r := NewRenderer(DefaultOptions())
	for _, m := range []*MapContent{
		nil,
		{Bounds: extent, Width: 0, Height: 10},
		{Bounds: orb.Bound{}, Width: 10, Height: 10},
		{Bounds: extent, Width: 10, Height: 10, Layers: []Layer{nil}},
	} {
		if _, err := r.Render(context.Background(), m); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	}
}
