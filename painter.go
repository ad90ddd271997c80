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
	"image"
	"image/color"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/filter"
	"seehuhn.de/go/maprender/internal/logging"
	"seehuhn.de/go/maprender/internal/raster"
	"seehuhn.de/go/maprender/style"
)

// Default symbol sizes, in pixels.
const (
	defaultMarkSize  = 6
	defaultFontSize  = 10
	defaultHaloWidth = 1
)

// painter draws symbolizers onto the raster target of one layer.
// All style lengths are in pixels.
type painter struct {
	canvas *raster.Canvas
	clip   rect.Rect

	// world maps map coordinates to pixel coordinates.
	world matrix.Matrix
}

func newPainter(img *image.RGBA, m *MapContent) *painter {
	c := raster.NewCanvas(img)
	return &painter{
		canvas: c,
		clip:   c.R.Clip,
		world:  worldToPixel(m.Bounds, m.Width, m.Height),
	}
}

// worldToPixel returns the matrix which maps the map extent onto the
// pixel raster, with the y axis pointing down.
func worldToPixel(b orb.Bound, width, height int) matrix.Matrix {
	sx := float64(width) / (b.Max[0] - b.Min[0])
	sy := float64(height) / (b.Max[1] - b.Min[1])
	return matrix.Matrix{sx, 0, 0, -sy, -b.Min[0] * sx, b.Max[1] * sy}
}

func (p *painter) toPixel(pt orb.Point) vec.Vec2 {
	m := p.world
	return vec.Vec2{
		X: m[0]*pt[0] + m[2]*pt[1] + m[4],
		Y: m[1]*pt[0] + m[3]*pt[1] + m[5],
	}
}

func toPixels[S ~[]orb.Point](p *painter, pts S) []vec.Vec2 {
	res := make([]vec.Vec2, len(pts))
	for i, pt := range pts {
		res[i] = p.toPixel(pt)
	}
	return res
}

// paintFeature draws the symbolizers for f. Painting stops at the first
// symbolizer whose parameters cannot be evaluated.
func (p *painter) paintFeature(syms []style.Symbolizer, f *feature.Feature) error {
	for _, s := range syms {
		var err error
		switch s := s.(type) {
		case *style.PolygonSymbolizer:
			err = p.polygon(s, f)
		case *style.LineSymbolizer:
			err = p.line(s, f)
		case *style.PointSymbolizer:
			err = p.point(s, f)
		case *style.TextSymbolizer:
			err = p.text(s, f)
		case *style.RasterSymbolizer:
			logging.Get().Debug("raster symbolizer ignored for vector feature", "feature", f.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// geometry returns the geometry a symbolizer applies to.
// An empty name selects the default geometry.
func geometry(f *feature.Feature, name string) (orb.Geometry, error) {
	if name == "" {
		return f.Geometry, nil
	}
	v, ok := f.Attribute(name)
	if !ok || v == nil {
		return nil, nil
	}
	g, ok := v.(orb.Geometry)
	if !ok {
		return nil, errors.Mark(errors.Newf("attribute %q is not a geometry", name), filter.ErrEvaluation)
	}
	return g, nil
}

// areas collects the rings of all areal parts of g, in pixels.
func (p *painter) areas(g orb.Geometry, out [][]vec.Vec2) [][]vec.Vec2 {
	switch g := g.(type) {
	case orb.Polygon:
		for _, r := range g {
			out = append(out, toPixels(p, r))
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			out = p.areas(poly, out)
		}
	case orb.Bound:
		out = p.areas(g.ToPolygon(), out)
	case orb.Collection:
		for _, h := range g {
			out = p.areas(h, out)
		}
	}
	return out
}

// linework collects the lines of g, in pixels. Polygon rings are returned
// as closed lines.
func (p *painter) linework(g orb.Geometry, open, closed [][]vec.Vec2) ([][]vec.Vec2, [][]vec.Vec2) {
	switch g := g.(type) {
	case orb.LineString:
		open = append(open, toPixels(p, g))
	case orb.MultiLineString:
		for _, ls := range g {
			open = append(open, toPixels(p, ls))
		}
	case orb.Ring:
		closed = append(closed, toPixels(p, g))
	case orb.Polygon, orb.MultiPolygon, orb.Bound:
		closed = p.areas(g, closed)
	case orb.Collection:
		for _, h := range g {
			open, closed = p.linework(h, open, closed)
		}
	}
	return open, closed
}

// anchors returns the points at which point symbols and labels are placed:
// the points themselves for point geometries, the midpoint for lines and
// the centroid for areas.
func (p *painter) anchors(g orb.Geometry, out []vec.Vec2) []vec.Vec2 {
	switch g := g.(type) {
	case nil:
	case orb.Point:
		out = append(out, p.toPixel(g))
	case orb.MultiPoint:
		for _, pt := range g {
			out = append(out, p.toPixel(pt))
		}
	case orb.LineString:
		if mid, _, ok := midpoint(toPixels(p, g)); ok {
			out = append(out, mid)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			out = p.anchors(ls, out)
		}
	case orb.Collection:
		for _, h := range g {
			out = p.anchors(h, out)
		}
	default:
		c, _ := planar.Centroid(g)
		out = append(out, p.toPixel(c))
	}
	return out
}

// midpoint returns the point half way along a polyline, together with the
// unit direction of the line there.
func midpoint(pts []vec.Vec2) (vec.Vec2, vec.Vec2, bool) {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Length()
	}
	if total == 0 {
		if len(pts) > 0 {
			return pts[0], vec.Vec2{X: 1}, true
		}
		return vec.Vec2{}, vec.Vec2{}, false
	}
	half := total / 2
	for i := 1; i < len(pts); i++ {
		d := pts[i].Sub(pts[i-1])
		l := d.Length()
		if l == 0 {
			continue
		}
		if half <= l {
			return pts[i-1].Add(d.Mul(half / l)), d.Mul(1 / l), true
		}
		half -= l
	}
	n := len(pts)
	d := pts[n-1].Sub(pts[n-2])
	return pts[n-1], d.Mul(1 / d.Length()), true
}

// concat joins paths.
func concat(paths ...path.Path) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, p := range paths {
			for cmd, pts := range p {
				if !yield(cmd, pts) {
					return
				}
			}
		}
	}
}

func translate(lines [][]vec.Vec2, d vec.Vec2) {
	if d == (vec.Vec2{}) {
		return
	}
	for _, l := range lines {
		for i := range l {
			l[i] = l[i].Add(d)
		}
	}
}

// displacement evaluates a displacement. Positive y values move up.
func displacement(d *style.Displacement, f *feature.Feature) (vec.Vec2, error) {
	if d == nil {
		return vec.Vec2{}, nil
	}
	x, err := filter.Float(d.X, f, 0)
	if err != nil {
		return vec.Vec2{}, errors.Wrap(err, "displacement")
	}
	y, err := filter.Float(d.Y, f, 0)
	if err != nil {
		return vec.Vec2{}, errors.Wrap(err, "displacement")
	}
	return vec.Vec2{X: x, Y: -y}, nil
}

// pen is a resolved stroke.
type pen struct {
	paint
	width      float64
	cap        graphics.LineCapStyle
	join       graphics.LineJoinStyle
	dash       []float64
	dashOffset float64
}

func evalStroke(s *style.Stroke, f *feature.Feature) (pen, error) {
	c, err := evalColor(s.Color, f, defaultStroke)
	if err != nil {
		return pen{}, errors.Wrap(err, "stroke colour")
	}
	op, err := evalOpacity(s.Opacity, f)
	if err != nil {
		return pen{}, errors.Wrap(err, "stroke opacity")
	}
	w, err := filter.Float(s.Width, f, 1)
	if err != nil {
		return pen{}, errors.Wrap(err, "stroke width")
	}
	offs, err := filter.Float(s.DashOffset, f, 0)
	if err != nil {
		return pen{}, errors.Wrap(err, "dash offset")
	}
	return pen{
		paint:      paint{color: c, opacity: op},
		width:      w,
		cap:        s.LineCap,
		join:       s.LineJoin,
		dash:       s.DashArray,
		dashOffset: offs,
	}, nil
}

// setPen prepares the rasteriser for stroking in a coordinate system
// where one unit is scale pixels.
func (p *painter) setPen(pn pen, scale float64) {
	r := p.canvas.R
	r.Width = pn.width / scale
	r.Cap = pn.cap
	r.Join = pn.join
	if len(pn.dash) > 0 {
		r.Dash = make([]float64, len(pn.dash))
		for i, d := range pn.dash {
			r.Dash[i] = d / scale
		}
		r.DashPhase = pn.dashOffset / scale
	}
}

func (p *painter) polygon(s *style.PolygonSymbolizer, f *feature.Feature) error {
	g, err := geometry(f, s.Geometry)
	if err != nil || g == nil {
		return err
	}
	rings := p.areas(g, nil)
	if len(rings) == 0 {
		return nil
	}
	d, err := displacement(s.Displacement, f)
	if err != nil {
		return err
	}
	translate(rings, d)
	outline := raster.Polygon(rings...)

	if s.Fill != nil {
		fill, err := evalFill(s.Fill, f, defaultFill)
		if err != nil {
			return err
		}
		p.canvas.R.Reset(p.clip)
		p.canvas.Fill(outline, raster.EvenOdd, fill.color, fill.opacity)
	}
	if s.Stroke != nil {
		pn, err := evalStroke(s.Stroke, f)
		if err != nil {
			return err
		}
		p.canvas.R.Reset(p.clip)
		p.setPen(pn, 1)
		p.canvas.Stroke(outline, pn.color, pn.opacity)
	}
	return nil
}

func (p *painter) line(s *style.LineSymbolizer, f *feature.Feature) error {
	if s.Stroke == nil {
		return nil
	}
	g, err := geometry(f, s.Geometry)
	if err != nil || g == nil {
		return err
	}
	open, closed := p.linework(g, nil, nil)
	if len(open)+len(closed) == 0 {
		return nil
	}
	pn, err := evalStroke(s.Stroke, f)
	if err != nil {
		return err
	}
	offset, err := filter.Float(s.PerpendicularOffset, f, 0)
	if err != nil {
		return errors.Wrap(err, "perpendicular offset")
	}
	if offset != 0 {
		for i, l := range open {
			open[i] = offsetLine(l, offset, false)
		}
		for i, l := range closed {
			closed[i] = offsetLine(l, offset, true)
		}
	}

	p.canvas.R.Reset(p.clip)
	p.setPen(pn, 1)
	p.canvas.Stroke(concat(raster.Polyline(open...), raster.Polygon(closed...)), pn.color, pn.opacity)
	return nil
}

// offsetLine moves a polyline sideways by d pixels. Positive values move
// to the left, as seen in the direction of the line.
func offsetLine(pts []vec.Vec2, d float64, closed bool) []vec.Vec2 {
	clean := make([]vec.Vec2, 0, len(pts))
	for _, pt := range pts {
		if len(clean) == 0 || pt.Sub(clean[len(clean)-1]).Length() > 1e-9 {
			clean = append(clean, pt)
		}
	}
	if closed && len(clean) > 1 && clean[0].Sub(clean[len(clean)-1]).Length() <= 1e-9 {
		clean = clean[:len(clean)-1]
	}
	n := len(clean)
	if n < 2 {
		return clean
	}

	// left normal of segment i, in pixel coordinates with y pointing down
	normal := func(i int) vec.Vec2 {
		t := clean[(i+1)%n].Sub(clean[i%n])
		t = t.Mul(1 / t.Length())
		return vec.Vec2{X: t.Y, Y: -t.X}
	}

	res := make([]vec.Vec2, n)
	for i := range n {
		var n1, n2 vec.Vec2
		switch {
		case closed:
			n1, n2 = normal((i+n-1)%n), normal(i)
		case i == 0:
			n1 = normal(0)
			n2 = n1
		case i == n-1:
			n1 = normal(n - 2)
			n2 = n1
		default:
			n1, n2 = normal(i-1), normal(i)
		}
		m := n1.Add(n2)
		l := m.Length()
		if l < 1e-9 {
			res[i] = clean[i].Add(n1.Mul(d))
			continue
		}
		m = m.Mul(1 / l)
		// limit the miter length at sharp corners
		k := max(m.Dot(n1), 0.25)
		res[i] = clean[i].Add(m.Mul(d / k))
	}
	return res
}

func (p *painter) point(s *style.PointSymbolizer, f *feature.Feature) error {
	g, err := geometry(f, s.Geometry)
	if err != nil || g == nil {
		return err
	}
	at := p.anchors(g, nil)
	if len(at) == 0 {
		return nil
	}

	gr := s.Graphic
	if gr == nil {
		gr = &style.Graphic{}
	}
	size, err := filter.Float(gr.Size, f, defaultMarkSize)
	if err != nil {
		return errors.Wrap(err, "graphic size")
	}
	opacity, err := evalOpacity(gr.Opacity, f)
	if err != nil {
		return errors.Wrap(err, "graphic opacity")
	}
	rotation, err := filter.Float(gr.Rotation, f, 0)
	if err != nil {
		return errors.Wrap(err, "graphic rotation")
	}
	d, err := displacement(gr.Displacement, f)
	if err != nil {
		return err
	}
	if size <= 0 || opacity == 0 {
		return nil
	}

	mark := gr.Mark
	if mark == nil || mark.Fill == nil && mark.Stroke == nil {
		name := ""
		if mark != nil {
			name = mark.WellKnownName
		}
		mark = &style.Mark{WellKnownName: name, Fill: &style.Fill{}, Stroke: &style.Stroke{}}
	}
	shape, ok := raster.Mark(mark.WellKnownName)
	if !ok {
		if mark.WellKnownName != "" {
			logging.Get().Debug("unknown mark, using square", "mark", mark.WellKnownName)
		}
		shape, _ = raster.Mark("square")
	}

	var fill paint
	if mark.Fill != nil {
		if fill, err = evalFill(mark.Fill, f, defaultFill); err != nil {
			return err
		}
	}
	var pn pen
	if mark.Stroke != nil {
		if pn, err = evalStroke(mark.Stroke, f); err != nil {
			return err
		}
	}

	// marks are defined with the y axis pointing up and rotate clockwise
	phi := rotation * math.Pi / 180
	sin, cos := math.Sincos(phi)
	for _, pt := range at {
		pt = pt.Add(d)
		ctm := matrix.Matrix{size * cos, size * sin, size * sin, -size * cos, pt.X, pt.Y}
		if mark.Fill != nil {
			p.canvas.R.Reset(p.clip)
			p.canvas.R.CTM = ctm
			p.canvas.Fill(shape, raster.NonZero, fill.color, fill.opacity*opacity)
		}
		if mark.Stroke != nil {
			p.canvas.R.Reset(p.clip)
			p.canvas.R.CTM = ctm
			p.setPen(pn, size)
			p.canvas.Stroke(shape, pn.color, pn.opacity*opacity)
		}
	}
	return nil
}

// solid returns a uniform image of c.
func solid(c color.NRGBA) *image.Uniform {
	return image.NewUniform(c)
}
