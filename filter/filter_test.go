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

package filter

import (
	"reflect"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/feature"
)

var road = &feature.Feature{
	ID:       "road.7",
	Geometry: orb.LineString{{0, 0}, {10, 5}},
	Properties: map[string]any{
		"name":   "High Street",
		"lanes":  2,
		"speed":  48.5,
		"oneway": true,
		"ref":    "12",
	},
}

func TestComparison(t *testing.T) {
	cases := []struct {
		f    Filter
		want bool
	}{
		{&Comparison{Op: Eq, Left: Prop("lanes"), Right: Lit(2)}, true},
		{&Comparison{Op: Eq, Left: Prop("lanes"), Right: Lit(2.0)}, true},
		{&Comparison{Op: Gt, Left: Prop("speed"), Right: Lit(50)}, false},
		{&Comparison{Op: Le, Left: Prop("speed"), Right: Lit(48.5)}, true},
		{&Comparison{Op: Eq, Left: Prop("ref"), Right: Lit(12)}, true},
		{&Comparison{Op: Lt, Left: Prop("name"), Right: Lit("Low Road")}, true},
		{&Comparison{Op: Ne, Left: Prop("name"), Right: Lit(3)}, true},
		{&Comparison{Op: Eq, Left: Prop("oneway"), Right: Lit(true)}, true},
		{&Comparison{Op: Eq, Left: Prop("missing"), Right: Lit(1)}, false},
		{&Comparison{Op: Ne, Left: Prop("missing"), Right: Lit(1)}, false},
	}
	for _, c := range cases {
		t.Run(c.f.String(), func(t *testing.T) {
			got, err := c.f.Evaluate(road)
			if err != nil {
				t.Fatal(err)
			}
			if got != c.want {
				t.Errorf("got %t, want %t", got, c.want)
			}
		})
	}
}

func TestEvaluationErrors(t *testing.T) {
	cases := []Filter{
		&Comparison{Op: Lt, Left: Prop("name"), Right: Lit(5)},
		&Comparison{Op: Gt, Left: Prop("oneway"), Right: Lit(false)},
		&Comparison{Op: Eq,
			Left:  &Arithmetic{Op: Add, Left: Prop("name"), Right: Lit(1)},
			Right: Lit(1)},
		&Comparison{Op: Eq,
			Left:  &Arithmetic{Op: Div, Left: Prop("lanes"), Right: Lit(0)},
			Right: Lit(1)},
		&BBox{Property: "name", Bound: orb.Bound{Max: orb.Point{1, 1}}},
	}
	for _, f := range cases {
		_, err := f.Evaluate(road)
		if !errors.Is(err, ErrEvaluation) {
			t.Errorf("%s: expected evaluation error, got %v", f, err)
		}
	}
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		e    Expression
		want any
	}{
		{&Arithmetic{Op: Add, Left: Lit(5), Right: Lit(6)}, int64(11)},
		{&Arithmetic{Op: Mul, Left: Prop("lanes"), Right: Lit(3)}, int64(6)},
		{&Arithmetic{Op: Div, Left: Lit(7), Right: Lit(2)}, 3.5},
		{&Arithmetic{Op: Sub, Left: Prop("speed"), Right: Lit(8.5)}, 40.0},
		{&Arithmetic{Op: Add, Left: Prop("missing"), Right: Lit(1)}, nil},
	}
	for _, c := range cases {
		got, err := c.e.Evaluate(road)
		if err != nil {
			t.Errorf("%s: %v", c.e, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s = %v (%T), want %v (%T)", c.e, got, got, c.want, c.want)
		}
	}
}

func TestLogic(t *testing.T) {
	yes := &Comparison{Op: Eq, Left: Prop("lanes"), Right: Lit(2)}
	no := &Comparison{Op: Eq, Left: Prop("lanes"), Right: Lit(3)}
	cases := []struct {
		f    Filter
		want bool
	}{
		{&And{Children: []Filter{yes, yes}}, true},
		{&And{Children: []Filter{yes, no}}, false},
		{&And{}, true},
		{&Or{Children: []Filter{no, yes}}, true},
		{&Or{}, false},
		{&Not{Child: no}, true},
		{&IsNull{Expr: Prop("missing")}, true},
		{&IsNull{Expr: Prop("name")}, false},
		{&Between{Expr: Prop("speed"), Lower: Lit(40), Upper: Lit(50)}, true},
		{&Between{Expr: Prop("speed"), Lower: Lit(50), Upper: Lit(60)}, false},
		{&Like{Expr: Prop("name"), Pattern: "high%"}, true},
		{&Like{Expr: Prop("name"), Pattern: "high%", MatchCase: true}, false},
		{&Like{Expr: Prop("name"), Pattern: "H_gh Street"}, true},
		{&Like{Expr: Prop("name"), Pattern: "%Road"}, false},
		{&Like{Expr: Lit("100%"), Pattern: `100\%`}, true},
		{&BBox{Bound: orb.Bound{Min: orb.Point{5, 1}, Max: orb.Point{20, 20}}}, true},
		{&BBox{Bound: orb.Bound{Min: orb.Point{11, 0}, Max: orb.Point{20, 20}}}, false},
		{Include, true},
		{Exclude, false},
	}
	for _, c := range cases {
		got, err := c.f.Evaluate(road)
		if err != nil {
			t.Errorf("%s: %v", c.f, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %t, want %t", c.f, got, c.want)
		}
	}
}

func TestSimplifyFoldsConstants(t *testing.T) {
	in := &Comparison{
		Op:    Eq,
		Left:  Prop("value"),
		Right: &Arithmetic{Op: Add, Left: Lit(5), Right: Lit(6)},
	}
	want := &Comparison{Op: Eq, Left: Prop("value"), Right: Lit(int64(11))}
	got := SimplifyFilter(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, ok := in.Right.(*Arithmetic); !ok {
		t.Error("input was modified")
	}
}

func TestSimplifyBoolean(t *testing.T) {
	p := &Comparison{Op: Gt, Left: Prop("lanes"), Right: Lit(1)}
	q := &IsNull{Expr: Prop("name")}
	cases := []struct {
		in, want Filter
	}{
		{&And{Children: []Filter{Include, p}}, p},
		{&And{Children: []Filter{p, Exclude}}, Exclude},
		{&Or{Children: []Filter{p, Include}}, Include},
		{&Or{Children: []Filter{Exclude, Exclude}}, Exclude},
		{&Not{Child: &Not{Child: p}}, p},
		{&Not{Child: Include}, Exclude},
		{&Comparison{Op: Lt, Left: Lit(1), Right: Lit(2)}, Include},
		{&Between{Expr: Lit(7), Lower: Lit(1), Upper: Lit(5)}, Exclude},
		{&IsNull{Expr: Lit(nil)}, Include},
		{
			&And{Children: []Filter{p, &And{Children: []Filter{q, Include}}}},
			&And{Children: []Filter{p, q}},
		},
		{
			&Or{Children: []Filter{&Or{Children: []Filter{p, q}}, Exclude}},
			&Or{Children: []Filter{p, q}},
		},
	}
	for _, c := range cases {
		got := SimplifyFilter(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Simplify(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	inputs := []Filter{
		&And{Children: []Filter{
			&Not{Child: &Not{Child: &Not{Child: &IsNull{Expr: Prop("a")}}}},
			&Or{Children: []Filter{
				&Comparison{Op: Eq, Left: Prop("b"), Right: &Arithmetic{Op: Mul, Left: Lit(2), Right: Lit(3)}},
				&And{Children: []Filter{Include, &Like{Expr: Prop("c"), Pattern: "x%"}}},
			}},
		}},
		&Comparison{Op: Lt, Left: Lit("text"), Right: Lit(3)},
		&Comparison{Op: Eq, Left: Prop("x"), Right: &Arithmetic{Op: Div, Left: Lit(1), Right: Lit(0)}},
		&Between{Expr: Prop("x"), Lower: &Arithmetic{Op: Sub, Left: Lit(10), Right: Lit(4)}, Upper: Lit(9)},
	}
	for _, in := range inputs {
		once := SimplifyFilter(in)
		twice := SimplifyFilter(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("not idempotent: %s -> %s -> %s", in, once, twice)
		}
	}
}

func TestSimplifyKeepsFailingFold(t *testing.T) {
	in := &Comparison{Op: Lt, Left: Lit("text"), Right: Lit(3)}
	got := SimplifyFilter(in)
	if _, ok := got.(*Comparison); !ok {
		t.Fatalf("failing comparison was folded to %s", got)
	}
	if _, err := got.Evaluate(road); !errors.Is(err, ErrEvaluation) {
		t.Errorf("expected evaluation error, got %v", err)
	}
}

func TestCopyDoesNotAlias(t *testing.T) {
	in := &And{Children: []Filter{
		&Comparison{Op: Eq, Left: Prop("a"), Right: Lit(1)},
		&Not{Child: &Like{Expr: Prop("b"), Pattern: "%"}},
	}}
	out := CopyFilter(in).(*And)
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("copy differs: %s vs %s", in, out)
	}
	if out == in || &out.Children[0] == &in.Children[0] {
		t.Fatal("copy shares storage with the input")
	}
	out.Children[0].(*Comparison).Left.(*Property).Name = "changed"
	if in.Children[0].(*Comparison).Left.(*Property).Name != "a" {
		t.Error("modifying the copy changed the input")
	}
}
