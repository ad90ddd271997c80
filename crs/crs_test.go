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

package crs

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

func TestResolveAliases(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		id   string
		want CRS
	}{
		{"EPSG:4326", WGS84},
		{"epsg:4326", WGS84},
		{"CRS:84", WGS84},
		{" EPSG:3857 ", WebMercator},
		{"EPSG:900913", WebMercator},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.id)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tc.id, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := NewRegistry().Resolve("EPSG:999999")
	if !errors.Is(err, ErrUnknownCRS) {
		t.Fatalf("expected ErrUnknownCRS, got %v", err)
	}
}

func TestTransformer(t *testing.T) {
	r := NewRegistry()

	proj, err := r.Transformer(WGS84, WebMercator)
	if err != nil {
		t.Fatal(err)
	}
	p := proj(orb.Point{180, 0})
	if math.Abs(p[0]-20037508.342789244) > 1e-3 || math.Abs(p[1]) > 1e-6 {
		t.Errorf("unexpected projection of (180,0): %v", p)
	}

	back, err := r.Transformer(WebMercator, WGS84)
	if err != nil {
		t.Fatal(err)
	}
	q := back(proj(orb.Point{10, 45}))
	if math.Abs(q[0]-10) > 1e-9 || math.Abs(q[1]-45) > 1e-9 {
		t.Errorf("round trip gave %v", q)
	}

	id, err := r.Transformer(WGS84, CRS{})
	if err != nil {
		t.Fatal(err)
	}
	if got := id(orb.Point{1, 2}); got != (orb.Point{1, 2}) {
		t.Errorf("identity changed point: %v", got)
	}

	_, err = r.Transformer(WGS84, CRS{Code: "EPSG:32601"})
	if !errors.Is(err, ErrNoTransform) {
		t.Errorf("expected ErrNoTransform, got %v", err)
	}
}
