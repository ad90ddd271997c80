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
	"github.com/paulmach/orb"
)

// Args holds the bound arguments of a transformation call.
// Values are already converted to the declared parameter kinds:
// float64 for Number, string for Text and orb.Bound for Envelope.
type Args struct {
	Named map[string]any
	Rest  []any
}

// Has reports whether the named argument is present.
func (a Args) Has(name string) bool {
	_, ok := a.Named[name]
	return ok
}

// Float returns a Number argument.
func (a Args) Float(name string) (float64, bool) {
	v, ok := a.Named[name].(float64)
	return v, ok
}

// String returns a Text argument.
func (a Args) String(name string) (string, bool) {
	v, ok := a.Named[name].(string)
	return v, ok
}

// Bound returns an Envelope argument.
func (a Args) Bound(name string) (orb.Bound, bool) {
	v, ok := a.Named[name].(orb.Bound)
	return v, ok
}
