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

package style

import (
	"github.com/cockroachdb/errors"

	"seehuhn.de/go/maprender/feature"
)

// ScaleTolerance absorbs rounding errors in computed scale denominators
// when they are compared to the bounds of a rule's scale range.
const ScaleTolerance = 1e-6

// InScale reports whether the scale denominator lies in the rule's scale
// range [MinScale, MaxScale).
//
// Both bounds are shifted down by ScaleTolerance, so that a value equal to
// a bound up to rounding belongs to the range starting there. Adjacent
// ranges [a, b) and [b, c) thus never both match.
func (r *Rule) InScale(scale float64) bool {
	if scale < r.MinScale-ScaleTolerance {
		return false
	}
	return r.MaxScale <= 0 || scale < r.MaxScale-ScaleTolerance
}

// Select returns the symbolizers which apply to f at the given scale
// denominator.
//
// Non-else rules match if they are in scale and their filter accepts f.
// Else-rules which are in scale apply only if no non-else rule matched.
// The symbolizers of all matching rules are returned in declaration order.
// In EvaluateFirst mode, only the first matching non-else rule is used.
//
// A rule whose filter cannot be evaluated does not match. The evaluation
// errors are returned together with the symbolizers of the remaining
// rules.
func Select(rules []*Rule, mode EvaluationMode, f *feature.Feature, scale float64) ([]Symbolizer, error) {
	var res []Symbolizer
	var errs error

	matched := false
	for _, r := range rules {
		if r == nil || r.Else || !r.InScale(scale) {
			continue
		}
		if r.Filter != nil {
			ok, err := r.Filter.Evaluate(f)
			if err != nil {
				errs = errors.CombineErrors(errs, errors.Wrapf(err, "rule %q", r.Name))
				continue
			}
			if !ok {
				continue
			}
		}
		matched = true
		res = append(res, r.Symbolizers...)
		if mode == EvaluateFirst {
			break
		}
	}

	if !matched {
		for _, r := range rules {
			if r != nil && r.Else && r.InScale(scale) {
				res = append(res, r.Symbolizers...)
			}
		}
	}
	return res, errs
}
