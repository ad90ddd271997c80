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
)

// Validate checks the structural constraints of a style tree.
//
// Else-rules must not have a filter, scale ranges must not be inverted
// or start below zero, and rules, symbolizers and feature type styles must not be
// nil. All problems found are reported.
func Validate(s *Style) error {
	if s == nil {
		return errors.New("missing style")
	}
	var errs error
	for i, fts := range s.FeatureTypeStyles {
		if fts == nil {
			errs = errors.CombineErrors(errs, errors.Newf("feature type style %d is nil", i))
			continue
		}
		for j, r := range fts.Rules {
			if r == nil {
				errs = errors.CombineErrors(errs, errors.Newf("feature type style %d: rule %d is nil", i, j))
				continue
			}
			if err := validateRule(r); err != nil {
				errs = errors.CombineErrors(errs,
					errors.Wrapf(err, "feature type style %d: rule %d (%q)", i, j, r.Name))
			}
		}
		if t := fts.Transformation; t != nil && t.Name == "" {
			errs = errors.CombineErrors(errs, errors.Newf("feature type style %d: unnamed transformation", i))
		}
	}
	return errs
}

func validateRule(r *Rule) error {
	if r.Else && r.Filter != nil {
		return errors.New("else-rule with filter")
	}
	if r.MinScale < 0 {
		return errors.Newf("negative minimum scale %g", r.MinScale)
	}
	if r.MaxScale > 0 && r.MinScale > r.MaxScale {
		return errors.Newf("inverted scale range [%g, %g)", r.MinScale, r.MaxScale)
	}
	for k, s := range r.Symbolizers {
		if s == nil {
			return errors.Newf("symbolizer %d is nil", k)
		}
	}
	return nil
}
