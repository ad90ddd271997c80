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
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"seehuhn.de/go/maprender/feature"
)

// Filter is a predicate on features.
type Filter interface {
	Evaluate(f *feature.Feature) (bool, error)
	String() string
}

// Constant is a filter with a fixed result.
type Constant bool

// The two constant filters.
const (
	Include Constant = true
	Exclude Constant = false
)

// Evaluate implements [Filter].
func (c Constant) Evaluate(*feature.Feature) (bool, error) {
	return bool(c), nil
}

func (c Constant) String() string {
	if c {
		return "INCLUDE"
	}
	return "EXCLUDE"
}

// CompareOp is a binary comparison operator.
type CompareOp int

// These are the supported comparison operators.
const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
}

// Comparison compares two expressions.
//
// Numbers compare numerically, strings lexically and booleans only for
// equality. A string operand which holds a number is compared numerically
// against a number. Comparisons involving nil are false.
type Comparison struct {
	Op          CompareOp
	Left, Right Expression
}

// Evaluate implements [Filter].
func (c *Comparison) Evaluate(f *feature.Feature) (bool, error) {
	lv, err := c.Left.Evaluate(f)
	if err != nil {
		return false, err
	}
	rv, err := c.Right.Evaluate(f)
	if err != nil {
		return false, err
	}
	if lv == nil || rv == nil {
		return false, nil
	}
	sign, comparable, err := compareValues(lv, rv, c.Op == Eq || c.Op == Ne)
	if err != nil {
		return false, errors.Wrapf(err, "%s", c)
	}
	if !comparable {
		return c.Op == Ne, nil
	}
	switch c.Op {
	case Eq:
		return sign == 0, nil
	case Ne:
		return sign != 0, nil
	case Lt:
		return sign < 0, nil
	case Le:
		return sign <= 0, nil
	case Gt:
		return sign > 0, nil
	case Ge:
		return sign >= 0, nil
	}
	return false, errors.Mark(errors.Newf("unknown operator %s", c.Op), ErrEvaluation)
}

func (c *Comparison) String() string {
	return c.Left.String() + " " + c.Op.String() + " " + c.Right.String()
}

// compareValues returns the sign of a-b. If equality is true, values of
// incompatible types are reported as not comparable instead of failing.
func compareValues(a, b any, equality bool) (int, bool, error) {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs), true, nil
	}

	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool || bBool {
		if aBool && bBool && equality {
			if ab == bb {
				return 0, true, nil
			}
			return 1, true, nil
		}
		if equality {
			return 0, false, nil
		}
		return 0, false, errors.Mark(errors.Newf("cannot order %v and %v", a, b), ErrEvaluation)
	}

	x, xOK := ToFloat(a)
	y, yOK := ToFloat(b)
	if xOK && yOK {
		switch {
		case x < y:
			return -1, true, nil
		case x > y:
			return 1, true, nil
		default:
			return 0, true, nil
		}
	}
	if equality {
		return 0, false, nil
	}
	return 0, false, errors.Mark(errors.Newf("cannot order %v and %v", a, b), ErrEvaluation)
}

// And is true if all children are true. An empty And is true.
type And struct {
	Children []Filter
}

// Evaluate implements [Filter].
func (a *And) Evaluate(f *feature.Feature) (bool, error) {
	for _, c := range a.Children {
		ok, err := c.Evaluate(f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *And) String() string {
	return join(a.Children, " AND ")
}

// Or is true if at least one child is true. An empty Or is false.
type Or struct {
	Children []Filter
}

// Evaluate implements [Filter].
func (o *Or) Evaluate(f *feature.Feature) (bool, error) {
	for _, c := range o.Children {
		ok, err := c.Evaluate(f)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (o *Or) String() string {
	return join(o.Children, " OR ")
}

func join(children []Filter, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Not negates its child.
type Not struct {
	Child Filter
}

// Evaluate implements [Filter].
func (n *Not) Evaluate(f *feature.Feature) (bool, error) {
	ok, err := n.Child.Evaluate(f)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n *Not) String() string {
	return "NOT " + n.Child.String()
}

// IsNull is true if the expression evaluates to nil.
type IsNull struct {
	Expr Expression
}

// Evaluate implements [Filter].
func (n *IsNull) Evaluate(f *feature.Feature) (bool, error) {
	v, err := n.Expr.Evaluate(f)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

func (n *IsNull) String() string {
	return n.Expr.String() + " IS NULL"
}

// Between is true if Lower <= Expr <= Upper.
type Between struct {
	Expr         Expression
	Lower, Upper Expression
}

// Evaluate implements [Filter].
func (b *Between) Evaluate(f *feature.Feature) (bool, error) {
	lo, err := (&Comparison{Op: Ge, Left: b.Expr, Right: b.Lower}).Evaluate(f)
	if err != nil || !lo {
		return false, err
	}
	return (&Comparison{Op: Le, Left: b.Expr, Right: b.Upper}).Evaluate(f)
}

func (b *Between) String() string {
	return b.Expr.String() + " BETWEEN " + b.Lower.String() + " AND " + b.Upper.String()
}

// Like matches the string value of an expression against a pattern.
// In the pattern, '%' matches any run of characters, '_' matches a single
// character and '\' escapes the following character.
type Like struct {
	Expr      Expression
	Pattern   string
	MatchCase bool
}

// Evaluate implements [Filter].
func (l *Like) Evaluate(f *feature.Feature) (bool, error) {
	v, err := l.Expr.Evaluate(f)
	if err != nil || v == nil {
		return false, err
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	pattern := l.Pattern
	if !l.MatchCase {
		s = strings.ToLower(s)
		pattern = strings.ToLower(pattern)
	}
	return likeMatch([]rune(pattern), []rune(s)), nil
}

func (l *Like) String() string {
	return l.Expr.String() + " LIKE " + fmt.Sprintf("%q", l.Pattern)
}

func likeMatch(p, s []rune) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			for len(p) > 0 && p[0] == '%' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if likeMatch(p, s[i:]) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
		case '\\':
			if len(p) > 1 {
				p = p[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
		}
		p = p[1:]
		s = s[1:]
	}
	return len(s) == 0
}

// BBox is true if the envelope of a geometry attribute intersects Bound.
// An empty Property selects the default geometry.
type BBox struct {
	Property string
	Bound    orb.Bound
}

// Evaluate implements [Filter].
func (b *BBox) Evaluate(f *feature.Feature) (bool, error) {
	name := b.Property
	if name == "" {
		name = feature.GeometryAttribute
	}
	v, _ := f.Attribute(name)
	if v == nil {
		return false, nil
	}
	g, ok := v.(orb.Geometry)
	if !ok {
		return false, errors.Mark(errors.Newf("attribute %q is not a geometry", name), ErrEvaluation)
	}
	return g.Bound().Intersects(b.Bound), nil
}

func (b *BBox) String() string {
	return fmt.Sprintf("BBOX(%s, %g, %g, %g, %g)", b.Property,
		b.Bound.Min[0], b.Bound.Min[1], b.Bound.Max[0], b.Bound.Max[1])
}
