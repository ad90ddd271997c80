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

// SimplifyExpression folds constant sub-expressions into literals.
// Sub-expressions which fail to evaluate are kept, so that the error is
// reported when the expression is used. The input is not modified.
func SimplifyExpression(e Expression) Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *Literal:
		return &Literal{Value: e.Value}
	case *Property:
		return &Property{Name: e.Name}
	case *Arithmetic:
		res := &Arithmetic{
			Op:    e.Op,
			Left:  SimplifyExpression(e.Left),
			Right: SimplifyExpression(e.Right),
		}
		if isLiteral(res.Left) && isLiteral(res.Right) {
			if v, err := res.Evaluate(nil); err == nil {
				return &Literal{Value: v}
			}
		}
		return res
	default:
		return e
	}
}

func isLiteral(e Expression) bool {
	_, ok := e.(*Literal)
	return ok
}

// SimplifyFilter returns an equivalent, simpler filter.
//
// Constant sub-expressions are folded, comparisons between literals are
// replaced by Include or Exclude, nested And/Or nodes are flattened,
// Include and Exclude are absorbed by the boolean operators, and double
// negations are removed. Applying SimplifyFilter to its own result gives
// an equal filter. The input is not modified.
func SimplifyFilter(f Filter) Filter {
	switch f := f.(type) {
	case nil:
		return nil
	case Constant:
		return f

	case *Comparison:
		res := &Comparison{
			Op:    f.Op,
			Left:  SimplifyExpression(f.Left),
			Right: SimplifyExpression(f.Right),
		}
		if isLiteral(res.Left) && isLiteral(res.Right) {
			return foldConstant(res)
		}
		return res

	case *And:
		var children []Filter
		for _, c := range f.Children {
			c = SimplifyFilter(c)
			switch c := c.(type) {
			case Constant:
				if c == Exclude {
					return Exclude
				}
			case *And:
				children = append(children, c.Children...)
			default:
				children = append(children, c)
			}
		}
		switch len(children) {
		case 0:
			return Include
		case 1:
			return children[0]
		}
		return &And{Children: children}

	case *Or:
		var children []Filter
		for _, c := range f.Children {
			c = SimplifyFilter(c)
			switch c := c.(type) {
			case Constant:
				if c == Include {
					return Include
				}
			case *Or:
				children = append(children, c.Children...)
			default:
				children = append(children, c)
			}
		}
		switch len(children) {
		case 0:
			return Exclude
		case 1:
			return children[0]
		}
		return &Or{Children: children}

	case *Not:
		child := SimplifyFilter(f.Child)
		switch c := child.(type) {
		case Constant:
			return !c
		case *Not:
			return c.Child
		}
		return &Not{Child: child}

	case *IsNull:
		res := &IsNull{Expr: SimplifyExpression(f.Expr)}
		if isLiteral(res.Expr) {
			return foldConstant(res)
		}
		return res

	case *Between:
		res := &Between{
			Expr:  SimplifyExpression(f.Expr),
			Lower: SimplifyExpression(f.Lower),
			Upper: SimplifyExpression(f.Upper),
		}
		if isLiteral(res.Expr) && isLiteral(res.Lower) && isLiteral(res.Upper) {
			return foldConstant(res)
		}
		return res

	case *Like:
		res := &Like{
			Expr:      SimplifyExpression(f.Expr),
			Pattern:   f.Pattern,
			MatchCase: f.MatchCase,
		}
		if isLiteral(res.Expr) {
			return foldConstant(res)
		}
		return res

	case *BBox:
		return &BBox{Property: f.Property, Bound: f.Bound}

	default:
		return f
	}
}

// foldConstant evaluates a filter without feature dependencies.
// If evaluation fails, f is returned unchanged.
func foldConstant(f Filter) Filter {
	ok, err := f.Evaluate(nil)
	if err != nil {
		return f
	}
	return Constant(ok)
}
