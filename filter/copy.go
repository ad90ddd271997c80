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

// CopyExpression returns a deep copy of e.
// Expression types defined outside this package are returned as they are.
func CopyExpression(e Expression) Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case *Literal:
		return &Literal{Value: e.Value}
	case *Property:
		return &Property{Name: e.Name}
	case *Arithmetic:
		return &Arithmetic{
			Op:    e.Op,
			Left:  CopyExpression(e.Left),
			Right: CopyExpression(e.Right),
		}
	default:
		return e
	}
}

// CopyFilter returns a deep copy of f.
// Filter types defined outside this package are returned as they are.
func CopyFilter(f Filter) Filter {
	switch f := f.(type) {
	case nil:
		return nil
	case Constant:
		return f
	case *Comparison:
		return &Comparison{Op: f.Op, Left: CopyExpression(f.Left), Right: CopyExpression(f.Right)}
	case *And:
		return &And{Children: copyFilters(f.Children)}
	case *Or:
		return &Or{Children: copyFilters(f.Children)}
	case *Not:
		return &Not{Child: CopyFilter(f.Child)}
	case *IsNull:
		return &IsNull{Expr: CopyExpression(f.Expr)}
	case *Between:
		return &Between{
			Expr:  CopyExpression(f.Expr),
			Lower: CopyExpression(f.Lower),
			Upper: CopyExpression(f.Upper),
		}
	case *Like:
		return &Like{Expr: CopyExpression(f.Expr), Pattern: f.Pattern, MatchCase: f.MatchCase}
	case *BBox:
		return &BBox{Property: f.Property, Bound: f.Bound}
	default:
		return f
	}
}

func copyFilters(fs []Filter) []Filter {
	if fs == nil {
		return nil
	}
	res := make([]Filter, len(fs))
	for i, f := range fs {
		res[i] = CopyFilter(f)
	}
	return res
}
