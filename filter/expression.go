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

// Package filter implements the expressions and predicates used by map
// styles: attribute lookups, literals, arithmetic, comparisons and boolean
// combinations, together with constant folding and deep copying.
package filter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"

	"seehuhn.de/go/maprender/feature"
)

// ErrEvaluation marks errors raised while evaluating an expression or
// filter against a feature.
var ErrEvaluation = errors.New("evaluation failed")

// Expression computes a value from a feature.
//
// A missing attribute evaluates to nil. Values are Go scalars (string,
// bool, integer and floating point types) or geometries.
type Expression interface {
	Evaluate(f *feature.Feature) (any, error)
	String() string
}

// Literal is a constant value.
type Literal struct {
	Value any
}

// Lit returns a literal expression.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

// Evaluate implements [Expression].
func (l *Literal) Evaluate(*feature.Feature) (any, error) {
	return l.Value, nil
}

func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(l.Value)
}

// Property looks up a feature attribute by name.
type Property struct {
	Name string
}

// Prop returns a property lookup.
func Prop(name string) *Property {
	return &Property{Name: name}
}

// Evaluate implements [Expression].
func (p *Property) Evaluate(f *feature.Feature) (any, error) {
	v, _ := f.Attribute(p.Name)
	return v, nil
}

func (p *Property) String() string {
	return p.Name
}

// ArithmeticOp is a binary arithmetic operator.
type ArithmeticOp int

// These are the supported arithmetic operators.
const (
	Add ArithmeticOp = iota
	Sub
	Mul
	Div
)

func (op ArithmeticOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return fmt.Sprintf("ArithmeticOp(%d)", int(op))
	}
}

// Arithmetic combines two numeric expressions.
//
// If both operands are integers, Add, Sub and Mul produce an int64.
// All other combinations produce a float64. A nil operand gives a nil
// result.
type Arithmetic struct {
	Op          ArithmeticOp
	Left, Right Expression
}

// Evaluate implements [Expression].
func (a *Arithmetic) Evaluate(f *feature.Feature) (any, error) {
	lv, err := a.Left.Evaluate(f)
	if err != nil {
		return nil, err
	}
	rv, err := a.Right.Evaluate(f)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}

	li, lInt := toInt(lv)
	ri, rInt := toInt(rv)
	if lInt && rInt && a.Op != Div {
		switch a.Op {
		case Add:
			return li + ri, nil
		case Sub:
			return li - ri, nil
		case Mul:
			return li * ri, nil
		}
	}

	x, ok := ToFloat(lv)
	if !ok {
		return nil, errors.Mark(errors.Newf("%s: %v is not a number", a, lv), ErrEvaluation)
	}
	y, ok := ToFloat(rv)
	if !ok {
		return nil, errors.Mark(errors.Newf("%s: %v is not a number", a, rv), ErrEvaluation)
	}
	switch a.Op {
	case Add:
		return x + y, nil
	case Sub:
		return x - y, nil
	case Mul:
		return x * y, nil
	case Div:
		if y == 0 {
			return nil, errors.Mark(errors.Newf("%s: division by zero", a), ErrEvaluation)
		}
		return x / y, nil
	}
	return nil, errors.Mark(errors.Newf("unknown operator %s", a.Op), ErrEvaluation)
}

func (a *Arithmetic) String() string {
	return "(" + a.Left.String() + " " + a.Op.String() + " " + a.Right.String() + ")"
}

// ToFloat converts a numeric value, or a string holding a number, to
// float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

// Float evaluates e and converts the result to float64.
// A nil expression or a nil result gives def.
func Float(e Expression, f *feature.Feature, def float64) (float64, error) {
	if e == nil {
		return def, nil
	}
	v, err := e.Evaluate(f)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	x, ok := ToFloat(v)
	if !ok {
		return 0, errors.Mark(errors.Newf("%s: %v is not a number", e, v), ErrEvaluation)
	}
	return x, nil
}

// String evaluates e and formats the result as a string.
// A nil expression or a nil result gives def.
func String(e Expression, f *feature.Feature, def string) (string, error) {
	if e == nil {
		return def, nil
	}
	v, err := e.Evaluate(f)
	if err != nil {
		return "", err
	}
	if v == nil {
		return def, nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}
