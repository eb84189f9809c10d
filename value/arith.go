package value

import (
	"math"

	"github.com/huckle-lang/hk/herr"
)

// Op identifies a scalar arithmetic/logical operator. These mirror
// the operator tokens of spec §4.3 rather than reusing the token
// package's Type directly, so that value stays free of a dependency
// on token.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpPow Op = "^"
)

// BinaryScalar applies op to two scalar (non-Matrix, non-Slice)
// values, following spec §3's promotion rules: int op int -> int,
// except / which always yields float; any float operand widens the
// result to float; any complex operand widens it to complex. String
// concatenation is supported for '+' as a practical extension of the
// same dispatch, grounded on the same "try left, then try right"
// shape BinaryOperator.evaluate uses in the original.
func BinaryScalar(left Value, op Op, right Value) (Value, error) {
	// Complex wins the widest-type race.
	if lc, lok := left.(*Complex); lok {
		rc, rok := asComplex(right)
		if !rok {
			return nil, herr.New(herr.Undefined, "cannot apply %s between complex and %s", op, right.Type())
		}
		return complexBinary(lc, op, rc)
	}
	if rc, rok := right.(*Complex); rok {
		lc, lok := asComplex(left)
		if !lok {
			return nil, herr.New(herr.Undefined, "cannot apply %s between %s and complex", op, left.Type())
		}
		return complexBinary(lc, op, rc)
	}

	if op == OpAdd {
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs, nil
			}
		}
	}

	lf, lIsFloat, lerr := scalarToFloatOrInt(left)
	rf, rIsFloat, rerr := scalarToFloatOrInt(right)
	if lerr != nil {
		return nil, lerr
	}
	if rerr != nil {
		return nil, rerr
	}

	if op == OpDiv {
		if rf == 0 {
			return nil, herr.New(herr.Undefined, "division by zero")
		}
		return Float(lf / rf), nil
	}

	wantFloat := lIsFloat || rIsFloat
	switch op {
	case OpAdd:
		if wantFloat {
			return Float(lf + rf), nil
		}
		return Int(int64(lf) + int64(rf)), nil
	case OpSub:
		if wantFloat {
			return Float(lf - rf), nil
		}
		return Int(int64(lf) - int64(rf)), nil
	case OpMul:
		if wantFloat {
			return Float(lf * rf), nil
		}
		return Int(int64(lf) * int64(rf)), nil
	case OpMod:
		if wantFloat {
			return Float(math.Mod(lf, rf)), nil
		}
		if int64(rf) == 0 {
			return nil, herr.New(herr.Undefined, "modulus by zero")
		}
		return Int(int64(lf) % int64(rf)), nil
	case OpPow:
		result := math.Pow(lf, rf)
		if !wantFloat && rf >= 0 && result == math.Trunc(result) {
			return Int(int64(result)), nil
		}
		if result < 0 && !wantFloat {
			// Negative base to a fractional-looking float exponent
			// computed via math.Pow can go complex in the real
			// implementation this was ported from; callers that need
			// that (sqrt of a negative, etc.) go through the sqrt
			// builtin instead, which already returns *Complex.
			return Float(result), nil
		}
		return Float(result), nil
	}
	return nil, herr.New(herr.Undefined, "unsupported scalar operator %s", op)
}

func scalarToFloatOrInt(v Value) (f float64, isFloat bool, err error) {
	switch n := v.(type) {
	case Int:
		return float64(n), false, nil
	case Float:
		return float64(n), true, nil
	case Bool:
		if n {
			return 1, false, nil
		}
		return 0, false, nil
	default:
		return 0, false, herr.New(herr.Undefined, "expected a number, found %s", v.Type())
	}
}

func complexBinary(l *Complex, op Op, r *Complex) (Value, error) {
	switch op {
	case OpAdd:
		return l.Add(r), nil
	case OpSub:
		return l.Sub(r), nil
	case OpMul:
		return l.Mul(r), nil
	case OpDiv:
		if r.Re == 0 && r.Im == 0 {
			return nil, herr.New(herr.Undefined, "division by zero")
		}
		return l.Div(r), nil
	case OpPow:
		return l.Pow(r), nil
	default:
		return nil, herr.New(herr.Undefined, "unsupported complex operator %s", op)
	}
}

// Equal implements value equality across the scalar types, used by
// the '==' / '!=' comparison operators and by 'in' membership checks.
func Equal(a, b Value) bool {
	if ac, ok := a.(*Complex); ok {
		if bc, ok := asComplex(b); ok {
			return ac.Equal(bc)
		}
		return false
	}
	if bc, ok := b.(*Complex); ok {
		if ac, ok := asComplex(a); ok {
			return ac.Equal(bc)
		}
		return false
	}
	switch av := a.(type) {
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Int:
			return float64(av) == float64(bv)
		case Float:
			return av == bv
		}
		return false
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case None:
		_, ok := b.(None)
		return ok
	}
	return false
}

// Less implements '<' / '<=' / '>' / '>=' for real numeric scalars.
func Less(a, b Value) (bool, error) {
	af, _, err := scalarToFloatOrInt(a)
	if err != nil {
		return false, err
	}
	bf, _, err := scalarToFloatOrInt(b)
	if err != nil {
		return false, err
	}
	return af < bf, nil
}

// LessEqual, Greater, GreaterEqual build on Less/Equal the same way
// the original's chained match-statement does.
func LessEqual(a, b Value) (bool, error) {
	lt, err := Less(a, b)
	if err != nil {
		return false, err
	}
	return lt || Equal(a, b), nil
}

func Greater(a, b Value) (bool, error) {
	le, err := LessEqual(a, b)
	if err != nil {
		return false, err
	}
	return !le, nil
}

func GreaterEqual(a, b Value) (bool, error) {
	lt, err := Less(a, b)
	if err != nil {
		return false, err
	}
	return !lt, nil
}
