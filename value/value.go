// Package value implements the tagged value model of spec §3/§4.1:
// None, Boolean, Integer, Float, Complex, String, Slice, Matrix,
// Function, BuiltinFunction and ContextFunction, plus the arithmetic
// and truthiness rules that apply across them.
package value

import (
	"strconv"

	"github.com/huckle-lang/hk/herr"
)

// Value is satisfied by every runtime value the interpreter produces.
type Value interface {
	// Type returns a short, lowercase type tag, used in error messages.
	Type() string
	// String renders the value the way `print` shows it by default.
	String() string
	// Truthy reports whether the value counts as true in a boolean
	// context (conditions, `and`/`or`, `if`-without-`else`).
	Truthy() bool
}

// VarLookup is the minimal slice of *env.Environment that a
// ContextFunction needs. It lives here, rather than importing the env
// package, so that value and env can depend on each other in only one
// direction (env -> value); see DESIGN.md.
type VarLookup interface {
	Lookup(name string) Value
}

// None is the absence of a value.
type None struct{}

func (None) Type() string   { return "none" }
func (None) String() string { return "None" }
func (None) Truthy() bool   { return false }

// Null is the single shared None value.
var Null = None{}

// Bool is a boolean scalar.
type Bool bool

func (b Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) Truthy() bool { return bool(b) }

// Int is an integer scalar.
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Truthy() bool   { return i != 0 }

// Float is a floating-point scalar.
type Float float64

func (Float) Type() string { return "float" }
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}
func (f Float) Truthy() bool { return f != 0 }

// String is an immutable text value.
type String string

func (String) Type() string     { return "string" }
func (s String) String() string { return string(s) }
func (s String) Truthy() bool   { return s != "" }

// Truthy is a small helper for evaluator code that needs the
// truthiness of an arbitrary Value without a type switch at the call
// site.
func Truthy(v Value) bool {
	if v == nil {
		return false
	}
	return v.Truthy()
}

// AsFloat64 converts a real numeric Value (Int, Float or Bool) to a
// float64, for use where a host numeric function is needed (math.*,
// gonum). It returns an error for anything else, including Complex --
// callers that accept complex operands should check for *Complex
// first.
func AsFloat64(v Value) (float64, error) {
	switch n := v.(type) {
	case Int:
		return float64(n), nil
	case Float:
		return float64(n), nil
	case Bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, herr.New(herr.Undefined, "expected a real number, found %s", v.Type())
	}
}

// AsInt converts a real numeric Value to an int, truncating floats is
// not allowed -- a non-integral Float is an error, matching the
// language's "no implicit narrowing" numeric tower.
func AsInt(v Value) (int, error) {
	switch n := v.(type) {
	case Int:
		return int(n), nil
	case Float:
		if float64(int64(n)) != float64(n) {
			return 0, herr.New(herr.Undefined, "expected an integer, found non-integral float %v", float64(n))
		}
		return int(n), nil
	default:
		return 0, herr.New(herr.Undefined, "expected an integer, found %s", v.Type())
	}
}

// IsNumeric reports whether v is one of the scalar numeric types that
// participate in arithmetic promotion (§3: Integer, Float, Complex;
// Bool also behaves numerically for comparisons, as in the original).
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float, *Complex:
		return true
	}
	return false
}
