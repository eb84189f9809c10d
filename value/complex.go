package value

import (
	"math/cmplx"
	"strconv"
	"strings"
)

// Complex is a pair (real, imaginary) of floats, per spec §3. It's a
// pointer type so that the built-in `conj`/`real`/`imag`/`phase`/
// `polar` functions, and arithmetic, can all share the same cheap
// representation without accidentally aliasing mutable state (Complex
// values themselves are otherwise immutable, same as Int/Float).
type Complex struct {
	Re, Im float64
}

// NewComplex builds a Complex from its components.
func NewComplex(re, im float64) *Complex { return &Complex{Re: re, Im: im} }

// FromComplex128 converts a Go complex128, e.g. the result of
// math/cmplx, into a value.Complex.
func FromComplex128(c complex128) *Complex { return &Complex{Re: real(c), Im: imag(c)} }

// Complex128 returns the Go complex128 equivalent, for use with
// math/cmplx.
func (c *Complex) Complex128() complex128 { return complex(c.Re, c.Im) }

func (c *Complex) Type() string { return "complex" }

func (c *Complex) Truthy() bool { return c.Re != 0 || c.Im != 0 }

// String renders the value per spec §3: "R + Ii" / "R - Ii", omitting
// a zero imaginary part entirely (which, like the Python original this
// was grounded on, makes a Complex with zero imaginary part print
// indistinguishably from its real part -- except for the one special
// case of an all-zero complex, which renders as "0.0 + 0.0i").
func (c *Complex) String() string {
	var sb strings.Builder
	if c.Re != 0 {
		sb.WriteString(formatPyFloat(c.Re))
	}
	switch {
	case c.Im == 1:
		if c.Re != 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString("i")
	case c.Im == -1:
		if c.Re != 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString("-")
		}
		sb.WriteString("i")
	case c.Im > 0:
		if c.Re != 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(formatPyFloat(c.Im))
		sb.WriteString("i")
	case c.Im < 0:
		if c.Re != 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString("-")
		}
		sb.WriteString(formatPyFloat(-c.Im))
		sb.WriteString("i")
	}
	if sb.Len() == 0 {
		return "0.0 + 0.0i"
	}
	return sb.String()
}

// formatPyFloat mimics Python's str(float): always at least one
// digit after the decimal point.
func formatPyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Add, Sub, Mul, Div implement complex arithmetic via Go's native
// complex128 type.
func (c *Complex) Add(o *Complex) *Complex { return FromComplex128(c.Complex128() + o.Complex128()) }
func (c *Complex) Sub(o *Complex) *Complex { return FromComplex128(c.Complex128() - o.Complex128()) }
func (c *Complex) Mul(o *Complex) *Complex { return FromComplex128(c.Complex128() * o.Complex128()) }
func (c *Complex) Div(o *Complex) *Complex { return FromComplex128(c.Complex128() / o.Complex128()) }
func (c *Complex) Pow(o *Complex) *Complex {
	return FromComplex128(cmplx.Pow(c.Complex128(), o.Complex128()))
}
func (c *Complex) Neg() *Complex { return &Complex{Re: -c.Re, Im: -c.Im} }

func (c *Complex) Equal(o *Complex) bool { return c.Re == o.Re && c.Im == o.Im }

// Conj returns the complex conjugate.
func (c *Complex) Conj() *Complex { return &Complex{Re: c.Re, Im: -c.Im} }

// Abs returns the magnitude.
func (c *Complex) Abs() float64 { return cmplx.Abs(c.Complex128()) }

// Phase returns the phase angle in radians.
func (c *Complex) Phase() float64 { return cmplx.Phase(c.Complex128()) }

// asComplex promotes any real numeric Value, or an existing Complex,
// to a *Complex, for use by binary operators that need to widen one
// operand to match the other.
func asComplex(v Value) (*Complex, bool) {
	switch n := v.(type) {
	case *Complex:
		return n, true
	case Int:
		return NewComplex(float64(n), 0), true
	case Float:
		return NewComplex(float64(n), 0), true
	case Bool:
		if n {
			return NewComplex(1, 0), true
		}
		return NewComplex(0, 0), true
	default:
		return nil, false
	}
}
