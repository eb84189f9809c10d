// Package builtins implements the seeded environment of spec §6.2:
// the fixed set of names the interpreter pre-populates before running
// a program. Grounded on original_source/parser.py's initiate_context
// registration table and original_source/utils/builtins.py's concrete
// implementations; names the original left unimplemented (norm, ones,
// rank, reshape, zeros, sqrt, imag, real, polar -- see DESIGN.md) are
// supplemented here in the same style as their registered siblings.
package builtins

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/huckle-lang/hk/env"
	"github.com/huckle-lang/hk/herr"
	"github.com/huckle-lang/hk/value"
)

// Register seeds e with every name from spec §6.2.
func Register(e *env.Environment) {
	// General
	e.Assign("len", builtin("len", builtinLen))
	e.Assign("slice", builtin("slice", builtinSlice))
	e.Assign("str", builtin("str", builtinStr))
	e.Assign("print", &value.ContextFunction{Name: "print", Fn: prettyPrint})

	// Logic
	e.Assign("eq", infixBuiltin("eq", builtinEq))

	// Matrix
	e.Assign("cross", infixBuiltin("cross", builtinCross))
	e.Assign("det", builtin("det", builtinDet))
	e.Assign("diagonal", builtin("diagonal", builtinDiagonal))
	e.Assign("dot", infixBuiltin("dot", builtinDot))
	e.Assign("eye", builtin("eye", builtinEye))
	e.Assign("inv", builtin("inv", builtinInv))
	e.Assign("max", builtin("max", builtinMax))
	e.Assign("min", builtin("min", builtinMin))
	e.Assign("norm", builtin("norm", builtinNorm))
	e.Assign("ones", builtin("ones", builtinOnes))
	e.Assign("rank", builtin("rank", builtinRank))
	e.Assign("reshape", infixBuiltin("reshape", builtinReshape))
	e.Assign("trace", builtin("trace", builtinTrace))
	e.Assign("transpose", builtin("transpose", builtinTranspose))
	e.Assign("zeros", builtin("zeros", builtinZeros))

	// Complex
	e.Assign("conj", builtin("conj", builtinConj))
	e.Assign("imag", builtin("imag", builtinImag))
	e.Assign("phase", builtin("phase", builtinPhase))
	e.Assign("polar", builtin("polar", builtinPolar))
	e.Assign("real", builtin("real", builtinReal))

	// Scalar math
	e.Assign("abs", builtin("abs", builtinAbs))
	e.Assign("acos", realMathFn("acos", math.Acos))
	e.Assign("acosh", realMathFn("acosh", math.Acosh))
	e.Assign("asin", realMathFn("asin", math.Asin))
	e.Assign("asinh", realMathFn("asinh", math.Asinh))
	e.Assign("atan", realMathFn("atan", math.Atan))
	e.Assign("atanh", realMathFn("atanh", math.Atanh))
	e.Assign("cos", realMathFn("cos", math.Cos))
	e.Assign("cosh", realMathFn("cosh", math.Cosh))
	e.Assign("exp", realMathFn("exp", math.Exp))
	e.Assign("log", realMathFn("log", math.Log))
	e.Assign("sin", realMathFn("sin", math.Sin))
	e.Assign("sinh", realMathFn("sinh", math.Sinh))
	e.Assign("sqrt", builtin("sqrt", builtinSqrt))
	e.Assign("tan", realMathFn("tan", math.Tan))
	e.Assign("tanh", realMathFn("tanh", math.Tanh))

	// Constants
	e.Assign("e", value.Float(math.E))
	e.Assign("i", value.NewComplex(0, 1))
	e.Assign("pi", value.Float(math.Pi))
	e.Assign("pretty_print", value.Bool(true))
}

func builtin(name string, fn func(args []value.Value) (value.Value, error)) *value.BuiltinFunction {
	return &value.BuiltinFunction{Name: name, Fn: fn}
}

// infixBuiltin registers a function usable with infix call syntax
// (spec §6.2 flags cross/dot/eq/reshape as infix), mirroring the
// original's PythonFunction(fn, infix=True) constructor argument.
func infixBuiltin(name string, fn func(args []value.Value) (value.Value, error)) *value.BuiltinFunction {
	b := builtin(name, fn)
	b.Infix = true
	return b
}

func argErr(name string, want, got int) error {
	return herr.New(herr.ArityTooMany, "%s expects %d argument(s), got %d", name, want, got)
}

func asMatrix(name string, v value.Value) (*value.Matrix, error) {
	m, ok := v.(*value.Matrix)
	if !ok {
		return nil, herr.New(herr.Undefined, "%s expects a matrix, got %s", name, v.Type())
	}
	return m, nil
}

// --- General ---------------------------------------------------------

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("len", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.String:
		return value.Int(len(v)), nil
	case *value.Matrix:
		return value.Int(len(v.Vector())), nil
	default:
		return nil, herr.New(herr.Undefined, "len expects a string or matrix, got %s", v.Type())
	}
}

func builtinSlice(args []value.Value) (value.Value, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, herr.New(herr.ArityTooMany, "slice expects 1 to 3 arguments, got %d", len(args))
	}
	toPtr := func(v value.Value) (*int64, error) {
		if _, isNone := v.(value.None); isNone {
			return nil, nil
		}
		n, err := value.AsInt(v)
		if err != nil {
			return nil, err
		}
		i := int64(n)
		return &i, nil
	}
	s := &value.Slice{}
	var err error
	if len(args) >= 1 {
		if s.Start, err = toPtr(args[0]); err != nil {
			return nil, err
		}
	}
	if len(args) >= 2 {
		if s.Stop, err = toPtr(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) == 3 {
		if s.Step, err = toPtr(args[2]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func builtinStr(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("str", 1, len(args))
	}
	return value.String(args[0].String()), nil
}

func builtinEq(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, argErr("eq", 2, len(args))
	}
	return value.Bool(value.Equal(args[0], args[1])), nil
}

// prettyPrint implements `print`: a ContextFunction because it reads
// the `pretty_print` variable out of the calling environment, per
// spec §4.2/§6.2, grounded on original_source/utils/builtins.py's
// pretty_print.
func prettyPrint(lookup value.VarLookup, args []value.Value) (value.Value, error) {
	pp := lookup.Lookup("pretty_print")
	if len(args) == 1 && pp.Truthy() {
		if m, ok := args[0].(*value.Matrix); ok {
			fmt.Print(renderPretty(m))
			return value.Null, nil
		}
	}
	strs := make([]any, len(args))
	for i, a := range args {
		strs[i] = a.String()
	}
	fmt.Println(strs...)
	return value.Null, nil
}

// renderPretty column-aligns a matrix's elements between "[ " / " ]"
// delimiters, matching the original's pretty_print column-width
// computation.
func renderPretty(m *value.Matrix) string {
	rows, cols := m.Shape()
	columns := m.Columns()
	widths := make([]int, cols)
	for c, col := range columns {
		w := 0
		for _, v := range col {
			if l := len(v.String()); l > w {
				w = l
			}
		}
		widths[c] = w
	}

	out := "[ "
	elements := m.Vector()
	current := 1
	for _, el := range elements {
		if current > cols {
			current -= cols
			out += "\n  "
		}
		s := el.String()
		pad := 1 + widths[current-1] - len(s)
		if pad < 1 {
			pad = 1
		}
		out += s
		for k := 0; k < pad; k++ {
			out += " "
		}
		current++
	}
	out += "]\n"
	_ = rows
	return out
}

// --- Matrix ------------------------------------------------------------

func builtinDet(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("det", 1, len(args))
	}
	m, err := asMatrix("det", args[0])
	if err != nil {
		return nil, err
	}
	d, err := m.Determinant()
	if err != nil {
		return nil, err
	}
	return value.Float(math.Round(d*1e6) / 1e6), nil
}

func builtinInv(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("inv", 1, len(args))
	}
	m, err := asMatrix("inv", args[0])
	if err != nil {
		return nil, err
	}
	return m.Inverse()
}

func builtinTrace(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("trace", 1, len(args))
	}
	m, err := asMatrix("trace", args[0])
	if err != nil {
		return nil, err
	}
	return m.Trace()
}

func builtinTranspose(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("transpose", 1, len(args))
	}
	m, err := asMatrix("transpose", args[0])
	if err != nil {
		return nil, err
	}
	return m.Transpose(), nil
}

func builtinDiagonal(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("diagonal", 1, len(args))
	}
	m, err := asMatrix("diagonal", args[0])
	if err != nil {
		return nil, err
	}
	vec := m.Vector()
	out := value.Zeros(len(vec), len(vec))
	for i, v := range vec {
		if err := out.Set(v, value.Int(i+1), value.Int(i+1)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func builtinEye(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("eye", 1, len(args))
	}
	n, err := value.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	return value.Eye(n), nil
}

func builtinZeros(args []value.Value) (value.Value, error) {
	return shapeBuiltin("zeros", args, value.Zeros)
}

func builtinOnes(args []value.Value) (value.Value, error) {
	return shapeBuiltin("ones", args, value.Ones)
}

func shapeBuiltin(name string, args []value.Value, make2 func(r, c int) *value.Matrix) (value.Value, error) {
	switch len(args) {
	case 1:
		n, err := value.AsInt(args[0])
		if err != nil {
			return nil, err
		}
		return make2(n, n), nil
	case 2:
		r, err := value.AsInt(args[0])
		if err != nil {
			return nil, err
		}
		c, err := value.AsInt(args[1])
		if err != nil {
			return nil, err
		}
		return make2(r, c), nil
	default:
		return nil, herr.New(herr.ArityTooMany, "%s expects 1 or 2 arguments, got %d", name, len(args))
	}
}

func builtinRank(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("rank", 1, len(args))
	}
	m, err := asMatrix("rank", args[0])
	if err != nil {
		return nil, err
	}
	r, err := m.Rank()
	if err != nil {
		return nil, err
	}
	return value.Int(r), nil
}

func builtinNorm(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("norm", 1, len(args))
	}
	m, err := asMatrix("norm", args[0])
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, v := range m.Vector() {
		f, err := value.AsFloat64(v)
		if err != nil {
			return nil, err
		}
		sum += f * f
	}
	return value.Float(math.Sqrt(sum)), nil
}

// builtinReshape reinterprets a matrix's row-major elements into a
// new r-by-c shape, the way numpy's reshape (the original's
// likely intent, matching its numpy-array-backed Matrix) does.
func builtinReshape(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return nil, argErr("reshape", 3, len(args))
	}
	m, err := asMatrix("reshape", args[0])
	if err != nil {
		return nil, err
	}
	r, err := value.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	c, err := value.AsInt(args[2])
	if err != nil {
		return nil, err
	}
	vec := m.Vector()
	if r*c != len(vec) {
		return nil, herr.New(herr.MatrixDimension, "cannot reshape %d elements into shape (%d, %d)", len(vec), r, c)
	}
	rows := make([][]value.Value, r)
	for i := 0; i < r; i++ {
		rows[i] = vec[i*c : (i+1)*c]
	}
	out, err := value.NewMatrixFromRows(rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func builtinDot(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, argErr("dot", 2, len(args))
	}
	l, err := asMatrix("dot", args[0])
	if err != nil {
		return nil, err
	}
	r, err := asMatrix("dot", args[1])
	if err != nil {
		return nil, err
	}
	lv, rv := l.Vector(), r.Vector()
	if len(lv) != len(rv) {
		return nil, herr.New(herr.MatrixDimension, "dot requires equal-length vectors, got %d and %d", len(lv), len(rv))
	}
	var sum value.Value = value.Int(0)
	for i := range lv {
		prod, err := value.BinaryScalar(lv[i], value.OpMul, rv[i])
		if err != nil {
			return nil, err
		}
		sum, err = value.BinaryScalar(sum, value.OpAdd, prod)
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}

func builtinCross(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, argErr("cross", 2, len(args))
	}
	l, err := asMatrix("cross", args[0])
	if err != nil {
		return nil, err
	}
	r, err := asMatrix("cross", args[1])
	if err != nil {
		return nil, err
	}
	lv, rv := l.Vector(), r.Vector()
	if len(lv) != 3 || len(rv) != 3 {
		return nil, herr.New(herr.MatrixDimension, "cross product requires two 3-element vectors")
	}
	lf := make([]float64, 3)
	rf := make([]float64, 3)
	for i := 0; i < 3; i++ {
		if lf[i], err = value.AsFloat64(lv[i]); err != nil {
			return nil, err
		}
		if rf[i], err = value.AsFloat64(rv[i]); err != nil {
			return nil, err
		}
	}
	out := []float64{
		lf[1]*rf[2] - lf[2]*rf[1],
		lf[2]*rf[0] - lf[0]*rf[2],
		lf[0]*rf[1] - lf[1]*rf[0],
	}
	elems := make([]value.Value, 3)
	for i, f := range out {
		elems[i] = value.Float(f)
	}
	return value.NewMatrixFromFlat(elems), nil
}

func builtinMax(args []value.Value) (value.Value, error) {
	return extremum("max", args, true)
}

func builtinMin(args []value.Value) (value.Value, error) {
	return extremum("min", args, false)
}

func extremum(name string, args []value.Value, wantMax bool) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr(name, 1, len(args))
	}
	m, err := asMatrix(name, args[0])
	if err != nil {
		return nil, err
	}
	vec := m.Vector()
	if len(vec) == 0 {
		return nil, herr.New(herr.Undefined, "%s of an empty matrix", name)
	}
	floats := make([]float64, len(vec))
	for i, v := range vec {
		if floats[i], err = value.AsFloat64(v); err != nil {
			return nil, err
		}
	}
	idx := 0
	for i, f := range floats {
		if (wantMax && f > floats[idx]) || (!wantMax && f < floats[idx]) {
			idx = i
		}
	}
	return vec[idx], nil
}

// --- Complex -------------------------------------------------------------

func asComplexArg(name string, v value.Value) (*value.Complex, error) {
	switch n := v.(type) {
	case *value.Complex:
		return n, nil
	case value.Int:
		return value.NewComplex(float64(n), 0), nil
	case value.Float:
		return value.NewComplex(float64(n), 0), nil
	default:
		return nil, herr.New(herr.Undefined, "%s expects a number, got %s", name, v.Type())
	}
}

func builtinConj(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("conj", 1, len(args))
	}
	c, err := asComplexArg("conj", args[0])
	if err != nil {
		return nil, err
	}
	return c.Conj(), nil
}

func builtinImag(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("imag", 1, len(args))
	}
	c, err := asComplexArg("imag", args[0])
	if err != nil {
		return nil, err
	}
	return value.Float(c.Im), nil
}

func builtinReal(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("real", 1, len(args))
	}
	c, err := asComplexArg("real", args[0])
	if err != nil {
		return nil, err
	}
	return value.Float(c.Re), nil
}

func builtinPhase(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("phase", 1, len(args))
	}
	c, err := asComplexArg("phase", args[0])
	if err != nil {
		return nil, err
	}
	return value.Float(c.Phase()), nil
}

func builtinPolar(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("polar", 1, len(args))
	}
	c, err := asComplexArg("polar", args[0])
	if err != nil {
		return nil, err
	}
	return value.NewMatrixFromFlat([]value.Value{value.Float(c.Abs()), value.Float(c.Phase())}), nil
}

// --- Scalar math ----------------------------------------------------------

func realMathFn(name string, fn func(float64) float64) *value.BuiltinFunction {
	return builtin(name, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr(name, 1, len(args))
		}
		f, err := value.AsFloat64(args[0])
		if err != nil {
			return nil, err
		}
		return value.Float(fn(f)), nil
	})
}

func builtinAbs(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("abs", 1, len(args))
	}
	if c, ok := args[0].(*value.Complex); ok {
		return value.Float(c.Abs()), nil
	}
	f, err := value.AsFloat64(args[0])
	if err != nil {
		return nil, err
	}
	return value.Float(math.Abs(f)), nil
}

// builtinSqrt follows spec §4.2: "sqrt of a negative real returns
// Complex."
func builtinSqrt(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, argErr("sqrt", 1, len(args))
	}
	if c, ok := args[0].(*value.Complex); ok {
		return value.FromComplex128(cmplx.Sqrt(c.Complex128())), nil
	}
	f, err := value.AsFloat64(args[0])
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return value.FromComplex128(cmplx.Sqrt(complex(f, 0))), nil
	}
	return value.Float(math.Sqrt(f)), nil
}
