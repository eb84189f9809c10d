package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huckle-lang/hk/env"
	"github.com/huckle-lang/hk/value"
)

func call(t *testing.T, e *env.Environment, name string, args ...value.Value) value.Value {
	t.Helper()
	fn, ok := e.Lookup(name).(*value.BuiltinFunction)
	require.True(t, ok, "%s should be registered as a BuiltinFunction", name)
	v, err := fn.Call(args)
	require.NoError(t, err)
	return v
}

func newEnv() *env.Environment {
	e := env.New()
	Register(e)
	return e
}

func TestRegisterSeedsConstants(t *testing.T) {
	e := newEnv()
	assert.Equal(t, value.Bool(true), e.Lookup("pretty_print"))
	assert.IsType(t, value.Float(0), e.Lookup("pi"))
	assert.IsType(t, &value.Complex{}, e.Lookup("i"))
}

func TestLenStringAndMatrix(t *testing.T) {
	e := newEnv()
	assert.Equal(t, value.Int(3), call(t, e, "len", value.String("abc")))
	m := value.NewMatrixFromFlat([]value.Value{value.Int(1), value.Int(2)})
	assert.Equal(t, value.Int(2), call(t, e, "len", m))
}

func TestStrBuiltin(t *testing.T) {
	e := newEnv()
	assert.Equal(t, value.String("5"), call(t, e, "str", value.Int(5)))
}

func TestEqBuiltinIsInfix(t *testing.T) {
	e := newEnv()
	fn, ok := e.Lookup("eq").(*value.BuiltinFunction)
	require.True(t, ok)
	assert.True(t, fn.Infix, "eq is registered infix per the builtin table")
	assert.Equal(t, value.Bool(true), call(t, e, "eq", value.Int(1), value.Float(1)))
}

func TestDetAndInv(t *testing.T) {
	e := newEnv()
	m, err := value.NewMatrixFromRows([][]value.Value{{value.Int(4), value.Int(7)}, {value.Int(2), value.Int(6)}})
	require.NoError(t, err)
	assert.Equal(t, value.Float(10), call(t, e, "det", m))

	inv := call(t, e, "inv", m).(*value.Matrix)
	v, err := inv.Get(value.Int(1), value.Int(1))
	require.NoError(t, err)
	f, err := value.AsFloat64(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, f, 1e-9)
}

func TestEyeZerosOnesBuiltins(t *testing.T) {
	e := newEnv()
	eye := call(t, e, "eye", value.Int(2)).(*value.Matrix)
	rows, cols := eye.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)

	zeros := call(t, e, "zeros", value.Int(2), value.Int(3)).(*value.Matrix)
	rows, cols = zeros.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	ones := call(t, e, "ones", value.Int(3)).(*value.Matrix)
	rows, cols = ones.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestTransposeTraceDiagonal(t *testing.T) {
	e := newEnv()
	m, err := value.NewMatrixFromRows([][]value.Value{{value.Int(1), value.Int(2)}, {value.Int(3), value.Int(4)}})
	require.NoError(t, err)

	tr := call(t, e, "transpose", m).(*value.Matrix)
	v, err := tr.Get(value.Int(1), value.Int(2))
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)

	trace := call(t, e, "trace", m)
	assert.Equal(t, value.Int(5), trace)

	diag := call(t, e, "diagonal", value.NewMatrixFromFlat([]value.Value{value.Int(1), value.Int(2)})).(*value.Matrix)
	v, err = diag.Get(value.Int(2), value.Int(2))
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)
	v, err = diag.Get(value.Int(1), value.Int(2))
	require.NoError(t, err)
	assert.Equal(t, value.Int(0), v)
}

func TestReshapeBuiltin(t *testing.T) {
	e := newEnv()
	m := value.NewMatrixFromFlat([]value.Value{value.Int(1), value.Int(2), value.Int(3), value.Int(4)})
	reshaped := call(t, e, "reshape", m, value.Int(2), value.Int(2)).(*value.Matrix)
	rows, cols := reshaped.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	v, err := reshaped.Get(value.Int(2), value.Int(1))
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)
}

func TestReshapeRejectsMismatchedElementCount(t *testing.T) {
	e := newEnv()
	fn := e.Lookup("reshape").(*value.BuiltinFunction)
	m := value.NewMatrixFromFlat([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	_, err := fn.Call([]value.Value{m, value.Int(2), value.Int(2)})
	assert.Error(t, err)
}

func TestDotAndCross(t *testing.T) {
	e := newEnv()
	a := value.NewMatrixFromFlat([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	b := value.NewMatrixFromFlat([]value.Value{value.Int(4), value.Int(5), value.Int(6)})
	assert.Equal(t, value.Int(32), call(t, e, "dot", a, b))

	cross := call(t, e, "cross", a, b).(*value.Matrix)
	vec := cross.Vector()
	require.Len(t, vec, 3)
	f0, _ := value.AsFloat64(vec[0])
	f1, _ := value.AsFloat64(vec[1])
	f2, _ := value.AsFloat64(vec[2])
	assert.Equal(t, [3]float64{-3, 6, -3}, [3]float64{f0, f1, f2})
}

func TestMinMax(t *testing.T) {
	e := newEnv()
	m := value.NewMatrixFromFlat([]value.Value{value.Int(3), value.Int(-1), value.Int(5)})
	assert.Equal(t, value.Int(5), call(t, e, "max", m))
	assert.Equal(t, value.Int(-1), call(t, e, "min", m))
}

func TestComplexBuiltins(t *testing.T) {
	e := newEnv()
	c := value.NewComplex(3, 4)
	assert.Equal(t, value.Float(3), call(t, e, "real", c))
	assert.Equal(t, value.Float(4), call(t, e, "imag", c))
	conj := call(t, e, "conj", c).(*value.Complex)
	assert.Equal(t, 3.0, conj.Re)
	assert.Equal(t, -4.0, conj.Im)

	polar := call(t, e, "polar", c).(*value.Matrix)
	vec := polar.Vector()
	require.Len(t, vec, 2)
	mag, _ := value.AsFloat64(vec[0])
	assert.InDelta(t, 5.0, mag, 1e-9)
}

func TestSqrtOfNegativeReturnsComplex(t *testing.T) {
	e := newEnv()
	result := call(t, e, "sqrt", value.Int(-4))
	c, ok := result.(*value.Complex)
	require.True(t, ok, "sqrt of a negative real must return Complex")
	assert.InDelta(t, 0.0, c.Re, 1e-9)
	assert.InDelta(t, 2.0, c.Im, 1e-9)
}

func TestSqrtOfPositiveStaysFloat(t *testing.T) {
	e := newEnv()
	result := call(t, e, "sqrt", value.Int(9))
	assert.Equal(t, value.Float(3), result)
}

func TestScalarMathFunctions(t *testing.T) {
	e := newEnv()
	result := call(t, e, "abs", value.Int(-5))
	assert.Equal(t, value.Float(5), result)

	sin := call(t, e, "sin", value.Int(0))
	assert.Equal(t, value.Float(0), sin)
}

func TestArityErrors(t *testing.T) {
	e := newEnv()
	fn := e.Lookup("len").(*value.BuiltinFunction)
	_, err := fn.Call(nil)
	assert.Error(t, err)
	_, err = fn.Call([]value.Value{value.Int(1), value.Int(2)})
	assert.Error(t, err)
}

func TestSliceBuiltinBuildsSliceValue(t *testing.T) {
	e := newEnv()
	result := call(t, e, "slice", value.Int(1), value.Int(5), value.Int(2))
	s, ok := result.(*value.Slice)
	require.True(t, ok)
	assert.Equal(t, "1 : 5 : 2", s.String())
}

func TestPrintIsContextFunction(t *testing.T) {
	e := newEnv()
	_, ok := e.Lookup("print").(*value.ContextFunction)
	assert.True(t, ok, "print needs environment access to read pretty_print")
}
