package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	assert.True(t, Int(1).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Float(0.5).Truthy())
	assert.False(t, Float(0).Truthy())
	assert.True(t, String("x").Truthy())
	assert.False(t, String("").Truthy())
	assert.False(t, None{}.Truthy())
	assert.False(t, Truthy(nil))
}

func TestAsFloat64(t *testing.T) {
	f, err := AsFloat64(Int(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	f, err = AsFloat64(Bool(true))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	_, err = AsFloat64(String("nope"))
	assert.Error(t, err)
}

func TestAsInt(t *testing.T) {
	n, err := AsInt(Float(4))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = AsInt(Float(4.5))
	assert.Error(t, err, "non-integral float must be rejected, not silently truncated")
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(Int(1)))
	assert.True(t, IsNumeric(Float(1)))
	assert.True(t, IsNumeric(NewComplex(1, 2)))
	assert.False(t, IsNumeric(String("x")))
	assert.False(t, IsNumeric(Bool(true)))
}

func TestBinaryScalarIntPromotion(t *testing.T) {
	v, err := BinaryScalar(Int(3), OpAdd, Int(4))
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)

	v, err = BinaryScalar(Int(3), OpAdd, Float(4))
	require.NoError(t, err)
	assert.Equal(t, Float(7), v, "any float operand widens the result to float")
}

func TestBinaryScalarDivAlwaysFloat(t *testing.T) {
	v, err := BinaryScalar(Int(6), OpDiv, Int(3))
	require.NoError(t, err)
	assert.Equal(t, Float(2), v, "'/' always yields float even for exact integer division")
}

func TestBinaryScalarDivisionByZero(t *testing.T) {
	_, err := BinaryScalar(Int(1), OpDiv, Int(0))
	assert.Error(t, err)
}

func TestBinaryScalarModZero(t *testing.T) {
	_, err := BinaryScalar(Int(1), OpMod, Int(0))
	assert.Error(t, err)
}

func TestBinaryScalarStringConcat(t *testing.T) {
	v, err := BinaryScalar(String("foo"), OpAdd, String("bar"))
	require.NoError(t, err)
	assert.Equal(t, String("foobar"), v)
}

func TestBinaryScalarComplexWidening(t *testing.T) {
	v, err := BinaryScalar(Int(1), OpAdd, NewComplex(0, 1))
	require.NoError(t, err)
	c, ok := v.(*Complex)
	require.True(t, ok, "complex operand should widen the result to complex")
	assert.Equal(t, 1.0, c.Re)
	assert.Equal(t, 1.0, c.Im)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(3), Float(3)))
	assert.True(t, Equal(NewComplex(1, 2), NewComplex(1, 2)))
	assert.False(t, Equal(Int(3), String("3")))
	assert.True(t, Equal(None{}, None{}))
}

func TestComparisons(t *testing.T) {
	lt, err := Less(Int(1), Int(2))
	require.NoError(t, err)
	assert.True(t, lt)

	ge, err := GreaterEqual(Int(2), Int(2))
	require.NoError(t, err)
	assert.True(t, ge)

	gt, err := Greater(Int(1), Int(2))
	require.NoError(t, err)
	assert.False(t, gt)
}

func TestComplexStringOmitsZeroParts(t *testing.T) {
	assert.Equal(t, "3.0", NewComplex(3, 0).String())
	assert.Equal(t, "i", NewComplex(0, 1).String())
	assert.Equal(t, "-i", NewComplex(0, -1).String())
	assert.Equal(t, "3.0 + 2.0i", NewComplex(3, 2).String())
	assert.Equal(t, "3.0 - 2.0i", NewComplex(3, -2).String())
	assert.Equal(t, "0.0 + 0.0i", NewComplex(0, 0).String())
}

func TestComplexArithmetic(t *testing.T) {
	a := NewComplex(1, 2)
	b := NewComplex(3, -1)
	assert.Equal(t, NewComplex(4, 1), a.Add(b))
	assert.Equal(t, NewComplex(-2, 3), a.Sub(b))
	assert.True(t, a.Conj().Equal(NewComplex(1, -2)))
}

func TestSliceRangeAscending(t *testing.T) {
	start, stop, step := int64(0), int64(5), int64(2)
	s := &Slice{Start: &start, Stop: &stop, Step: &step}
	assert.Equal(t, []int64{0, 2, 4}, s.Range(10))
}

func TestSliceRangeOpenEndedDefaults(t *testing.T) {
	s := &Slice{}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, s.Range(5), "a fully open slice covers the whole collection")
}

func TestSliceRangeNegativeStep(t *testing.T) {
	step := int64(-1)
	s := &Slice{Step: &step}
	assert.Equal(t, []int64{4, 3, 2, 1, 0}, s.Range(5))
}

func TestMatrixFromRowsRejectsRaggedRows(t *testing.T) {
	_, err := NewMatrixFromRows([][]Value{
		{Int(1), Int(2)},
		{Int(3)},
	})
	assert.Error(t, err)
}

func TestMatrixGetRowVectorUnwrapsScalar(t *testing.T) {
	m := NewMatrixFromFlat([]Value{Int(1), Int(2), Int(3)})
	v, err := m.Get(Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(2), v, "a (1,1) selection unwraps to a bare scalar")
}

func TestMatrixGetTwoDimensional(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{
		{Int(1), Int(2)},
		{Int(3), Int(4)},
	})
	require.NoError(t, err)
	v, err := m.Get(Int(2), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)
}

func TestMatrixSetBroadcastsScalar(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{
		{Int(1), Int(2)},
		{Int(3), Int(4)},
	})
	require.NoError(t, err)
	require.NoError(t, m.Set(Int(0), Int(1)))
	got, err := m.Get(Int(1), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Int(0), got)
	got, err = m.Get(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(0), got)
}

func TestMatrixTranspose(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{
		{Int(1), Int(2), Int(3)},
	})
	require.NoError(t, err)
	tr := m.Transpose()
	rows, cols := tr.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)
}

func TestMatrixMulDimensionMismatch(t *testing.T) {
	a := NewMatrixFromFlat([]Value{Int(1), Int(2)})
	b := NewMatrixFromFlat([]Value{Int(1), Int(2)})
	_, err := a.Mul(b)
	assert.Error(t, err, "1x2 * 1x2 is not a valid matrix multiply")
}

func TestMatrixMulViaGonum(t *testing.T) {
	a, err := NewMatrixFromRows([][]Value{{Int(1), Int(2)}, {Int(3), Int(4)}})
	require.NoError(t, err)
	b, err := NewMatrixFromRows([][]Value{{Int(5), Int(6)}, {Int(7), Int(8)}})
	require.NoError(t, err)
	result, err := a.Mul(b)
	require.NoError(t, err)
	rm := result.(*Matrix)
	v, err := rm.Get(Int(1), Int(1))
	require.NoError(t, err)
	f, err := AsFloat64(v)
	require.NoError(t, err)
	assert.Equal(t, 19.0, f)
}

func TestMatrixDeterminantAndInverse(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{{Int(4), Int(7)}, {Int(2), Int(6)}})
	require.NoError(t, err)
	det, err := m.Determinant()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, det, 1e-9)

	inv, err := m.Inverse()
	require.NoError(t, err)
	v, err := inv.Get(Int(1), Int(1))
	require.NoError(t, err)
	f, err := AsFloat64(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, f, 1e-9)
}

func TestMatrixConcatRows(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{{Int(1), Int(2)}})
	require.NoError(t, err)
	require.NoError(t, m.Concat(NewMatrixFromFlat([]Value{Int(3), Int(4)}), 0))
	rows, cols := m.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
}

func TestMatrixDeleteRows(t *testing.T) {
	m, err := NewMatrixFromRows([][]Value{
		{Int(1), Int(2)},
		{Int(3), Int(4)},
		{Int(5), Int(6)},
	})
	require.NoError(t, err)
	require.NoError(t, m.Delete(Int(2)))
	rows, _ := m.Shape()
	assert.Equal(t, 2, rows)
	v, err := m.Get(Int(2), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Int(5), v)
}

func TestEyeZerosOnes(t *testing.T) {
	e := Eye(2)
	v, err := e.Get(Int(1), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
	v, err = e.Get(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(0), v)

	z := Zeros(2, 3)
	rows, cols := z.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	o := Ones(1, 4)
	v, err = o.Get(Int(1))
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
}

func TestFunctionCurryAndBindings(t *testing.T) {
	fn := &Function{Parameters: []string{"a", "b", "c"}}
	assert.Equal(t, 3, fn.ArgumentsNeeded())

	curried := fn.Curry([]Value{Int(1)})
	assert.Equal(t, 2, curried.ArgumentsNeeded(), "currying should not mutate the original function")
	assert.Equal(t, 3, fn.ArgumentsNeeded())

	bindings, err := curried.Bindings([]Value{Int(2), Int(3)})
	require.NoError(t, err)
	assert.Equal(t, Int(1), bindings["a"])
	assert.Equal(t, Int(2), bindings["b"])
	assert.Equal(t, Int(3), bindings["c"])
}

func TestFunctionBindingsTooManyArguments(t *testing.T) {
	fn := &Function{Parameters: []string{"a"}}
	_, err := fn.Bindings([]Value{Int(1), Int(2)})
	assert.Error(t, err)
}

func TestBuiltinFunctionNeverCurries(t *testing.T) {
	b := &BuiltinFunction{Name: "f", Fn: func(args []Value) (Value, error) { return Null, nil }}
	assert.Equal(t, 0, b.ArgumentsNeeded())
}
