package value

import (
	"strings"

	"github.com/huckle-lang/hk/herr"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a rectangular 2-D array of scalars (Int/Float/Bool) or
// Complex values, per spec §3. Storage is a single row-major Value
// slice; multiply, determinant, inverse and rank of real matrices
// build a *mat.Dense view on demand and delegate to gonum, matching
// the "dense 2-D numeric array library... assumed to exist" shape
// spec §3 calls for (see DESIGN.md / SPEC_FULL.md for the grounding).
// Trace sums the diagonal directly. Matrices with Complex elements are
// handled in plain Go by multiply, trace and the element-wise
// operations; determinant, inverse and rank return an error for them.
type Matrix struct {
	rows, cols int
	elems      []Value
}

func (m *Matrix) Type() string { return "matrix" }

func (m *Matrix) Truthy() bool { return m.rows*m.cols > 0 }

// NewEmptyMatrix returns the canonical empty matrix, shape (1, 0).
func NewEmptyMatrix() *Matrix {
	return &Matrix{rows: 1, cols: 0}
}

// NewMatrixScalar wraps a single value as a 1x1 matrix.
func NewMatrixScalar(v Value) *Matrix {
	return &Matrix{rows: 1, cols: 1, elems: []Value{v}}
}

// NewMatrixFromFlat builds a single-row matrix from a flat list.
func NewMatrixFromFlat(vals []Value) *Matrix {
	return &Matrix{rows: 1, cols: len(vals), elems: append([]Value(nil), vals...)}
}

// NewMatrixFromRows builds a matrix from a nested list of rows,
// validating that every row has the same length (invariant 1 of §8).
func NewMatrixFromRows(rows [][]Value) (*Matrix, error) {
	if len(rows) == 0 {
		return NewEmptyMatrix(), nil
	}
	width := len(rows[0])
	elems := make([]Value, 0, len(rows)*width)
	for _, r := range rows {
		if len(r) != width {
			return nil, herr.New(herr.MatrixDimension, "matrix rows must have equal length")
		}
		elems = append(elems, r...)
	}
	return &Matrix{rows: len(rows), cols: width, elems: elems}, nil
}

// NewMatrixShaped builds a matrix directly from row-major elements of
// a known shape, for callers (like a spread call's result assembly)
// that already know the target shape.
func NewMatrixShaped(rows, cols int, elems []Value) *Matrix {
	return &Matrix{rows: rows, cols: cols, elems: elems}
}

// NewMatrixFromMatrix deep-copies another Matrix -- used for the
// "assignment shallow-copies its right-hand side" rule of spec §3,
// which keeps a variable's Matrix handle from aliasing another
// variable's.
func NewMatrixFromMatrix(o *Matrix) *Matrix {
	return &Matrix{rows: o.rows, cols: o.cols, elems: append([]Value(nil), o.elems...)}
}

// NewMatrixFromSlice materializes a Slice into a row vector, per spec
// §3: "a Slice (materialized row vector [start..stop step step])".
func NewMatrixFromSlice(s *Slice) (*Matrix, error) {
	if s.Start == nil || s.Stop == nil {
		return nil, herr.New(herr.Syntax, "cannot materialize an open-ended slice into a matrix")
	}
	var out []Value
	step := s.step()
	if step == 0 {
		return nil, herr.New(herr.Syntax, "slice step cannot be zero")
	}
	if step > 0 {
		for i := *s.Start; i < *s.Stop; i += step {
			out = append(out, Int(i))
		}
	} else {
		for i := *s.Start; i > *s.Stop; i += step {
			out = append(out, Int(i))
		}
	}
	return NewMatrixFromFlat(out), nil
}

// IsEmpty reports whether the matrix has shape (1, 0) or otherwise
// carries zero elements.
func (m *Matrix) IsEmpty() bool { return m.rows*m.cols == 0 }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// Rows returns a copy of each row.
func (m *Matrix) Rows() [][]Value {
	out := make([][]Value, m.rows)
	for r := 0; r < m.rows; r++ {
		out[r] = append([]Value(nil), m.elems[r*m.cols:(r+1)*m.cols]...)
	}
	return out
}

// Columns returns a copy of each column.
func (m *Matrix) Columns() [][]Value {
	out := make([][]Value, m.cols)
	for c := 0; c < m.cols; c++ {
		col := make([]Value, m.rows)
		for r := 0; r < m.rows; r++ {
			col[r] = m.elems[r*m.cols+c]
		}
		out[c] = col
	}
	return out
}

// Vector returns the row-major flat list of all elements.
func (m *Matrix) Vector() []Value {
	return append([]Value(nil), m.elems...)
}

func (m *Matrix) at(r, c int) Value { return m.elems[r*m.cols+c] }
func (m *Matrix) set(r, c int, v Value) { m.elems[r*m.cols+c] = v }

// String renders the matrix as "[a, b; c, d]", the non-pretty-printed
// default form.
func (m *Matrix) String() string {
	var rows []string
	for _, row := range m.Rows() {
		var cells []string
		for _, v := range row {
			cells = append(cells, v.String())
		}
		rows = append(rows, strings.Join(cells, ", "))
	}
	return "[" + strings.Join(rows, "; ") + "]"
}

// isAllReal reports whether every element is a real scalar (Int,
// Float or Bool), which is the fast path gonum's dense real matrices
// can serve directly.
func (m *Matrix) isAllReal() bool {
	for _, v := range m.elems {
		switch v.(type) {
		case Int, Float, Bool:
		default:
			return false
		}
	}
	return true
}

// toDense builds a gonum *mat.Dense view of an all-real matrix.
func (m *Matrix) toDense() (*mat.Dense, error) {
	data := make([]float64, len(m.elems))
	for i, v := range m.elems {
		f, err := AsFloat64(v)
		if err != nil {
			return nil, err
		}
		data[i] = f
	}
	return mat.NewDense(m.rows, m.cols, data), nil
}

// fromDense converts a gonum *mat.Dense back into a Matrix of Float
// values.
func fromDense(d *mat.Dense) *Matrix {
	r, c := d.Dims()
	elems := make([]Value, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			elems[i*c+j] = Float(d.At(i, j))
		}
	}
	return &Matrix{rows: r, cols: c, elems: elems}
}

// Concat mutates m in place, appending other along the given axis (0
// = rows, 1 = columns), per spec §4.1. A scalar other is promoted to
// a 1x1 matrix first. If m is empty it is replaced outright.
func (m *Matrix) Concat(other Value, axis int) error {
	om, isMatrix := other.(*Matrix)
	if !isMatrix {
		om = NewMatrixScalar(other)
	}

	switch axis {
	case 0:
		rowsToAdd := om.Rows()
		if m.IsEmpty() {
			*m = *NewMatrixFromMatrix(om)
			return nil
		}
		for _, row := range rowsToAdd {
			if len(row) != m.cols {
				return herr.New(herr.MatrixDimension, "cannot append a row of length %d to a matrix with %d columns", len(row), m.cols)
			}
			m.elems = append(m.elems, row...)
			m.rows++
		}
		return nil
	case 1:
		colsToAdd := om.Columns()
		if m.IsEmpty() {
			transposed, err := NewMatrixFromRows(om.Columns())
			if err != nil {
				return err
			}
			*m = *transposed.Transpose()
			return nil
		}
		for _, col := range colsToAdd {
			if len(col) != m.rows {
				return herr.New(herr.MatrixDimension, "cannot append a column of length %d to a matrix with %d rows", len(col), m.rows)
			}
		}
		newCols := m.cols + len(colsToAdd)
		newElems := make([]Value, m.rows*newCols)
		for r := 0; r < m.rows; r++ {
			copy(newElems[r*newCols:r*newCols+m.cols], m.elems[r*m.cols:(r+1)*m.cols])
			for ci, col := range colsToAdd {
				newElems[r*newCols+m.cols+ci] = col[r]
			}
		}
		m.elems = newElems
		m.cols = newCols
		return nil
	default:
		return herr.New(herr.MatrixDimension, "invalid concat axis %d", axis)
	}
}

// resolveAxis converts one indexing key -- an Int, a *Slice, or a
// vector *Matrix of fancy indices, all expressed in the language's
// 1-based surface convention (spec §3 "Indexing base") -- into a list
// of 0-based positions along an axis of the given length, in the order
// the key selects them.
func resolveAxis(key Value, length int) ([]int, error) {
	switch k := key.(type) {
	case Int:
		i := int(k) - 1
		if i < 0 || i >= length {
			return nil, herr.New(herr.IndexArity, "index %d out of range for length %d", int(k), length)
		}
		return []int{i}, nil
	case *Slice:
		adjusted := &Slice{Step: k.Step}
		if k.Start != nil {
			adjusted.Start = i64(*k.Start - 1)
		}
		if k.Stop != nil {
			adjusted.Stop = i64(*k.Stop)
		}
		raw := adjusted.Range(int64(length))
		out := make([]int, len(raw))
		for i, v := range raw {
			out[i] = int(v)
		}
		return out, nil
	case *Matrix:
		var out []int
		for _, elem := range k.elems {
			n, err := AsInt(elem)
			if err != nil {
				return nil, herr.Wrap(herr.IndexArity, err, "fancy index elements must be integers")
			}
			i := n - 1
			if i < 0 || i >= length {
				return nil, herr.New(herr.IndexArity, "index %d out of range for length %d", n, length)
			}
			out = append(out, i)
		}
		return out, nil
	default:
		return nil, herr.New(herr.IndexArity, "invalid index type %s", key.Type())
	}
}

// unwrapSingle collapses a (1,1) result to its bare scalar, per spec
// §4.1 "Results of shape (1,1) are unwrapped to a scalar."
func unwrapSingle(m *Matrix) Value {
	if m.rows == 1 && m.cols == 1 {
		return m.elems[0]
	}
	return m
}

// Get implements Matrix call/indexing (`m[i]` / `m[i,j]`) per spec
// §4.1's shape-dispatch rules.
func (m *Matrix) Get(indices ...Value) (Value, error) {
	switch len(indices) {
	case 1:
		idx := indices[0]
		switch {
		case m.rows == 1:
			cols, err := resolveAxis(idx, m.cols)
			if err != nil {
				return nil, err
			}
			elems := make([]Value, len(cols))
			for i, c := range cols {
				elems[i] = m.at(0, c)
			}
			return unwrapSingle(&Matrix{rows: 1, cols: len(cols), elems: elems}), nil
		case m.cols == 1:
			rows, err := resolveAxis(idx, m.rows)
			if err != nil {
				return nil, err
			}
			elems := make([]Value, len(rows))
			for i, r := range rows {
				elems[i] = m.at(r, 0)
			}
			return unwrapSingle(&Matrix{rows: len(rows), cols: 1, elems: elems}), nil
		default:
			rows, err := resolveAxis(idx, m.rows)
			if err != nil {
				return nil, err
			}
			elems := make([]Value, 0, len(rows)*m.cols)
			for _, r := range rows {
				elems = append(elems, m.elems[r*m.cols:(r+1)*m.cols]...)
			}
			return unwrapSingle(&Matrix{rows: len(rows), cols: m.cols, elems: elems}), nil
		}
	case 2:
		rows, err := resolveAxis(indices[0], m.rows)
		if err != nil {
			return nil, err
		}
		cols, err := resolveAxis(indices[1], m.cols)
		if err != nil {
			return nil, err
		}
		elems := make([]Value, 0, len(rows)*len(cols))
		for _, r := range rows {
			for _, c := range cols {
				elems = append(elems, m.at(r, c))
			}
		}
		return unwrapSingle(&Matrix{rows: len(rows), cols: len(cols), elems: elems}), nil
	default:
		return nil, herr.New(herr.IndexArity, "matrix indexing takes 1 or 2 indices, got %d", len(indices))
	}
}

// Set implements indexed assignment, mirroring Get's shape dispatch.
// val may be a scalar (broadcast to every selected cell) or a Matrix
// whose element count matches the selection.
func (m *Matrix) Set(val Value, indices ...Value) error {
	var rows, cols []int
	var err error
	switch len(indices) {
	case 1:
		idx := indices[0]
		switch {
		case m.rows == 1:
			cols, err = resolveAxis(idx, m.cols)
			rows = []int{0}
		case m.cols == 1:
			rows, err = resolveAxis(idx, m.rows)
			cols = []int{0}
		default:
			rows, err = resolveAxis(idx, m.rows)
			cols = make([]int, m.cols)
			for i := range cols {
				cols[i] = i
			}
		}
	case 2:
		rows, err = resolveAxis(indices[0], m.rows)
		if err == nil {
			cols, err = resolveAxis(indices[1], m.cols)
		}
	default:
		return herr.New(herr.IndexArity, "matrix assignment takes 1 or 2 indices, got %d", len(indices))
	}
	if err != nil {
		return err
	}

	if vm, ok := val.(*Matrix); ok && !(vm.rows == 1 && vm.cols == 1) {
		if len(vm.elems) != len(rows)*len(cols) {
			return herr.New(herr.MatrixDimension, "cannot assign %dx%d values into a selection of %d cells", vm.rows, vm.cols, len(rows)*len(cols))
		}
		k := 0
		for _, r := range rows {
			for _, c := range cols {
				m.set(r, c, vm.elems[k])
				k++
			}
		}
		return nil
	}

	scalar := val
	if vm, ok := val.(*Matrix); ok {
		scalar = vm.elems[0]
	}
	for _, r := range rows {
		for _, c := range cols {
			m.set(r, c, scalar)
		}
	}
	return nil
}

// Delete removes the rows (len(indices)==1 on a non-vector matrix, or
// both the row and column selected by two indices) identified by
// indices, per spec §4.1 "Assignment and deletion mirror this shape
// dispatch." Deleting from a single-row or single-column matrix
// removes the selected elements from that row/column instead.
func (m *Matrix) Delete(indices ...Value) error {
	switch len(indices) {
	case 1:
		idx := indices[0]
		switch {
		case m.rows == 1:
			cols, err := resolveAxis(idx, m.cols)
			if err != nil {
				return err
			}
			m.deleteCols(cols)
			return nil
		case m.cols == 1:
			rows, err := resolveAxis(idx, m.rows)
			if err != nil {
				return err
			}
			m.deleteRows(rows)
			return nil
		default:
			rows, err := resolveAxis(idx, m.rows)
			if err != nil {
				return err
			}
			m.deleteRows(rows)
			return nil
		}
	case 2:
		rows, err := resolveAxis(indices[0], m.rows)
		if err != nil {
			return err
		}
		cols, err := resolveAxis(indices[1], m.cols)
		if err != nil {
			return err
		}
		m.deleteRows(rows)
		m.deleteCols(cols)
		return nil
	default:
		return herr.New(herr.IndexArity, "matrix deletion takes 1 or 2 indices, got %d", len(indices))
	}
}

func (m *Matrix) deleteRows(rows []int) {
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		drop[r] = true
	}
	var elems []Value
	newRows := 0
	for r := 0; r < m.rows; r++ {
		if drop[r] {
			continue
		}
		elems = append(elems, m.elems[r*m.cols:(r+1)*m.cols]...)
		newRows++
	}
	m.rows = newRows
	m.elems = elems
}

func (m *Matrix) deleteCols(cols []int) {
	drop := make(map[int]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	newCols := m.cols - len(drop)
	elems := make([]Value, 0, m.rows*newCols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if drop[c] {
				continue
			}
			elems = append(elems, m.at(r, c))
		}
	}
	m.cols = newCols
	m.elems = elems
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	out := &Matrix{rows: m.cols, cols: m.rows, elems: make([]Value, len(m.elems))}
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.set(c, r, m.at(r, c))
		}
	}
	return out
}

// --- Arithmetic -----------------------------------------------------

func sameShape(a, b *Matrix) bool { return a.rows == b.rows && a.cols == b.cols }

// elementwise applies a scalar binary op between every matching
// element of a and b (which must have the same shape).
func elementwise(a, b *Matrix, op Op) (*Matrix, error) {
	if !sameShape(a, b) {
		return nil, herr.New(herr.MatrixDimension, "matrices must have the same shape for %s (got %dx%d and %dx%d)", op, a.rows, a.cols, b.rows, b.cols)
	}
	out := make([]Value, len(a.elems))
	for i := range a.elems {
		v, err := BinaryScalar(a.elems[i], op, b.elems[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return &Matrix{rows: a.rows, cols: a.cols, elems: out}, nil
}

// scalarApply applies a scalar binary op between every element of m
// and a scalar value.
func scalarApply(m *Matrix, op Op, scalar Value, scalarOnLeft bool) (*Matrix, error) {
	out := make([]Value, len(m.elems))
	for i, v := range m.elems {
		var res Value
		var err error
		if scalarOnLeft {
			res, err = BinaryScalar(scalar, op, v)
		} else {
			res, err = BinaryScalar(v, op, scalar)
		}
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return &Matrix{rows: m.rows, cols: m.cols, elems: out}, nil
}

// Add implements '+': matching shapes, or scalar broadcast.
func (m *Matrix) Add(other Value) (Value, error) {
	if om, ok := other.(*Matrix); ok {
		return elementwise(m, om, OpAdd)
	}
	return scalarApply(m, OpAdd, other, false)
}

// Sub implements '-'.
func (m *Matrix) Sub(other Value) (Value, error) {
	if om, ok := other.(*Matrix); ok {
		return elementwise(m, om, OpSub)
	}
	return scalarApply(m, OpSub, other, false)
}

// Mul implements '*': matrix multiplication, or scalar broadcast.
func (m *Matrix) Mul(other Value) (Value, error) {
	om, ok := other.(*Matrix)
	if !ok {
		return scalarApply(m, OpMul, other, false)
	}
	if m.cols != om.rows {
		return nil, herr.New(herr.MatrixDimension, "cannot multiply a %dx%d matrix by a %dx%d matrix", m.rows, m.cols, om.rows, om.cols)
	}
	if m.isAllReal() && om.isAllReal() {
		a, err := m.toDense()
		if err != nil {
			return nil, err
		}
		b, err := om.toDense()
		if err != nil {
			return nil, err
		}
		var result mat.Dense
		result.Mul(a, b)
		return fromDense(&result), nil
	}
	// Complex or mixed: element-wise dot products, gonum/mat has no
	// general complex dense multiply.
	out := make([]Value, m.rows*om.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < om.cols; j++ {
			var sum Value = Int(0)
			for k := 0; k < m.cols; k++ {
				prod, err := BinaryScalar(m.at(i, k), OpMul, om.at(k, j))
				if err != nil {
					return nil, err
				}
				sum, err = BinaryScalar(sum, OpAdd, prod)
				if err != nil {
					return nil, err
				}
			}
			out[i*om.cols+j] = sum
		}
	}
	return &Matrix{rows: m.rows, cols: om.cols, elems: out}, nil
}

// ElMul implements the elementwise '.*' operator.
func (m *Matrix) ElMul(other *Matrix) (Value, error) {
	return elementwise(m, other, OpMul)
}

// Div implements '/': elementwise division by a scalar only.
func (m *Matrix) Div(other Value) (Value, error) {
	if _, ok := other.(*Matrix); ok {
		return nil, herr.New(herr.MatrixDimension, "matrix '/' only supports division by a scalar")
	}
	return scalarApply(m, OpDiv, other, false)
}

// Pow implements '^': integer matrix power. 0 yields the identity,
// negative uses the inverse, a non-integer exponent is an error.
func (m *Matrix) Pow(exp Value) (Value, error) {
	n, err := AsInt(exp)
	if err != nil {
		return nil, herr.Wrap(herr.MatrixExponent, err, "matrix exponent must be an integer")
	}
	if m.rows != m.cols {
		return nil, herr.New(herr.MatrixDimension, "matrix power requires a square matrix")
	}
	if n == 0 {
		return Eye(m.rows), nil
	}
	base := m
	if n < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return nil, err
		}
		base = inv
		n = -n
	}
	result := Eye(m.rows)
	for i := 0; i < n; i++ {
		next, err := result.Mul(base)
		if err != nil {
			return nil, err
		}
		result = next.(*Matrix)
	}
	return result, nil
}

// ElPow implements the elementwise '.^' operator; other may be a
// scalar or a matrix of the same shape.
func (m *Matrix) ElPow(other Value) (Value, error) {
	if om, ok := other.(*Matrix); ok {
		return elementwise(m, om, OpPow)
	}
	return scalarApply(m, OpPow, other, false)
}

// Eye returns the nxn identity matrix.
func Eye(n int) *Matrix {
	elems := make([]Value, n*n)
	for i := range elems {
		elems[i] = Int(0)
	}
	for i := 0; i < n; i++ {
		elems[i*n+i] = Int(1)
	}
	return &Matrix{rows: n, cols: n, elems: elems}
}

// Zeros returns an rxc matrix of zeros.
func Zeros(rows, cols int) *Matrix {
	elems := make([]Value, rows*cols)
	for i := range elems {
		elems[i] = Int(0)
	}
	return &Matrix{rows: rows, cols: cols, elems: elems}
}

// Ones returns an rxc matrix of ones.
func Ones(rows, cols int) *Matrix {
	elems := make([]Value, rows*cols)
	for i := range elems {
		elems[i] = Int(1)
	}
	return &Matrix{rows: rows, cols: cols, elems: elems}
}

// Determinant computes det(m) via gonum for real matrices.
func (m *Matrix) Determinant() (float64, error) {
	if m.rows != m.cols {
		return 0, herr.New(herr.MatrixDimension, "determinant requires a square matrix")
	}
	d, err := m.toDense()
	if err != nil {
		return 0, err
	}
	return mat.Det(d), nil
}

// Inverse computes m^-1 via gonum for real matrices.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.rows != m.cols {
		return nil, herr.New(herr.MatrixDimension, "inverse requires a square matrix")
	}
	d, err := m.toDense()
	if err != nil {
		return nil, err
	}
	var inv mat.Dense
	if err := inv.Inverse(d); err != nil {
		return nil, herr.Wrap(herr.MatrixDimension, err, "matrix is not invertible")
	}
	return fromDense(&inv), nil
}

// Trace returns the sum of the main diagonal.
func (m *Matrix) Trace() (Value, error) {
	if m.rows != m.cols {
		return nil, herr.New(herr.MatrixDimension, "trace requires a square matrix")
	}
	var sum Value = Int(0)
	for i := 0; i < m.rows; i++ {
		var err error
		sum, err = BinaryScalar(sum, OpAdd, m.at(i, i))
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// Rank computes the numeric rank via gonum's SVD-based rank.
func (m *Matrix) Rank() (int, error) {
	d, err := m.toDense()
	if err != nil {
		return 0, err
	}
	var svd mat.SVD
	if !svd.Factorize(d, mat.SVDNone) {
		return 0, herr.New(herr.Undefined, "SVD factorization failed")
	}
	values := svd.Values(nil)
	const eps = 1e-10
	rank := 0
	for _, v := range values {
		if v > eps {
			rank++
		}
	}
	return rank, nil
}

