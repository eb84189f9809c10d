package interp

import (
	"strings"

	"github.com/huckle-lang/hk/ast"
	"github.com/huckle-lang/hk/herr"
	"github.com/huckle-lang/hk/value"
)

// Eval evaluates an expression node to a runtime Value, implementing
// spec §4.5's per-node rules. This is the dispatch the ast package
// itself deliberately omits.
func (in *Interpreter) Eval(expr ast.Expression) (value.Value, error) {
	switch node := expr.(type) {
	case *ast.Primitive:
		return evalPrimitive(node)

	case *ast.NestedExpression:
		return in.Eval(node.Expr)

	case *ast.MatrixExpression:
		if node.LastOperation == nil {
			return value.NewEmptyMatrix(), nil
		}
		return in.Eval(node.LastOperation)

	case *ast.UnitMatrixExpression:
		v, err := in.Eval(node.Expression)
		if err != nil {
			return nil, err
		}
		if m, ok := v.(*value.Matrix); ok {
			return value.NewMatrixFromMatrix(m), nil
		}
		return value.NewMatrixScalar(v), nil

	case *ast.MatrixOperation:
		return in.evalMatrixOperation(node)

	case *ast.UnaryOperator:
		v, err := in.Eval(node.Expr)
		if err != nil {
			return nil, err
		}
		return evalUnary(node, v)

	case *ast.BinaryOperator:
		l, err := in.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		r, err := in.Eval(node.Right)
		if err != nil {
			return nil, err
		}
		return in.calculate(l, node.Op, r, node.Commutative)

	case *ast.ComparisonOperator:
		return in.evalComparison(node)

	case *ast.TernaryOperator:
		return in.evalTernary(node)

	case *ast.FunctionCall:
		return in.evalFunctionCall(node)

	case *ast.VariableAccess:
		return in.evalVariableAccess(node)

	case *ast.VariableChange:
		return in.evalVariableChange(node)

	case *ast.FunctionLiteral:
		return evalFunctionLiteral(node), nil

	default:
		return nil, herr.New(herr.Undefined, "interp: unhandled expression node %T", expr)
	}
}

func evalPrimitive(p *ast.Primitive) (value.Value, error) {
	switch p.Kind {
	case ast.PrimInt:
		return value.Int(p.IntVal), nil
	case ast.PrimFloat:
		return value.Float(p.FloatVal), nil
	case ast.PrimComplex:
		return value.NewComplex(p.FloatVal, p.ComplexIm), nil
	case ast.PrimString:
		return value.String(p.StringVal), nil
	case ast.PrimBool:
		return value.Bool(p.BoolVal), nil
	case ast.PrimNone:
		return value.Null, nil
	default:
		return nil, herr.New(herr.Undefined, "interp: unknown primitive kind %d", p.Kind)
	}
}

func evalFunctionLiteral(node *ast.FunctionLiteral) *value.Function {
	body := node.Body
	if body == nil && node.InlineExpr != nil {
		body = &ast.ReturnBlock{}
		body.SetChildren([]ast.Statement{&ast.ReturnStatement{Expr: node.InlineExpr}})
	}
	return &value.Function{Parameters: node.Parameters, Body: body, Infix: node.Infix}
}

func (in *Interpreter) evalVariableAccess(node *ast.VariableAccess) (value.Value, error) {
	v := in.Env.Lookup(node.Name)
	if node.PostCond == ast.PostConditionInfix && !isInfixFunction(v) {
		msg := node.ErrorMessage
		if msg == "" {
			msg = "This function is not an infix function"
		}
		return nil, herr.At(herr.PostCondition, pos(node.Pos), msg)
	}
	return v, nil
}

func isInfixFunction(v value.Value) bool {
	switch f := v.(type) {
	case *value.Function:
		return f.Infix
	case *value.BuiltinFunction:
		return f.Infix
	default:
		return false
	}
}

func copyValue(v value.Value) value.Value {
	if m, ok := v.(*value.Matrix); ok {
		return value.NewMatrixFromMatrix(m)
	}
	return v
}

func (in *Interpreter) evalVariableChange(node *ast.VariableChange) (value.Value, error) {
	switch target := node.Target.(type) {
	case *ast.VariableAccess:
		return in.changeVariable(target.Name, node.Op, node.Expr)
	case *ast.FunctionCall:
		return in.changeMatrixElement(target, node.Op, node.Expr)
	default:
		return nil, herr.At(herr.Syntax, pos(node.Pos), "invalid assignment target")
	}
}

// changeVariable implements spec §4.5's VariableChange over a plain
// name, per the original's VariableChange.evaluate match-statement.
func (in *Interpreter) changeVariable(name, op string, rhs ast.Expression) (value.Value, error) {
	if !in.Env.Has(name) {
		in.Env.Assign(name, value.Int(0))
	}
	switch op {
	case "del":
		return in.Env.Delete(name), nil
	case "=":
		v, err := in.Eval(rhs)
		if err != nil {
			return nil, err
		}
		v = copyValue(v)
		in.Env.Assign(name, v)
		return v, nil
	case "+=", "-=":
		r, err := in.Eval(rhs)
		if err != nil {
			return nil, err
		}
		binOp := "+"
		if op == "-=" {
			binOp = "-"
		}
		newVal, err := in.calculate(in.Env.Lookup(name), binOp, r, true)
		if err != nil {
			return nil, err
		}
		in.Env.Assign(name, newVal)
		return newVal, nil
	case "++", "--":
		binOp := "+"
		if op == "--" {
			binOp = "-"
		}
		newVal, err := in.calculate(in.Env.Lookup(name), binOp, value.Int(1), true)
		if err != nil {
			return nil, err
		}
		in.Env.Assign(name, newVal)
		return newVal, nil
	default:
		return nil, herr.New(herr.Undefined, "interp: unsupported assignment operator %s", op)
	}
}

// changeMatrixElement implements spec §4.5's "Change on FunctionCall":
// when the callee evaluates to a Matrix, assignment/increment/delete
// redirect to its element access with the evaluated call arguments as
// the index key.
func (in *Interpreter) changeMatrixElement(call *ast.FunctionCall, op string, rhs ast.Expression) (value.Value, error) {
	calleeVal, err := in.Eval(call.Callee)
	if err != nil {
		return nil, err
	}
	m, ok := calleeVal.(*value.Matrix)
	if !ok {
		return nil, herr.At(herr.Undefined, pos(call.Pos), "cannot assign into a %s", calleeVal.Type())
	}
	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		if args[i], err = in.Eval(a); err != nil {
			return nil, err
		}
	}

	if op == "del" {
		if err := m.Delete(args...); err != nil {
			return nil, err
		}
		return value.Null, nil
	}
	if op == "=" {
		v, err := in.Eval(rhs)
		if err != nil {
			return nil, err
		}
		v = copyValue(v)
		if err := m.Set(v, args...); err != nil {
			return nil, err
		}
		return v, nil
	}

	cur, err := m.Get(args...)
	if err != nil {
		return nil, err
	}
	var delta value.Value = value.Int(1)
	binOp := "+"
	switch op {
	case "+=":
		binOp = "+"
		if delta, err = in.Eval(rhs); err != nil {
			return nil, err
		}
	case "-=":
		binOp = "-"
		if delta, err = in.Eval(rhs); err != nil {
			return nil, err
		}
	case "--":
		binOp = "-"
	case "++":
		binOp = "+"
	default:
		return nil, herr.New(herr.Undefined, "interp: unsupported matrix assignment operator %s", op)
	}
	newVal, err := in.calculate(cur, binOp, delta, true)
	if err != nil {
		return nil, err
	}
	if err := m.Set(newVal, args...); err != nil {
		return nil, err
	}
	return newVal, nil
}

func evalUnary(node *ast.UnaryOperator, v value.Value) (value.Value, error) {
	switch node.Op {
	case "-":
		return negate(v)
	case "not":
		return value.Bool(!v.Truthy()), nil
	case "'":
		m, ok := v.(*value.Matrix)
		if !ok {
			return nil, herr.At(herr.Undefined, pos(node.Pos), "transpose requires a matrix")
		}
		return m.Transpose(), nil
	default:
		return nil, herr.New(herr.Undefined, "interp: unsupported unary operator %s", node.Op)
	}
}

func negate(v value.Value) (value.Value, error) {
	switch n := v.(type) {
	case value.Int:
		return -n, nil
	case value.Float:
		return -n, nil
	case *value.Complex:
		return n.Neg(), nil
	case *value.Matrix:
		return n.Mul(value.Int(-1))
	default:
		return nil, herr.New(herr.Undefined, "cannot negate a %s", v.Type())
	}
}

// calculate is the commutative-retry dispatcher of spec §4.1: try
// applyOp(left, op, right); if that fails and commutative is set,
// retry with the operands swapped, per the original's
// BinaryOperator.evaluate -- reworked, per spec §9's design note, into
// an explicit two-overload dispatch rather than a bare except-swallow.
func (in *Interpreter) calculate(left value.Value, op string, right value.Value, commutative bool) (value.Value, error) {
	result, err := applyOp(left, op, right)
	if err == nil {
		return result, nil
	}
	if !commutative {
		return nil, err
	}
	result, err2 := applyOp(right, op, left)
	if err2 == nil {
		return result, nil
	}
	return nil, err2
}

func applyOp(left value.Value, op string, right value.Value) (value.Value, error) {
	switch op {
	case "and":
		if !left.Truthy() {
			return left, nil
		}
		return right, nil
	case "or":
		if left.Truthy() {
			return left, nil
		}
		return right, nil
	case "if":
		if right.Truthy() {
			return left, nil
		}
		return value.Null, nil
	case "in":
		return containsValue(left, right)
	}

	_, lIsMatrix := left.(*value.Matrix)
	_, rIsMatrix := right.(*value.Matrix)
	if lIsMatrix || rIsMatrix {
		return matrixBinary(op, left, right)
	}

	switch op {
	case ".*":
		return value.BinaryScalar(left, value.OpMul, right)
	case ".^":
		return value.BinaryScalar(left, value.OpPow, right)
	default:
		return value.BinaryScalar(left, value.Op(op), right)
	}
}

func containsValue(left, right value.Value) (value.Value, error) {
	switch c := right.(type) {
	case *value.Matrix:
		for _, el := range c.Vector() {
			if value.Equal(left, el) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.String:
		ls, ok := left.(value.String)
		if !ok {
			return nil, herr.New(herr.Undefined, "'in' requires a string operand when the container is a string")
		}
		return value.Bool(strings.Contains(string(c), string(ls))), nil
	default:
		return nil, herr.New(herr.Undefined, "cannot use 'in' on a %s", right.Type())
	}
}

// matrixBinary dispatches an arithmetic operator where at least one
// operand is a Matrix, per spec §4.1. Scalar-minus-matrix and
// scalar-elementwise-multiply-matrix are expressed in terms of the
// Matrix's own exported Add/Sub/Mul methods rather than duplicating
// its broadcast logic.
func matrixBinary(op string, left, right value.Value) (value.Value, error) {
	lm, lok := left.(*value.Matrix)
	rm, rok := right.(*value.Matrix)
	switch op {
	case "+":
		if lok {
			return lm.Add(right)
		}
		return rm.Add(left)
	case "-":
		if lok {
			return lm.Sub(right)
		}
		negated, err := rm.Sub(left)
		if err != nil {
			return nil, err
		}
		return negated.(*value.Matrix).Mul(value.Int(-1))
	case "*":
		if lok {
			return lm.Mul(right)
		}
		return rm.Mul(left)
	case "/":
		if lok {
			return lm.Div(right)
		}
		return nil, herr.New(herr.MatrixDimension, "cannot divide a scalar by a matrix")
	case "^":
		if lok {
			return lm.Pow(right)
		}
		return nil, herr.New(herr.MatrixDimension, "cannot raise a scalar to a matrix power")
	case ".*":
		if lok && rok {
			return lm.ElMul(rm)
		}
		if lok {
			return lm.Mul(right)
		}
		return rm.Mul(left)
	case ".^":
		if lok {
			return lm.ElPow(right)
		}
		return nil, herr.New(herr.MatrixDimension, "elementwise power requires the base to be a matrix")
	default:
		return nil, herr.New(herr.Undefined, "unsupported matrix operator %s", op)
	}
}

// evalComparison evaluates a (possibly chained) comparison, per spec
// §4.5: "if the left operand is itself a ComparisonOperator, its right
// operand becomes the effective left operand of this comparison, and
// the chain is false unless every link holds." evalComparisonChain
// walks the chain evaluating each operand exactly once, left to
// right, rather than re-evaluating already-computed links.
func (in *Interpreter) evalComparison(node *ast.ComparisonOperator) (value.Value, error) {
	_, chainOK, err := in.evalComparisonChain(node)
	if err != nil {
		return nil, err
	}
	return value.Bool(chainOK), nil
}

// evalComparisonChain returns expr's value and, when expr is itself a
// chained ComparisonOperator, whether every link up to and including
// it held. Each operand along the chain is evaluated once.
func (in *Interpreter) evalComparisonChain(expr ast.Expression) (value.Value, bool, error) {
	node, isChain := expr.(*ast.ComparisonOperator)
	if !isChain {
		v, err := in.Eval(expr)
		return v, true, err
	}
	left, leftOK, err := in.evalComparisonChain(node.Left)
	if err != nil {
		return nil, false, err
	}
	right, err := in.Eval(node.Right)
	if err != nil {
		return nil, false, err
	}
	cmp, err := compareOp(node.Op, left, right)
	if err != nil {
		return nil, false, err
	}
	return right, leftOK && cmp.Truthy(), nil
}

func compareOp(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<":
		b, err := value.Less(l, r)
		return value.Bool(b), err
	case "<=":
		b, err := value.LessEqual(l, r)
		return value.Bool(b), err
	case ">":
		b, err := value.Greater(l, r)
		return value.Bool(b), err
	case ">=":
		b, err := value.GreaterEqual(l, r)
		return value.Bool(b), err
	default:
		return nil, herr.New(herr.Undefined, "interp: unsupported comparison operator %s", op)
	}
}

func (in *Interpreter) evalTernary(node *ast.TernaryOperator) (value.Value, error) {
	first, err := in.Eval(node.First)
	if err != nil {
		return nil, err
	}
	second, err := in.Eval(node.Second)
	if err != nil {
		return nil, err
	}
	third, err := in.Eval(node.Third)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "conditional":
		if second.Truthy() {
			return first, nil
		}
		return third, nil
	case "slice":
		start, err := valueToSlicePart(first)
		if err != nil {
			return nil, err
		}
		stop, err := valueToSlicePart(second)
		if err != nil {
			return nil, err
		}
		step, err := valueToSlicePart(third)
		if err != nil {
			return nil, err
		}
		return &value.Slice{Start: start, Stop: stop, Step: step}, nil
	default:
		return nil, herr.New(herr.Undefined, "interp: unsupported ternary operator %s", node.Op)
	}
}

func valueToSlicePart(v value.Value) (*int64, error) {
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

func (in *Interpreter) evalMatrixOperation(node *ast.MatrixOperation) (value.Value, error) {
	leftVal, err := in.Eval(node.Left)
	if err != nil {
		return nil, err
	}
	leftMatrix, ok := leftVal.(*value.Matrix)
	if !ok {
		return nil, herr.At(herr.MatrixDimension, pos(node.Pos), "left side of a matrix literal must itself be a matrix")
	}
	rightVal, err := in.Eval(node.Right)
	if err != nil {
		return nil, err
	}
	axis := 1
	if node.Op == ";" {
		axis = 0
	}
	if err := leftMatrix.Concat(rightVal, axis); err != nil {
		return nil, err
	}
	return leftMatrix, nil
}

// --- Function calls ---------------------------------------------------

func (in *Interpreter) evalFunctionCall(node *ast.FunctionCall) (value.Value, error) {
	callee, err := in.Eval(node.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(node.Args))
	for i, a := range node.Args {
		if args[i], err = in.Eval(a); err != nil {
			return nil, err
		}
	}
	if node.Spread {
		return in.spreadCall(callee, args)
	}
	return in.invokeOnce(callee, args)
}

// invokeOnce applies callee to args exactly once, handling currying
// for user Functions, per spec §4.5's FunctionCall rule.
func (in *Interpreter) invokeOnce(callee value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case *value.Matrix:
		return c.Get(args...)
	case *value.Function:
		if len(args) < c.ArgumentsNeeded() {
			return c.Curry(args), nil
		}
		return in.callUserFunction(c, args)
	case *value.BuiltinFunction:
		return c.Call(args)
	case *value.ContextFunction:
		return c.Call(in.Env, args)
	default:
		return nil, herr.New(herr.Undefined, "%s is not callable", callee.Type())
	}
}

// callUserFunction binds parameters, runs the body, and reads back the
// returned value, mirroring the original's Function.execute -- with
// the returned-value slot tracked per-activation by the Interpreter
// (see the pending map in interp.go) instead of mutated in place on a
// shared AST node.
func (in *Interpreter) callUserFunction(f *value.Function, args []value.Value) (value.Value, error) {
	bindings, err := f.Bindings(args)
	if err != nil {
		return nil, err
	}
	for name, v := range bindings {
		in.Env.Assign(name, v)
	}
	if f.Body == nil {
		return value.Null, nil
	}
	in.pushReturn(f.Body)
	runErr := in.runUntil(f.Body, func() bool { return in.hasReturned(f.Body) })
	result := in.popReturn(f.Body)
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// runUntil mirrors the original's run_statements: walk start, then
// keep walking its successor while it exists and done() is false.
func (in *Interpreter) runUntil(start ast.Statement, done func() bool) error {
	next, err := in.Walk(start)
	if err != nil {
		return err
	}
	for next != nil && !done() {
		current := next
		next, err = in.Walk(current)
		if err != nil {
			return err
		}
	}
	return nil
}

// spreadCall implements the `.()` spread call of spec §4.5: invoke
// callee once per corresponding element of its Matrix-shaped
// arguments, repeating scalar arguments, with the result taking the
// shape of the first Matrix argument.
func (in *Interpreter) spreadCall(callee value.Value, args []value.Value) (value.Value, error) {
	length := -1
	var shapeRows, shapeCols int
	vecs := make([][]value.Value, len(args))
	for i, a := range args {
		m, ok := a.(*value.Matrix)
		if !ok {
			continue
		}
		vec := m.Vector()
		if length == -1 {
			length = len(vec)
			shapeRows, shapeCols = m.Shape()
		} else if len(vec) != length {
			return nil, herr.New(herr.MatrixDimension, "spread call arguments must have equal length")
		}
		vecs[i] = vec
	}
	if length == -1 {
		return in.invokeOnce(callee, args)
	}

	results := make([]value.Value, length)
	callArgs := make([]value.Value, len(args))
	for k := 0; k < length; k++ {
		for i, a := range args {
			if vecs[i] != nil {
				callArgs[i] = vecs[i][k]
			} else {
				callArgs[i] = a
			}
		}
		res, err := in.invokeOnce(callee, append([]value.Value(nil), callArgs...))
		if err != nil {
			return nil, err
		}
		results[k] = res
	}
	return value.NewMatrixShaped(shapeRows, shapeCols, results), nil
}
