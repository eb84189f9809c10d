package parser

import (
	"testing"

	"github.com/huckle-lang/hk/ast"
)

func mustParse(t *testing.T, src string) *ast.Block {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %s", src, err)
	}
	return prog
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog := mustParse(t, "1 + 2 * 3")
	if len(prog.Children) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Children))
	}
	wrapper, ok := prog.Children[0].(*ast.StatementWrapper)
	if !ok {
		t.Fatalf("expected *ast.StatementWrapper, got %T", prog.Children[0])
	}
	bin, ok := wrapper.Expr.(*ast.BinaryOperator)
	if !ok {
		t.Fatalf("expected top-level *ast.BinaryOperator, got %T", wrapper.Expr)
	}
	if bin.Op != "+" {
		t.Fatalf("expected top-level op +, got %q", bin.Op)
	}
	if _, ok := bin.Left.(*ast.Primitive); !ok {
		t.Fatalf("expected left operand to be the literal 1, got %T", bin.Left)
	}
	right, ok := bin.Right.(*ast.BinaryOperator)
	if !ok {
		t.Fatalf("expected right operand 2*3 to bind tighter, got %T", bin.Right)
	}
	if right.Op != "*" {
		t.Fatalf("expected right operand op *, got %q", right.Op)
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	prog := mustParse(t, "a = b = 1")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	outer, ok := wrapper.Expr.(*ast.VariableChange)
	if !ok {
		t.Fatalf("expected *ast.VariableChange, got %T", wrapper.Expr)
	}
	if outer.Op != "=" {
		t.Fatalf("expected =, got %q", outer.Op)
	}
	if _, ok := outer.Expr.(*ast.VariableChange); !ok {
		t.Fatalf("expected nested assignment b = 1 on the right, got %T", outer.Expr)
	}
}

func TestParseChainedComparison(t *testing.T) {
	prog := mustParse(t, "a < b < c")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	outer, ok := wrapper.Expr.(*ast.ComparisonOperator)
	if !ok {
		t.Fatalf("expected *ast.ComparisonOperator, got %T", wrapper.Expr)
	}
	if outer.Op != "<" {
		t.Fatalf("expected outer op <, got %q", outer.Op)
	}
	inner, ok := outer.Left.(*ast.ComparisonOperator)
	if !ok {
		t.Fatalf("expected a < b nested on the left, got %T", outer.Left)
	}
	if inner.Op != "<" {
		t.Fatalf("expected inner op <, got %q", inner.Op)
	}
}

func TestParseInfixIdentifierCallBindsLooserThanArithmetic(t *testing.T) {
	prog := mustParse(t, "a * b plus c * d")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	call, ok := wrapper.Expr.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected *ast.FunctionCall for the infix call, got %T", wrapper.Expr)
	}
	callee, ok := call.Callee.(*ast.VariableAccess)
	if !ok || callee.Name != "plus" {
		t.Fatalf("expected callee plus, got %#v", call.Callee)
	}
	if callee.PostCond != ast.PostConditionInfix {
		t.Fatalf("expected infix post-condition on the callee lookup")
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.BinaryOperator); !ok {
		t.Fatalf("expected a*b grouped as the first argument, got %T", call.Args[0])
	}
	if _, ok := call.Args[1].(*ast.BinaryOperator); !ok {
		t.Fatalf("expected c*d grouped as the second argument, got %T", call.Args[1])
	}
}

func TestParseSpreadInfixCall(t *testing.T) {
	prog := mustParse(t, "a op. b")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	call, ok := wrapper.Expr.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected *ast.FunctionCall, got %T", wrapper.Expr)
	}
	if !call.Spread {
		t.Fatalf("expected Spread to be set for the `op.` form")
	}
}

func TestParseFunctionLiteralInline(t *testing.T) {
	prog := mustParse(t, "f = fn(a, b): a + b")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	change := wrapper.Expr.(*ast.VariableChange)
	lit, ok := change.Expr.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", change.Expr)
	}
	if len(lit.Parameters) != 2 || lit.Parameters[0] != "a" || lit.Parameters[1] != "b" {
		t.Fatalf("unexpected parameters: %v", lit.Parameters)
	}
	if lit.Body != nil {
		t.Fatalf("expected inline body, Body should be nil")
	}
	if lit.InlineExpr == nil {
		t.Fatalf("expected a non-nil inline expression")
	}
}

func TestParseFunctionLiteralSingleBareParam(t *testing.T) {
	prog := mustParse(t, "double = fn x: x * 2")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	change := wrapper.Expr.(*ast.VariableChange)
	lit := change.Expr.(*ast.FunctionLiteral)
	if len(lit.Parameters) != 1 || lit.Parameters[0] != "x" {
		t.Fatalf("unexpected parameters: %v", lit.Parameters)
	}
}

func TestParseInfixFunctionLiteral(t *testing.T) {
	prog := mustParse(t, "f = infix fn(a, b): a + b")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	change := wrapper.Expr.(*ast.VariableChange)
	lit := change.Expr.(*ast.FunctionLiteral)
	if !lit.Infix {
		t.Fatalf("expected Infix to be set")
	}
}

func TestParseFunctionLiteralBlockBody(t *testing.T) {
	src := "f = fn(a):\n\treturn a + 1\n"
	prog := mustParse(t, src)
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	change := wrapper.Expr.(*ast.VariableChange)
	lit := change.Expr.(*ast.FunctionLiteral)
	if lit.Body == nil {
		t.Fatalf("expected a block body")
	}
	if len(lit.Body.Children) != 1 {
		t.Fatalf("expected 1 statement in the body, got %d", len(lit.Body.Children))
	}
	if _, ok := lit.Body.Children[0].(*ast.ReturnStatement); !ok {
		t.Fatalf("expected *ast.ReturnStatement, got %T", lit.Body.Children[0])
	}
}

func TestParseMatrixLiteral(t *testing.T) {
	prog := mustParse(t, "[1, 2; 3, 4]")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	m, ok := wrapper.Expr.(*ast.MatrixExpression)
	if !ok {
		t.Fatalf("expected *ast.MatrixExpression, got %T", wrapper.Expr)
	}
	top, ok := m.LastOperation.(*ast.MatrixOperation)
	if !ok {
		t.Fatalf("expected top *ast.MatrixOperation, got %T", m.LastOperation)
	}
	if top.Op != ";" {
		t.Fatalf("expected the outermost join to be the row separator (comma binds tighter), got %q", top.Op)
	}
	leftRow, ok := top.Left.(*ast.MatrixOperation)
	if !ok || leftRow.Op != "," {
		t.Fatalf("expected the first row to be a comma-joined pair, got %#v", top.Left)
	}
	rightRow, ok := top.Right.(*ast.MatrixOperation)
	if !ok || rightRow.Op != "," {
		t.Fatalf("expected the second row to be a comma-joined pair, got %#v", top.Right)
	}
}

func TestParseEmptyMatrixLiteral(t *testing.T) {
	prog := mustParse(t, "[]")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	m, ok := wrapper.Expr.(*ast.MatrixExpression)
	if !ok {
		t.Fatalf("expected *ast.MatrixExpression, got %T", wrapper.Expr)
	}
	if m.LastOperation != nil {
		t.Fatalf("expected a nil LastOperation for an empty literal")
	}
}

func TestParseSliceArgument(t *testing.T) {
	prog := mustParse(t, "m[1:3]")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	call, ok := wrapper.Expr.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected *ast.FunctionCall, got %T", wrapper.Expr)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 index argument, got %d", len(call.Args))
	}
	slice, ok := call.Args[0].(*ast.TernaryOperator)
	if !ok || slice.Op != "slice" {
		t.Fatalf("expected a slice TernaryOperator, got %#v", call.Args[0])
	}
	third, ok := slice.Third.(*ast.Primitive)
	if !ok || third.Kind != ast.PrimNone {
		t.Fatalf("expected the omitted step to default to None, got %#v", slice.Third)
	}
}

func TestParseSliceAllPartsOmitted(t *testing.T) {
	prog := mustParse(t, "m[:]")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	call := wrapper.Expr.(*ast.FunctionCall)
	slice, ok := call.Args[0].(*ast.TernaryOperator)
	if !ok || slice.Op != "slice" {
		t.Fatalf("expected a slice TernaryOperator, got %#v", call.Args[0])
	}
	for _, part := range []ast.Expression{slice.First, slice.Second, slice.Third} {
		if p, ok := part.(*ast.Primitive); !ok || p.Kind != ast.PrimNone {
			t.Fatalf("expected every omitted part to be None, got %#v", part)
		}
	}
}

func TestParseSpreadCall(t *testing.T) {
	prog := mustParse(t, "f.(1, 2)")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	call, ok := wrapper.Expr.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected *ast.FunctionCall, got %T", wrapper.Expr)
	}
	if !call.Spread {
		t.Fatalf("expected Spread to be set")
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestParseTernaryVsBareIf(t *testing.T) {
	prog := mustParse(t, "a if b else c\n1 if x")
	wrapper0 := prog.Children[0].(*ast.StatementWrapper)
	ternary, ok := wrapper0.Expr.(*ast.TernaryOperator)
	if !ok || ternary.Op != "conditional" {
		t.Fatalf("expected a conditional TernaryOperator, got %#v", wrapper0.Expr)
	}

	wrapper1 := prog.Children[1].(*ast.StatementWrapper)
	bin, ok := wrapper1.Expr.(*ast.BinaryOperator)
	if !ok || bin.Op != "if" {
		t.Fatalf("expected a bare `if` BinaryOperator, got %#v", wrapper1.Expr)
	}
	if bin.Commutative {
		t.Fatalf("`if` must not be marked commutative")
	}
}

func TestParseUnaryAndTranspose(t *testing.T) {
	// A trailing apostrophe on an identifier lexes as part of its name
	// (a' is one IDENT), so the operand is parenthesised.
	prog := mustParse(t, "-(a)'")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	transpose, ok := wrapper.Expr.(*ast.UnaryOperator)
	if !ok || transpose.Op != "'" {
		t.Fatalf("expected the outermost operator to be transpose, got %#v", wrapper.Expr)
	}
	neg, ok := transpose.Expr.(*ast.UnaryOperator)
	if !ok || neg.Op != "-" {
		t.Fatalf("expected the transposed operand to be a unary minus, got %#v", transpose.Expr)
	}
}

func TestParseNotBindsTighterThanAndOr(t *testing.T) {
	prog := mustParse(t, "not a and b")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	bin, ok := wrapper.Expr.(*ast.BinaryOperator)
	if !ok || bin.Op != "and" {
		t.Fatalf("expected the outermost operator to be `and`, got %#v", wrapper.Expr)
	}
	if _, ok := bin.Left.(*ast.UnaryOperator); !ok {
		t.Fatalf("expected `not a` grouped on the left, got %T", bin.Left)
	}
}

func TestParseNotConsumesIn(t *testing.T) {
	prog := mustParse(t, "not a in b")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	not, ok := wrapper.Expr.(*ast.UnaryOperator)
	if !ok || not.Op != "not" {
		t.Fatalf("expected the outermost operator to be `not`, got %#v", wrapper.Expr)
	}
	if _, ok := not.Expr.(*ast.BinaryOperator); !ok {
		t.Fatalf("expected `a in b` grouped inside `not`, got %T", not.Expr)
	}
}

func TestParseIdentCoefficient(t *testing.T) {
	prog := mustParse(t, "3x")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	bin, ok := wrapper.Expr.(*ast.BinaryOperator)
	if !ok || bin.Op != "*" {
		t.Fatalf("expected a * BinaryOperator, got %#v", wrapper.Expr)
	}
	if !bin.Commutative {
		t.Fatalf("expected the coefficient multiply to be commutative")
	}
	access, ok := bin.Right.(*ast.VariableAccess)
	if !ok || access.Name != "x" {
		t.Fatalf("expected variable x on the right, got %#v", bin.Right)
	}
}

func TestParseWhileWrapsInConditional(t *testing.T) {
	src := "while a < 3:\n\ta = a + 1\n"
	prog := mustParse(t, src)
	cs, ok := prog.Children[0].(*ast.ConditionalStatement)
	if !ok {
		t.Fatalf("expected the while statement to surface as a *ast.ConditionalStatement wrapper, got %T", prog.Children[0])
	}
	wb, ok := cs.IfBlock.(*ast.WhileBlock)
	if !ok {
		t.Fatalf("expected IfBlock to be the *ast.WhileBlock, got %T", cs.IfBlock)
	}
	if wb.Cond != cs.IfExpr {
		t.Fatalf("expected the wrapper's condition and the loop's condition to be the same node")
	}
	if len(wb.Children) != 1 {
		t.Fatalf("expected 1 statement in the loop body, got %d", len(wb.Children))
	}
}

func TestParseForLoop(t *testing.T) {
	src := "for x in [1, 2, 3]:\n\tprint(x)\n"
	prog := mustParse(t, src)
	fb, ok := prog.Children[0].(*ast.ForBlock)
	if !ok {
		t.Fatalf("expected *ast.ForBlock, got %T", prog.Children[0])
	}
	if fb.Var != "x" {
		t.Fatalf("expected loop variable x, got %q", fb.Var)
	}
	if len(fb.Children) != 1 {
		t.Fatalf("expected 1 statement in the loop body, got %d", len(fb.Children))
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a:\n\t1\nelif b:\n\t2\nelse:\n\t3\n"
	prog := mustParse(t, src)
	cs, ok := prog.Children[0].(*ast.ConditionalStatement)
	if !ok {
		t.Fatalf("expected *ast.ConditionalStatement, got %T", prog.Children[0])
	}
	if len(cs.ElifExprs) != 1 {
		t.Fatalf("expected 1 elif branch, got %d", len(cs.ElifExprs))
	}
	if cs.ElseBlock == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestParseContinueAndPass(t *testing.T) {
	src := "while a:\n\tpass\n\tcontinue\n"
	prog := mustParse(t, src)
	cs := prog.Children[0].(*ast.ConditionalStatement)
	wb := cs.IfBlock.(*ast.WhileBlock)
	if len(wb.Children) != 2 {
		t.Fatalf("expected 2 statements in the loop body, got %d", len(wb.Children))
	}
	if _, ok := wb.Children[0].(*ast.PassStatement); !ok {
		t.Fatalf("expected a pass statement first, got %T", wb.Children[0])
	}
	if _, ok := wb.Children[1].(*ast.ContinueStatement); !ok {
		t.Fatalf("expected a continue statement second, got %T", wb.Children[1])
	}
}

func TestParseNestedSliceGrouping(t *testing.T) {
	prog := mustParse(t, "(1:5:2)")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	nested, ok := wrapper.Expr.(*ast.NestedExpression)
	if !ok {
		t.Fatalf("expected *ast.NestedExpression, got %T", wrapper.Expr)
	}
	if _, ok := nested.Expr.(*ast.TernaryOperator); !ok {
		t.Fatalf("expected a slice literal inside the parens, got %T", nested.Expr)
	}
}

func TestParseIndentationErrorPropagates(t *testing.T) {
	// Indentation is counted in tabs; a dedent to a level that was never
	// opened is inconsistent.
	src := "if a:\n\t\t1\n\t2\n"
	if _, err := Parse(src); err == nil {
		t.Fatalf("expected an error for inconsistent indentation")
	}
}

func TestParseDel(t *testing.T) {
	prog := mustParse(t, "del x")
	wrapper := prog.Children[0].(*ast.StatementWrapper)
	change, ok := wrapper.Expr.(*ast.VariableChange)
	if !ok || change.Op != "del" {
		t.Fatalf("expected a del VariableChange, got %#v", wrapper.Expr)
	}
	if change.Expr != nil {
		t.Fatalf("expected del's Expr to be nil")
	}
}

func TestParseIncrementDecrement(t *testing.T) {
	prog := mustParse(t, "x++\ny--")
	inc := prog.Children[0].(*ast.StatementWrapper).Expr.(*ast.VariableChange)
	if inc.Op != "++" {
		t.Fatalf("expected ++, got %q", inc.Op)
	}
	dec := prog.Children[1].(*ast.StatementWrapper).Expr.(*ast.VariableChange)
	if dec.Op != "--" {
		t.Fatalf("expected --, got %q", dec.Op)
	}
}
