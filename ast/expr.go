package ast

// PrimitiveKind tags which field of a Primitive literal is populated.
// Using a small closed kind set (rather than storing a value.Value
// directly) is what keeps ast import-free of the value package; interp
// does the one-line conversion to a runtime Value at eval time.
type PrimitiveKind int

const (
	PrimInt PrimitiveKind = iota
	PrimFloat
	PrimComplex
	PrimString
	PrimBool
	PrimNone
)

// Primitive is a literal token folded directly into the tree by the
// parser: a number, string, boolean, None, or complex literal.
type Primitive struct {
	Pos  Position
	Kind PrimitiveKind

	IntVal    int64
	FloatVal  float64   // also holds a PrimComplex literal's real part
	ComplexIm float64   // a PrimComplex literal's imaginary part
	StringVal string
	BoolVal   bool
}

func (*Primitive) exprNode() {}

// NestedExpression is a parenthesized sub-expression, kept as its own
// node (rather than simply unwrapped) so slice syntax `(a:b:c)` has
// somewhere to attach.
type NestedExpression struct {
	Pos  Position
	Expr Expression
}

func (*NestedExpression) exprNode() {}

// MatrixExpression is the top of a `[...]` literal: either empty, the
// lone UnitMatrixExpression of a one-element literal, or the final
// MatrixOperation in a `,`/`;`-joined chain.
type MatrixExpression struct {
	Pos           Position
	LastOperation Expression // nil for an empty literal "[]"
}

func (*MatrixExpression) exprNode() {}

// UnitMatrixExpression lifts a bare expression into a 1x1 matrix, or
// copies an existing Matrix value -- each element of a `[...]`
// literal, per spec §4.5.
type UnitMatrixExpression struct {
	Pos        Position
	Expression Expression
}

func (*UnitMatrixExpression) exprNode() {}

// MatrixOperation appends Right onto Left as a new column (",") or a
// new row (";") inside a matrix literal.
type MatrixOperation struct {
	Pos   Position
	Left  Expression
	Op    string // "," or ";"
	Right Expression
}

func (*MatrixOperation) exprNode() {}

// UnaryOperator covers numeric negation, logical not, and matrix
// transpose ("'").
type UnaryOperator struct {
	Pos  Position
	Op   string // "-", "not", "'"
	Expr Expression
}

func (*UnaryOperator) exprNode() {}

// BinaryOperator is every two-operand arithmetic/logical operator.
// Commutative marks whether the runtime may retry with swapped
// operands when the first evaluation order fails (spec §4.1's
// "binary operators commute as a fallback").
type BinaryOperator struct {
	Pos         Position
	Left        Expression
	Op          string
	Right       Expression
	Commutative bool
}

func (*BinaryOperator) exprNode() {}

// ComparisonOperator is a BinaryOperator specialization that supports
// chained comparisons (spec §4.5): when Left is itself a
// ComparisonOperator, its Right becomes this comparison's effective
// left operand, and the whole chain is false unless every link holds.
type ComparisonOperator struct {
	Pos   Position
	Left  Expression
	Op    string // "==" "!=" "<" "<=" ">" ">="
	Right Expression
}

func (*ComparisonOperator) exprNode() {}

// TernaryOperator implements both the `a if b else c` conditional form
// and the `a:b:c` slice-literal form, distinguished by Op.
type TernaryOperator struct {
	Pos    Position
	Op     string // "conditional" or "slice"
	First  Expression
	Second Expression
	Third  Expression
}

func (*TernaryOperator) exprNode() {}

// PostCondition identifies a guard VariableAccess enforces on the
// value it looked up.
type PostCondition int

const (
	// PostConditionNone accepts any looked-up value, including None.
	PostConditionNone PostCondition = iota
	// PostConditionInfix requires the looked-up value be a Function
	// with its Infix flag set, used for `a name b` infix call syntax.
	PostConditionInfix
)

// VariableAccess reads a variable by name, per spec §4.7: a missing
// name evaluates to None rather than raising.
type VariableAccess struct {
	Pos          Position
	Name         string
	PostCond     PostCondition
	ErrorMessage string
}

func (*VariableAccess) exprNode() {}

// VariableChange is an assignment/compound-assignment/increment/
// delete form. Target is usually a *VariableAccess, but may be a
// *FunctionCall when the callee is a Matrix (spec §4.5 "Change on
// FunctionCall": redirects to element assignment/deletion).
type VariableChange struct {
	Pos    Position
	Target Expression
	Op     string     // "=" "+=" "-=" "++" "--" "del"
	Expr   Expression // nil for "++", "--", "del"
}

func (*VariableChange) exprNode() {}

// FunctionCall applies Callee to Args. Spread marks the `.()` spread
// call form (spec §4.5), which invokes Callee once per corresponding
// element of its (matrix-shaped) arguments instead of once overall.
type FunctionCall struct {
	Pos    Position
	Callee Expression
	Args   []Expression
	Spread bool
}

func (*FunctionCall) exprNode() {}

// FunctionLiteral is a `(infix)? fn params? : body` expression. Body
// is either a single inline expression (InlineExpr set, Body nil) or
// a full indented block (Body set, wrapped as a ReturnBlock so
// `return` inside it has somewhere to stash its value).
type FunctionLiteral struct {
	Pos        Position
	Parameters []string
	InlineExpr Expression
	Body       *ReturnBlock
	Infix      bool
}

func (*FunctionLiteral) exprNode() {}
