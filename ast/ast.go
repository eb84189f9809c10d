// Package ast defines the syntax tree the parser builds and the
// interp package walks. Nodes are plain data: no Evaluate or Walk
// method lives here. That split exists because value.Function must
// hold a *ast.ReturnBlock body (its function body), so ast cannot
// import value without a cycle; keeping ast free of any value
// reference, and letting interp's free functions do the type-switch
// dispatch, resolves it the same way "Writing An Interpreter In Go"
// resolves object/ast vs evaluator.
package ast

// Position is a source location, carried through to herr.Position at
// the point an error is raised.
type Position struct {
	Line   int
	Column int
}

// Expression is satisfied by every expression node.
type Expression interface {
	exprNode()
}

// Statement is satisfied by every statement node. Statements carry
// Parent/Next themselves (via embedding StatementLinks) rather than
// through a separate registry, mirroring the original's
// parent/next-bearing Statement base class.
type Statement interface {
	stmtNode()
	Links() *StatementLinks
}

// StatementLinks is the parent/next pair every Statement embeds,
// per spec §4.6: "A Statement carries parent and next." Kept as a
// separate addressable struct (rather than plain fields) so the
// walking code in interp can mutate it uniformly through the
// Statement interface.
type StatementLinks struct {
	Parent Statement
	Next   Statement
}

func (l *StatementLinks) Links() *StatementLinks { return l }
