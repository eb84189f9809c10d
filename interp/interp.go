// Package interp walks the ast tree built by the parser, evaluating
// expressions into value.Value results and driving statement
// execution via the parent/next walker of spec §4.6. It holds the
// Eval/Walk dispatch that ast itself deliberately does not, keeping
// ast free of any dependency on value (see ast package docs).
package interp

import (
	"github.com/huckle-lang/hk/ast"
	"github.com/huckle-lang/hk/env"
	"github.com/huckle-lang/hk/herr"
	"github.com/huckle-lang/hk/value"
)

// Interpreter runs a single program. It owns the return-value stack
// that replaces the original's single mutable ReturnBlock.returned
// slot -- spec §9's design note flags that slot as recursion-unsafe
// and recommends allocating per call; a stack keyed by the
// *ast.ReturnBlock identity, pushed on entry and popped on exit, gives
// every active call frame its own slot without having to clone the
// statement graph.
type Interpreter struct {
	Env       *env.Environment
	pending   map[*ast.ReturnBlock][]*value.Value
	forFrames map[*ast.ForBlock][]*forFrame
}

// New builds an Interpreter over the given (already builtin-seeded)
// environment.
func New(e *env.Environment) *Interpreter {
	return &Interpreter{
		Env:       e,
		pending:   make(map[*ast.ReturnBlock][]*value.Value),
		forFrames: make(map[*ast.ForBlock][]*forFrame),
	}
}

// Run walks an entire program starting at start, per spec §4.6: "The
// runner starts at the program's first statement and repeatedly calls
// walk ... until walk yields the sentinel end-of-program value."
func (in *Interpreter) Run(start ast.Statement) error {
	if start == nil {
		return nil
	}
	current := start
	for current != nil {
		next, err := in.Walk(current)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// pushReturn opens a new call frame for rb.
func (in *Interpreter) pushReturn(rb *ast.ReturnBlock) {
	in.pending[rb] = append(in.pending[rb], nil)
}

// popReturn closes the innermost call frame for rb and reports its
// returned value, if any.
func (in *Interpreter) popReturn(rb *ast.ReturnBlock) value.Value {
	stack := in.pending[rb]
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(in.pending, rb)
	} else {
		in.pending[rb] = stack
	}
	if top == nil {
		return value.Null
	}
	return *top
}

// setReturn stores v in rb's innermost active call frame.
func (in *Interpreter) setReturn(rb *ast.ReturnBlock, v value.Value) {
	stack := in.pending[rb]
	if len(stack) == 0 {
		// A return outside any active call; ignore rather than panic,
		// matching the original's tolerant flat-state style.
		return
	}
	stack[len(stack)-1] = &v
}

// hasReturned reports whether rb's innermost active call frame has
// already captured a value.
func (in *Interpreter) hasReturned(rb *ast.ReturnBlock) bool {
	stack := in.pending[rb]
	if len(stack) == 0 {
		return false
	}
	return stack[len(stack)-1] != nil
}

func findParentReturnBlock(s ast.Statement) *ast.ReturnBlock {
	for p := s.Links().Parent; p != nil; p = p.Links().Parent {
		if rb, ok := p.(*ast.ReturnBlock); ok {
			return rb
		}
	}
	return nil
}

// findParentLoop locates the nearest enclosing WhileBlock or ForBlock,
// for "continue" to jump back to.
func findParentLoop(s ast.Statement) ast.Statement {
	for p := s.Links().Parent; p != nil; p = p.Links().Parent {
		switch p.(type) {
		case *ast.WhileBlock, *ast.ForBlock:
			return p
		}
	}
	return nil
}

// takeNext returns s.Next if set, else delegates to the parent --
// polymorphically, since WhileBlock and ForBlock override what
// "delegating to the parent" means (re-checking a loop condition /
// advancing an iterator) exactly as their Python ancestors override
// take_next, per spec §4.6.
func (in *Interpreter) takeNext(s ast.Statement) (ast.Statement, error) {
	links := s.Links()
	if links.Next != nil {
		return links.Next, nil
	}
	if links.Parent == nil {
		return nil, nil
	}
	switch parent := links.Parent.(type) {
	case *ast.WhileBlock:
		return in.takeNextWhile(parent)
	case *ast.ForBlock:
		return in.advanceFor(parent)
	default:
		return in.takeNext(parent)
	}
}

// Walk runs one statement and returns its successor, per spec §4.6.
func (in *Interpreter) Walk(s ast.Statement) (ast.Statement, error) {
	switch node := s.(type) {
	case *ast.StatementWrapper:
		if _, err := in.Eval(node.Expr); err != nil {
			return nil, err
		}
		return in.takeNext(node)

	case *ast.PassStatement:
		return in.takeNext(node)

	case *ast.ReturnStatement:
		rb := findParentReturnBlock(node)
		if rb == nil {
			return nil, herr.At(herr.Syntax, pos(node.Pos), "return outside a function body")
		}
		v, err := in.Eval(node.Expr)
		if err != nil {
			return nil, err
		}
		in.setReturn(rb, v)
		return rb, nil

	case *ast.ContinueStatement:
		loop := findParentLoop(node)
		if loop == nil {
			return nil, herr.At(herr.Syntax, pos(node.Pos), "continue outside a loop")
		}
		switch lb := loop.(type) {
		case *ast.WhileBlock:
			return in.takeNextWhile(lb)
		case *ast.ForBlock:
			return in.advanceFor(lb)
		}
		return nil, nil

	case *ast.ConditionalStatement:
		cond, err := in.Eval(node.IfExpr)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return node.IfBlock, nil
		}
		for i, expr := range node.ElifExprs {
			v, err := in.Eval(expr)
			if err != nil {
				return nil, err
			}
			if v.Truthy() {
				return node.ElifBlocks[i], nil
			}
		}
		if node.ElseBlock != nil {
			return node.ElseBlock, nil
		}
		return in.takeNext(node)

	case *ast.ReturnBlock:
		if len(node.Children) > 0 && !in.hasReturned(node) {
			return node.Children[0], nil
		}
		return in.takeNext(node)

	case *ast.WhileBlock:
		if len(node.Children) > 0 {
			return node.Children[0], nil
		}
		return in.takeNextWhile(node)

	case *ast.ForBlock:
		return in.enterFor(node)

	case *ast.Block:
		if len(node.Children) > 0 {
			return node.Children[0], nil
		}
		return in.takeNext(node)

	default:
		return nil, herr.New(herr.Undefined, "interp: unhandled statement node %T", s)
	}
}

// takeNextWhile implements WhileBlock's overridden take_next: re-check
// the condition, re-enter the body if still truthy, else fall through
// normally (spec §4.6).
func (in *Interpreter) takeNextWhile(wb *ast.WhileBlock) (ast.Statement, error) {
	cond, err := in.Eval(wb.Cond)
	if err != nil {
		return nil, err
	}
	if cond.Truthy() {
		return wb, nil
	}
	return in.takeNext(wb)
}

// forFrame tracks one live activation of a ForBlock: the materialized
// elements being iterated and the cursor into them.
type forFrame struct {
	elements []value.Value
	idx      int
}

// enterFor starts a fresh iteration of a ForBlock: materializes the
// iterable once, binds the first element, and enters the body. Spec
// §4.6 only says a ForBlock "iterates over the value of iterable,
// binding each element to id" -- there's no Python ancestor for this
// node, so re-entry is modeled on WhileBlock's take_next-driven
// re-check/re-enter shape instead of a literal translation.
func (in *Interpreter) enterFor(node *ast.ForBlock) (ast.Statement, error) {
	iterable, err := in.Eval(node.Iterable)
	if err != nil {
		return nil, err
	}
	elements, err := iterableElements(iterable)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return in.takeNext(node)
	}
	in.forFrames[node] = append(in.forFrames[node], &forFrame{elements: elements})
	in.Env.Assign(node.Var, elements[0])
	if len(node.Children) > 0 {
		return node.Children[0], nil
	}
	return in.advanceFor(node)
}

// advanceFor moves a ForBlock's innermost active frame to its next
// element, re-entering the body, or tears the frame down and falls
// through once elements are exhausted.
func (in *Interpreter) advanceFor(node *ast.ForBlock) (ast.Statement, error) {
	frames := in.forFrames[node]
	frame := frames[len(frames)-1]
	frame.idx++
	if frame.idx < len(frame.elements) {
		in.Env.Assign(node.Var, frame.elements[frame.idx])
		if len(node.Children) > 0 {
			return node.Children[0], nil
		}
		return in.advanceFor(node)
	}
	frames = frames[:len(frames)-1]
	if len(frames) == 0 {
		delete(in.forFrames, node)
	} else {
		in.forFrames[node] = frames
	}
	return in.takeNext(node)
}

// iterableElements converts a Value into the sequence a ForBlock walks
// over: a Matrix's row-major elements, a String's characters, or a
// fully-bounded Slice materialized the same way Matrix(Slice) is.
func iterableElements(v value.Value) ([]value.Value, error) {
	switch it := v.(type) {
	case *value.Matrix:
		return it.Vector(), nil
	case value.String:
		elems := make([]value.Value, 0, len(it))
		for _, r := range string(it) {
			elems = append(elems, value.String(string(r)))
		}
		return elems, nil
	case *value.Slice:
		m, err := value.NewMatrixFromSlice(it)
		if err != nil {
			return nil, err
		}
		return m.Vector(), nil
	default:
		return nil, herr.New(herr.Undefined, "cannot iterate over a %s", v.Type())
	}
}

func pos(p ast.Position) herr.Position {
	return herr.Position{Line: p.Line, Column: p.Column}
}
