package value

import (
	"strings"

	"github.com/huckle-lang/hk/ast"
	"github.com/huckle-lang/hk/herr"
)

// Function is a user-defined Huckle function: a parameter list plus
// the ReturnBlock that forms its body, per spec §3/§4.1. Curried holds
// arguments already bound by a previous partial call; ArgumentsNeeded
// reports how many more are required before the body actually runs.
//
// Running the body (binding parameters, walking statements, reading
// back the returned value) is the job of the interp package, not of
// Function itself -- interp already owns the statement walker, and
// Function staying pure data avoids a value<->interp import cycle.
// This mirrors the original's own workaround of a same-method local
// import to dodge Python's circular-import rule; Go just makes the
// split a package boundary instead.
type Function struct {
	Parameters []string
	Body       *ast.ReturnBlock
	Curried    []Value
	// Infix marks a function declared for operator-position use
	// (spec §4.4's infix function declarations), so the parser/interp
	// can accept it between two operands without a call-syntax wrapper.
	Infix bool
}

func (f *Function) Type() string { return "function" }

func (f *Function) String() string {
	return "fn(" + strings.Join(f.Parameters, ", ") + ")"
}

func (f *Function) Truthy() bool { return true }

// ArgumentsNeeded is how many more arguments must be supplied before
// the function can run.
func (f *Function) ArgumentsNeeded() int {
	return len(f.Parameters) - len(f.Curried)
}

// Curry returns a new Function with args appended to the already
// curried list, leaving f untouched.
func (f *Function) Curry(args []Value) *Function {
	curried := make([]Value, 0, len(f.Curried)+len(args))
	curried = append(curried, f.Curried...)
	curried = append(curried, args...)
	return &Function{Parameters: f.Parameters, Body: f.Body, Curried: curried, Infix: f.Infix}
}

// Bindings computes the final parameter->argument map for a full call
// (curried values first, then args), erroring if more were supplied
// than the function declares -- matching the original's "Too many
// arguments" RuntimeError.
func (f *Function) Bindings(args []Value) (map[string]Value, error) {
	if len(f.Parameters) < len(f.Curried)+len(args) {
		return nil, herr.New(herr.ArityTooMany, "too many arguments: expected %d, got %d", len(f.Parameters), len(f.Curried)+len(args))
	}
	bindings := make(map[string]Value, len(f.Parameters))
	for i, p := range f.Parameters {
		if i < len(f.Curried) {
			bindings[p] = f.Curried[i]
		} else {
			bindings[p] = args[i-len(f.Curried)]
		}
	}
	return bindings, nil
}

// BuiltinFunction wraps a native Go implementation of a §6.2 built-in.
// Built-ins never curry, matching PythonFunction.arguments_needed
// always returning 0 in the original -- "we don't want to enable
// currying for built-in functions."
type BuiltinFunction struct {
	Name string
	Fn   func(args []Value) (Value, error)
	// Infix marks built-ins registered with `infix=True` in the
	// original (cross, dot, eq, reshape), usable as `a name b`.
	Infix bool
}

func (b *BuiltinFunction) Type() string      { return "builtin" }
func (b *BuiltinFunction) String() string    { return "built-in fn(" + b.Name + ")" }
func (b *BuiltinFunction) Truthy() bool      { return true }
func (b *BuiltinFunction) ArgumentsNeeded() int { return 0 }

func (b *BuiltinFunction) Call(args []Value) (Value, error) {
	return b.Fn(args)
}

// ContextFunction is a built-in that additionally needs read access to
// the calling environment -- the only one in §6.2 is `print`, which
// checks the `pretty_print` variable. It depends on VarLookup rather
// than the env package directly to keep value's import graph
// one-directional.
type ContextFunction struct {
	Name string
	Fn   func(lookup VarLookup, args []Value) (Value, error)
}

func (c *ContextFunction) Type() string      { return "builtin" }
func (c *ContextFunction) String() string    { return "built-in fn(" + c.Name + ")" }
func (c *ContextFunction) Truthy() bool      { return true }
func (c *ContextFunction) ArgumentsNeeded() int { return 0 }

func (c *ContextFunction) Call(lookup VarLookup, args []Value) (Value, error) {
	return c.Fn(lookup, args)
}
