// This is the main-driver for our interpreter.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/huckle-lang/hk/ast"
	"github.com/huckle-lang/hk/builtins"
	"github.com/huckle-lang/hk/env"
	"github.com/huckle-lang/hk/interp"
	"github.com/huckle-lang/hk/lexer"
	"github.com/huckle-lang/hk/parser"
	"github.com/huckle-lang/hk/token"
	"github.com/huckle-lang/hk/value"
)

func main() {
	app := &cli.App{
		Name:      "hk",
		Usage:     "run a Huckle (.hk) source file",
		ArgsUsage: "<file.hk>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Usage: "force pretty-printed matrix output"},
			&cli.BoolFlag{Name: "no-pretty", Usage: "force raw (non-pretty) output"},
			&cli.BoolFlag{Name: "tokens", Usage: "dump the token stream and exit"},
			&cli.BoolFlag{Name: "ast", Usage: "dump the parsed AST and exit"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "hk: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected a single source file, see --help", 1)
	}

	path := c.Args().Get(0)
	raw, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	src := string(raw)

	if c.Bool("tokens") {
		return dumpTokens(src)
	}

	program, err := parser.Parse(src)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("ast") {
		dumpAST(program)
		return nil
	}

	e := env.New()
	builtins.Register(e)
	switch {
	case c.Bool("pretty"):
		e.Assign("pretty_print", value.Bool(true))
	case c.Bool("no-pretty"):
		e.Assign("pretty_print", value.Bool(false))
	}

	in := interp.New(e)
	if err := in.Run(program); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// dumpTokens prints the fully resolved INDENT/DEDENT/NL token stream,
// the same one the parser consumes, for debugging indentation issues.
func dumpTokens(src string) error {
	l := lexer.New(src + "\n")
	il := lexer.NewIndentLexer(l)
	for {
		t, err := il.Next()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Printf("%-10s %q\n", t.Type, t.Literal)
		if t.Type == token.EOF {
			return nil
		}
	}
}

// dumpAST prints an indented tree of the parsed program, for debugging
// the parser itself.
func dumpAST(program *ast.Block) {
	dumpStatements(program.Children, 0)
}

func dumpStatements(stmts []ast.Statement, depth int) {
	for _, s := range stmts {
		dumpStatement(s, depth)
	}
}

func dumpStatement(s ast.Statement, depth int) {
	pad := strings.Repeat("  ", depth)
	switch n := s.(type) {
	case *ast.StatementWrapper:
		fmt.Printf("%sexpr: %s\n", pad, dumpExpr(n.Expr))
	case *ast.PassStatement:
		fmt.Printf("%spass\n", pad)
	case *ast.ContinueStatement:
		fmt.Printf("%scontinue\n", pad)
	case *ast.ReturnStatement:
		fmt.Printf("%sreturn %s\n", pad, dumpExpr(n.Expr))
	case *ast.ConditionalStatement:
		fmt.Printf("%sif %s:\n", pad, dumpExpr(n.IfExpr))
		dumpStatement(n.IfBlock, depth+1)
		for i, elifExpr := range n.ElifExprs {
			fmt.Printf("%selif %s:\n", pad, dumpExpr(elifExpr))
			dumpStatement(n.ElifBlocks[i], depth+1)
		}
		if n.ElseBlock != nil {
			fmt.Printf("%selse:\n", pad)
			dumpStatement(n.ElseBlock, depth+1)
		}
	case *ast.WhileBlock:
		fmt.Printf("%swhile %s:\n", pad, dumpExpr(n.Cond))
		dumpStatements(n.Children, depth+1)
	case *ast.ForBlock:
		fmt.Printf("%sfor %s in %s:\n", pad, n.Var, dumpExpr(n.Iterable))
		dumpStatements(n.Children, depth+1)
	case *ast.ReturnBlock:
		dumpStatements(n.Children, depth)
	case *ast.Block:
		dumpStatements(n.Children, depth)
	default:
		fmt.Printf("%s<unknown statement %T>\n", pad, s)
	}
}

func dumpExpr(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return "<nil>"
	case *ast.Primitive:
		switch n.Kind {
		case ast.PrimInt:
			return fmt.Sprintf("%d", n.IntVal)
		case ast.PrimFloat:
			return fmt.Sprintf("%g", n.FloatVal)
		case ast.PrimComplex:
			return fmt.Sprintf("%gi", n.ComplexIm)
		case ast.PrimString:
			return fmt.Sprintf("%q", n.StringVal)
		case ast.PrimBool:
			return fmt.Sprintf("%t", n.BoolVal)
		default:
			return "None"
		}
	case *ast.VariableAccess:
		return n.Name
	case *ast.NestedExpression:
		return "(" + dumpExpr(n.Expr) + ")"
	case *ast.MatrixExpression:
		if n.LastOperation == nil {
			return "[]"
		}
		return "[" + dumpExpr(n.LastOperation) + "]"
	case *ast.UnitMatrixExpression:
		return dumpExpr(n.Expression)
	case *ast.MatrixOperation:
		return dumpExpr(n.Left) + n.Op + dumpExpr(n.Right)
	case *ast.UnaryOperator:
		if n.Op == "'" {
			return dumpExpr(n.Expr) + "'"
		}
		return n.Op + " " + dumpExpr(n.Expr)
	case *ast.BinaryOperator:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(n.Left), n.Op, dumpExpr(n.Right))
	case *ast.ComparisonOperator:
		return fmt.Sprintf("(%s %s %s)", dumpExpr(n.Left), n.Op, dumpExpr(n.Right))
	case *ast.TernaryOperator:
		if n.Op == "slice" {
			return fmt.Sprintf("%s:%s:%s", dumpExpr(n.First), dumpExpr(n.Second), dumpExpr(n.Third))
		}
		return fmt.Sprintf("(%s if %s else %s)", dumpExpr(n.First), dumpExpr(n.Second), dumpExpr(n.Third))
	case *ast.VariableChange:
		if n.Expr == nil {
			return fmt.Sprintf("(%s %s)", dumpExpr(n.Target), n.Op)
		}
		return fmt.Sprintf("(%s %s %s)", dumpExpr(n.Target), n.Op, dumpExpr(n.Expr))
	case *ast.FunctionCall:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = dumpExpr(a)
		}
		open := "("
		if n.Spread {
			open = ".("
		}
		return dumpExpr(n.Callee) + open + strings.Join(parts, ", ") + ")"
	case *ast.FunctionLiteral:
		prefix := "fn"
		if n.Infix {
			prefix = "infix fn"
		}
		if n.Body != nil {
			return fmt.Sprintf("%s(%s): <block>", prefix, strings.Join(n.Parameters, ", "))
		}
		return fmt.Sprintf("%s(%s): %s", prefix, strings.Join(n.Parameters, ", "), dumpExpr(n.InlineExpr))
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}
