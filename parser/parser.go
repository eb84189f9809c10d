// Package parser turns a Huckle token stream into the ast tree interp
// walks. It is a hand-written precedence-climbing recursive-descent
// parser, matching spec §6.1's note that "the surface grammar as
// presented to a generator tool" is explicitly non-normative: only
// the accepted language is. Grounded on original_source/parser.py's
// precedence table and grammar actions for exact precedence levels
// and node-construction rules, and on the two-token-lookahead,
// prefix/infix-table shape "Writing An Interpreter In Go" uses (the
// same style interp's Eval/Walk split already follows).
package parser

import (
	"strconv"
	"strings"

	"github.com/huckle-lang/hk/ast"
	"github.com/huckle-lang/hk/herr"
	"github.com/huckle-lang/hk/lexer"
	"github.com/huckle-lang/hk/token"
)

// Precedence levels, low to high, per spec §4.4: "SEMI, COMMA,
// assignment family, if/else (ternary), AND, OR, unary NOT, nonassoc
// in, comparisons, +/-, * .* / %, ^ .^, unary minus and transpose ',
// then ( and [ for call/index." Identifier infix calls bind between
// assignment and if, per the same section.
const (
	LOWEST = iota * 10
	ASSIGN
	INFIXCALL
	TERNARY
	ANDPREC
	ORPREC
	NOTPREC
	INPREC
	COMPARE
	ADD
	MUL
	POW
	UNARY
	CALL
)

var precedences = map[token.Type]int{
	token.ASSIGN:       ASSIGN,
	token.PLUS_ASSIGN:  ASSIGN,
	token.MINUS_ASSIGN: ASSIGN,
	token.PLUS_ONE:     ASSIGN,
	token.MINUS_ONE:    ASSIGN,
	token.IDENT:        INFIXCALL,
	token.IF:           TERNARY,
	token.AND:          ANDPREC,
	token.OR:           ORPREC,
	token.IN:           INPREC,
	token.EQ:           COMPARE,
	token.NEQ:          COMPARE,
	token.LT:           COMPARE,
	token.LTE:          COMPARE,
	token.GT:           COMPARE,
	token.GTE:          COMPARE,
	token.PLUS:         ADD,
	token.MINUS:        ADD,
	token.ASTERISK:     MUL,
	token.ELMUL:        MUL,
	token.SLASH:        MUL,
	token.MOD:          MUL,
	token.POWER:        POW,
	token.ELPOWER:      POW,
	token.QUOTE:        UNARY,
	token.LPAREN:       CALL,
	token.LBRACKET:     CALL,
	token.DOT:          CALL,
}

// Parser holds two-token lookahead over an IndentLexer, the same
// layout the lexer package's tests already exercise against the raw
// token stream.
type Parser struct {
	il   *lexer.IndentLexer
	cur  token.Token
	peek token.Token

	prefixFns map[token.Type]func() (ast.Expression, error)
	infixFns  map[token.Type]func(ast.Expression) (ast.Expression, error)
}

// New builds a Parser over il, priming the two-token lookahead.
func New(il *lexer.IndentLexer) (*Parser, error) {
	p := &Parser{il: il}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.registerTables()
	return p, nil
}

// Parse lexes and parses a complete Huckle source file into a
// top-level Block, per spec §6.3: a trailing newline is appended
// before lexing so the final statement always terminates cleanly.
func Parse(src string) (*ast.Block, error) {
	l := lexer.New(src + "\n")
	il := lexer.NewIndentLexer(l)
	p, err := New(il)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.il.Next()
	if err != nil {
		return err
	}
	p.cur = p.peek
	p.peek = tok
	return nil
}

func pos(t token.Token) ast.Position {
	return ast.Position{Line: t.Pos.Line, Column: t.Pos.Column}
}

func hpos(t token.Token) herr.Position {
	return herr.Position{Line: t.Pos.Line, Column: t.Pos.Column}
}

func (p *Parser) syntaxErrorf(format string, args ...any) error {
	return herr.At(herr.Syntax, hpos(p.cur), format, args...)
}

// expect requires the current token be tt, consuming it, or reports a
// Syntax error naming what was found instead.
func (p *Parser) expect(tt token.Type) error {
	if p.cur.Type != tt {
		return p.syntaxErrorf("expected %s, found %s %q", tt, p.cur.Type, p.cur.Literal)
	}
	return p.advance()
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) registerTables() {
	p.prefixFns = map[token.Type]func() (ast.Expression, error){
		token.NUMBER:      p.parseNumber,
		token.COMPLEX:     p.parseComplex,
		token.BOOLEAN:     p.parseBoolean,
		token.STRING:      p.parseString,
		token.NONE:        p.parseNone,
		token.IDENT:       p.parseIdentifier,
		token.IDENT_COEFF: p.parseIdentCoeff,
		token.LPAREN:      p.parseGrouped,
		token.LBRACKET:    p.parseMatrixLiteral,
		token.MINUS:       p.parseUnaryMinus,
		token.NOT:         p.parseNot,
		token.DEL:         p.parseDel,
		token.FN:          p.parseFunctionLiteralPrefix,
		token.INFIX:       p.parseInfixFunctionLiteral,
	}
	p.infixFns = map[token.Type]func(ast.Expression) (ast.Expression, error){
		token.ASSIGN:       p.parseAssign,
		token.PLUS_ASSIGN:  p.parseAssign,
		token.MINUS_ASSIGN: p.parseAssign,
		token.PLUS_ONE:     p.parseIncDec,
		token.MINUS_ONE:    p.parseIncDec,
		token.IDENT:        p.parseInfixIdentCall,
		token.IF:           p.parseIfExpr,
		token.AND:          p.parseBinary,
		token.OR:           p.parseBinary,
		token.IN:           p.parseBinary,
		token.EQ:           p.parseComparison,
		token.NEQ:          p.parseComparison,
		token.LT:           p.parseComparison,
		token.LTE:          p.parseComparison,
		token.GT:           p.parseComparison,
		token.GTE:          p.parseComparison,
		token.PLUS:         p.parseBinary,
		token.MINUS:        p.parseBinary,
		token.ASTERISK:     p.parseBinary,
		token.ELMUL:        p.parseBinary,
		token.SLASH:        p.parseBinary,
		token.MOD:          p.parseBinary,
		token.POWER:        p.parseBinary,
		token.ELPOWER:      p.parseBinary,
		token.QUOTE:        p.parseTranspose,
		token.LPAREN:       p.parseCallInfix,
		token.LBRACKET:     p.parseIndexInfix,
		token.DOT:          p.parseSpreadCallInfix,
	}
}

// ---- Program / statements -------------------------------------------------

// ParseProgram parses a whole source file into a top-level Block,
// per spec §4.4: "Program is a Block of Statements."
func (p *Parser) ParseProgram() (*ast.Block, error) {
	var stmts []ast.Statement
	for p.cur.Type != token.EOF {
		if p.cur.Type == token.NL {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.cur.Type == token.NL {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	b := &ast.Block{}
	b.SetChildren(stmts)
	return b, nil
}

// parseSuite parses a "COLON INDENT statement* DEDENT" block body,
// consuming through the closing DEDENT, for while/for/if branches.
// The lexer's IndentLexer emits INDENT directly on an indentation
// increase -- no NL token sits between COLON and INDENT.
func (p *Parser) parseSuite() ([]ast.Statement, error) {
	if err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if err := p.expect(token.INDENT); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.cur.Type == token.NL {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(token.DEDENT); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Type {
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.IF:
		return p.parseConditional()
	case token.CONTINUE:
		t := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Pos: pos(t)}, nil
	case token.PASS:
		t := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.PassStatement{Pos: pos(t)}, nil
	case token.RETURN:
		t := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Pos: pos(t), Expr: expr}, nil
	default:
		t := p.cur
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		return &ast.StatementWrapper{Pos: pos(t), Expr: expr}, nil
	}
}

// parseWhile wraps the WhileBlock in a ConditionalStatement testing
// the same condition expression, per ast/stmt.go's ConditionalStatement
// doc comment: WhileBlock's own re-entry (takeNextWhile) re-checks Cond
// before every iteration after the first, but Walk's *WhileBlock case
// enters the body unconditionally -- the wrapper is what checks Cond
// before the loop's first entry.
func (p *Parser) parseWhile() (ast.Statement, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	wb := &ast.WhileBlock{Cond: cond}
	wb.Pos = pos(t)
	stmts, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	wb.SetChildren(stmts)
	return ast.NewConditionalStatement(pos(t), cond, wb), nil
}

func (p *Parser) parseFor() (ast.Statement, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != token.IDENT {
		return nil, p.syntaxErrorf("expected identifier after for, found %s %q", p.cur.Type, p.cur.Literal)
	}
	id := p.cur.Literal
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	fb := &ast.ForBlock{Var: id, Iterable: iterable}
	fb.Pos = pos(t)
	stmts, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	fb.SetChildren(stmts)
	return fb, nil
}

func (p *Parser) parseConditional() (ast.Statement, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	ifExpr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	ifStmts, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	ifBlock := &ast.Block{}
	ifBlock.SetChildren(ifStmts)
	cs := ast.NewConditionalStatement(pos(t), ifExpr, ifBlock)

	// A suite closes with DEDENT followed by an NL; an elif/else clause
	// starts right after that NL.
	atClause := func(tt token.Type) (bool, error) {
		if p.cur.Type == token.NL && p.peek.Type == tt {
			if err := p.advance(); err != nil {
				return false, err
			}
		}
		return p.cur.Type == tt, nil
	}

	for {
		ok, err := atClause(token.ELIF)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		elifExpr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elifStmts, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		elifBlock := &ast.Block{}
		elifBlock.SetChildren(elifStmts)
		cs.AddElif(elifExpr, elifBlock)
	}
	if ok, err := atClause(token.ELSE); err != nil {
		return nil, err
	} else if ok {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseStmts, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		elseBlock := &ast.Block{}
		elseBlock.SetChildren(elseStmts)
		cs.SetElse(elseBlock)
	}
	return cs, nil
}

// ---- Expressions -----------------------------------------------------------

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, p.syntaxErrorf("unexpected token %s %q in expression", p.cur.Type, p.cur.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}
	for precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseArgument parses either a plain expression or a colon-separated
// slice literal (spec §4.4). It serves call arguments, parenthesised
// expressions and matrix elements.
func (p *Parser) parseArgument() (ast.Expression, error) {
	if p.cur.Type == token.COLON {
		return p.parseSlice(nil)
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type == token.COLON {
		return p.parseSlice(expr)
	}
	return expr, nil
}

func (p *Parser) atArgBoundary() bool {
	switch p.cur.Type {
	case token.COLON, token.COMMA, token.RBRACKET, token.RPAREN, token.SEMI, token.NL, token.EOF:
		return true
	}
	return false
}

func nonePrimitive() ast.Expression {
	return &ast.Primitive{Kind: ast.PrimNone}
}

func (p *Parser) parseSlice(first ast.Expression) (ast.Expression, error) {
	t := p.cur
	parts := make([]ast.Expression, 0, 3)
	if first == nil {
		parts = append(parts, nonePrimitive())
	} else {
		parts = append(parts, first)
	}
	for p.cur.Type == token.COLON && len(parts) < 3 {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.atArgBoundary() {
			parts = append(parts, nonePrimitive())
			continue
		}
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
	}
	for len(parts) < 3 {
		parts = append(parts, nonePrimitive())
	}
	return &ast.TernaryOperator{Pos: pos(t), Op: "slice", First: parts[0], Second: parts[1], Third: parts[2]}, nil
}

func (p *Parser) parseNumber() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return parseNumberLiteral(t)
}

func parseNumberLiteral(t token.Token) (ast.Expression, error) {
	if strings.Contains(t.Literal, ".") {
		f, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, herr.At(herr.Syntax, hpos(t), "invalid float literal %q", t.Literal)
		}
		return &ast.Primitive{Pos: pos(t), Kind: ast.PrimFloat, FloatVal: f}, nil
	}
	i, err := strconv.ParseInt(t.Literal, 10, 64)
	if err != nil {
		return nil, herr.At(herr.Syntax, hpos(t), "invalid integer literal %q", t.Literal)
	}
	return &ast.Primitive{Pos: pos(t), Kind: ast.PrimInt, IntVal: i}, nil
}

func (p *Parser) parseComplex() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	im, err := strconv.ParseFloat(t.Literal, 64)
	if err != nil {
		return nil, herr.At(herr.Syntax, hpos(t), "invalid complex literal %qi", t.Literal)
	}
	return &ast.Primitive{Pos: pos(t), Kind: ast.PrimComplex, ComplexIm: im}, nil
}

func (p *Parser) parseBoolean() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Primitive{Pos: pos(t), Kind: ast.PrimBool, BoolVal: t.Literal == "True"}, nil
}

func (p *Parser) parseString() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Primitive{Pos: pos(t), Kind: ast.PrimString, StringVal: t.Literal}, nil
}

func (p *Parser) parseNone() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Primitive{Pos: pos(t), Kind: ast.PrimNone}, nil
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.VariableAccess{Pos: pos(t), Name: t.Literal}, nil
}

// parseIdentCoeff implements the §4.3/SPEC_FULL "3x" -> (3, "x")
// coefficient form, folded into a multiplication at parse time, per
// original_source/parser.py's p_id_and_coefficient.
func (p *Parser) parseIdentCoeff() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	parts := strings.SplitN(t.Literal, "|", 2)
	numTok := token.Token{Type: token.NUMBER, Literal: parts[0], Pos: t.Pos}
	num, err := parseNumberLiteral(numTok)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOperator{
		Pos:         pos(t),
		Left:        num,
		Op:          "*",
		Right:       &ast.VariableAccess{Pos: pos(t), Name: parts[1]},
		Commutative: true,
	}, nil
}

func (p *Parser) parseGrouped() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	inner, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.NestedExpression{Pos: pos(t), Expr: inner}, nil
}

// parseMatrixLiteral parses `[ ... ]`, per spec §4.5: elements
// separated by "," (new column) or ";" (new row). "," binds tighter
// than ";" (per §4.4's precedence list, SEMI below COMMA), so a row
// of comma-joined elements is parsed as a unit before rows themselves
// are chained by ";" -- otherwise "[1,2;3,4]" would group as
// "((1,2);3),4" instead of the intended two 1x2 rows.
func (p *Parser) parseMatrixLiteral() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type == token.RBRACKET {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.MatrixExpression{Pos: pos(t)}, nil
	}
	result, err := p.parseMatrixRow()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == token.SEMI {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMatrixRow()
		if err != nil {
			return nil, err
		}
		result = &ast.MatrixOperation{Pos: pos(opTok), Left: result, Op: ";", Right: right}
	}
	if err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.MatrixExpression{Pos: pos(t), LastOperation: result}, nil
}

// parseMatrixRow parses a single "," joined row of a matrix literal.
func (p *Parser) parseMatrixRow() (ast.Expression, error) {
	startTok := p.cur
	first, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	var result ast.Expression = &ast.UnitMatrixExpression{Pos: pos(startTok), Expression: first}
	for p.cur.Type == token.COMMA {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		rightOperand, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		right := &ast.UnitMatrixExpression{Pos: pos(opTok), Expression: rightOperand}
		result = &ast.MatrixOperation{Pos: pos(opTok), Left: result, Op: ",", Right: right}
	}
	return result, nil
}

func (p *Parser) parseUnaryMinus() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryOperator{Pos: pos(t), Op: "-", Expr: operand}, nil
}

func (p *Parser) parseNot() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression(NOTPREC)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryOperator{Pos: pos(t), Op: "not", Expr: operand}, nil
}

func (p *Parser) parseDel() (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.parseExpression(INFIXCALL)
	if err != nil {
		return nil, err
	}
	return &ast.VariableChange{Pos: pos(t), Target: target, Op: "del"}, nil
}

// parseFunctionLiteralPrefix handles a non-infix `fn ...` expression.
func (p *Parser) parseFunctionLiteralPrefix() (ast.Expression, error) {
	return p.parseFunctionLiteral(false)
}

// parseInfixFunctionLiteral handles `infix fn ...`, per spec §4.4.
func (p *Parser) parseInfixFunctionLiteral() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume "infix"
		return nil, err
	}
	if p.cur.Type != token.FN {
		return nil, p.syntaxErrorf("expected fn after infix, found %s %q", p.cur.Type, p.cur.Literal)
	}
	return p.parseFunctionLiteral(true)
}

// parseFunctionLiteral parses a function literal body after (but not
// including) an optional leading "infix": `fn params? : body`, per
// spec §4.4: "Function definitions take either a single-ID or comma
// list of IDs in parentheses, and a body block OR an inline
// expression."
func (p *Parser) parseFunctionLiteral(infix bool) (ast.Expression, error) {
	t := p.cur // "fn"
	if err := p.advance(); err != nil {
		return nil, err
	}
	var params []string
	switch p.cur.Type {
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type != token.RPAREN {
			for {
				if p.cur.Type != token.IDENT {
					return nil, p.syntaxErrorf("expected parameter name, found %s %q", p.cur.Type, p.cur.Literal)
				}
				params = append(params, p.cur.Literal)
				if err := p.advance(); err != nil {
					return nil, err
				}
				if p.cur.Type == token.COMMA {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	case token.IDENT:
		params = append(params, p.cur.Literal)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if p.cur.Type == token.INDENT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var stmts []ast.Statement
		for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
			if p.cur.Type == token.NL {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.expect(token.DEDENT); err != nil {
			return nil, err
		}
		rb := &ast.ReturnBlock{}
		rb.SetChildren(stmts)
		return &ast.FunctionLiteral{Pos: pos(t), Parameters: params, Body: rb, Infix: infix}, nil
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{Pos: pos(t), Parameters: params, InlineExpr: expr, Infix: infix}, nil
}

// ---- Infix parse functions --------------------------------------------------

func (p *Parser) parseAssign(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	op := string(t.Type)
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(ASSIGN - 1) // right-associative
	if err != nil {
		return nil, err
	}
	return &ast.VariableChange{Pos: pos(t), Target: left, Op: op, Expr: right}, nil
}

func (p *Parser) parseIncDec(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	op := string(t.Type)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.VariableChange{Pos: pos(t), Target: left, Op: op}, nil
}

// parseInfixIdentCall implements `a name b` infix calls and their
// spread variant `a name. b`, per spec §4.5 and the SPEC_FULL
// supplemented spread-infix form.
func (p *Parser) parseInfixIdentCall(left ast.Expression) (ast.Expression, error) {
	nameTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	spread := false
	if p.cur.Type == token.DOT {
		spread = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	right, err := p.parseExpression(INFIXCALL)
	if err != nil {
		return nil, err
	}
	callee := &ast.VariableAccess{
		Pos:          pos(nameTok),
		Name:         nameTok.Literal,
		PostCond:     ast.PostConditionInfix,
		ErrorMessage: "This function is not an infix function",
	}
	return &ast.FunctionCall{Pos: pos(nameTok), Callee: callee, Args: []ast.Expression{left, right}, Spread: spread}, nil
}

// commutativeFor reports whether op is eligible for the commutative
// retry of spec §4.1: "all arithmetic/logical except %, if, in."
func commutativeFor(tt token.Type) bool {
	switch tt {
	case token.MOD, token.IF, token.IN:
		return false
	default:
		return true
	}
}

func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	prec := precedences[t.Type]
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOperator{Pos: pos(t), Left: left, Op: t.Literal, Right: right, Commutative: commutativeFor(t.Type)}, nil
}

func (p *Parser) parseComparison(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(COMPARE)
	if err != nil {
		return nil, err
	}
	return &ast.ComparisonOperator{Pos: pos(t), Left: left, Op: t.Literal, Right: right}, nil
}

// parseIfExpr implements both `left if cond` (spec §4.5: "evaluates
// right and returns left if truthy else None") and the full ternary
// `left if cond else other`, distinguished by a trailing ELSE.
func (p *Parser) parseIfExpr(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(TERNARY)
	if err != nil {
		return nil, err
	}
	if p.cur.Type == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseExpr, err := p.parseExpression(TERNARY - 1)
		if err != nil {
			return nil, err
		}
		return &ast.TernaryOperator{Pos: pos(t), Op: "conditional", First: left, Second: cond, Third: elseExpr}, nil
	}
	return &ast.BinaryOperator{Pos: pos(t), Left: left, Op: "if", Right: cond, Commutative: false}, nil
}

func (p *Parser) parseTranspose(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.UnaryOperator{Pos: pos(t), Op: "'", Expr: left}, nil
}

// parseCallArgs parses a comma-separated argument list up to (and
// consuming) closeType, assuming the opening delimiter was already
// consumed by the caller.
func (p *Parser) parseCallArgs(closeType token.Type) ([]ast.Expression, error) {
	var args []ast.Expression
	if p.cur.Type != closeType {
		for {
			arg, err := p.parseArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type == token.COMMA {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if err := p.expect(closeType); err != nil {
		return nil, err
	}
	return args, nil
}

// parseCallInfix and parseIndexInfix both produce FunctionCall nodes:
// spec §4.1 treats "invoking a Matrix as a function" and "indexing
// with m[i]" as the same dispatch, so the surface syntax difference
// (parens vs brackets) doesn't need a distinct node.
func (p *Parser) parseCallInfix(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.parseCallArgs(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Pos: pos(t), Callee: left, Args: args}, nil
}

func (p *Parser) parseIndexInfix(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.parseCallArgs(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Pos: pos(t), Callee: left, Args: args}, nil
}

// parseSpreadCallInfix implements `f.(x, y)`, per spec §4.5's spread
// call.
func (p *Parser) parseSpreadCallInfix(left ast.Expression) (ast.Expression, error) {
	t := p.cur
	if err := p.advance(); err != nil { // consume "."
		return nil, err
	}
	if p.cur.Type != token.LPAREN {
		return nil, p.syntaxErrorf("expected ( after . for spread call, found %s %q", p.cur.Type, p.cur.Literal)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.parseCallArgs(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Pos: pos(t), Callee: left, Args: args, Spread: true}, nil
}
