package lexer

import (
	"strconv"

	"github.com/huckle-lang/hk/herr"
	"github.com/huckle-lang/hk/token"
)

// IndentLexer wraps a raw Lexer and turns each NL token's indentation
// count into a proper INDENT/DEDENT/NL stream, following the stack
// algorithm from the Python original's IndentLexer: push and emit
// INDENT when a line is more indented than the current level, pop and
// emit one DEDENT per level when it is less, and fail if the new
// level doesn't match any level already on the stack.
type IndentLexer struct {
	lexer *Lexer

	indents []int
	queue   []token.Token

	eof bool
}

// NewIndentLexer wraps lexer, the lexer package's raw scanner.
func NewIndentLexer(lexer *Lexer) *IndentLexer {
	return &IndentLexer{lexer: lexer, indents: []int{0}}
}

// Next returns the next token in the fully resolved INDENT/DEDENT/NL
// stream, or an error if the indentation is inconsistent.
func (il *IndentLexer) Next() (token.Token, error) {
	if len(il.queue) > 0 {
		t := il.queue[0]
		il.queue = il.queue[1:]
		return t, nil
	}
	if il.eof {
		return token.Token{Type: token.EOF}, nil
	}

	t := il.lexer.NextToken()

	if t.Type == token.ERROR {
		return token.Token{}, herr.At(herr.Syntax, herr.Position{Line: t.Pos.Line, Column: t.Pos.Column}, "%s", t.Literal)
	}

	if t.Type == token.EOF {
		il.eof = true
		for len(il.indents) > 1 {
			il.indents = il.indents[:len(il.indents)-1]
			il.queue = append(il.queue, token.Token{Type: token.DEDENT, Pos: t.Pos})
		}
		il.indents = []int{0}
		if len(il.queue) > 0 {
			d := il.queue[0]
			il.queue = il.queue[1:]
			return d, nil
		}
		return t, nil
	}

	if t.Type != token.NL {
		return t, nil
	}

	level, err := strconv.Atoi(t.Literal)
	if err != nil {
		return token.Token{}, herr.At(herr.Indentation, herr.Position{Line: t.Pos.Line, Column: t.Pos.Column}, "invalid indentation")
	}

	top := il.indents[len(il.indents)-1]
	if level > top {
		il.indents = append(il.indents, level)
		return token.Token{Type: token.INDENT, Pos: t.Pos}, nil
	}

	for level < il.indents[len(il.indents)-1] {
		il.indents = il.indents[:len(il.indents)-1]
		il.queue = append(il.queue, token.Token{Type: token.DEDENT, Pos: t.Pos})
	}
	if level != il.indents[len(il.indents)-1] {
		return token.Token{}, herr.At(herr.Indentation, herr.Position{Line: t.Pos.Line, Column: t.Pos.Column}, "unindent does not match any outer indentation level")
	}

	// Every statement ends with at least one NL, so that a dedent
	// immediately followed by further code doesn't need a blank line.
	il.queue = append(il.queue, token.Token{Type: token.NL, Pos: t.Pos})

	first := il.queue[0]
	il.queue = il.queue[1:]
	return first, nil
}
