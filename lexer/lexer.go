// Package lexer turns Huckle source text into a stream of tokens.
//
// Scanning happens in two layers, the same split the Python original
// used: a raw Lexer turns characters into tokens (numbers, strings,
// identifiers, operators, and a single NL token per logical line
// break), and the IndentLexer wrapper in indent.go turns each NL's
// leading-tab count into the INDENT/DEDENT/NL stream the parser
// actually consumes.
package lexer

import (
	"fmt"
	"strings"

	"github.com/huckle-lang/hk/token"
)

// Lexer holds our scanning state over a rune slice.
type Lexer struct {
	position     int //current character position
	readPosition int //next character position
	ch           rune
	characters   []rune

	line   int
	column int
}

// New creates a Lexer over the given source text. Callers append a
// trailing newline per spec §6.3 before scanning begins; New itself
// does not mutate input.
func New(input string) *Lexer {
	l := &Lexer{characters: []rune(input), line: 1, column: 0}
	l.readChar()
	return l
}

// read one forward character, tracking line/column for error messages.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peek character
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column}
}

// NextToken returns the next raw token, skipping spaces/tabs/comments
// that are not part of a newline's indentation count. Newlines are
// meaningful: they come back as NL tokens whose Literal carries the
// tab-indentation of the next line (see readNewline).
func (l *Lexer) NextToken() token.Token {
	l.skipSpacesAndComments()

	pos := l.pos()

	switch {
	case l.ch == rune(0):
		return token.Token{Type: token.EOF, Pos: pos}

	case l.ch == '\n':
		return l.readNewline()

	case l.ch == '"':
		return l.readString()

	case isDigit(l.ch):
		return l.readNumberLike()

	case l.ch == '-' && isDigit(l.peekChar()):
		// "-3" lexes as a single signed literal, but "3 - 4" lexes as
		// three tokens since the '-' is not adjacent to a digit there.
		return l.readNegativeNumberLike()

	case isLetter(l.ch):
		return l.readIdentifierLike()

	default:
		return l.readOperator()
	}
}

// skipSpacesAndComments consumes runs of spaces/tabs and "# ..." line
// comments. It does not consume newlines: those carry indentation
// information and are returned as tokens by readNewline.
func (l *Lexer) skipSpacesAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != rune(0) {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readNewline consumes one or more newlines -- folding away any blank
// or comment-only lines in between, the way the original's NL regex
// `\n(?:\t*(?:[#].*)?\n)*\t*` does -- and returns a single NL token
// whose Literal is the decimal count of leading tabs on the next
// substantive line.
func (l *Lexer) readNewline() token.Token {
	pos := l.pos()
	for {
		l.readChar() // consume '\n'

		tabs := 0
		for l.ch == '\t' {
			tabs++
			l.readChar()
		}

		if l.ch == '\n' {
			continue
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != rune(0) {
				l.readChar()
			}
			if l.ch == '\n' {
				continue
			}
		}
		return token.Token{Type: token.NL, Literal: fmt.Sprintf("%d", tabs), Pos: pos}
	}
}

func (l *Lexer) readString() token.Token {
	pos := l.pos()
	l.readChar() // consume opening quote
	var sb strings.Builder
	for l.ch != '"' && l.ch != rune(0) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar() // consume closing quote
	}
	return token.Token{Type: token.STRING, Literal: sb.String(), Pos: pos}
}

// readNumberLike reads a number and classifies it as NUMBER, COMPLEX
// (an immediately-following 'i' with no space, e.g. "2i"), or
// IDENT_COEFF (an immediately-following identifier, e.g. "3x").
func (l *Lexer) readNumberLike() token.Token {
	pos := l.pos()
	lit := l.readDecimal()

	if l.ch == 'i' && !isIdentifierCont(l.peekChar()) {
		l.readChar() // consume 'i'
		return token.Token{Type: token.COMPLEX, Literal: lit, Pos: pos}
	}
	if isLetter(l.ch) {
		ident := l.readIdentifierText()
		return token.Token{Type: token.IDENT_COEFF, Literal: lit + "|" + ident, Pos: pos}
	}
	return token.Token{Type: token.NUMBER, Literal: lit, Pos: pos}
}

func (l *Lexer) readNegativeNumberLike() token.Token {
	pos := l.pos()
	l.readChar() // consume '-'
	lit := "-" + l.readDecimal()

	if l.ch == 'i' && !isIdentifierCont(l.peekChar()) {
		l.readChar()
		return token.Token{Type: token.COMPLEX, Literal: lit, Pos: pos}
	}
	return token.Token{Type: token.NUMBER, Literal: lit, Pos: pos}
}

// readDecimal reads digits, and optionally a '.' followed by more
// digits, comprising a single int or float literal.
func (l *Lexer) readDecimal() string {
	var sb strings.Builder
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	return sb.String()
}

func (l *Lexer) readIdentifierText() string {
	var sb strings.Builder
	for isIdentifierCont(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == '\'' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return sb.String()
}

func (l *Lexer) readIdentifierLike() token.Token {
	pos := l.pos()
	id := l.readIdentifierText()

	switch id {
	case "True", "False":
		return token.Token{Type: token.BOOLEAN, Literal: id, Pos: pos}
	case "None":
		return token.Token{Type: token.NONE, Literal: id, Pos: pos}
	}

	return token.Token{Type: token.LookupIdentifier(id), Literal: id, Pos: pos}
}

func (l *Lexer) readOperator() token.Token {
	pos := l.pos()
	ch := l.ch
	two := string(ch) + string(l.peekChar())

	switch two {
	case token.PLUS_ASSIGN, token.PLUS_ONE, token.MINUS_ASSIGN, token.MINUS_ONE,
		token.EQ, token.NEQ, token.LTE, token.GTE, token.ELMUL, token.ELPOWER:
		l.readChar()
		l.readChar()
		return token.Token{Type: token.Type(two), Literal: two, Pos: pos}
	}

	switch ch {
	case '+', '-', '*', '/', '%', '^', '\'', '.',
		'=', '<', '>', '(', ')', '[', ']', ',', ';', ':':
		l.readChar()
		return token.Token{Type: token.Type(string(ch)), Literal: string(ch), Pos: pos}
	case rune(0):
		return token.Token{Type: token.EOF, Pos: pos}
	}

	l.readChar()
	return token.Token{Type: token.ERROR, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierCont(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}
