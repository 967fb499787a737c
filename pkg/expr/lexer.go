package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tIdent
	tNumber
	tString
	tPunct
)

type token struct {
	kind tokenKind
	text string
	// value holds the decoded literal of number and string tokens.
	value    any
	pos, end int
}

func (t token) is(punct string) bool {
	return t.kind == tPunct && t.text == punct
}

func (t token) String() string {
	if t.kind == tEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

// longest first
var puncts = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||",
	".", "[", "]", "(", ")", "{", "}", ",", ":", "?", "!",
	"+", "-", "*", "/", "%", "<", ">",
}

// lexer splits a source string into tokens.
//
// NOTE: src is assumed to be valid UTF-8.
type lexer struct {
	src string
	pos int
}

const eof rune = -1

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) next() rune {
	if lx.pos >= len(lx.src) {
		return eof
	}
	r, s := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += s
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	var toks []token
	for {
		tok, err := lx.token()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tEOF {
			return toks, nil
		}
	}
}

func (lx *lexer) token() (token, error) {
	for unicode.IsSpace(lx.peek()) {
		lx.next()
	}
	start := lx.pos
	r := lx.peek()
	switch {
	case r == eof:
		return token{kind: tEOF, pos: start, end: start}, nil
	case isIdentStart(r):
		for isIdentPart(lx.peek()) {
			lx.next()
		}
		return token{kind: tIdent, text: lx.src[start:lx.pos], pos: start, end: lx.pos}, nil
	case unicode.IsDigit(r) || (r == '.' && lx.digitAfterDot()):
		return lx.number(start)
	case r == '\'' || r == '"':
		return lx.quoted(start)
	}
	for _, p := range puncts {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			return token{kind: tPunct, text: p, pos: start, end: lx.pos}, nil
		}
	}
	return token{}, fmt.Errorf("unexpected character %q at offset %d", r, start)
}

func (lx *lexer) digitAfterDot() bool {
	if lx.pos+1 >= len(lx.src) {
		return false
	}
	c := lx.src[lx.pos+1]
	return c >= '0' && c <= '9'
}

func (lx *lexer) number(start int) (token, error) {
	isFloat := false
	for unicode.IsDigit(lx.peek()) {
		lx.next()
	}
	if lx.peek() == '.' && lx.digitAfterDot() {
		isFloat = true
		lx.next()
		for unicode.IsDigit(lx.peek()) {
			lx.next()
		}
	}
	if r := lx.peek(); r == 'e' || r == 'E' {
		isFloat = true
		lx.next()
		if r := lx.peek(); r == '+' || r == '-' {
			lx.next()
		}
		for unicode.IsDigit(lx.peek()) {
			lx.next()
		}
	}
	text := lx.src[start:lx.pos]
	tok := token{kind: tNumber, text: text, pos: start, end: lx.pos}
	if !isFloat {
		if i, err := strconv.Atoi(text); err == nil {
			tok.value = i
			return tok, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("invalid number %q at offset %d", text, start)
	}
	tok.value = f
	return tok, nil
}

func (lx *lexer) quoted(start int) (token, error) {
	quote := lx.next()
	var sb strings.Builder
	for {
		r := lx.next()
		switch r {
		case eof:
			return token{}, fmt.Errorf("unterminated string starting at offset %d", start)
		case quote:
			return token{kind: tString, text: lx.src[start:lx.pos], value: sb.String(), pos: start, end: lx.pos}, nil
		case '\\':
			esc := lx.next()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case eof:
				return token{}, fmt.Errorf("unterminated string starting at offset %d", start)
			default:
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}
