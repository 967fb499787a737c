package expr

import (
	"fmt"
)

const (
	precTernary = 1
	precOr      = 2
	precAnd     = 3
	precEqual   = 4
	precCompare = 5
	precAdd     = 6
	precMul     = 7
)

func binaryPrec(t token) int {
	if t.kind != tPunct {
		return 0
	}
	switch t.text {
	case "||":
		return precOr
	case "&&":
		return precAnd
	case "==", "!=", "===", "!==":
		return precEqual
	case "<", "<=", ">", ">=":
		return precCompare
	case "+", "-":
		return precAdd
	case "*", "/", "%":
		return precMul
	}
	return 0
}

// parser maintains the token stream of a single source string.
type parser struct {
	src  string
	toks []token
	i    int
}

func newParser(src string) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tEOF {
		p.i++
	}
	return t
}

// lastEnd is the end offset of the most recently consumed token.
func (p *parser) lastEnd() int {
	if p.i == 0 {
		return 0
	}
	return p.toks[p.i-1].end
}

func (p *parser) expect(punct string) error {
	t := p.next()
	if !t.is(punct) {
		return fmt.Errorf("expected %q at offset %d, got %s", punct, t.pos, t)
	}
	return nil
}

func (p *parser) done() error {
	if t := p.peek(); t.kind != tEOF {
		return fmt.Errorf("unexpected %s at offset %d", t, t.pos)
	}
	return nil
}

func (p *parser) parseExpr(minPrec int) (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.is("?") && minPrec <= precTernary {
			p.next()
			then, err := p.parseExpr(precTernary)
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			otherwise, err := p.parseExpr(precTernary)
			if err != nil {
				return nil, err
			}
			left = &condNode{cond: left, then: then, otherwise: otherwise}
			continue
		}
		prec := binaryPrec(t)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if t := p.peek(); t.is("!") || t.is("-") || t.is("+") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: t.text, x: x}, nil
	}
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(x)
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tNumber, tString:
		return &literalNode{value: t.value, text: t.text}, nil
	case tIdent:
		switch t.text {
		case "true":
			return &literalNode{value: true, text: t.text}, nil
		case "false":
			return &literalNode{value: false, text: t.text}, nil
		case "null", "undefined":
			return &literalNode{value: nil, text: t.text}, nil
		}
		return &identNode{name: t.text}, nil
	case tPunct:
		switch t.text {
		case "(":
			x, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return &parenNode{x: x}, nil
		case "{":
			fields, err := p.parseFields("}")
			if err != nil {
				return nil, err
			}
			return &objectNode{fields: fields}, nil
		case "[":
			return p.parseArray()
		}
	}
	return nil, fmt.Errorf("unexpected %s at offset %d", t, t.pos)
}

func (p *parser) parsePostfix(x node) (node, error) {
	for {
		t := p.peek()
		switch {
		case t.is("."):
			p.next()
			name := p.next()
			if name.kind != tIdent {
				return nil, fmt.Errorf("expected member name at offset %d, got %s", name.pos, name)
			}
			x = &memberNode{x: x, name: name.text}
		case t.is("["):
			p.next()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &indexNode{x: x, index: idx}
		case t.is("("):
			p.next()
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}
			x = &callNode{fn: x, args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseList(end string) ([]node, error) {
	var items []node
	if p.peek().is(end) {
		p.next()
		return items, nil
	}
	for {
		item, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		t := p.next()
		if t.is(end) {
			return items, nil
		}
		if !t.is(",") {
			return nil, fmt.Errorf("expected \",\" or %q at offset %d, got %s", end, t.pos, t)
		}
	}
}

func (p *parser) parseArray() (node, error) {
	items, err := p.parseList("]")
	if err != nil {
		return nil, err
	}
	return &arrayNode{items: items}, nil
}

type field struct {
	key string
	x   node
	// src is the source text of x.
	src string
}

// parseFields parses `key: expr` pairs separated by commas up to end. An
// empty end parses up to the end of input, which is the form of a binding
// declaration. A trailing comma is allowed.
func (p *parser) parseFields(end string) ([]field, error) {
	var fields []field
	seen := map[string]bool{}
	atEnd := func() bool {
		t := p.peek()
		if end == "" {
			return t.kind == tEOF
		}
		return t.is(end)
	}
	for {
		if atEnd() {
			p.next()
			return fields, nil
		}
		k := p.next()
		var key string
		switch k.kind {
		case tIdent:
			key = k.text
		case tString:
			key = k.value.(string)
		case tNumber:
			key = k.text
		default:
			return nil, fmt.Errorf("expected key at offset %d, got %s", k.pos, k)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate key %q at offset %d", key, k.pos)
		}
		seen[key] = true
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		start := p.peek().pos
		x, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, x: x, src: p.src[start:p.lastEnd()]})

		if atEnd() {
			continue
		}
		if t := p.next(); !t.is(",") {
			return nil, fmt.Errorf("expected \",\" at offset %d, got %s", t.pos, t)
		}
	}
}
