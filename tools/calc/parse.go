package calc

import (
	"fmt"
	"strconv"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

// maxDepth bounds nesting of parentheses and unary operators.
const maxDepth = 64

// SyntaxError describes why an expression could not be parsed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	op   byte
	num  float64
	pos  int
}

// lex splits an expression into numbers, the four operators and parentheses.
// Any other non-space character is rejected.
func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, op: c, pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case isDigit(c) || c == '.':
			start := i
			for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
				i++
			}
			n, err := strconv.ParseFloat(s[start:i], 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", s[start:i])}
			}
			toks = append(toks, token{kind: tokNumber, num: n, pos: start})
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// node is an evaluable expression tree.
type node interface {
	eval() (float64, error)
}

type number float64

func (n number) eval() (float64, error) {
	return float64(n), nil
}

type unary struct {
	op      byte
	operand node
}

func (u unary) eval() (float64, error) {
	v, err := u.operand.eval()
	if err != nil {
		return 0, err
	}
	if u.op == '-' {
		return -v, nil
	}
	return v, nil
}

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval() (float64, error) {
	l, err := b.left.eval()
	if err != nil {
		return 0, err
	}
	r, err := b.right.eval()
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		if r == 0 {
			return 0, tools.ErrDivisionByZero
		}
		return l / r, nil
	}
}

// parser is a recursive-descent parser for
//
//	expr    = term { ("+" | "-") term }
//	term    = factor { ("*" | "/") factor }
//	factor  = ("+" | "-") factor | primary
//	primary = number | "(" expr ")"
type parser struct {
	toks  []token
	pos   int
	depth int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t.kind == tokOp && (t.op == '+' || t.op == '-'); t = p.peek() {
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t.kind == tokOp && (t.op == '*' || t.op == '/'); t = p.peek() {
		p.next()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) factor() (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}

	t := p.peek()
	if t.kind == tokOp && (t.op == '+' || t.op == '-') {
		p.next()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return unary{op: t.op, operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return number(t.num), nil
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "missing closing parenthesis"}
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	case tokRParen:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected ')'"}
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected operator %q", t.op)}
	}
}

// parse builds the expression tree, rejecting anything outside the grammar.
func parse(expr string) (node, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected trailing input"}
	}
	return n, nil
}

// Eval parses and evaluates an arithmetic expression. It returns a
// *SyntaxError for malformed input and tools.ErrDivisionByZero for a zero
// divisor.
func Eval(expr string) (float64, error) {
	n, err := parse(expr)
	if err != nil {
		return 0, err
	}
	return n.eval()
}
