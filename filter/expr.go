package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"adsift/directory"
)

// errFieldMissing aborts an evaluation when a compared field is absent
// from the record. The predicate swallows it into "does not match";
// every other evaluation fault is fatal.
var errFieldMissing = errors.New("field not present")

// node is one evaluable element of a parsed expression tree.
type node interface {
	eval(*directory.Record) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(r *directory.Record) (bool, error) {
	ok, err := n.left.eval(r)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(r)
}

type andNode struct{ left, right node }

func (n andNode) eval(r *directory.Record) (bool, error) {
	ok, err := n.left.eval(r)
	if err != nil || !ok {
		return ok, err
	}
	return n.right.eval(r)
}

type notNode struct{ child node }

func (n notNode) eval(r *directory.Record) (bool, error) {
	ok, err := n.child.eval(r)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// presenceNode is a bare field name: true when the record carries the
// field at all.
type presenceNode struct{ field string }

func (n presenceNode) eval(r *directory.Record) (bool, error) {
	return r.Has(n.field), nil
}

type cmpOp int

const (
	opEq cmpOp = iota
	opNe
	opGT
	opGE
	opLT
	opLE
)

type cmpNode struct {
	field string
	op    cmpOp
	lit   string
}

// eval compares the literal against every element of the field's value.
// == holds when any element matches; != holds when none does. Ordering
// operators hold when any element satisfies them.
func (n cmpNode) eval(r *directory.Record) (bool, error) {
	v, ok := r.Get(n.field)
	if !ok {
		return false, fmt.Errorf("%w: %s", errFieldMissing, n.field)
	}
	switch n.op {
	case opEq:
		return anyElem(v, func(e string) bool { return looseEqual(e, n.lit) }), nil
	case opNe:
		return !anyElem(v, func(e string) bool { return looseEqual(e, n.lit) }), nil
	default:
		return anyElem(v, func(e string) bool { return looseOrdered(e, n.lit, n.op) }), nil
	}
}

type matchNode struct {
	field string
	re    *regexp.Regexp
}

func (n matchNode) eval(r *directory.Record) (bool, error) {
	v, ok := r.Get(n.field)
	if !ok {
		return false, fmt.Errorf("%w: %s", errFieldMissing, n.field)
	}
	return anyElem(v, n.re.MatchString), nil
}

func anyElem(v directory.Value, match func(string) bool) bool {
	for _, e := range v.Strings() {
		if match(e) {
			return true
		}
	}
	return false
}

// looseEqual compares numerically when both sides parse as numbers and
// case-insensitively as strings otherwise.
func looseEqual(a, b string) bool {
	if c, ok := compareNumeric(a, b); ok {
		return c == 0
	}
	return strings.EqualFold(a, b)
}

func looseOrdered(a, b string, op cmpOp) bool {
	c, ok := compareNumeric(a, b)
	if !ok {
		c = strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
	switch op {
	case opGT:
		return c > 0
	case opGE:
		return c >= 0
	case opLT:
		return c < 0
	case opLE:
		return c <= 0
	}
	return false
}

// compareNumeric orders a and b as numbers when both parse. int64 is
// tried first so 18-digit timestamps keep full precision.
func compareNumeric(a, b string) (int, bool) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1, true
		case ai > bi:
			return 1, true
		}
		return 0, true
	}
	af, aerr2 := strconv.ParseFloat(a, 64)
	bf, berr2 := strconv.ParseFloat(b, 64)
	if aerr2 != nil || berr2 != nil {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() token {
	return p.toks[p.pos]
}

func (p *exprParser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func parseExpression(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
	}
	return n, nil
}

func (p *exprParser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.advance()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("missing ')' at offset %d", p.peek().pos)
		}
		p.advance()
		return n, nil
	case tokIdent:
		return p.parseComparison()
	}
	return nil, fmt.Errorf("unexpected %q at offset %d", t.text, t.pos)
}

func (p *exprParser) parseComparison() (node, error) {
	field := p.advance().text
	var op cmpOp
	switch p.peek().kind {
	case tokEq:
		op = opEq
	case tokNe:
		op = opNe
	case tokGT:
		op = opGT
	case tokGE:
		op = opGE
	case tokLT:
		op = opLT
	case tokLE:
		op = opLE
	case tokMatch:
		p.advance()
		lit, err := p.literal()
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("(?i)^(?:" + lit + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", lit, err)
		}
		return matchNode{field: field, re: re}, nil
	default:
		return presenceNode{field: field}, nil
	}
	p.advance()
	lit, err := p.literal()
	if err != nil {
		return nil, err
	}
	return cmpNode{field: field, op: op, lit: lit}, nil
}

// literal accepts a quoted string, a number, or a bare word as the
// right-hand side of a comparison.
func (p *exprParser) literal() (string, error) {
	t := p.peek()
	switch t.kind {
	case tokString, tokNumber, tokIdent:
		p.advance()
		return t.text, nil
	}
	return "", fmt.Errorf("expected a value at offset %d, found %q", t.pos, t.text)
}

type exprPredicate struct {
	src  string
	tree node
}

// NewExpr compiles a boolean expression over record fields. The grammar
// covers comparisons (== != =~ > >= < <=), the combinators &&/and,
// ||/or and !/not, parentheses, and bare field names as presence tests.
// =~ patterns are anchored at the start of the value and matched
// case-insensitively. Malformed expressions fail here, before any
// record is read.
func NewExpr(src string) (Predicate, error) {
	tree, err := parseExpression(src)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	return exprPredicate{src: src, tree: tree}, nil
}

// Match evaluates the expression with short-circuiting. A comparison
// against a field the record lacks aborts the evaluation as a
// non-match rather than an error.
func (p exprPredicate) Match(r *directory.Record) (bool, error) {
	ok, err := p.tree.eval(r)
	if err != nil {
		if errors.Is(err, errFieldMissing) {
			return false, nil
		}
		return false, fmt.Errorf("expression %q: %w", p.src, err)
	}
	return ok, nil
}
