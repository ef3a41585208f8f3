package expr

import (
	"strconv"

	"github.com/wireflow/wireflow/value"
)

// Binding powers (spec.md §4.B Parser): unary '-' is 3, group '(' is
// 0, '+'/'-' are 1 (left-assoc), '*'/'/' are 2 (left-assoc), call '('
// is 4 — the highest, so a call binds tighter than any arithmetic
// operator to its left.
const (
	bpNone   = 0
	bpSum    = 1
	bpProd   = 2
	bpUnary  = 3
	bpCall   = 4
)

func infixBindingPower(k tokenKind) int {
	switch k {
	case tokPlus, tokMinus:
		return bpSum
	case tokStar, tokSlash:
		return bpProd
	case tokLParen:
		return bpCall
	default:
		return bpNone
	}
}

// parser implements a Pratt expression parser over the grammar in
// spec.md §4.B: integer literals, identifiers, unary '-', infix
// '+ - * /', parenthesized groups, and call expressions.
type parser struct {
	lex  *lexer
	cur  token
	errs []error
}

func newParser(src string) *parser {
	p := &parser{lex: newLexer(src)}
	p.advance()
	return p
}

func (p *parser) advance() { p.cur = p.lex.next() }

func (p *parser) fail(err *CompileError) {
	p.errs = append(p.errs, err)
}

// parse parses a complete expression and returns its AST root. An
// empty input, an unexpected token, an unbalanced paren, or trailing
// garbage after a complete expression all fail (spec.md §4.B).
func parse(src string) (*node, error) {
	p := newParser(src)
	if p.cur.kind == tokEOF {
		return nil, newErr(ErrEmptyInput, 0, "empty expression")
	}
	n := p.parseExpr(bpNone)
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	if p.cur.kind != tokEOF {
		return nil, newErr(ErrTrailingGarbage, p.cur.pos, "unexpected trailing token %q", p.cur.text)
	}
	return n, nil
}

func (p *parser) parseExpr(minBP int) *node {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		bp := infixBindingPower(p.cur.kind)
		if bp == bpNone || bp <= minBP {
			return left
		}
		if p.cur.kind == tokLParen {
			left = p.parseCallTail(left)
			continue
		}
		op := p.cur.kind
		opPos := p.cur.pos
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			return nil
		}
		left = &node{kind: nodeBinary, pos: opPos, binaryOp: tokToBinaryOp(op), lhs: left, rhs: right}
	}
}

func tokToBinaryOp(k tokenKind) binaryOp {
	switch k {
	case tokPlus:
		return binaryAdd
	case tokMinus:
		return binarySub
	case tokStar:
		return binaryMul
	case tokSlash:
		return binaryDiv
	}
	return binaryAdd
}

// parseUnary handles the nud (null denotation) positions: literals,
// identifiers/calls, prefix '-', and parenthesized groups.
func (p *parser) parseUnary() *node {
	switch p.cur.kind {
	case tokMinus:
		pos := p.cur.pos
		p.advance()
		operand := p.parseExpr(bpUnary)
		if operand == nil {
			return nil
		}
		return &node{kind: nodeUnary, pos: pos, unaryOp: unaryNeg, rhs: operand}

	case tokNumber:
		pos := p.cur.pos
		text := p.cur.text
		iv, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.fail(newErr(ErrUnexpectedToken, pos, "invalid integer literal %q", text))
			return nil
		}
		p.advance()
		return &node{kind: nodeLiteral, pos: pos, literal: value.Int32(int32(iv))}

	case tokTrue:
		pos := p.cur.pos
		p.advance()
		return &node{kind: nodeLiteral, pos: pos, literal: value.Bool(true)}

	case tokFalse:
		pos := p.cur.pos
		p.advance()
		return &node{kind: nodeLiteral, pos: pos, literal: value.Bool(false)}

	case tokNil:
		pos := p.cur.pos
		p.advance()
		return &node{kind: nodeLiteral, pos: pos, literal: value.Nil()}

	case tokIdent, tokAnd, tokOr, tokNot, tokXor, tokIs:
		pos := p.cur.pos
		name := p.cur.text
		p.advance()
		if p.cur.kind == tokLParen {
			return p.parseCallTail(&node{kind: nodeIdentifier, pos: pos, name: name})
		}
		return &node{kind: nodeIdentifier, pos: pos, name: name}

	case tokLParen:
		pos := p.cur.pos
		p.advance()
		inner := p.parseExpr(bpNone)
		if inner == nil {
			return nil
		}
		if p.cur.kind != tokRParen {
			p.fail(newErr(ErrUnbalancedParen, p.cur.pos, "expected ')'"))
			return nil
		}
		p.advance()
		return &node{kind: nodeGroup, pos: pos, lhs: inner}

	default:
		p.fail(newErr(ErrUnexpectedToken, p.cur.pos, "unexpected token %q", p.cur.text))
		return nil
	}
}

// parseCallTail parses the "(arg, ...)" suffix of a call expression,
// given the already-parsed callee (which must be a bare identifier —
// the grammar only allows ident(args), not arbitrary-expr(args)).
func (p *parser) parseCallTail(callee *node) *node {
	if callee.kind != nodeIdentifier {
		p.fail(newErr(ErrUnexpectedToken, p.cur.pos, "call target must be an identifier"))
		return nil
	}
	pos := p.cur.pos
	p.advance() // consume '('
	call := &node{kind: nodeCall, pos: pos, name: callee.name}
	if p.cur.kind == tokRParen {
		p.advance()
		return call
	}
	for {
		arg := p.parseExpr(bpNone)
		if arg == nil {
			return nil
		}
		call.args = append(call.args, arg)
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur.kind != tokRParen {
		p.fail(newErr(ErrUnbalancedParen, p.cur.pos, "expected ')' to close call"))
		return nil
	}
	p.advance()
	return call
}
