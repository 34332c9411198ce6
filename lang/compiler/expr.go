package compiler

import (
	"strconv"

	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
)

// Precedence ladder, lowest to highest.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type (
	prefixFn func(p *Parser, canAssign bool)
	infixFn  func(p *Parser, canAssign bool)
)

type parseRule struct {
	prefix prefixFn
	infix  infixFn
	prec   precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:  {prefix: grouping, infix: call, prec: precCall},
		token.LBRACK:  {prefix: arrayLiteral, infix: index, prec: precCall},
		token.DOT:     {infix: dot, prec: precCall},
		token.MINUS:   {prefix: unary, infix: binary, prec: precTerm},
		token.PLUS:    {infix: binary, prec: precTerm},
		token.SLASH:   {infix: binary, prec: precFactor},
		token.STAR:    {infix: binary, prec: precFactor},
		token.PERCENT: {infix: binary, prec: precFactor},
		token.BANG:    {prefix: unary},
		token.BANG_EQ: {infix: binary, prec: precEquality},
		token.EQ_EQ:   {infix: binary, prec: precEquality},
		token.GT:      {infix: binary, prec: precComparison},
		token.GT_EQ:   {infix: binary, prec: precComparison},
		token.LT:      {infix: binary, prec: precComparison},
		token.LT_EQ:   {infix: binary, prec: precComparison},
		token.IDENT:   {prefix: variable},
		token.STRING:  {prefix: stringLiteral},
		token.NUMBER:  {prefix: number},
		token.AND:     {infix: and_, prec: precAnd},
		token.OR:      {infix: or_, prec: precOr},
		token.TRUE:    {prefix: literal},
		token.FALSE:   {prefix: literal},
		token.NIL:     {prefix: literal},
		token.THIS:    {prefix: this},
		token.SUPER:   {prefix: super},
		token.QUEST:   {infix: ternary, prec: precTernary},
	}
}

func getRule(k token.Kind) parseRule { return rules[k] }

func (p *Parser) expression() { p.parsePrecedence(precAssignment) }

// parsePrecedence implements the assignment discipline: consume a
// prefix, then repeatedly consume infix operators whose precedence is at
// least `prec`. Assignment is legal only when prec <= precAssignment; if the
// parsed target is followed by '=' at that level but no prefix rule claimed
// it as an assignment target, that's "Invalid assignment target."
func (p *Parser) parsePrecedence(prec precedence) {
	p.advance()
	rule := getRule(p.prev.Kind)
	if rule.prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(p, canAssign)

	for prec <= getRule(p.cur.Kind).prec {
		p.advance()
		infix := getRule(p.prev.Kind).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func number(p *Parser, _ bool) {
	n, err := strconv.ParseFloat(p.prev.Lexeme, 64)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(n))
}

func stringLiteral(p *Parser, _ bool) {
	p.emitConstant(value.NewObject(value.NewStringUninterned([]byte(p.prev.Lexeme))))
}

func literal(p *Parser, _ bool) {
	switch p.prev.Kind {
	case token.TRUE:
		p.emitOp(OP_TRUE)
	case token.FALSE:
		p.emitOp(OP_FALSE)
	case token.NIL:
		p.emitOp(OP_NIL)
	}
}

func grouping(p *Parser, _ bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(p *Parser, _ bool) {
	op := p.prev.Kind
	p.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		p.emitOp(OP_NEGATE)
	case token.BANG:
		p.emitOp(OP_NOT)
	}
}

func binary(p *Parser, _ bool) {
	op := p.prev.Kind
	rule := getRule(op)
	p.parsePrecedence(rule.prec + 1)

	switch op {
	case token.PLUS:
		p.emitOp(OP_ADD)
	case token.MINUS:
		p.emitOp(OP_SUB)
	case token.STAR:
		p.emitOp(OP_MUL)
	case token.SLASH:
		p.emitOp(OP_DIV)
	case token.PERCENT:
		p.emitOp(OP_MOD)
	case token.BANG_EQ:
		p.emitOp(OP_NOT_EQUAL)
	case token.EQ_EQ:
		p.emitOp(OP_EQUAL)
	case token.GT:
		p.emitOp(OP_GREATER)
	case token.GT_EQ:
		p.emitOp(OP_GREATER_EQUAL)
	case token.LT:
		p.emitOp(OP_LESS)
	case token.LT_EQ:
		p.emitOp(OP_LESS_EQUAL)
	}
}

// ternary treats the else-branch as right-associative by parsing it at
// assignment precedence (this deliberately allows `a ? b : c = d`).
func ternary(p *Parser, _ bool) {
	thenJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.parsePrecedence(precTernary)

	elseJump := p.emitJump(OP_JUMP)
	p.patchJump(thenJump)
	p.emitOp(OP_POP)

	p.consume(token.COLON, "Expect ':' after ternary then-branch.")
	p.parsePrecedence(precAssignment)
	p.patchJump(elseJump)
}

func and_(p *Parser, _ bool) {
	endJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or_(p *Parser, _ bool) {
	elseJump := p.emitJump(OP_JUMP_IF_FALSE)
	endJump := p.emitJump(OP_JUMP)

	p.patchJump(elseJump)
	p.emitOp(OP_POP)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func arrayLiteral(p *Parser, _ bool) {
	count := 0
	if !p.check(token.RBRACK) {
		for {
			p.expression()
			count++
			if count > 0xFFFFFF {
				p.error("Too many elements in array literal.")
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RBRACK, "Expect ']' after array elements.")
	if count < 256 {
		p.emitOp(OP_ARRAY)
		p.emitByte(byte(count))
	} else {
		p.emitOp(OP_ARRAY_LONG)
		p.emitU24(count)
	}
}

func index(p *Parser, canAssign bool) {
	p.expression()
	p.consume(token.RBRACK, "Expect ']' after index.")
	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitOp(OP_SET_INDEX)
	} else {
		p.emitOp(OP_GET_INDEX)
	}
}

func (p *Parser) argumentList() int {
	argCount := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

func call(p *Parser, _ bool) {
	argCount := p.argumentList()
	p.emitOp(OP_CALL)
	p.emitByte(byte(argCount))
}

// dot compiles `.name`, fusing an immediately-following call into a single
// OP_INVOKE instruction rather than emitting GET_PROP followed by CALL.
func dot(p *Parser, canAssign bool) {
	p.consume(token.IDENT, "Expect property name after '.'.")
	nameConst := p.identifierConstant(p.prev.Lexeme)

	switch {
	case canAssign && p.match(token.EQ):
		p.expression()
		p.emitConstantIndexed(OP_SET_PROP, OP_SET_PROP_LONG, nameConst)
	case p.match(token.LPAREN):
		argCount := p.argumentList()
		p.emitOp(OP_INVOKE)
		p.emitByte(byte(nameConst))
		p.emitByte(byte(argCount))
	default:
		p.emitConstantIndexed(OP_GET_PROP, OP_GET_PROP_LONG, nameConst)
	}
}

func (p *Parser) namedVariable(name string, canAssign bool) {
	var getOp, setOp Opcode
	var getLong, setLong Opcode
	var arg int
	wide := false

	if local := p.resolveLocal(p.current, name); local != -1 {
		arg, getOp, setOp = local, OP_GET_LOCAL, OP_SET_LOCAL
	} else if up := p.resolveUpvalue(p.current, name); up != -1 {
		arg, getOp, setOp = up, OP_GET_UPVALUE, OP_SET_UPVALUE
	} else {
		arg = p.identifierConstant(name)
		getOp, getLong = OP_GET_GLOBAL, OP_GET_GLOBAL_LONG
		setOp, setLong = OP_SET_GLOBAL, OP_SET_GLOBAL_LONG
		wide = true
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		if wide {
			p.emitConstantIndexed(setOp, setLong, arg)
		} else {
			p.emitOp(setOp)
			p.emitU24(arg)
		}
		return
	}
	if wide {
		p.emitConstantIndexed(getOp, getLong, arg)
	} else {
		p.emitOp(getOp)
		p.emitU24(arg)
	}
}

func variable(p *Parser, canAssign bool) { p.namedVariable(p.prev.Lexeme, canAssign) }

func this(p *Parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.namedVariable("this", false)
}

func super(p *Parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.class.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENT, "Expect superclass method name.")
	nameConst := p.identifierConstant(p.prev.Lexeme)

	p.namedVariable("this", false)
	if p.match(token.LPAREN) {
		argCount := p.argumentList()
		p.namedVariable("super", false)
		p.emitOp(OP_SUPER_INVOKE)
		p.emitByte(byte(nameConst))
		p.emitByte(byte(argCount))
		return
	}
	p.namedVariable("super", false)
	p.emitOp(OP_GET_SUPER)
	p.emitByte(byte(nameConst))
}
