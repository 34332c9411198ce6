package compiler

import (
	"fmt"

	"github.com/mna/ember/lang/scanner"
	"github.com/mna/ember/lang/token"
	"github.com/mna/ember/lang/value"
)

// maxLocals is the static limit on locals per function: local slots are
// 24-bit indices, but the compiler enforces a much smaller practical
// ceiling so overflow is reported as a compile error rather than silently
// wrapping.
const maxLocals = 4096

// CompileError is one diagnostic produced during compilation; Compile
// collects every error it can find via panic-mode resynchronization rather
// than failing at the first one.
type CompileError struct {
	Line    int
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

type funcType int

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

type local struct {
	name       string
	depth      int // -1 means declared but not yet defined
	isCaptured bool
}

type upvalueRef struct {
	index   int
	isLocal bool
}

// funcState is one frame of the compiler-frame stack: the function being
// built, a link to the enclosing frame (so upvalue resolution can walk
// the stack of in-progress compilations), its locals and
// upvalues, and the current lexical scope depth. This is carried as a
// field on Parser rather than a package-level pointer, so nothing prevents
// compiling more than one source unit concurrently.
type funcState struct {
	enclosing *funcState
	fn        *value.Function
	typ       funcType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

func newFuncState(enclosing *funcState, typ funcType, name string) *funcState {
	fs := &funcState{enclosing: enclosing, typ: typ, fn: value.NewFunction(name, 0)}
	// Slot 0 is reserved for the receiver (methods/initializers) or the
	// callee itself (plain functions), matching CALL's "slot 0 = receiver or
	// callee" convention.
	slotName := ""
	if typ != typeFunction && typ != typeScript {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}

type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Parser drives the single-pass Pratt parser and code generator. One
// Parser compiles one source unit (the top-level script); nested function
// and method bodies push/pop funcState frames on current.
type Parser struct {
	sc   scanner.Scanner
	prev token.Token
	cur  token.Token

	hadError  bool
	panicMode bool
	errors    []CompileError

	current *funcState
	class   *classState
}

// Compile compiles source into a top-level Function whose chunk encodes the
// whole program, wrapped by the caller into a closure and run by the VM. It
// returns all compile errors collected (possibly none) and a nil function
// if any error was reported.
func Compile(source []byte) (*value.Function, []CompileError) {
	p := &Parser{}
	p.sc.Init(source)
	p.current = newFuncState(nil, typeScript, "")

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endFunction()

	if p.hadError {
		return nil, p.errors
	}
	return fn, nil
}

// --- token stream plumbing -------------------------------------------------

func (p *Parser) advance() {
	p.prev = p.cur
	for {
		p.cur = p.sc.Next()
		if p.cur.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.cur.Message)
	}
}

func (p *Parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k token.Kind, msg string) {
	if p.cur.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.cur, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.prev, msg) }

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.errors = append(p.errors, CompileError{Line: tok.Line, Message: msg})
}

// synchronize implements panic-mode error recovery: skip tokens until a
// statement boundary (a semicolon, or a token that starts a new
// declaration/statement) so subsequent errors can still be reported.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.cur.Kind != token.EOF {
		if p.prev.Kind == token.SEMI {
			return
		}
		switch p.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// --- byte emission ----------------------------------------------------------

func (p *Parser) chunk() *value.Chunk { return &p.current.fn.Chunk }

func (p *Parser) emitByte(b byte) int { return p.chunk().Write(b, p.prev.Line) }

func (p *Parser) emitOp(op Opcode) int { return p.emitByte(byte(op)) }

func (p *Parser) emitU24(n int) {
	p.emitByte(byte(n >> 16))
	p.emitByte(byte(n >> 8))
	p.emitByte(byte(n))
}

func (p *Parser) patchU24(offset int, n int) {
	code := p.chunk().Code
	code[offset] = byte(n >> 16)
	code[offset+1] = byte(n >> 8)
	code[offset+2] = byte(n)
}

// emitConstantIndexed emits short if idx fits a byte, else the long
// variant.
func (p *Parser) emitConstantIndexed(short, long Opcode, idx int) {
	if idx < 256 {
		p.emitOp(short)
		p.emitByte(byte(idx))
		return
	}
	p.emitOp(long)
	p.emitU24(idx)
}

func (p *Parser) makeConstant(v value.Value) int {
	idx := p.chunk().AddConstant(v)
	if idx > 0xFFFFFF {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (p *Parser) emitConstant(v value.Value) {
	idx := p.makeConstant(v)
	p.emitConstantIndexed(OP_CONSTANT, OP_CONSTANT_LONG, idx)
}

func (p *Parser) emitJump(op Opcode) int {
	p.emitOp(op)
	p.emitU24(0)
	return len(p.chunk().Code) - 3
}

func (p *Parser) patchJump(offset int) {
	jump := len(p.chunk().Code) - (offset + 3)
	p.patchU24(offset, jump)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(OP_LOOP)
	jump := len(p.chunk().Code) - loopStart + 3
	p.emitU24(jump)
}

func (p *Parser) emitReturn() {
	if p.current.typ == typeInitializer {
		// `return;` inside init() returns the receiver, slot 0.
		p.emitOp(OP_GET_LOCAL)
		p.emitU24(0)
	} else {
		p.emitOp(OP_NIL)
	}
	p.emitOp(OP_RETURN)
}

func (p *Parser) endFunction() *value.Function {
	p.emitReturn()
	fn := p.current.fn
	fn.UpvalueCount = len(p.current.upvalues)
	p.current = p.current.enclosing
	return fn
}

// --- identifiers, locals, upvalues ------------------------------------------

func (p *Parser) identifierConstant(name string) int {
	return p.makeConstant(value.NewObject(value.NewStringUninterned([]byte(name))))
}

func identifiersEqual(a, b string) bool { return a == b }

func (p *Parser) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		l := &fs.locals[i]
		if identifiersEqual(l.name, name) {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *Parser) addUpvalue(fs *funcState, index int, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxLocals {
		p.error("Too many closure variables in function.")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// resolveUpvalue implements capture analysis: search enclosing
// frames recursively; the first frame where the name is a local marks it
// captured and returns a local-backed upvalue, intermediate frames chain
// non-local upvalues pointing at their parent's upvalue slot.
func (p *Parser) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := p.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(fs, local, true)
	}
	if up := p.resolveUpvalue(fs.enclosing, name); up != -1 {
		return p.addUpvalue(fs, up, false)
	}
	return -1
}

func (p *Parser) addLocal(name string) {
	if len(p.current.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.current.locals = append(p.current.locals, local{name: name, depth: -1})
}

func (p *Parser) declareVariable() {
	if p.current.scopeDepth == 0 {
		return
	}
	name := p.prev.Lexeme
	for i := len(p.current.locals) - 1; i >= 0; i-- {
		l := &p.current.locals[i]
		if l.depth != -1 && l.depth < p.current.scopeDepth {
			break
		}
		if identifiersEqual(l.name, name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *Parser) parseVariable(msg string) int {
	p.consume(token.IDENT, msg)
	p.declareVariable()
	if p.current.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.prev.Lexeme)
}

func (p *Parser) markInitialized() {
	if p.current.scopeDepth == 0 {
		return
	}
	p.current.locals[len(p.current.locals)-1].depth = p.current.scopeDepth
}

func (p *Parser) defineVariable(global int) {
	if p.current.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitConstantIndexed(OP_DEFINE_GLOBAL, OP_DEFINE_GLOBAL_LONG, global)
}

// --- scopes -----------------------------------------------------------------

func (p *Parser) beginScope() { p.current.scopeDepth++ }

func (p *Parser) endScope() {
	p.current.scopeDepth--

	n := 0
	for len(p.current.locals) > 0 && p.current.locals[len(p.current.locals)-1].depth > p.current.scopeDepth {
		last := p.current.locals[len(p.current.locals)-1]
		if last.isCaptured {
			if n > 0 {
				p.emitOp(OP_POPN)
				p.emitU24(n)
				n = 0
			}
			p.emitOp(OP_CLOSE_UPVALUE)
		} else {
			n++
		}
		p.current.locals = p.current.locals[:len(p.current.locals)-1]
	}
	if n == 1 {
		p.emitOp(OP_POP)
	} else if n > 1 {
		p.emitOp(OP_POPN)
		p.emitU24(n)
	}
}

// --- declarations & statements ----------------------------------------------

func (p *Parser) declaration() {
	switch {
	case p.match(token.VAR):
		p.varDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.CLASS):
		p.classDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(OP_NIL)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

func (p *Parser) function(typ funcType) {
	name := p.prev.Lexeme
	enclosing := p.current
	p.current = newFuncState(enclosing, typ, name)
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.current.fn.Arity++
			if p.current.fn.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramConst)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	upvalues := p.current.upvalues
	fn := p.endFunction() // restores p.current to enclosing

	idx := enclosing.fn.Chunk.AddConstant(value.NewObject(fn))
	p.emitConstantIndexed(OP_CLOSURE, OP_CLOSURE_LONG, idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitU24(uv.index)
	}
}

func (p *Parser) classDeclaration() {
	p.consume(token.IDENT, "Expect class name.")
	nameTok := p.prev
	nameConst := p.identifierConstant(nameTok.Lexeme)
	p.declareVariable()

	p.emitOp(OP_CLASS)
	p.emitByte(byte(nameConst))
	p.defineVariable(nameConst)

	cs := &classState{enclosing: p.class}
	p.class = cs

	if p.match(token.LT) {
		p.consume(token.IDENT, "Expect superclass name.")
		p.namedVariable(p.prev.Lexeme, false)
		if p.prev.Lexeme == nameTok.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal("super")
		p.defineVariable(0)

		p.namedVariable(nameTok.Lexeme, false)
		p.emitOp(OP_INHERIT)
		cs.hasSuperclass = true
	}

	p.namedVariable(nameTok.Lexeme, false)
	p.consume(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")
	p.emitOp(OP_POP) // pop the class itself, left by namedVariable load above

	if cs.hasSuperclass {
		p.endScope()
	}
	p.class = cs.enclosing
}

func (p *Parser) method() {
	p.consume(token.IDENT, "Expect method name.")
	name := p.prev.Lexeme
	nameConst := p.identifierConstant(name)

	typ := typeMethod
	if name == "init" {
		typ = typeInitializer
	}
	p.function(typ)
	p.emitOp(OP_METHOD)
	p.emitByte(byte(nameConst))
}

func (p *Parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(OP_PRINT)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(OP_POP)
}

func (p *Parser) returnStatement() {
	if p.current.typ == typeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.SEMI) {
		p.emitReturn()
		return
	}
	if p.current.typ == typeInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(OP_RETURN)
}

func (p *Parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.statement()

	elseJump := p.emitJump(OP_JUMP)
	p.patchJump(thenJump)
	p.emitOp(OP_POP)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(OP_JUMP_IF_FALSE)
	p.emitOp(OP_POP)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(OP_POP)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = p.emitJump(OP_JUMP_IF_FALSE)
		p.emitOp(OP_POP)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(OP_JUMP)
		incrStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(OP_POP)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(OP_POP)
	}
	p.endScope()
}
