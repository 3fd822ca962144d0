// ==============================================================================================
// FILE: parser/parser.go
// ==============================================================================================
// PACKAGE: parser
// PURPOSE: Recursive-descent statement parsing plus a Pratt operator-
//          precedence climber for expressions, producing the ast package's
//          node tree from a token.Token stream. Grounded in the teacher
//          interpreter's parser.go (prefix/infix function-map dispatch,
//          curToken/peekToken two-token lookahead, expectPeek error
//          reporting) generalized from its English-word grammar to the full
//          Lua-like grammar of spec §4.2, plus the suffixedexp chaining
//          (field/index/call/method-call) that Lua's own grammar needs and
//          the teacher's grammar did not.
// ==============================================================================================

package parser

import (
	"luabox/ast"
	"luabox/errs"
	"luabox/lexer"
	"luabox/token"
)

// Operator precedence levels, lowest to highest. Two levels are
// right-associative (CONCAT, POWER); see parseInfixExpression.
const (
	_ int = iota
	LOWEST
	OR_
	AND_
	COMPARE
	BOR
	BXOR
	BAND
	SHIFT
	CONCAT
	SUM
	PRODUCT
	UNARY
	POWER
)

var precedences = map[token.TokenType]int{
	token.OR:      OR_,
	token.AND:     AND_,
	token.LT:      COMPARE,
	token.GT:      COMPARE,
	token.LE:      COMPARE,
	token.GE:      COMPARE,
	token.EQ:      COMPARE,
	token.NEQ:     COMPARE,
	token.PIPE:    BOR,
	token.TILDE:   BXOR,
	token.AMP:     BAND,
	token.LSHIFT:  SHIFT,
	token.RSHIFT:  SHIFT,
	token.CONCAT:  CONCAT,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.DSLASH:  PRODUCT,
	token.PERCENT: PRODUCT,
	token.CARET:   POWER,
}

// rightAssoc holds the two operators that bind to the right: `..` and `^`.
var rightAssoc = map[token.TokenType]bool{
	token.CONCAT: true,
	token.CARET:  true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns a token stream into an *ast.Program. It stops at the first
// syntax error: Err() returns nil on success or exactly one
// *errs.SyntaxError otherwise. Lua grammars do not recover usefully from a
// malformed construct, so -- unlike the teacher's accumulate-and-continue
// style -- this parser halts rather than producing cascading noise.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	err error // first error encountered, if any

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseSuffixedExpr)
	p.registerPrefix(token.LPAREN, p.parseSuffixedExpr)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.NIL, p.parseNilLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.ELLIPSIS, p.parseVararg)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.LBRACE, p.parseTableConstructorExpr)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.HASH, p.parsePrefixExpression)
	p.registerPrefix(token.TILDE, p.parsePrefixExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.registerInfix(tt, p.parseInfixExpression)
	}

	// prime curToken/peekToken
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tt token.TokenType, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt token.TokenType, fn infixParseFn)   { p.infixParseFns[tt] = fn }

// Err returns the first syntax error encountered, or nil.
func (p *Parser) Err() error { return p.err }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.err != nil {
		// Already failed: keep feeding EOF so every loop terminates.
		p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line}
		return
	}
	tok, err := p.l.NextToken()
	if err != nil {
		if lerr, ok := err.(*lexer.LexError); ok {
			p.err = errs.NewSyntaxError(lerr.Line, "%s", lerr.Message)
		} else {
			p.err = errs.NewSyntaxError(p.curToken.Line, "%s", err.Error())
		}
		p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line}
		return
	}
	p.peekToken = tok
}

func (p *Parser) curTokenIs(tt token.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt token.TokenType) bool { return p.peekToken.Type == tt }

func (p *Parser) expectPeek(tt token.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", tt, p.peekToken.Type, p.peekToken.Literal)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	p.err = errs.NewSyntaxError(p.curToken.Line, format, args...)
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the whole token stream as a chunk (top-level block).
// It returns the first syntax error, if any, instead of the program.
func ParseProgram(l *lexer.Lexer) (*ast.Program, error) {
	p := New(l)
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) && p.err == nil {
		if p.curTokenIs(token.RETURN) {
			if stmt := p.parseReturnStatement(); stmt != nil {
				program.Statements = append(program.Statements, stmt)
			}
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// parseExpression is the Pratt climber: parse a prefix term, then keep
// folding in infix operators whose precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("unexpected symbol near %q", p.curToken.Literal)
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for p.err == nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	opTok := p.curToken
	prec := p.curPrecedence()
	right := prec
	if rightAssoc[opTok.Type] {
		right = prec - 1
	}
	p.nextToken()
	rightExpr := p.parseExpression(right)
	if rightExpr == nil {
		return nil
	}
	return &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: rightExpr}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	opTok := p.curToken
	p.nextToken()
	operand := p.parseExpression(UNARY)
	if operand == nil {
		return nil
	}
	return &ast.PrefixExpression{Token: opTok, Operator: opTok.Literal, Right: operand}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	if tok.IsFloat {
		return &ast.FloatLiteral{Token: tok, Value: tok.FloatValue}
	}
	return &ast.IntegerLiteral{Token: tok, Value: tok.IntValue}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNilLiteral() ast.Expression { return &ast.NilLiteral{Token: p.curToken} }

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseVararg() ast.Expression { return &ast.Vararg{Token: p.curToken} }

// parsePrimaryExpr parses the irreducible head of a suffixedexp: a bare
// name or a parenthesized expression.
func (p *Parser) parsePrimaryExpr() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	case token.LPAREN:
		tok := p.curToken
		p.nextToken()
		inner := p.parseExpression(LOWEST)
		if inner == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.ParenExpression{Token: tok, Value: inner}
	default:
		p.errorf("unexpected symbol near %q", p.curToken.Literal)
		return nil
	}
}

// parseSuffixedExpr parses primaryexp { '.' NAME | '[' exp ']' | ':' NAME args | args }.
// Registered as the prefix handler for IDENT and LPAREN: suffix chaining
// binds tighter than any binary operator, so it always runs before the
// Pratt loop sees a following operator.
func (p *Parser) parseSuffixedExpr() ast.Expression {
	left := p.parsePrimaryExpr()
	if left == nil {
		return nil
	}
	for p.err == nil {
		switch p.peekToken.Type {
		case token.DOT:
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			left = &ast.FieldExpression{Token: p.curToken, Left: left, Name: p.curToken.Literal}
		case token.LBRACKET:
			p.nextToken()
			p.nextToken()
			idx := p.parseExpression(LOWEST)
			if idx == nil {
				return nil
			}
			if !p.expectPeek(token.RBRACKET) {
				return nil
			}
			left = &ast.IndexExpression{Left: left, Index: idx}
		case token.COLON:
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			methodTok := p.curToken
			method := p.curToken.Literal
			if !p.isArgStart(p.peekToken.Type) {
				p.errorf("function arguments expected near %q", p.peekToken.Literal)
				return nil
			}
			p.nextToken()
			args := p.parseArgs()
			left = &ast.MethodCallExpression{Token: methodTok, Receiver: left, Method: method, Arguments: args}
		case token.LPAREN, token.STRING, token.LBRACE:
			callTok := p.peekToken
			p.nextToken()
			args := p.parseArgs()
			left = &ast.CallExpression{Token: callTok, Function: left, Arguments: args}
		default:
			return left
		}
	}
	return nil
}

func (p *Parser) isArgStart(tt token.TokenType) bool {
	return tt == token.LPAREN || tt == token.STRING || tt == token.LBRACE
}

// parseArgs assumes curToken is positioned at the start of a call's
// arguments: '(', a bare STRING, or '{'.
func (p *Parser) parseArgs() []ast.Expression {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseExpressionListUntil(token.RPAREN)
	case token.STRING:
		return []ast.Expression{&ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}}
	case token.LBRACE:
		return []ast.Expression{p.parseTableConstructor()}
	}
	p.errorf("function arguments expected near %q", p.curToken.Literal)
	return nil
}

// parseExpressionListUntil parses a comma-separated expression list assuming
// curToken is the opening delimiter already consumed; leaves curToken at end.
func (p *Parser) parseExpressionListUntil(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	e := p.parseExpression(LOWEST)
	if e == nil {
		return nil
	}
	list = append(list, e)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		list = append(list, e)
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

// parseExprList parses exp {',' exp} with no closing delimiter, leaving
// curToken at the last token of the last expression.
func (p *Parser) parseExprList() []ast.Expression {
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		list = append(list, e)
	}
	return list
}
