// ==============================================================================================
// FILE: parser/functions.go
// PURPOSE: Function literal parsing: parameter lists, vararg detection, and
//          the implicit `self` parameter for `function t:m(...)` method
//          declarations.
// ==============================================================================================

package parser

import (
	"luabox/ast"
	"luabox/token"
)

// parseFunctionLiteral handles the anonymous `function(...) ... end` form
// as a prefix expression.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	return p.parseFunctionBody(tok, false)
}

// parseFunctionBody assumes curToken == '(' and consumes through the
// closing 'end', returning nil on error.
func (p *Parser) parseFunctionBody(tok token.Token, isMethod bool) *ast.FunctionLiteral {
	lit := &ast.FunctionLiteral{Token: tok}

	params, vararg, ok := p.parseParams()
	if !ok {
		return nil
	}
	if isMethod {
		self := &ast.Identifier{Value: "self"}
		params = append([]*ast.Identifier{self}, params...)
	}
	lit.Parameters = params
	lit.IsVararg = vararg

	p.nextToken()
	lit.Body = p.parseBlock()
	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return lit
}

// parseParams assumes curToken == '(' and leaves curToken == ')'.
func (p *Parser) parseParams() ([]*ast.Identifier, bool, bool) {
	params := []*ast.Identifier{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, false, true
	}
	p.nextToken()
	vararg := false
	for {
		if p.curTokenIs(token.ELLIPSIS) {
			vararg = true
			break
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf("<name> expected near %q", p.curToken.Literal)
			return nil, false, false
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false, false
	}
	return params, vararg, true
}
