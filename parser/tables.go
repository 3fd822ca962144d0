// ==============================================================================================
// FILE: parser/tables.go
// PURPOSE: Table-constructor parsing: `{ [k]=v, name=v, v, ... }`, any mix
//          of the three field forms separated by ',' or ';'.
// ==============================================================================================

package parser

import (
	"luabox/ast"
	"luabox/token"
)

func (p *Parser) parseTableConstructorExpr() ast.Expression {
	return p.parseTableConstructor()
}

// parseTableConstructor assumes curToken == '{' and leaves curToken == '}'.
func (p *Parser) parseTableConstructor() *ast.TableLiteral {
	tok := p.curToken
	tbl := &ast.TableLiteral{Token: tok}

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return tbl
	}

	p.nextToken()
	for {
		field, ok := p.parseTableField()
		if !ok {
			return nil
		}
		tbl.Fields = append(tbl.Fields, field)

		if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.SEMI) {
			p.nextToken()
			if p.peekTokenIs(token.RBRACE) {
				p.nextToken()
				break
			}
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
		break
	}
	return tbl
}

// parseTableField assumes curToken is positioned at the start of a field.
func (p *Parser) parseTableField() (ast.TableField, bool) {
	if p.curTokenIs(token.LBRACKET) {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil || !p.expectPeek(token.RBRACKET) || !p.expectPeek(token.ASSIGN) {
			return ast.TableField{}, false
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if val == nil {
			return ast.TableField{}, false
		}
		return ast.TableField{Key: key, Value: val}, true
	}

	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN) {
		name := p.curToken.Literal
		p.nextToken() // curToken = '='
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if val == nil {
			return ast.TableField{}, false
		}
		return ast.TableField{Name: name, Value: val}, true
	}

	val := p.parseExpression(LOWEST)
	if val == nil {
		return ast.TableField{}, false
	}
	return ast.TableField{Value: val}, true
}
