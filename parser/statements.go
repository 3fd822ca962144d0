// ==============================================================================================
// FILE: parser/statements.go
// PURPOSE: Statement-level recursive descent: blocks, control structures,
//          declarations, assignment-vs-call disambiguation, function
//          syntax (including method-name desugaring).
// ==============================================================================================

package parser

import (
	"luabox/ast"
	"luabox/token"
)

// blockFollow reports whether curToken ends the enclosing block.
func (p *Parser) blockFollow() bool {
	switch p.curToken.Type {
	case token.EOF, token.END, token.ELSE, token.ELSEIF, token.UNTIL:
		return true
	}
	return false
}

// parseBlock assumes curToken is the first token of the block (or already
// a follow token for an empty block) and leaves curToken on the follow
// token that ended it.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	for !p.blockFollow() && p.err == nil {
		if p.curTokenIs(token.RETURN) {
			if stmt := p.parseReturnStatement(); stmt != nil {
				block.Statements = append(block.Statements, stmt)
			}
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.err != nil {
			break
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMI:
		return nil
	case token.DCOLON:
		return p.parseLabelStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.GOTO:
		return p.parseGotoStatement()
	case token.DO:
		return p.parseDoStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.REPEAT:
		return p.parseRepeatStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FUNCTION:
		return p.parseFunctionStatement()
	case token.LOCAL:
		return p.parseLocalStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLabelStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.DCOLON) {
		return nil
	}
	return &ast.LabelStatement{Token: tok, Name: name}
}

func (p *Parser) parseGotoStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.GotoStatement{Token: tok, Label: p.curToken.Literal}
}

func (p *Parser) parseDoStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	body := p.parseBlock()
	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return &ast.DoStatement{Token: tok, Body: body}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock()
	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseRepeatStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	body := p.parseBlock()
	if !p.curTokenIs(token.UNTIL) {
		p.errorf("'until' expected near %q", p.curToken.Literal)
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	return &ast.RepeatStatement{Token: tok, Body: body, Condition: cond}
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.curToken
	stmt := &ast.IfStatement{Token: tok}

	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(token.THEN) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock()
	stmt.Clauses = append(stmt.Clauses, ast.IfClause{Condition: cond, Body: body})

	for p.curTokenIs(token.ELSEIF) {
		p.nextToken()
		c := p.parseExpression(LOWEST)
		if c == nil || !p.expectPeek(token.THEN) {
			return nil
		}
		p.nextToken()
		b := p.parseBlock()
		stmt.Clauses = append(stmt.Clauses, ast.IfClause{Condition: c, Body: b})
	}

	if p.curTokenIs(token.ELSE) {
		p.nextToken()
		stmt.Else = p.parseBlock()
	}

	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	firstName := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(token.ASSIGN) {
		return p.parseNumericForStatement(tok, firstName)
	}
	return p.parseGenericForStatement(tok, firstName)
}

func (p *Parser) parseNumericForStatement(tok token.Token, name *ast.Identifier) ast.Statement {
	p.nextToken() // consume '='
	p.nextToken()
	start := p.parseExpression(LOWEST)
	if start == nil || !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	stop := p.parseExpression(LOWEST)
	if stop == nil {
		return nil
	}
	var step ast.Expression
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		step = p.parseExpression(LOWEST)
		if step == nil {
			return nil
		}
	}
	if !p.expectPeek(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock()
	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return &ast.NumericForStatement{Token: tok, Name: name, Start: start, Stop: stop, Step: step, Body: body}
}

func (p *Parser) parseGenericForStatement(tok token.Token, firstName *ast.Identifier) ast.Statement {
	names := []*ast.Identifier{firstName}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		names = append(names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	exprs := p.parseExprList()
	if exprs == nil || !p.expectPeek(token.DO) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock()
	if !p.curTokenIs(token.END) {
		p.errorf("'end' expected near %q", p.curToken.Literal)
		return nil
	}
	return &ast.GenericForStatement{Token: tok, Names: names, Exprs: exprs, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	stmt := &ast.ReturnStatement{Token: tok}
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
		return stmt
	}
	if blockFollowType(p.peekToken.Type) {
		return stmt
	}
	p.nextToken()
	stmt.Values = p.parseExprList()
	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
	}
	return stmt
}

func blockFollowType(tt token.TokenType) bool {
	switch tt {
	case token.EOF, token.END, token.ELSE, token.ELSEIF, token.UNTIL:
		return true
	}
	return false
}

func (p *Parser) parseLocalStatement() ast.Statement {
	tok := p.curToken
	if p.peekTokenIs(token.FUNCTION) {
		p.nextToken()
		return p.parseLocalFunctionStatement(tok)
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt := &ast.LocalStatement{Token: tok}
	stmt.Names = append(stmt.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	stmt.Attribs = append(stmt.Attribs, p.parseOptionalAttrib())

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Names = append(stmt.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		stmt.Attribs = append(stmt.Attribs, p.parseOptionalAttrib())
	}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Values = p.parseExprList()
	}
	return stmt
}

func (p *Parser) parseOptionalAttrib() string {
	if !p.peekTokenIs(token.LT) {
		return ""
	}
	p.nextToken()
	if !p.expectPeek(token.IDENT) {
		return ""
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.GT) {
		return ""
	}
	return name
}

func (p *Parser) parseLocalFunctionStatement(localTok token.Token) ast.Statement {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn := p.parseFunctionBody(localTok, false)
	if fn == nil {
		return nil
	}
	fn.Name = name.Value
	return &ast.LocalFunctionStatement{Token: localTok, Name: name, Function: fn}
}

func (p *Parser) parseFunctionStatement() ast.Statement {
	funcTok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	var target ast.Expression = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	name := p.curToken.Literal
	isMethod := false

	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name += "." + p.curToken.Literal
		target = &ast.FieldExpression{Token: p.curToken, Left: target, Name: p.curToken.Literal}
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name += ":" + p.curToken.Literal
		target = &ast.FieldExpression{Token: p.curToken, Left: target, Name: p.curToken.Literal}
		isMethod = true
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn := p.parseFunctionBody(funcTok, isMethod)
	if fn == nil {
		return nil
	}
	fn.Name = name
	return &ast.AssignStatement{Token: funcTok, Targets: []ast.Expression{target}, Values: []ast.Expression{fn}}
}

func (p *Parser) parseExprStatement() ast.Statement {
	expr := p.parseSuffixedExpr()
	if expr == nil {
		return nil
	}
	if p.peekTokenIs(token.ASSIGN) || p.peekTokenIs(token.COMMA) {
		return p.parseAssignStatement(expr)
	}
	switch expr.(type) {
	case *ast.CallExpression, *ast.MethodCallExpression:
		return &ast.ExpressionStatement{Token: p.curToken, Expression: expr}
	}
	p.errorf("syntax error near %q", p.curToken.Literal)
	return nil
}

func (p *Parser) parseAssignStatement(first ast.Expression) ast.Statement {
	tok := p.curToken
	targets := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		t := p.parseSuffixedExpr()
		if t == nil {
			return nil
		}
		targets = append(targets, t)
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	for _, t := range targets {
		switch t.(type) {
		case *ast.Identifier, *ast.IndexExpression, *ast.FieldExpression:
		default:
			p.errorf("cannot assign to this expression")
			return nil
		}
	}
	p.nextToken()
	values := p.parseExprList()
	if values == nil {
		return nil
	}
	return &ast.AssignStatement{Token: tok, Targets: targets, Values: values}
}
