package ast

import (
	"bytes"
	"strings"

	"luabox/token"
)

// ----------------------------------------------------------------------------
// EXPRESSIONS
// ----------------------------------------------------------------------------

// PrefixExpression: unary `not`, `#`, `-`, `~`.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (p *PrefixExpression) expressionNode()      {}
func (p *PrefixExpression) TokenLiteral() string { return p.Token.Literal }
func (p *PrefixExpression) String() string {
	return "(" + p.Operator + " " + p.Right.String() + ")"
}

// InfixExpression: any binary operator, including `and`/`or` (short-circuit
// is an evaluator concern, not a parse-time one).
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (i *InfixExpression) expressionNode()      {}
func (i *InfixExpression) TokenLiteral() string { return i.Token.Literal }
func (i *InfixExpression) String() string {
	return "(" + i.Left.String() + " " + i.Operator + " " + i.Right.String() + ")"
}

// ParenExpression: `(e)`. Collapses a multi-value expression to single
// value, even when e is a call or `...`.
type ParenExpression struct {
	Token token.Token
	Value Expression
}

func (p *ParenExpression) expressionNode()      {}
func (p *ParenExpression) TokenLiteral() string { return p.Token.Literal }
func (p *ParenExpression) String() string       { return "(" + p.Value.String() + ")" }

// IndexExpression: `left[index]`.
type IndexExpression struct {
	Token token.Token
	Left  Expression
	Index Expression
}

func (e *IndexExpression) expressionNode()      {}
func (e *IndexExpression) TokenLiteral() string { return e.Token.Literal }
func (e *IndexExpression) String() string {
	return e.Left.String() + "[" + e.Index.String() + "]"
}

// FieldExpression: `left.name`, sugar for IndexExpression with a string key.
type FieldExpression struct {
	Token token.Token
	Left  Expression
	Name  string
}

func (e *FieldExpression) expressionNode()      {}
func (e *FieldExpression) TokenLiteral() string { return e.Token.Literal }
func (e *FieldExpression) String() string       { return e.Left.String() + "." + e.Name }

// CallExpression: `f(args)`.
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(c.Function.String())
	out.WriteString("(")
	parts := make([]string, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		parts = append(parts, a.String())
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	return out.String()
}

// MethodCallExpression: `receiver:method(args)`. Distinct from an ordinary
// CallExpression because Receiver is evaluated once and passed as the
// implicit first argument.
type MethodCallExpression struct {
	Token     token.Token
	Receiver  Expression
	Method    string
	Arguments []Expression
}

func (m *MethodCallExpression) expressionNode()      {}
func (m *MethodCallExpression) TokenLiteral() string { return m.Token.Literal }
func (m *MethodCallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(m.Receiver.String())
	out.WriteString(":")
	out.WriteString(m.Method)
	out.WriteString("(")
	parts := make([]string, 0, len(m.Arguments))
	for _, a := range m.Arguments {
		parts = append(parts, a.String())
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	return out.String()
}
