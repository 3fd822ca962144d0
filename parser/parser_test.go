// ==============================================================================================
// FILE: parser/parser_test.go
// PURPOSE: Unit tests for statement and expression parsing -- precedence,
//          associativity, suffix chaining, and the assignment/call
//          disambiguation at statement level.
// ==============================================================================================

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luabox/ast"
	"luabox/lexer"
)

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := ParseProgram(lexer.New(input))
	require.NoError(t, err)
	require.NotNil(t, program)
	return program
}

func TestLocalAssignment(t *testing.T) {
	program := parseOK(t, `local x, y = 1, 2`)
	require.Len(t, program.Statements, 1)
	stmt, ok := program.Statements[0].(*ast.LocalStatement)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, names(stmt.Names))
	assert.Len(t, stmt.Values, 2)
}

func TestLocalConstAttrib(t *testing.T) {
	program := parseOK(t, `local x <const> = 1`)
	stmt := program.Statements[0].(*ast.LocalStatement)
	assert.Equal(t, "const", stmt.Attribs[0])
}

func TestAssignStatement(t *testing.T) {
	program := parseOK(t, `a.b[c], d = 1, 2`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	require.Len(t, stmt.Targets, 2)
	_, ok := stmt.Targets[0].(*ast.IndexExpression)
	assert.True(t, ok)
}

func TestPrecedenceArithmetic(t *testing.T) {
	program := parseOK(t, `a = 1 + 2 * 3`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, "(1 + (2 * 3))", stmt.Values[0].String())
}

func TestPrecedenceUnaryVsPower(t *testing.T) {
	program := parseOK(t, `a = -2^2`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, "(- (2 ^ 2))", stmt.Values[0].String())
}

func TestConcatRightAssociative(t *testing.T) {
	program := parseOK(t, `a = "x" .. "y" .. "z"`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, `("x" .. ("y" .. "z"))`, stmt.Values[0].String())
}

func TestPowerRightAssociative(t *testing.T) {
	program := parseOK(t, `a = 2^2^3`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, "(2 ^ (2 ^ 3))", stmt.Values[0].String())
}

func TestSubtractionLeftAssociative(t *testing.T) {
	program := parseOK(t, `a = 10 - 3 - 2`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, "((10 - 3) - 2)", stmt.Values[0].String())
}

func TestComparisonAndLogic(t *testing.T) {
	program := parseOK(t, `a = 1 < 2 and 3 >= 4 or not false`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	assert.Equal(t, "(((1 < 2) and (3 >= 4)) or (not false))", stmt.Values[0].String())
}

func TestSuffixedChain(t *testing.T) {
	program := parseOK(t, `x = a.b.c[1]:m(2, 3).d`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	fe, ok := stmt.Values[0].(*ast.FieldExpression)
	require.True(t, ok)
	assert.Equal(t, "d", fe.Name)
	_, ok = fe.Left.(*ast.MethodCallExpression)
	assert.True(t, ok)
}

func TestCallStatementBare(t *testing.T) {
	program := parseOK(t, `print("hi")`)
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok)
	_, ok = stmt.Expression.(*ast.CallExpression)
	assert.True(t, ok)
}

func TestCallWithStringArg(t *testing.T) {
	program := parseOK(t, `print "hi"`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call := stmt.Expression.(*ast.CallExpression)
	require.Len(t, call.Arguments, 1)
	_, ok := call.Arguments[0].(*ast.StringLiteral)
	assert.True(t, ok)
}

func TestCallWithTableArg(t *testing.T) {
	program := parseOK(t, `f{1, 2}`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call := stmt.Expression.(*ast.CallExpression)
	require.Len(t, call.Arguments, 1)
	_, ok := call.Arguments[0].(*ast.TableLiteral)
	assert.True(t, ok)
}

func TestBareExpressionStatementIsError(t *testing.T) {
	_, err := ParseProgram(lexer.New(`1 + 2`))
	assert.Error(t, err)
}

func TestIfElseif(t *testing.T) {
	program := parseOK(t, `
if a then
  b = 1
elseif c then
  b = 2
else
  b = 3
end`)
	stmt := program.Statements[0].(*ast.IfStatement)
	assert.Len(t, stmt.Clauses, 2)
	assert.NotNil(t, stmt.Else)
}

func TestWhileLoop(t *testing.T) {
	program := parseOK(t, `while a < 10 do a = a + 1 end`)
	_, ok := program.Statements[0].(*ast.WhileStatement)
	assert.True(t, ok)
}

func TestRepeatLoop(t *testing.T) {
	program := parseOK(t, `repeat a = a + 1 until a >= 10`)
	_, ok := program.Statements[0].(*ast.RepeatStatement)
	assert.True(t, ok)
}

func TestNumericFor(t *testing.T) {
	program := parseOK(t, `for i = 1, 10, 2 do end`)
	stmt, ok := program.Statements[0].(*ast.NumericForStatement)
	require.True(t, ok)
	assert.NotNil(t, stmt.Step)
}

func TestGenericFor(t *testing.T) {
	program := parseOK(t, `for k, v in pairs(t) do end`)
	stmt, ok := program.Statements[0].(*ast.GenericForStatement)
	require.True(t, ok)
	assert.Equal(t, []string{"k", "v"}, names(stmt.Names))
}

func TestFunctionStatementDesugarsToAssign(t *testing.T) {
	program := parseOK(t, `function foo(a, b) return a + b end`)
	stmt, ok := program.Statements[0].(*ast.AssignStatement)
	require.True(t, ok)
	fn, ok := stmt.Values[0].(*ast.FunctionLiteral)
	require.True(t, ok)
	assert.Len(t, fn.Parameters, 2)
	assert.False(t, fn.IsVararg)
}

func TestMethodFunctionStatementInjectsSelf(t *testing.T) {
	program := parseOK(t, `function obj:method(x) return self.x end`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	fn := stmt.Values[0].(*ast.FunctionLiteral)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "self", fn.Parameters[0].Value)
}

func TestVarargFunction(t *testing.T) {
	program := parseOK(t, `local function f(a, ...) return a end`)
	stmt := program.Statements[0].(*ast.LocalFunctionStatement)
	assert.True(t, stmt.Function.IsVararg)
}

func TestTableConstructorMixed(t *testing.T) {
	program := parseOK(t, `t = {1, 2, x = 3, [4] = 5}`)
	stmt := program.Statements[0].(*ast.AssignStatement)
	tbl := stmt.Values[0].(*ast.TableLiteral)
	require.Len(t, tbl.Fields, 4)
	assert.Equal(t, "x", tbl.Fields[2].Name)
	assert.NotNil(t, tbl.Fields[3].Key)
}

func TestGotoAndLabel(t *testing.T) {
	program := parseOK(t, `::top:: goto top`)
	_, ok := program.Statements[0].(*ast.LabelStatement)
	assert.True(t, ok)
	_, ok = program.Statements[1].(*ast.GotoStatement)
	assert.True(t, ok)
}

func TestReturnMultiValue(t *testing.T) {
	program := parseOK(t, `local function f() return 1, 2, 3 end`)
	stmt := program.Statements[0].(*ast.LocalFunctionStatement)
	ret := stmt.Function.Body.Statements[0].(*ast.ReturnStatement)
	assert.Len(t, ret.Values, 3)
}

func TestUnterminatedBlockIsSyntaxError(t *testing.T) {
	_, err := ParseProgram(lexer.New(`if true then a = 1`))
	assert.Error(t, err)
}

func names(ids []*ast.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Value
	}
	return out
}
