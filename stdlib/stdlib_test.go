// ==============================================================================================
// FILE: stdlib/stdlib_test.go
// PURPOSE: End-to-end tests driving real scripts through the full
//          lexer -> parser -> evaluator pipeline with stdlib.Install
//          wired in, in the same full-pipeline integration-test style as
//          evaluator/evaluator_test.go.
// ==============================================================================================

package stdlib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luabox/evaluator"
	"luabox/lexer"
	"luabox/parser"
	"luabox/value"
)

func run(t *testing.T, src string) ([]value.Value, string) {
	t.Helper()
	program, err := parser.ParseProgram(lexer.New(src))
	require.NoError(t, err)
	var out bytes.Buffer
	in := evaluator.New(value.NewEnvironment(), &out, evaluator.Limits{})
	Install(in)
	results, err := in.Run(program)
	require.NoError(t, err)
	return results, out.String()
}

func TestPrintTabSeparatesAndNewlines(t *testing.T) {
	_, out := run(t, `print(1, "x", true)`)
	assert.Equal(t, "1\tx\ttrue\n", out)
}

func TestTypeAndToStringAndToNumber(t *testing.T) {
	results, _ := run(t, `return type(1), type("x"), type(nil), tostring(42), tonumber("10")`)
	assert.Equal(t, value.String{Value: "number"}, results[0])
	assert.Equal(t, value.String{Value: "string"}, results[1])
	assert.Equal(t, value.String{Value: "nil"}, results[2])
	assert.Equal(t, value.String{Value: "42"}, results[3])
	assert.Equal(t, value.Integer{Value: 10}, results[4])
}

func TestAssertPassesThroughArgs(t *testing.T) {
	results, _ := run(t, `return assert(1, 2, 3)`)
	assert.Equal(t, value.Integer{Value: 1}, results[0])
	assert.Equal(t, value.Integer{Value: 2}, results[1])
}

func TestAssertFailureRaises(t *testing.T) {
	program, err := parser.ParseProgram(lexer.New(`assert(false, "boom")`))
	require.NoError(t, err)
	in := evaluator.New(value.NewEnvironment(), &bytes.Buffer{}, evaluator.Limits{})
	Install(in)
	_, err = in.Run(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPcallCatchesRuntimeError(t *testing.T) {
	results, _ := run(t, `
local ok, msg = pcall(function() error("kaboom") end)
return ok, msg`)
	assert.Equal(t, value.False, results[0])
	assert.Equal(t, value.String{Value: "kaboom"}, results[1])
}

func TestPcallSuccessPrependsTrue(t *testing.T) {
	results, _ := run(t, `
local ok, a, b = pcall(function() return 1, 2 end)
return ok, a, b`)
	assert.Equal(t, value.True, results[0])
	assert.Equal(t, value.Integer{Value: 1}, results[1])
	assert.Equal(t, value.Integer{Value: 2}, results[2])
}

func TestSelectHash(t *testing.T) {
	results, _ := run(t, `return select("#", 1, 2, 3)`)
	assert.Equal(t, value.Integer{Value: 3}, results[0])
}

func TestSelectIndex(t *testing.T) {
	results, _ := run(t, `return select(2, "a", "b", "c")`)
	assert.Equal(t, value.String{Value: "b"}, results[0])
	assert.Equal(t, value.String{Value: "c"}, results[1])
}

func TestIpairsStopsAtFirstNil(t *testing.T) {
	results, _ := run(t, `
local t = {1, 2, 3}
local sum = 0
for i, v in ipairs(t) do sum = sum + v end
return sum`)
	assert.Equal(t, value.Integer{Value: 6}, results[0])
}

func TestPairsDefaultsToNext(t *testing.T) {
	results, _ := run(t, `
local t = {x = 1, y = 2}
local count = 0
for k, v in pairs(t) do count = count + 1 end
return count`)
	assert.Equal(t, value.Integer{Value: 2}, results[0])
}

func TestTableInsertRemoveSort(t *testing.T) {
	results, _ := run(t, `
local t = {3, 1, 2}
table.insert(t, 4)
table.sort(t)
local removed = table.remove(t, 1)
return removed, t[1], t[2], t[3], #t`)
	assert.Equal(t, value.Integer{Value: 1}, results[0])
	assert.Equal(t, value.Integer{Value: 2}, results[1])
	assert.Equal(t, value.Integer{Value: 3}, results[2])
	assert.Equal(t, value.Integer{Value: 4}, results[3])
	assert.Equal(t, value.Integer{Value: 3}, results[4])
}

func TestTableConcat(t *testing.T) {
	results, _ := run(t, `return table.concat({"a", "b", "c"}, ", ")`)
	assert.Equal(t, value.String{Value: "a, b, c"}, results[0])
}

func TestTablePackUnpack(t *testing.T) {
	results, _ := run(t, `
local p = table.pack(1, 2, 3)
return p.n, table.unpack(p, 1, p.n)`)
	assert.Equal(t, value.Integer{Value: 3}, results[0])
	assert.Equal(t, value.Integer{Value: 1}, results[1])
	assert.Equal(t, value.Integer{Value: 2}, results[2])
	assert.Equal(t, value.Integer{Value: 3}, results[3])
}

func TestStringSubNegativeIndices(t *testing.T) {
	results, _ := run(t, `return string.sub("hello world", -5)`)
	assert.Equal(t, value.String{Value: "world"}, results[0])
}

func TestStringRep(t *testing.T) {
	results, _ := run(t, `return string.rep("ab", 3, "-")`)
	assert.Equal(t, value.String{Value: "ab-ab-ab"}, results[0])
}

func TestStringFindPlain(t *testing.T) {
	results, _ := run(t, `return string.find("hello world", "wor")`)
	assert.Equal(t, value.Integer{Value: 7}, results[0])
	assert.Equal(t, value.Integer{Value: 9}, results[1])
}

func TestStringFindPattern(t *testing.T) {
	results, _ := run(t, `return string.find("hello123", "%d+")`)
	assert.Equal(t, value.Integer{Value: 6}, results[0])
	assert.Equal(t, value.Integer{Value: 8}, results[1])
}

func TestStringMatchCapture(t *testing.T) {
	results, _ := run(t, `return string.match("key=value", "(%w+)=(%w+)")`)
	assert.Equal(t, value.String{Value: "key"}, results[0])
	assert.Equal(t, value.String{Value: "value"}, results[1])
}

func TestStringGmatchIteratesAllMatches(t *testing.T) {
	results, _ := run(t, `
local words = {}
for w in string.gmatch("one two three", "%a+") do
  table.insert(words, w)
end
return #words, words[1], words[2], words[3]`)
	assert.Equal(t, value.Integer{Value: 3}, results[0])
	assert.Equal(t, value.String{Value: "one"}, results[1])
	assert.Equal(t, value.String{Value: "two"}, results[2])
	assert.Equal(t, value.String{Value: "three"}, results[3])
}

func TestStringGsubCountAndCaptureTemplate(t *testing.T) {
	results, _ := run(t, `return string.gsub("hello world", "(%w+)", "%1-%1")`)
	assert.Equal(t, value.String{Value: "hello-hello world-world"}, results[0])
	assert.Equal(t, value.Integer{Value: 2}, results[1])
}

func TestStringGsubWithFunction(t *testing.T) {
	results, _ := run(t, `
return string.gsub("hello", "%w", function(c) return string.upper(c) end)`)
	assert.Equal(t, value.String{Value: "HELLO"}, results[0])
}

func TestStringFormatBasic(t *testing.T) {
	results, _ := run(t, `return string.format("%d-%s-%5.2f", 3, "x", 1.5)`)
	assert.Equal(t, value.String{Value: "3-x- 1.50"}, results[0])
}

func TestStringFormatQuote(t *testing.T) {
	results, _ := run(t, `return string.format("%q", "a\"b")`)
	assert.Equal(t, value.String{Value: `"a\"b"`}, results[0])
}

func TestMathFloorCeilAbs(t *testing.T) {
	results, _ := run(t, `return math.floor(3.7), math.ceil(3.2), math.abs(-5)`)
	assert.Equal(t, value.Integer{Value: 3}, results[0])
	assert.Equal(t, value.Integer{Value: 4}, results[1])
	assert.Equal(t, value.Integer{Value: 5}, results[2])
}

func TestMathMaxMin(t *testing.T) {
	results, _ := run(t, `return math.max(1, 5, 3), math.min(1, 5, 3)`)
	assert.Equal(t, value.Integer{Value: 5}, results[0])
	assert.Equal(t, value.Integer{Value: 1}, results[1])
}

func TestSetmetatableProtected(t *testing.T) {
	program, err := parser.ParseProgram(lexer.New(`
local t = setmetatable({}, {__metatable = "locked"})
setmetatable(t, {})`))
	require.NoError(t, err)
	in := evaluator.New(value.NewEnvironment(), &bytes.Buffer{}, evaluator.Limits{})
	Install(in)
	_, err = in.Run(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protected")
}

func TestGetmetatableReturnsProtectedField(t *testing.T) {
	results, _ := run(t, `
local t = setmetatable({}, {__metatable = "locked"})
return getmetatable(t)`)
	assert.Equal(t, value.String{Value: "locked"}, results[0])
}

func TestStringMethodCallSyntax(t *testing.T) {
	results, _ := run(t, `return ("abc"):upper()`)
	assert.Equal(t, value.String{Value: "ABC"}, results[0])
}

func TestStringFieldAccessSyntax(t *testing.T) {
	results, _ := run(t, `
local f = ("hello").byte
return f("hello", 1)`)
	assert.Equal(t, value.Integer{Value: 104}, results[0])
}

func TestStringMethodCallOnVariable(t *testing.T) {
	results, _ := run(t, `
local s = "hello world"
return s:find("world")`)
	assert.Equal(t, value.Integer{Value: 7}, results[0])
	assert.Equal(t, value.Integer{Value: 11}, results[1])
}
