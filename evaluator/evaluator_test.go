// ==============================================================================================
// FILE: evaluator/evaluator_test.go
// PURPOSE: End-to-end evaluator tests driving the full lexer -> parser ->
//          evaluator pipeline, in the teacher's integration-test style:
//          source in, resulting value (or output, or error) checked out.
// ==============================================================================================

package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luabox/errs"
	"luabox/lexer"
	"luabox/parser"
	"luabox/value"
)

// testGlobals returns a fresh global environment pre-seeded with the
// handful of builtins these tests exercise directly. The real versions
// of these live in the stdlib package; evaluator_test.go cannot import
// stdlib (it imports evaluator, which would cycle), so minimal
// stand-ins are registered here instead.
func testGlobals() *value.Environment {
	env := value.NewEnvironment()
	env.Define("setmetatable", &value.Builtin{Name: "setmetatable", Fn: func(args []value.Value) ([]value.Value, error) {
		tbl, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, errs.NewRuntimeError("bad argument #1 to 'setmetatable' (table expected)")
		}
		mt, ok := nth(args, 1).(*value.Table)
		if !ok {
			return nil, errs.NewRuntimeError("bad argument #2 to 'setmetatable' (table expected)")
		}
		tbl.Metatable = mt
		return []value.Value{tbl}, nil
	}})
	env.Define("ipairs", &value.Builtin{Name: "ipairs", Fn: func(args []value.Value) ([]value.Value, error) {
		tbl, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, errs.NewRuntimeError("bad argument #1 to 'ipairs' (table expected)")
		}
		iter := &value.Builtin{Name: "ipairs-iterator", Fn: func(iargs []value.Value) ([]value.Value, error) {
			i, _ := nth(iargs, 1).(value.Integer)
			next := i.Value + 1
			v := tbl.RawGet(value.Integer{Value: next})
			if isNil(v) {
				return []value.Value{value.NilValue}, nil
			}
			return []value.Value{value.Integer{Value: next}, v}, nil
		}}
		return []value.Value{iter, tbl, value.Integer{Value: 0}}, nil
	}})
	return env
}

func run(t *testing.T, src string) ([]value.Value, *bytes.Buffer) {
	t.Helper()
	program, err := parser.ParseProgram(lexer.New(src))
	require.NoError(t, err)
	var out bytes.Buffer
	in := New(testGlobals(), &out, Limits{})
	results, err := in.Run(program)
	require.NoError(t, err)
	return results, &out
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	program, err := parser.ParseProgram(lexer.New(src))
	require.NoError(t, err)
	in := New(testGlobals(), &bytes.Buffer{}, Limits{})
	_, err = in.Run(program)
	return err
}

func TestArithmetic(t *testing.T) {
	results, _ := run(t, `return 1 + 2 * 3`)
	assert.Equal(t, value.Integer{Value: 7}, results[0])
}

func TestIntegerFloatCoherence(t *testing.T) {
	results, _ := run(t, `return 1 == 1.0`)
	assert.Equal(t, value.True, results[0])
}

func TestFloorDivAndMod(t *testing.T) {
	results, _ := run(t, `return -7 // 2, -7 % 2`)
	assert.Equal(t, value.Integer{Value: -4}, results[0])
	assert.Equal(t, value.Integer{Value: 1}, results[1])
}

func TestStringConcatCoercesNumbers(t *testing.T) {
	results, _ := run(t, `return "x" .. 1 .. 2.5`)
	assert.Equal(t, value.String{Value: "x12.5"}, results[0])
}

func TestLocalScopingAndShadowing(t *testing.T) {
	results, _ := run(t, `
local x = 1
do
  local x = 2
end
return x`)
	assert.Equal(t, value.Integer{Value: 1}, results[0])
}

func TestImplicitGlobalAssignment(t *testing.T) {
	results, _ := run(t, `
function f() g = 10 end
f()
return g`)
	assert.Equal(t, value.Integer{Value: 10}, results[0])
}

func TestWhileLoop(t *testing.T) {
	results, _ := run(t, `
local i, sum = 0, 0
while i < 5 do
  i = i + 1
  sum = sum + i
end
return sum`)
	assert.Equal(t, value.Integer{Value: 15}, results[0])
}

func TestBreak(t *testing.T) {
	results, _ := run(t, `
local sum = 0
for i = 1, 10 do
  if i > 3 then break end
  sum = sum + i
end
return sum`)
	assert.Equal(t, value.Integer{Value: 6}, results[0])
}

func TestNumericForStep(t *testing.T) {
	results, _ := run(t, `
local sum = 0
for i = 10, 1, -2 do sum = sum + i end
return sum`)
	assert.Equal(t, value.Integer{Value: 30}, results[0])
}

func TestClosureCapture(t *testing.T) {
	results, _ := run(t, `
local function newAdder(x)
  return function(y) return x + y end
end
local addTwo = newAdder(2)
return addTwo(3)`)
	assert.Equal(t, value.Integer{Value: 5}, results[0])
}

func TestRecursiveFactorial(t *testing.T) {
	results, _ := run(t, `
local function fact(n)
  if n == 0 then return 1 end
  return n * fact(n - 1)
end
return fact(5)`)
	assert.Equal(t, value.Integer{Value: 120}, results[0])
}

func TestMultiValueReturnAdjustment(t *testing.T) {
	results, _ := run(t, `
local function two() return 1, 2 end
local a, b, c = two(), two()
return a, b, c`)
	assert.Equal(t, value.Integer{Value: 1}, results[0]) // first two() collapsed
	assert.Equal(t, value.Integer{Value: 1}, results[1])
	assert.Equal(t, value.Integer{Value: 2}, results[2])
}

func TestVarargFunction(t *testing.T) {
	results, _ := run(t, `
local function sum(...)
  local s = 0
  local args = {...}
  for i = 1, #args do s = s + args[i] end
  return s
end
return sum(1, 2, 3, 4)`)
	assert.Equal(t, value.Integer{Value: 10}, results[0])
}

func TestTableConstructorAndIndex(t *testing.T) {
	results, _ := run(t, `
local t = {10, 20, x = "hi", [100] = "far"}
return t[1], t[2], t.x, t[100], #t`)
	assert.Equal(t, value.Integer{Value: 10}, results[0])
	assert.Equal(t, value.Integer{Value: 20}, results[1])
	assert.Equal(t, value.String{Value: "hi"}, results[2])
	assert.Equal(t, value.String{Value: "far"}, results[3])
	assert.Equal(t, value.Integer{Value: 2}, results[4])
}

func TestMetatableIndexFunction(t *testing.T) {
	results, _ := run(t, `
local base = {greet = function(self) return "hi" end}
local t = setmetatable({}, {__index = base})
return t:greet()`)
	assert.Equal(t, value.String{Value: "hi"}, results[0])
}

func TestMetatableArithmetic(t *testing.T) {
	results, _ := run(t, `
local mt = {__add = function(a, b) return a.v + b.v end}
local a = setmetatable({v = 1}, mt)
local b = setmetatable({v = 2}, mt)
return a + b`)
	assert.Equal(t, value.Integer{Value: 3}, results[0])
}

func TestGenericForIpairs(t *testing.T) {
	results, _ := run(t, `
local t = {10, 20, 30}
local sum = 0
for i, v in ipairs(t) do sum = sum + v end
return sum`)
	assert.Equal(t, value.Integer{Value: 60}, results[0])
}

func TestIndexErrorOnNil(t *testing.T) {
	err := runErr(t, `local x = nil; return x.y`)
	assert.Error(t, err)
}

func TestInstructionQuotaExceeded(t *testing.T) {
	program, perr := parser.ParseProgram(lexer.New(`while true do end`))
	require.NoError(t, perr)
	in := New(value.NewEnvironment(), &bytes.Buffer{}, Limits{MaxInstructions: 100})
	_, err := in.Run(program)
	assert.Error(t, err)
}

func TestCallDepthQuotaExceeded(t *testing.T) {
	program, perr := parser.ParseProgram(lexer.New(`
local function f() return f() end
return f()`))
	require.NoError(t, perr)
	in := New(value.NewEnvironment(), &bytes.Buffer{}, Limits{MaxCallDepth: 10})
	_, err := in.Run(program)
	assert.Error(t, err)
}

func TestArithCoercesNumericStringOperands(t *testing.T) {
	results, _ := run(t, `return "10" + 5`)
	assert.Equal(t, value.Integer{Value: 15}, results[0])
}

func TestArithCoercesFloatLookingStringOperand(t *testing.T) {
	results, _ := run(t, `return "10.5" + 5`)
	assert.Equal(t, value.Float{Value: 15.5}, results[0])
}

func TestArithCoercesHexStringOperand(t *testing.T) {
	results, _ := run(t, `return "0x10" + 1`)
	assert.Equal(t, value.Integer{Value: 17}, results[0])
}

func TestArithNonNumericStringStillErrors(t *testing.T) {
	err := runErr(t, `return "abc" + 5`)
	assert.Error(t, err)
}

func TestBitwiseCoercesNumericStringOperand(t *testing.T) {
	results, _ := run(t, `return "6" & 3`)
	assert.Equal(t, value.Integer{Value: 2}, results[0])
}

func TestConcatLengthOverflowFails(t *testing.T) {
	in := New(value.NewEnvironment(), &bytes.Buffer{}, Limits{})
	half := value.String{Value: strings.Repeat("a", maxStringLen/2+1)}
	_, err := in.concat(half, half)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "string length overflow")
}

func TestConcatUnderCapSucceeds(t *testing.T) {
	in := New(value.NewEnvironment(), &bytes.Buffer{}, Limits{})
	result, err := in.concat(value.String{Value: "ab"}, value.String{Value: "cd"})
	require.NoError(t, err)
	assert.Equal(t, value.String{Value: "abcd"}, result)
}
