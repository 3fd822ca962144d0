// ==============================================================================================
// FILE: evaluator/operators.go
// PURPOSE: Unary and binary operator evaluation: numeric arithmetic with
//          Integer/Float coherence, string concatenation, comparisons, and
//          metamethod fallback for table operands (spec §3.1/§4.4).
// ==============================================================================================

package evaluator

import (
	"math"
	"strconv"
	"strings"

	"luabox/ast"
	"luabox/errs"
	"luabox/value"
)

// maxStringLen bounds the length a concatenation may produce, per spec
// §4.3's "string length overflow" cap.
const maxStringLen = 10_000_000

func (in *Interpreter) evalPrefix(op string, right value.Value) (value.Value, error) {
	switch op {
	case "not":
		return value.BoolValue(!value.IsTruthy(right)), nil
	case "-":
		switch x := right.(type) {
		case value.Integer:
			return value.Integer{Value: -x.Value}, nil
		case value.Float:
			return value.Float{Value: -x.Value}, nil
		}
		if mm := in.metamethod(right, "__unm"); mm != nil {
			results, err := in.call(mm, []value.Value{right, right})
			if err != nil {
				return nil, err
			}
			return nth(results, 0), nil
		}
		return nil, errs.NewRuntimeError("attempt to perform arithmetic on a %s value", value.TypeName(right))
	case "#":
		return in.length(right)
	case "~":
		i, ok := toInt(right)
		if !ok {
			return nil, errs.NewRuntimeError("attempt to perform bitwise operation on a %s value", value.TypeName(right))
		}
		return value.Integer{Value: ^i}, nil
	}
	return nil, errs.NewRuntimeError("unknown unary operator %q", op)
}

// evalInfix evaluates a binary expression. `and`/`or` short-circuit and so
// must evaluate Right lazily; every other operator evaluates both sides
// eagerly first.
func (in *Interpreter) evalInfix(node *ast.InfixExpression, env *value.Environment) (value.Value, error) {
	if node.Operator == "and" {
		left, err := in.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(left) {
			return left, nil
		}
		return in.Eval(node.Right, env)
	}
	if node.Operator == "or" {
		left, err := in.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(left) {
			return left, nil
		}
		return in.Eval(node.Right, env)
	}

	left, err := in.Eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.Eval(node.Right, env)
	if err != nil {
		return nil, err
	}
	return in.applyBinary(node.Operator, left, right)
}

func (in *Interpreter) applyBinary(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+", "-", "*", "/", "//", "%", "^":
		return in.arith(op, left, right)
	case "..":
		return in.concat(left, right)
	case "==":
		return in.equals(left, right)
	case "~=":
		eq, err := in.equals(left, right)
		if err != nil {
			return nil, err
		}
		return value.BoolValue(!value.IsTruthy(eq)), nil
	case "<", "<=", ">", ">=":
		return in.compare(op, left, right)
	case "&", "|", "~", "<<", ">>":
		return in.bitwise(op, left, right)
	}
	return nil, errs.NewRuntimeError("unknown binary operator %q", op)
}

var arithMetaEvent = map[string]string{
	"+": "__add", "-": "__sub", "*": "__mul", "/": "__div",
	"//": "__idiv", "%": "__mod", "^": "__pow",
}

func (in *Interpreter) arith(op string, left, right value.Value) (value.Value, error) {
	li, liok := coerceInt(left)
	ri, riok := coerceInt(right)
	if liok && riok && op != "/" && op != "^" {
		return arithInt(op, li, ri)
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return arithFloat(op, lf, rf)
	}

	if mm := in.metamethod(left, arithMetaEvent[op]); mm != nil {
		return in.callBinaryMeta(mm, left, right)
	}
	if mm := in.metamethod(right, arithMetaEvent[op]); mm != nil {
		return in.callBinaryMeta(mm, left, right)
	}
	bad := left
	if lok {
		bad = right
	}
	return nil, errs.NewRuntimeError("attempt to perform arithmetic on a %s value", value.TypeName(bad))
}

func (in *Interpreter) callBinaryMeta(mm, left, right value.Value) (value.Value, error) {
	results, err := in.call(mm, []value.Value{left, right})
	if err != nil {
		return nil, err
	}
	return nth(results, 0), nil
}

func arithInt(op string, l, r int64) (value.Value, error) {
	switch op {
	case "+":
		return value.Integer{Value: l + r}, nil
	case "-":
		return value.Integer{Value: l - r}, nil
	case "*":
		return value.Integer{Value: l * r}, nil
	case "//":
		if r == 0 {
			return nil, errs.NewRuntimeError("attempt to perform 'n//0'")
		}
		q := l / r
		if (l%r != 0) && ((l < 0) != (r < 0)) {
			q--
		}
		return value.Integer{Value: q}, nil
	case "%":
		if r == 0 {
			return nil, errs.NewRuntimeError("attempt to perform 'n%%0'")
		}
		m := l % r
		if m != 0 && ((m < 0) != (r < 0)) {
			m += r
		}
		return value.Integer{Value: m}, nil
	}
	return nil, errs.NewRuntimeError("unknown integer operator %q", op)
}

func arithFloat(op string, l, r float64) (value.Value, error) {
	switch op {
	case "+":
		return value.Float{Value: l + r}, nil
	case "-":
		return value.Float{Value: l - r}, nil
	case "*":
		return value.Float{Value: l * r}, nil
	case "/":
		return value.Float{Value: l / r}, nil
	case "^":
		return value.Float{Value: math.Pow(l, r)}, nil
	case "//":
		return value.Float{Value: math.Floor(l / r)}, nil
	case "%":
		m := math.Mod(l, r)
		if m != 0 && ((m < 0) != (r < 0)) {
			m += r
		}
		return value.Float{Value: m}, nil
	}
	return nil, errs.NewRuntimeError("unknown float operator %q", op)
}

func (in *Interpreter) concat(left, right value.Value) (value.Value, error) {
	ls, lok := concatString(left)
	rs, rok := concatString(right)
	if lok && rok {
		if len(ls)+len(rs) > maxStringLen {
			return nil, errs.NewRuntimeError("string length overflow")
		}
		return value.String{Value: ls + rs}, nil
	}
	if mm := in.metamethod(left, "__concat"); mm != nil {
		return in.callBinaryMeta(mm, left, right)
	}
	if mm := in.metamethod(right, "__concat"); mm != nil {
		return in.callBinaryMeta(mm, left, right)
	}
	bad := left
	if lok {
		bad = right
	}
	return nil, errs.NewRuntimeError("attempt to concatenate a %s value", value.TypeName(bad))
}

func concatString(v value.Value) (string, bool) {
	switch x := v.(type) {
	case value.String:
		return x.Value, true
	case value.Integer, value.Float:
		return v.Inspect(), true
	}
	return "", false
}

func (in *Interpreter) equals(left, right value.Value) (value.Value, error) {
	if value.RawEqual(left, right) {
		return value.True, nil
	}
	lt, lok := left.(*value.Table)
	rt, rok := right.(*value.Table)
	if lok && rok {
		mm := in.metamethod(lt, "__eq")
		if mm == nil {
			mm = in.metamethod(rt, "__eq")
		}
		if mm != nil {
			results, err := in.call(mm, []value.Value{left, right})
			if err != nil {
				return nil, err
			}
			return value.BoolValue(value.IsTruthy(nth(results, 0))), nil
		}
	}
	return value.False, nil
}

func (in *Interpreter) compare(op string, left, right value.Value) (value.Value, error) {
	// Only actual numbers order numerically; numeric-looking strings are
	// not coerced here and compare as strings.
	lf, lok := toNumeric(left)
	rf, rok := toNumeric(right)
	if lok && rok {
		return value.BoolValue(numCompare(op, lf, rf)), nil
	}
	ls, lsok := left.(value.String)
	rs, rsok := right.(value.String)
	if lsok && rsok {
		return value.BoolValue(strCompare(op, ls.Value, rs.Value)), nil
	}

	event := "__lt"
	if op == "<=" || op == ">=" {
		event = "__le"
	}
	a, b := left, right
	if op == ">" || op == ">=" {
		a, b = right, left
	}
	if mm := in.metamethod(a, event); mm != nil {
		results, err := in.call(mm, []value.Value{a, b})
		if err != nil {
			return nil, err
		}
		return value.BoolValue(value.IsTruthy(nth(results, 0))), nil
	}
	if mm := in.metamethod(b, event); mm != nil {
		results, err := in.call(mm, []value.Value{a, b})
		if err != nil {
			return nil, err
		}
		return value.BoolValue(value.IsTruthy(nth(results, 0))), nil
	}
	return nil, errs.NewRuntimeError("attempt to compare %s with %s", value.TypeName(left), value.TypeName(right))
}

func numCompare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func strCompare(op string, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func (in *Interpreter) bitwise(op string, left, right value.Value) (value.Value, error) {
	li, lok := toInt(left)
	ri, rok := toInt(right)
	if !lok || !rok {
		event := map[string]string{"&": "__band", "|": "__bor", "~": "__bxor", "<<": "__shl", ">>": "__shr"}[op]
		if mm := in.metamethod(left, event); mm != nil {
			return in.callBinaryMeta(mm, left, right)
		}
		if mm := in.metamethod(right, event); mm != nil {
			return in.callBinaryMeta(mm, left, right)
		}
		bad := left
		if lok {
			bad = right
		}
		return nil, errs.NewRuntimeError("attempt to perform bitwise operation on a %s value", value.TypeName(bad))
	}
	switch op {
	case "&":
		return value.Integer{Value: li & ri}, nil
	case "|":
		return value.Integer{Value: li | ri}, nil
	case "~":
		return value.Integer{Value: li ^ ri}, nil
	case "<<":
		return value.Integer{Value: shiftLeft(li, ri)}, nil
	case ">>":
		return value.Integer{Value: shiftLeft(li, -ri)}, nil
	}
	return nil, errs.NewRuntimeError("unknown bitwise operator %q", op)
}

// shiftLeft implements Lua's shift semantics: a negative count shifts the
// other way, and a count >= 64 (or <= -64) always yields 0.
func shiftLeft(v, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(v) << uint(n))
	}
	return int64(uint64(v) >> uint(-n))
}

// toFloat coerces a numeric or numeric-looking string operand to a float,
// per spec §4.3's "coerce string operands that look numeric" rule.
func toFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return float64(x.Value), true
	case value.Float:
		return x.Value, true
	case value.String:
		n, ok := parseNumberString(x.Value)
		if !ok {
			return 0, false
		}
		return toFloat(n)
	}
	return 0, false
}

func toInt(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return x.Value, true
	case value.Float:
		return value.FloatToExactInt(x.Value)
	case value.String:
		n, ok := parseNumberString(x.Value)
		if !ok {
			return 0, false
		}
		return toInt(n)
	}
	return 0, false
}

// coerceInt succeeds only when v is already an integer, or a string that
// parses as an integer literal (not one that merely happens to have a
// zero fractional part) -- this keeps "10" + 5 taking the integer
// arithmetic path while "10.0" + 5 still takes the float path, matching
// spec §4.3's "try integer then float" ordering.
func coerceInt(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return x.Value, true
	case value.String:
		n, ok := parseNumberString(x.Value)
		if !ok {
			return 0, false
		}
		if iv, iok := n.(value.Integer); iok {
			return iv.Value, true
		}
	}
	return 0, false
}

// parseNumberString implements spec §4.3's "try integer then float; hex
// allowed" string->number coercion, grounded on
// original_source/abstra_lua/interpreter.py's _tonum: a leading sign is
// allowed, "0x"/"0X" parses as a hex integer, anything containing '.'/'e'/'E'
// (or that fails as an integer) is retried as a float.
func parseNumberString(s string) (value.Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	neg := false
	t := s
	switch {
	case strings.HasPrefix(t, "-"):
		neg, t = true, t[1:]
	case strings.HasPrefix(t, "+"):
		t = t[1:]
	}
	if len(t) > 2 && (strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X")) {
		if n, err := strconv.ParseInt(t[2:], 16, 64); err == nil {
			if neg {
				n = -n
			}
			return value.Integer{Value: n}, true
		}
	}
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Integer{Value: n}, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float{Value: f}, true
	}
	return nil, false
}
