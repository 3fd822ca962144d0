// ==============================================================================================
// FILE: stdlib/base.go
// ==============================================================================================
// PACKAGE: stdlib
// PURPOSE: The generic base library (spec §4.5): print/type/tostring/
//          tonumber/assert/error/pcall/xpcall/select/raw*/setmetatable/
//          getmetatable/ipairs/pairs/next/unpack, installed directly into
//          an evaluator's global environment. Grounded in the teacher's
//          object/builtins.go registration pattern (a []struct{Name,
//          Builtin} table plus a newBuiltinError helper) and in
//          original_source/abstra_lua/stdlib.go's install_stdlib, which is
//          the model for the exact function set and argument semantics
//          (defaults, error messages, the ipairs/pairs/next iterator
//          protocol).
// ==============================================================================================

package stdlib

import (
	"strconv"
	"strings"

	"luabox/errs"
	"luabox/evaluator"
	"luabox/value"
)

// call is the engine a Builtin closure invokes to call back into script
// functions (pcall's f, sort's comparator, ipairs' iterator-as-value).
type call interface {
	Call(fn value.Value, args []value.Value) ([]value.Value, error)
	ToString(v value.Value) (string, error)
	Index(left, key value.Value) (value.Value, error)
	NewIndex(left, key, val value.Value) error
	Length(v value.Value) (value.Value, error)
	Write(s string) error
}

// Install registers every library this package provides (base, string,
// table, math, os) into in's global environment, and wires a synthetic
// metatable onto in so string values can be indexed into the string
// library (spec §4.3: `("abc"):upper()`).
func Install(in *evaluator.Interpreter) {
	installBase(in, in.Globals)
	strTable := installString(in, in.Globals)
	installTable(in, in.Globals)
	installMath(in.Globals)
	installOS(in.Globals)

	stringMeta := value.NewTable()
	stringMeta.RawSet(value.String{Value: "__index"}, strTable)
	in.SetStringMetatable(stringMeta)
}

func builtin(name string, fn value.BuiltinFunc) *value.Builtin {
	return &value.Builtin{Name: name, Fn: fn}
}

func nth(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.NilValue
	}
	return args[i]
}

func argErrorf(format string, args ...interface{}) error {
	return errs.NewRuntimeError(format, args...)
}

func toNumberArg(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return float64(x.Value), true
	case value.Float:
		return x.Value, true
	case value.String:
		return parseLuaNumber(strings.TrimSpace(x.Value))
	}
	return 0, false
}

func parseLuaNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n), true
	}
	return 0, false
}

func toIntArg(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return x.Value, true
	case value.Float:
		return value.FloatToExactInt(x.Value)
	}
	return 0, false
}

func installBase(in call, g *value.Environment) {
	g.Define("print", builtin("print", func(args []value.Value) ([]value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			s, err := in.ToString(a)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		if err := in.Write(strings.Join(parts, "\t") + "\n"); err != nil {
			return nil, err
		}
		return nil, nil
	}))

	g.Define("type", builtin("type", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.String{Value: value.TypeName(nth(args, 0))}}, nil
	}))

	g.Define("tostring", builtin("tostring", func(args []value.Value) ([]value.Value, error) {
		s, err := in.ToString(nth(args, 0))
		if err != nil {
			return nil, err
		}
		return []value.Value{value.String{Value: s}}, nil
	}))

	g.Define("tonumber", builtin("tonumber", func(args []value.Value) ([]value.Value, error) {
		if len(args) > 1 {
			s, ok := nth(args, 0).(value.String)
			base, baseOK := toIntArg(nth(args, 1))
			if !ok || !baseOK {
				return nil, argErrorf("bad argument to 'tonumber'")
			}
			n, err := strconv.ParseInt(strings.TrimSpace(s.Value), int(base), 64)
			if err != nil {
				return []value.Value{value.NilValue}, nil
			}
			return []value.Value{value.Integer{Value: n}}, nil
		}
		switch x := nth(args, 0).(type) {
		case value.Integer, value.Float:
			return []value.Value{x}, nil
		case value.String:
			s := strings.TrimSpace(x.Value)
			if n, err := strconv.ParseInt(s, 0, 64); err == nil {
				return []value.Value{value.Integer{Value: n}}, nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return []value.Value{value.Float{Value: f}}, nil
			}
		}
		return []value.Value{value.NilValue}, nil
	}))

	g.Define("assert", builtin("assert", func(args []value.Value) ([]value.Value, error) {
		if !value.IsTruthy(nth(args, 0)) {
			if len(args) > 1 {
				s, _ := in.ToString(args[1])
				return nil, errs.NewRuntimeError("%s", s)
			}
			return nil, errs.NewRuntimeError("assertion failed!")
		}
		return args, nil
	}))

	g.Define("error", builtin("error", func(args []value.Value) ([]value.Value, error) {
		v := nth(args, 0)
		if s, ok := v.(value.String); ok {
			return nil, errs.NewRuntimeError("%s", s.Value)
		}
		s, _ := in.ToString(v)
		return nil, errs.NewRuntimeErrorValue(s, v)
	}))

	g.Define("pcall", builtin("pcall", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return nil, argErrorf("bad argument #1 to 'pcall' (value expected)")
		}
		results, err := in.Call(args[0], args[1:])
		if err == nil {
			return append([]value.Value{value.True}, results...), nil
		}
		if errs.IsQuota(err) {
			return nil, err
		}
		return []value.Value{value.False, errorMessageValue(err)}, nil
	}))

	g.Define("xpcall", builtin("xpcall", func(args []value.Value) ([]value.Value, error) {
		if len(args) < 2 {
			return nil, argErrorf("bad argument #2 to 'xpcall' (value expected)")
		}
		results, err := in.Call(args[0], args[2:])
		if err == nil {
			return append([]value.Value{value.True}, results...), nil
		}
		if errs.IsQuota(err) {
			return nil, err
		}
		hresults, herr := in.Call(args[1], []value.Value{errorMessageValue(err)})
		if herr != nil {
			return []value.Value{value.False, errorMessageValue(herr)}, nil
		}
		return append([]value.Value{value.False}, hresults...), nil
	}))

	g.Define("select", builtin("select", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return nil, argErrorf("bad argument #1 to 'select' (number or string expected)")
		}
		rest := args[1:]
		if s, ok := args[0].(value.String); ok && s.Value == "#" {
			return []value.Value{value.Integer{Value: int64(len(rest))}}, nil
		}
		n, ok := toIntArg(args[0])
		if !ok {
			return nil, argErrorf("bad argument #1 to 'select' (number expected)")
		}
		if n < 0 {
			n = int64(len(rest)) + 1 + n
		}
		if n < 1 {
			return nil, argErrorf("bad argument #1 to 'select' (index out of range)")
		}
		if int(n) > len(rest) {
			return nil, nil
		}
		return rest[n-1:], nil
	}))

	g.Define("rawget", builtin("rawget", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'rawget' (table expected)")
		}
		return []value.Value{t.RawGet(nth(args, 1))}, nil
	}))

	g.Define("rawset", builtin("rawset", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'rawset' (table expected)")
		}
		if err := t.RawSet(nth(args, 1), nth(args, 2)); err != nil {
			return nil, errs.NewRuntimeError("%s", err.Error())
		}
		return []value.Value{t}, nil
	}))

	g.Define("rawlen", builtin("rawlen", func(args []value.Value) ([]value.Value, error) {
		switch x := nth(args, 0).(type) {
		case *value.Table:
			return []value.Value{value.Integer{Value: x.Len()}}, nil
		case value.String:
			return []value.Value{value.Integer{Value: int64(len(x.Value))}}, nil
		}
		return nil, argErrorf("table or string expected")
	}))

	g.Define("rawequal", builtin("rawequal", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.BoolValue(value.RawEqual(nth(args, 0), nth(args, 1)))}, nil
	}))

	g.Define("setmetatable", builtin("setmetatable", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'setmetatable' (table expected)")
		}
		if t.Metatable != nil {
			if prot := t.Metatable.RawGet(value.String{Value: "__metatable"}); !isNil(prot) {
				return nil, argErrorf("cannot change a protected metatable")
			}
		}
		switch mt := nth(args, 1).(type) {
		case value.Nil:
			t.Metatable = nil
		case *value.Table:
			t.Metatable = mt
		default:
			return nil, argErrorf("bad argument #2 to 'setmetatable' (nil or table expected)")
		}
		return []value.Value{t}, nil
	}))

	g.Define("getmetatable", builtin("getmetatable", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok || t.Metatable == nil {
			return []value.Value{value.NilValue}, nil
		}
		if prot := t.Metatable.RawGet(value.String{Value: "__metatable"}); !isNil(prot) {
			return []value.Value{prot}, nil
		}
		return []value.Value{t.Metatable}, nil
	}))

	g.Define("ipairs", builtin("ipairs", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'ipairs' (table expected)")
		}
		iter := builtin("ipairs-iterator", func(iargs []value.Value) ([]value.Value, error) {
			idx, _ := toIntArg(nth(iargs, 1))
			next := idx + 1
			v := t.RawGet(value.Integer{Value: next})
			if isNil(v) {
				return []value.Value{value.NilValue}, nil
			}
			return []value.Value{value.Integer{Value: next}, v}, nil
		})
		return []value.Value{iter, t, value.Integer{Value: 0}}, nil
	}))

	nextBuiltin := builtin("next", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'next' (table expected)")
		}
		k, v, found, err := t.Next(nth(args, 1))
		if err != nil {
			return nil, errs.NewRuntimeError("%s", err.Error())
		}
		if !found {
			return []value.Value{value.NilValue}, nil
		}
		return []value.Value{k, v}, nil
	})
	g.Define("next", nextBuiltin)

	g.Define("pairs", builtin("pairs", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'pairs' (table expected)")
		}
		if t.Metatable != nil {
			if mm := t.Metatable.RawGet(value.String{Value: "__pairs"}); !isNil(mm) {
				return in.Call(mm, []value.Value{t})
			}
		}
		return []value.Value{nextBuiltin, t, value.NilValue}, nil
	}))

	g.Define("unpack", builtin("unpack", func(args []value.Value) ([]value.Value, error) {
		return unpackTable(args)
	}))
}

func unpackTable(args []value.Value) ([]value.Value, error) {
	t, ok := nth(args, 0).(*value.Table)
	if !ok {
		return nil, argErrorf("bad argument #1 to 'unpack' (table expected)")
	}
	i := int64(1)
	if len(args) > 1 {
		if n, ok := toIntArg(args[1]); ok {
			i = n
		}
	}
	j := t.Len()
	if len(args) > 2 {
		if n, ok := toIntArg(args[2]); ok {
			j = n
		}
	}
	var out []value.Value
	for idx := i; idx <= j; idx++ {
		out = append(out, t.RawGet(value.Integer{Value: idx}))
	}
	return out, nil
}

func isNil(v value.Value) bool {
	_, ok := v.(value.Nil)
	return ok
}

// errorMessageValue converts a Go error raised from the script side back
// into the script-level value pcall/xpcall hand back: the original
// error(v) payload for a non-string v, or its message as a String.
func errorMessageValue(err error) value.Value {
	var re *errs.RuntimeError
	if e, ok := err.(*errs.RuntimeError); ok {
		re = e
	}
	if re != nil {
		if v, ok := re.ErrorValue(); ok {
			if sv, ok := v.(value.Value); ok {
				return sv
			}
		}
	}
	return value.String{Value: err.Error()}
}
