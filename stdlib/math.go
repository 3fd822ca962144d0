// ==============================================================================================
// FILE: stdlib/math.go
// PURPOSE: A pragmatic subset of the `math` library -- the functions that
//          show up in real scripts and in original_source/abstra_lua's own
//          usage (floor/ceil/abs/sqrt/min/max/huge/pi/random), grounded on
//          the same stdlib.py install pattern for a sub-table library.
// ==============================================================================================

package stdlib

import (
	"math"
	"math/rand"

	"luabox/value"
)

func installMath(g *value.Environment) {
	m := value.NewTable()
	set := func(name string, v value.Value) { m.RawSet(value.String{Value: name}, v) }

	set("pi", value.Float{Value: math.Pi})
	set("huge", value.Float{Value: math.Inf(1)})
	set("maxinteger", value.Integer{Value: math.MaxInt64})
	set("mininteger", value.Integer{Value: math.MinInt64})

	unary := func(name string, fn func(float64) float64) {
		set(name, builtin("math."+name, func(args []value.Value) ([]value.Value, error) {
			f, ok := toNumberArg(nth(args, 0))
			if !ok {
				return nil, argErrorf("bad argument #1 to '%s' (number expected)", name)
			}
			return []value.Value{value.Float{Value: fn(f)}}, nil
		}))
	}
	unary("sqrt", math.Sqrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("rad", func(f float64) float64 { return f * math.Pi / 180 })
	unary("deg", func(f float64) float64 { return f * 180 / math.Pi })

	set("abs", builtin("math.abs", func(args []value.Value) ([]value.Value, error) {
		switch x := nth(args, 0).(type) {
		case value.Integer:
			if x.Value < 0 {
				return []value.Value{value.Integer{Value: -x.Value}}, nil
			}
			return []value.Value{x}, nil
		case value.Float:
			return []value.Value{value.Float{Value: math.Abs(x.Value)}}, nil
		}
		return nil, argErrorf("bad argument #1 to 'abs' (number expected)")
	}))

	set("floor", builtin("math.floor", func(args []value.Value) ([]value.Value, error) {
		if i, ok := nth(args, 0).(value.Integer); ok {
			return []value.Value{i}, nil
		}
		f, ok := toNumberArg(nth(args, 0))
		if !ok {
			return nil, argErrorf("bad argument #1 to 'floor' (number expected)")
		}
		return []value.Value{value.Integer{Value: int64(math.Floor(f))}}, nil
	}))

	set("ceil", builtin("math.ceil", func(args []value.Value) ([]value.Value, error) {
		if i, ok := nth(args, 0).(value.Integer); ok {
			return []value.Value{i}, nil
		}
		f, ok := toNumberArg(nth(args, 0))
		if !ok {
			return nil, argErrorf("bad argument #1 to 'ceil' (number expected)")
		}
		return []value.Value{value.Integer{Value: int64(math.Ceil(f))}}, nil
	}))

	set("max", builtin("math.max", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return nil, argErrorf("bad argument #1 to 'max' (value expected)")
		}
		best := args[0]
		bestF, _ := toNumberArg(best)
		for _, a := range args[1:] {
			f, ok := toNumberArg(a)
			if ok && f > bestF {
				best, bestF = a, f
			}
		}
		return []value.Value{best}, nil
	}))

	set("min", builtin("math.min", func(args []value.Value) ([]value.Value, error) {
		if len(args) == 0 {
			return nil, argErrorf("bad argument #1 to 'min' (value expected)")
		}
		best := args[0]
		bestF, _ := toNumberArg(best)
		for _, a := range args[1:] {
			f, ok := toNumberArg(a)
			if ok && f < bestF {
				best, bestF = a, f
			}
		}
		return []value.Value{best}, nil
	}))

	set("tointeger", builtin("math.tointeger", func(args []value.Value) ([]value.Value, error) {
		switch x := nth(args, 0).(type) {
		case value.Integer:
			return []value.Value{x}, nil
		case value.Float:
			if n, ok := value.FloatToExactInt(x.Value); ok {
				return []value.Value{value.Integer{Value: n}}, nil
			}
		}
		return []value.Value{value.NilValue}, nil
	}))

	set("type", builtin("math.type", func(args []value.Value) ([]value.Value, error) {
		switch nth(args, 0).(type) {
		case value.Integer:
			return []value.Value{value.String{Value: "integer"}}, nil
		case value.Float:
			return []value.Value{value.String{Value: "float"}}, nil
		}
		return []value.Value{value.NilValue}, nil
	}))

	set("random", builtin("math.random", func(args []value.Value) ([]value.Value, error) {
		switch len(args) {
		case 0:
			return []value.Value{value.Float{Value: rand.Float64()}}, nil
		case 1:
			m, ok := toIntArg(args[0])
			if !ok || m < 1 {
				return nil, argErrorf("bad argument #1 to 'random' (interval is empty)")
			}
			return []value.Value{value.Integer{Value: 1 + rand.Int63n(m)}}, nil
		default:
			lo, lok := toIntArg(args[0])
			hi, hok := toIntArg(args[1])
			if !lok || !hok || hi < lo {
				return nil, argErrorf("bad argument #2 to 'random' (interval is empty)")
			}
			return []value.Value{value.Integer{Value: lo + rand.Int63n(hi-lo+1)}}, nil
		}
	}))

	set("randomseed", builtin("math.randomseed", func(args []value.Value) ([]value.Value, error) {
		if n, ok := toIntArg(nth(args, 0)); ok {
			rand.Seed(n)
		}
		return nil, nil
	}))

	g.Define("math", m)
}
