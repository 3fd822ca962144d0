// ==============================================================================================
// FILE: stdlib/table.go
// PURPOSE: The `table` library: insert/remove/sort/concat/pack/unpack/move,
//          grounded on original_source/abstra_lua/stdlib.py's table_lib
//          section (same defaulting rules, same shift-in-place semantics).
// ==============================================================================================

package stdlib

import (
	"sort"

	"luabox/errs"
	"luabox/value"
)

func installTable(in call, g *value.Environment) {
	tbl := value.NewTable()

	tbl.RawSet(value.String{Value: "insert"}, builtin("table.insert", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'insert' (table expected)")
		}
		switch len(args) {
		case 2:
			return nil, t.RawSet(value.Integer{Value: t.Len() + 1}, args[1])
		case 3:
			pos, ok := toIntArg(args[1])
			if !ok {
				return nil, argErrorf("bad argument #2 to 'insert' (number expected)")
			}
			n := t.Len()
			for i := n; i >= pos; i-- {
				if err := t.RawSet(value.Integer{Value: i + 1}, t.RawGet(value.Integer{Value: i})); err != nil {
					return nil, err
				}
			}
			return nil, t.RawSet(value.Integer{Value: pos}, args[2])
		}
		return nil, argErrorf("wrong number of arguments to 'insert'")
	}))

	tbl.RawSet(value.String{Value: "remove"}, builtin("table.remove", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'remove' (table expected)")
		}
		n := t.Len()
		pos := n
		if len(args) > 1 {
			p, ok := toIntArg(args[1])
			if !ok {
				return nil, argErrorf("bad argument #2 to 'remove' (number expected)")
			}
			pos = p
		}
		if n == 0 {
			return []value.Value{value.NilValue}, nil
		}
		removed := t.RawGet(value.Integer{Value: pos})
		for i := pos; i < n; i++ {
			if err := t.RawSet(value.Integer{Value: i}, t.RawGet(value.Integer{Value: i + 1})); err != nil {
				return nil, err
			}
		}
		if err := t.RawSet(value.Integer{Value: n}, value.NilValue); err != nil {
			return nil, err
		}
		return []value.Value{removed}, nil
	}))

	tbl.RawSet(value.String{Value: "sort"}, builtin("table.sort", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'sort' (table expected)")
		}
		n := int(t.Len())
		items := make([]value.Value, n)
		for i := 0; i < n; i++ {
			items[i] = t.RawGet(value.Integer{Value: int64(i + 1)})
		}

		var sortErr error
		var less func(a, b value.Value) bool
		if len(args) > 1 && !isNil(args[1]) {
			cmp := args[1]
			less = func(a, b value.Value) bool {
				if sortErr != nil {
					return false
				}
				results, err := in.Call(cmp, []value.Value{a, b})
				if err != nil {
					sortErr = err
					return false
				}
				return value.IsTruthy(nth(results, 0))
			}
		} else {
			less = func(a, b value.Value) bool {
				if sortErr != nil {
					return false
				}
				af, aok := toNumberArg(a)
				bf, bok := toNumberArg(b)
				if aok && bok {
					return af < bf
				}
				as, asok := a.(value.String)
				bs, bsok := b.(value.String)
				if asok && bsok {
					return as.Value < bs.Value
				}
				sortErr = errs.NewRuntimeError("attempt to compare two incompatible values")
				return false
			}
		}

		sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
		if sortErr != nil {
			return nil, sortErr
		}
		for i, v := range items {
			if err := t.RawSet(value.Integer{Value: int64(i + 1)}, v); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}))

	tbl.RawSet(value.String{Value: "concat"}, builtin("table.concat", func(args []value.Value) ([]value.Value, error) {
		t, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'concat' (table expected)")
		}
		sep := ""
		if len(args) > 1 {
			if s, ok := args[1].(value.String); ok {
				sep = s.Value
			}
		}
		i := int64(1)
		if len(args) > 2 {
			if n, ok := toIntArg(args[2]); ok {
				i = n
			}
		}
		j := t.Len()
		if len(args) > 3 {
			if n, ok := toIntArg(args[3]); ok {
				j = n
			}
		}
		var sb []string
		for idx := i; idx <= j; idx++ {
			v := t.RawGet(value.Integer{Value: idx})
			s, ok := concatScalar(v)
			if !ok {
				return nil, errs.NewRuntimeError("invalid value (%s) at index %d in table for 'concat'", value.TypeName(v), idx)
			}
			sb = append(sb, s)
		}
		out := ""
		for i, s := range sb {
			if i > 0 {
				out += sep
			}
			out += s
		}
		return []value.Value{value.String{Value: out}}, nil
	}))

	tbl.RawSet(value.String{Value: "pack"}, builtin("table.pack", func(args []value.Value) ([]value.Value, error) {
		t := value.NewTable()
		for i, v := range args {
			if err := t.RawSet(value.Integer{Value: int64(i + 1)}, v); err != nil {
				return nil, err
			}
		}
		if err := t.RawSet(value.String{Value: "n"}, value.Integer{Value: int64(len(args))}); err != nil {
			return nil, err
		}
		return []value.Value{t}, nil
	}))

	tbl.RawSet(value.String{Value: "unpack"}, builtin("table.unpack", func(args []value.Value) ([]value.Value, error) {
		return unpackTable(args)
	}))

	tbl.RawSet(value.String{Value: "move"}, builtin("table.move", func(args []value.Value) ([]value.Value, error) {
		a1, ok := nth(args, 0).(*value.Table)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'move' (table expected)")
		}
		f, fok := toIntArg(nth(args, 1))
		e, eok := toIntArg(nth(args, 2))
		tpos, tok := toIntArg(nth(args, 3))
		if !fok || !eok || !tok {
			return nil, argErrorf("bad argument to 'move'")
		}
		a2 := a1
		if len(args) > 4 {
			dst, ok := args[4].(*value.Table)
			if !ok {
				return nil, argErrorf("bad argument #5 to 'move' (table expected)")
			}
			a2 = dst
		}
		if e >= f {
			n := e - f
			if tpos > f {
				for i := n; i >= 0; i-- {
					if err := a2.RawSet(value.Integer{Value: tpos + i}, a1.RawGet(value.Integer{Value: f + i})); err != nil {
						return nil, err
					}
				}
			} else {
				for i := int64(0); i <= n; i++ {
					if err := a2.RawSet(value.Integer{Value: tpos + i}, a1.RawGet(value.Integer{Value: f + i})); err != nil {
						return nil, err
					}
				}
			}
		}
		return []value.Value{a2}, nil
	}))

	g.Define("table", tbl)
}

func concatScalar(v value.Value) (string, bool) {
	if s, ok := v.(value.String); ok {
		return s.Value, true
	}
	if _, ok := v.(value.Integer); ok {
		return v.Inspect(), true
	}
	if _, ok := v.(value.Float); ok {
		return v.Inspect(), true
	}
	return "", false
}
