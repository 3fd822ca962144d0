// ==============================================================================================
// FILE: evaluator/metamethods.go
// PURPOSE: Metatable-aware indexing and the generic metamethod lookup used
//          by arithmetic, comparison, concatenation, length, call, and
//          tostring dispatch (spec §3.3/§4.4).
// ==============================================================================================

package evaluator

import (
	"luabox/errs"
	"luabox/value"
)

// maxIndexChase bounds __index/__newindex chains so a metatable cycle
// (t's metatable is t, or a longer loop) fails cleanly instead of hanging.
const maxIndexChase = 100

// metamethod looks up event (e.g. "__index") on v's metatable, if any. A
// string consults the interpreter's synthetic string metatable (spec
// §4.3: "For a string target, look up in the string library"), installed
// by stdlib.Install via SetStringMetatable -- the REPL/scripts that never
// call stdlib.Install simply see no string methods, same as any other
// missing metatable.
func (in *Interpreter) metamethod(v value.Value, event string) value.Value {
	if _, isString := v.(value.String); isString {
		if in.stringMetatable == nil {
			return nil
		}
		mm := in.stringMetatable.RawGet(value.String{Value: event})
		if _, isNil := mm.(value.Nil); isNil {
			return nil
		}
		return mm
	}
	tbl, ok := v.(*value.Table)
	if !ok || tbl.Metatable == nil {
		return nil
	}
	mm := tbl.Metatable.RawGet(value.String{Value: event})
	if _, isNil := mm.(value.Nil); isNil {
		return nil
	}
	return mm
}

// index implements `left[key]` / `left.key`, chasing __index chains
// across tables and, when __index is a function, calling it.
func (in *Interpreter) index(left, key value.Value) (value.Value, error) {
	for i := 0; i < maxIndexChase; i++ {
		tbl, isTable := left.(*value.Table)
		if isTable {
			v := tbl.RawGet(key)
			if _, isNil := v.(value.Nil); !isNil {
				return v, nil
			}
			mm := in.metamethod(left, "__index")
			if mm == nil {
				return value.NilValue, nil
			}
			if mmTbl, ok := mm.(*value.Table); ok {
				left = mmTbl
				continue
			}
			results, err := in.call(mm, []value.Value{left, key})
			if err != nil {
				return nil, err
			}
			return nth(results, 0), nil
		}

		mm := in.metamethod(left, "__index")
		if mm == nil {
			return nil, errs.NewRuntimeError("attempt to index a %s value", value.TypeName(left))
		}
		if mmTbl, ok := mm.(*value.Table); ok {
			left = mmTbl
			continue
		}
		results, err := in.call(mm, []value.Value{left, key})
		if err != nil {
			return nil, err
		}
		return nth(results, 0), nil
	}
	return nil, errs.NewRuntimeError("'__index' chain too long; possible loop")
}

// newindex implements `left[key] = val`, honoring __newindex the same way
// index honors __index.
func (in *Interpreter) newindex(left, key, val value.Value) error {
	for i := 0; i < maxIndexChase; i++ {
		tbl, isTable := left.(*value.Table)
		if isTable {
			if existing := tbl.RawGet(key); !isNil(existing) || tbl.Metatable == nil {
				return tbl.RawSet(key, val)
			}
			mm := in.metamethod(left, "__newindex")
			if mm == nil {
				return tbl.RawSet(key, val)
			}
			if mmTbl, ok := mm.(*value.Table); ok {
				left = mmTbl
				continue
			}
			_, err := in.call(mm, []value.Value{left, key, val})
			return err
		}

		mm := in.metamethod(left, "__newindex")
		if mm == nil {
			return errs.NewRuntimeError("attempt to index a %s value", value.TypeName(left))
		}
		if mmTbl, ok := mm.(*value.Table); ok {
			left = mmTbl
			continue
		}
		_, err := in.call(mm, []value.Value{left, key, val})
		return err
	}
	return errs.NewRuntimeError("'__newindex' chain too long; possible loop")
}

// tostring renders v, honoring __tostring when present. This is the
// engine-level primitive the stdlib's tostring() and print() call.
func (in *Interpreter) tostring(v value.Value) (string, error) {
	if mm := in.metamethod(v, "__tostring"); mm != nil {
		results, err := in.call(mm, []value.Value{v})
		if err != nil {
			return "", err
		}
		s, ok := nth(results, 0).(value.String)
		if !ok {
			return "", errs.NewRuntimeError("'__tostring' must return a string")
		}
		return s.Value, nil
	}
	return v.Inspect(), nil
}

// length implements `#v`, honoring __len for tables.
func (in *Interpreter) length(v value.Value) (value.Value, error) {
	if s, ok := v.(value.String); ok {
		return value.Integer{Value: int64(len(s.Value))}, nil
	}
	tbl, ok := v.(*value.Table)
	if !ok {
		return nil, errs.NewRuntimeError("attempt to get length of a %s value", value.TypeName(v))
	}
	if mm := in.metamethod(tbl, "__len"); mm != nil {
		results, err := in.call(mm, []value.Value{tbl})
		if err != nil {
			return nil, err
		}
		return nth(results, 0), nil
	}
	return value.Integer{Value: tbl.Len()}, nil
}
