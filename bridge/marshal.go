// ==============================================================================================
// FILE: bridge/marshal.go
// PURPOSE: Host <-> script value marshalling (spec §4.6), grounded on
//          original_source/abstra_lua/session.py's _to_lua/_to_python: a
//          callable becomes a Builtin that unwraps/wraps at the boundary,
//          a table with all-integer keys 1..n and no gaps marshals to a Go
//          slice, anything else with string/other keys marshals to a
//          map[string]interface{}.
// ==============================================================================================

package bridge

import (
	"luabox/errs"
	"luabox/evaluator"
	"luabox/value"
)

// ToHost converts a script value to a plain Go value: nil, bool, int64,
// float64, string, []interface{}, map[string]interface{}, or a
// func([]interface{}) ([]interface{}, error) for a script function --
// calling it re-enters in the same way Eval/Execute would.
func ToHost(in *evaluator.Interpreter, v value.Value) interface{} {
	switch x := v.(type) {
	case value.Nil:
		return nil
	case value.Boolean:
		return x.Value
	case value.Integer:
		return x.Value
	case value.Float:
		return x.Value
	case value.String:
		return x.Value
	case *value.Table:
		return tableToHost(in, x)
	case *value.Function:
		return functionToHost(in, x)
	case *value.Builtin:
		return functionToHost(in, x)
	}
	return nil
}

func tableToHost(in *evaluator.Interpreter, t *value.Table) interface{} {
	n := t.Len()
	isSequence := n > 0
	if isSequence {
		for i := int64(1); i <= n; i++ {
			if isNilValue(t.RawGet(value.Integer{Value: i})) {
				isSequence = false
				break
			}
		}
		// Any key outside 1..n (a string key, or an integer past a gap)
		// makes the table associative.
		var count int64
		var k value.Value = value.NilValue
		for {
			nk, _, ok, err := t.Next(k)
			if err != nil || !ok {
				break
			}
			count++
			k = nk
		}
		if count != n {
			isSequence = false
		}
	}
	if isSequence {
		out := make([]interface{}, n)
		for i := int64(1); i <= n; i++ {
			out[i-1] = ToHost(in, t.RawGet(value.Integer{Value: i}))
		}
		return out
	}

	out := make(map[string]interface{})
	key := value.NilValue
	for {
		k, v, ok, err := t.Next(key)
		if err != nil || !ok {
			break
		}
		out[keyToString(k)] = ToHost(in, v)
		key = k
	}
	return out
}

func keyToString(k value.Value) string {
	if s, ok := k.(value.String); ok {
		return s.Value
	}
	return k.Inspect()
}

// functionToHost wraps a script callable as a plain Go function the host
// can invoke directly, marshalling args/results at the boundary. It
// closes over in, the interpreter that owns the callable's environment,
// the way abstra_lua's _function_to_python closes over self.interpreter.
func functionToHost(in *evaluator.Interpreter, v value.Value) func(args []interface{}) ([]interface{}, error) {
	return func(args []interface{}) ([]interface{}, error) {
		scriptArgs := make([]value.Value, len(args))
		for i, a := range args {
			sv, err := ToScript(in, a)
			if err != nil {
				return nil, err
			}
			scriptArgs[i] = sv
		}
		results, err := in.Call(v, scriptArgs)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, len(results))
		for i, r := range results {
			out[i] = ToHost(in, r)
		}
		return out, nil
	}
}

// ToScript converts a plain Go value into a script Value: nil/bool/the
// integer kinds/float kinds/string map directly; []interface{} becomes a
// sequence Table; map[string]interface{} becomes an associative Table;
// a func([]interface{}) ([]interface{}, error) becomes a Builtin that
// unwraps its arguments and wraps its result, mirroring _to_lua's
// `callable(value)` branch.
func ToScript(in *evaluator.Interpreter, goValue interface{}) (value.Value, error) {
	switch x := goValue.(type) {
	case nil:
		return value.NilValue, nil
	case bool:
		return value.BoolValue(x), nil
	case int:
		return value.Integer{Value: int64(x)}, nil
	case int32:
		return value.Integer{Value: int64(x)}, nil
	case int64:
		return value.Integer{Value: x}, nil
	case float32:
		return value.Float{Value: float64(x)}, nil
	case float64:
		return value.Float{Value: x}, nil
	case string:
		return value.String{Value: x}, nil
	case []interface{}:
		t := value.NewTable()
		for i, elem := range x {
			sv, err := ToScript(in, elem)
			if err != nil {
				return nil, err
			}
			if err := t.RawSet(value.Integer{Value: int64(i + 1)}, sv); err != nil {
				return nil, err
			}
		}
		return t, nil
	case map[string]interface{}:
		t := value.NewTable()
		for k, elem := range x {
			sv, err := ToScript(in, elem)
			if err != nil {
				return nil, err
			}
			if err := t.RawSet(value.String{Value: k}, sv); err != nil {
				return nil, err
			}
		}
		return t, nil
	case func([]interface{}) ([]interface{}, error):
		return &value.Builtin{Name: "host-func", Fn: func(args []value.Value) ([]value.Value, error) {
			hostArgs := make([]interface{}, len(args))
			for i, a := range args {
				hostArgs[i] = ToHost(in, a)
			}
			results, err := x(hostArgs)
			if err != nil {
				return nil, err
			}
			out := make([]value.Value, len(results))
			for i, r := range results {
				sv, serr := ToScript(in, r)
				if serr != nil {
					return nil, serr
				}
				out[i] = sv
			}
			return out, nil
		}}, nil
	}
	return nil, errs.NewRuntimeError("cannot convert %T to a script value", goValue)
}

func isNilValue(v value.Value) bool {
	_, ok := v.(value.Nil)
	return ok
}
