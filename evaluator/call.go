// ==============================================================================================
// FILE: evaluator/call.go
// PURPOSE: Multi-value expression evaluation (calls, `...`, table
//          constructors) and function/builtin invocation, including the
//          call-depth quota and __call dispatch for callable tables.
// ==============================================================================================

package evaluator

import (
	"luabox/ast"
	"luabox/errs"
	"luabox/value"
)

// EvalMulti evaluates expr in a context where it may produce more than one
// value (the last entry of an expression list, a call/method-call used as
// a bare statement, or `...`). Every other expression still produces
// exactly one value, wrapped in a single-element slice.
func (in *Interpreter) EvalMulti(expr ast.Expression, env *value.Environment) ([]value.Value, error) {
	switch node := expr.(type) {
	case *ast.CallExpression:
		fn, err := in.Eval(node.Function, env)
		if err != nil {
			return nil, err
		}
		args, err := in.evalExprList(node.Arguments, env)
		if err != nil {
			return nil, err
		}
		return in.call(fn, args)

	case *ast.MethodCallExpression:
		recv, err := in.Eval(node.Receiver, env)
		if err != nil {
			return nil, err
		}
		fn, err := in.index(recv, value.String{Value: node.Method})
		if err != nil {
			return nil, err
		}
		args, err := in.evalExprList(node.Arguments, env)
		if err != nil {
			return nil, err
		}
		return in.call(fn, append([]value.Value{recv}, args...))

	case *ast.Vararg:
		vs, ok := env.Varargs()
		if !ok {
			return nil, errs.NewRuntimeError("cannot use '...' outside a vararg function")
		}
		return append([]value.Value{}, vs...), nil
	}

	v, err := in.Eval(expr, env)
	if err != nil {
		return nil, err
	}
	return []value.Value{v}, nil
}

// evalExprList evaluates a comma-separated expression list, expanding only
// the LAST entry's multi-value result (spec §3.2's adjustment rule).
func (in *Interpreter) evalExprList(exprs []ast.Expression, env *value.Environment) ([]value.Value, error) {
	var out []value.Value
	for i, e := range exprs {
		if i == len(exprs)-1 {
			vs, err := in.EvalMulti(e, env)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		} else {
			v, err := in.Eval(e, env)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// call invokes fn (a Function, Builtin, or a table with a __call
// metamethod) with args, enforcing the call-depth quota around script
// function bodies.
func (in *Interpreter) call(fn value.Value, args []value.Value) ([]value.Value, error) {
	switch f := fn.(type) {
	case *value.Builtin:
		return f.Fn(args)

	case *value.Function:
		if err := in.enterCall(); err != nil {
			return nil, err
		}
		defer in.exitCall()

		var varargs []value.Value
		if f.IsVararg && len(args) > len(f.Parameters) {
			varargs = append(varargs, args[len(f.Parameters):]...)
		}
		scope := value.NewFunctionEnvironment(f.Env, f.IsVararg, varargs)
		for i, param := range f.Parameters {
			scope.Define(param.Value, nth(args, i))
		}

		results, err := in.evalStatements(f.Body.Statements, scope)
		if err != nil {
			return nil, err
		}
		return results, nil

	case *value.Table:
		if mm := in.metamethod(f, "__call"); mm != nil {
			return in.call(mm, append([]value.Value{f}, args...))
		}
	}
	return nil, errs.NewRuntimeError("attempt to call a %s value", value.TypeName(fn))
}

// evalTableLiteral builds a Table from a constructor, honoring the rule
// that only a trailing bare positional field expands a multi-value
// expression; every earlier field (positional, named, or keyed) collapses
// to its first value.
func (in *Interpreter) evalTableLiteral(node *ast.TableLiteral, env *value.Environment) (value.Value, error) {
	tbl := value.NewTable()
	var nextIndex int64 = 1

	for i, field := range node.Fields {
		switch {
		case field.Key != nil:
			k, err := in.Eval(field.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := in.Eval(field.Value, env)
			if err != nil {
				return nil, err
			}
			if err := tbl.RawSet(k, v); err != nil {
				return nil, err
			}

		case field.Name != "":
			v, err := in.Eval(field.Value, env)
			if err != nil {
				return nil, err
			}
			if err := tbl.RawSet(value.String{Value: field.Name}, v); err != nil {
				return nil, err
			}

		default:
			if i == len(node.Fields)-1 {
				vs, err := in.EvalMulti(field.Value, env)
				if err != nil {
					return nil, err
				}
				for _, v := range vs {
					if err := tbl.RawSet(value.Integer{Value: nextIndex}, v); err != nil {
						return nil, err
					}
					nextIndex++
				}
			} else {
				v, err := in.Eval(field.Value, env)
				if err != nil {
					return nil, err
				}
				if err := tbl.RawSet(value.Integer{Value: nextIndex}, v); err != nil {
					return nil, err
				}
				nextIndex++
			}
		}
	}
	return tbl, nil
}
