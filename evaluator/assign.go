// ==============================================================================================
// FILE: evaluator/assign.go
// PURPOSE: `local`, `local function`, and plain assignment execution,
//          including the three lvalue forms (name, t[k], t.k) and the
//          name-not-found-locally-becomes-a-global rule.
// ==============================================================================================

package evaluator

import (
	"luabox/ast"
	"luabox/errs"
	"luabox/value"
)

func (in *Interpreter) execLocal(node *ast.LocalStatement, env *value.Environment) error {
	vals, err := in.evalExprList(node.Values, env)
	if err != nil {
		return err
	}
	for i, name := range node.Names {
		env.Define(name.Value, nth(vals, i))
	}
	return nil
}

func (in *Interpreter) execLocalFunction(node *ast.LocalFunctionStatement, env *value.Environment) error {
	// Declare the name before evaluating the body so the function can
	// recurse by name.
	env.Define(node.Name.Value, value.NilValue)
	fn := &value.Function{
		Parameters: node.Function.Parameters,
		IsVararg:   node.Function.IsVararg,
		Body:       node.Function.Body,
		Env:        env,
		Name:       node.Name.Value,
	}
	env.Define(node.Name.Value, fn)
	return nil
}

func (in *Interpreter) execAssign(node *ast.AssignStatement, env *value.Environment) error {
	vals, err := in.evalExprList(node.Values, env)
	if err != nil {
		return err
	}
	for i, target := range node.Targets {
		if err := in.assignTo(target, nth(vals, i), env); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) assignTo(target ast.Expression, val value.Value, env *value.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if env.Assign(t.Value, val) {
			return nil
		}
		env.Global().Define(t.Value, val)
		return nil

	case *ast.IndexExpression:
		left, err := in.Eval(t.Left, env)
		if err != nil {
			return err
		}
		idx, err := in.Eval(t.Index, env)
		if err != nil {
			return err
		}
		return in.newindex(left, idx, val)

	case *ast.FieldExpression:
		left, err := in.Eval(t.Left, env)
		if err != nil {
			return err
		}
		return in.newindex(left, value.String{Value: t.Name}, val)
	}
	return errs.NewRuntimeError("cannot assign to this expression")
}
