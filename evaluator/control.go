// ==============================================================================================
// FILE: evaluator/control.go
// PURPOSE: Statement execution and the non-local control signals (return,
//          break) that ride the error channel internally but never escape
//          past the construct that owns them.
// ==============================================================================================

package evaluator

import (
	"luabox/ast"
	"luabox/errs"
	"luabox/value"
)

// returnSignal unwinds to the enclosing function call. It is intercepted
// in evalStatements/evalBlock and never reaches a caller outside the
// function body, so it can never be observed by pcall or a host.
type returnSignal struct{ values []value.Value }

func (*returnSignal) Error() string { return "return outside function" }

// breakSignal unwinds to the enclosing loop. Every loop construct below
// intercepts it before returning, so -- like returnSignal -- it never
// escapes to pcall or the host.
type breakSignal struct{}

func (*breakSignal) Error() string { return "break outside loop" }

// execStatement runs one statement, reporting a returnSignal/breakSignal
// or a genuine error through the normal error return.
func (in *Interpreter) execStatement(stmt ast.Statement, env *value.Environment) error {
	switch node := stmt.(type) {
	case *ast.LocalStatement:
		return in.execLocal(node, env)
	case *ast.LocalFunctionStatement:
		return in.execLocalFunction(node, env)
	case *ast.AssignStatement:
		return in.execAssign(node, env)
	case *ast.ExpressionStatement:
		_, err := in.EvalMulti(node.Expression, env)
		return err
	case *ast.DoStatement:
		_, err := in.evalStatements(node.Body.Statements, value.NewEnclosedEnvironment(env))
		return err
	case *ast.IfStatement:
		return in.execIf(node, env)
	case *ast.WhileStatement:
		return in.execWhile(node, env)
	case *ast.RepeatStatement:
		return in.execRepeat(node, env)
	case *ast.NumericForStatement:
		return in.execNumericFor(node, env)
	case *ast.GenericForStatement:
		return in.execGenericFor(node, env)
	case *ast.ReturnStatement:
		vs, err := in.evalExprList(node.Values, env)
		if err != nil {
			return err
		}
		return &returnSignal{values: vs}
	case *ast.BreakStatement:
		return &breakSignal{}
	case *ast.GotoStatement:
		return errs.NewRuntimeError("goto target '%s' not found", node.Label)
	case *ast.LabelStatement:
		return nil
	}
	return nil
}

// runLoopBody runs a block in its own child scope, translating a
// breakSignal into "stop the loop" (the stop=true return) and letting
// everything else (return, genuine errors) propagate.
func (in *Interpreter) runLoopBody(body *ast.Block, env *value.Environment) (stop bool, err error) {
	scope := value.NewEnclosedEnvironment(env)
	_, err = in.evalStatements(body.Statements, scope)
	if err == nil {
		return false, nil
	}
	if _, ok := err.(*breakSignal); ok {
		return true, nil
	}
	return false, err
}

func (in *Interpreter) execIf(node *ast.IfStatement, env *value.Environment) error {
	for _, clause := range node.Clauses {
		cond, err := in.Eval(clause.Condition, env)
		if err != nil {
			return err
		}
		if value.IsTruthy(cond) {
			scope := value.NewEnclosedEnvironment(env)
			_, err := in.evalStatements(clause.Body.Statements, scope)
			return err
		}
	}
	if node.Else != nil {
		scope := value.NewEnclosedEnvironment(env)
		_, err := in.evalStatements(node.Else.Statements, scope)
		return err
	}
	return nil
}

func (in *Interpreter) execWhile(node *ast.WhileStatement, env *value.Environment) error {
	for {
		if err := in.tick(); err != nil {
			return err
		}
		cond, err := in.Eval(node.Condition, env)
		if err != nil {
			return err
		}
		if !value.IsTruthy(cond) {
			return nil
		}
		stop, err := in.runLoopBody(node.Body, env)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

func (in *Interpreter) execRepeat(node *ast.RepeatStatement, env *value.Environment) error {
	for {
		if err := in.tick(); err != nil {
			return err
		}
		// The until-condition shares the body's scope (it can see locals
		// declared in the body), so don't use runLoopBody here.
		scope := value.NewEnclosedEnvironment(env)
		_, err := in.evalStatements(node.Body.Statements, scope)
		if err != nil {
			if _, ok := err.(*breakSignal); ok {
				return nil
			}
			return err
		}
		cond, err := in.Eval(node.Condition, scope)
		if err != nil {
			return err
		}
		if value.IsTruthy(cond) {
			return nil
		}
	}
}

func (in *Interpreter) execNumericFor(node *ast.NumericForStatement, env *value.Environment) error {
	start, err := in.Eval(node.Start, env)
	if err != nil {
		return err
	}
	stop, err := in.Eval(node.Stop, env)
	if err != nil {
		return err
	}
	var step value.Value = value.Integer{Value: 1}
	if node.Step != nil {
		step, err = in.Eval(node.Step, env)
		if err != nil {
			return err
		}
	}

	startN, ok1 := toNumeric(start)
	stopN, ok2 := toNumeric(stop)
	stepN, ok3 := toNumeric(step)
	if !ok1 || !ok2 || !ok3 {
		return errs.NewRuntimeError("'for' initial value, limit, and step must be numbers")
	}

	// Promote to float if any operand is a float, matching the host
	// language's numeric-for coercion rule.
	_, sf := start.(value.Float)
	_, ef := stop.(value.Float)
	_, tf := step.(value.Float)
	useFloat := sf || ef || tf

	if useFloat {
		return in.runNumericForFloat(node, env, startN, stopN, stepN)
	}
	return in.runNumericForInt(node, env, int64(startN), int64(stopN), int64(stepN))
}

func (in *Interpreter) runNumericForInt(node *ast.NumericForStatement, env *value.Environment, start, stop, step int64) error {
	if step == 0 {
		return errs.NewRuntimeError("'for' step is zero")
	}
	for i := start; (step > 0 && i <= stop) || (step < 0 && i >= stop); i += step {
		if err := in.tick(); err != nil {
			return err
		}
		loopEnv := value.NewEnclosedEnvironment(env)
		loopEnv.Define(node.Name.Value, value.Integer{Value: i})
		stopLoop, err := in.runLoopBody(node.Body, loopEnv)
		if err != nil {
			return err
		}
		if stopLoop {
			return nil
		}
		// guard against overflow wraparound on the last iteration
		if step > 0 && i > stop-step {
			break
		}
		if step < 0 && i < stop-step {
			break
		}
	}
	return nil
}

func (in *Interpreter) runNumericForFloat(node *ast.NumericForStatement, env *value.Environment, start, stop, step float64) error {
	if step == 0 {
		return errs.NewRuntimeError("'for' step is zero")
	}
	for i := start; (step > 0 && i <= stop) || (step < 0 && i >= stop); i += step {
		if err := in.tick(); err != nil {
			return err
		}
		loopEnv := value.NewEnclosedEnvironment(env)
		loopEnv.Define(node.Name.Value, value.Float{Value: i})
		stopLoop, err := in.runLoopBody(node.Body, loopEnv)
		if err != nil {
			return err
		}
		if stopLoop {
			return nil
		}
	}
	return nil
}

func toNumeric(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Integer:
		return float64(x.Value), true
	case value.Float:
		return x.Value, true
	}
	return 0, false
}

func (in *Interpreter) execGenericFor(node *ast.GenericForStatement, env *value.Environment) error {
	vs, err := in.evalExprList(node.Exprs, env)
	if err != nil {
		return err
	}
	iter := nth(vs, 0)
	state := nth(vs, 1)
	ctrl := nth(vs, 2)

	for {
		if err := in.tick(); err != nil {
			return err
		}
		results, err := in.call(iter, []value.Value{state, ctrl})
		if err != nil {
			return err
		}
		if len(results) == 0 || isNil(results[0]) {
			return nil
		}
		ctrl = results[0]

		loopEnv := value.NewEnclosedEnvironment(env)
		for i, name := range node.Names {
			loopEnv.Define(name.Value, nth(results, i))
		}
		stopLoop, err := in.runLoopBody(node.Body, loopEnv)
		if err != nil {
			return err
		}
		if stopLoop {
			return nil
		}
	}
}

func nth(vs []value.Value, i int) value.Value {
	if i < len(vs) {
		return vs[i]
	}
	return value.NilValue
}

func isNil(v value.Value) bool {
	_, ok := v.(value.Nil)
	return ok
}
