// ==============================================================================================
// FILE: evaluator/evaluator.go
// ==============================================================================================
// PACKAGE: evaluator
// PURPOSE: The tree-walking execution engine. Grounded in the teacher
//          interpreter's evaluator/evaluator.go (one big switch over
//          ast.Node dispatching to per-construct helpers, singleton
//          true/false/nil values, isTruthy), generalized in three ways the
//          teacher didn't need:
//            1. Every Eval function returns (value.Value, error) instead of
//               an *object.Error sentinel -- Go's native error channel
//               carries *errs.RuntimeError, and the internal non-local
//               control signals (return/break) ride the SAME channel as
//               unexported sentinel error types, intercepted at the loop
//               and function-call boundaries that own them (spec §7: they
//               must never reach pcall or the host).
//            2. Eval is a method on *Interpreter, not a free function: the
//               interpreter carries the three sandbox quotas (spec §5) and
//               the print() output sink, so a host can run many Sessions
//               concurrently without shared mutable package state.
//            3. Multi-value expressions (calls, `...`) are handled by a
//               parallel EvalMulti path and the adjustment rules of §3.2.
// ==============================================================================================

package evaluator

import (
	"io"

	"luabox/ast"
	"luabox/errs"
	"luabox/value"
)

// Limits bounds one Interpreter's execution, per spec §5.
type Limits struct {
	MaxInstructions int64 // 0 = default; <0 = unlimited
	MaxCallDepth    int   // 0 = default; <0 = unlimited
	MaxOutputBytes  int64 // 0 = default; <0 = unlimited
}

const (
	defaultMaxInstructions = 10_000_000
	defaultMaxCallDepth    = 220
	defaultMaxOutputBytes  = 1 << 20 // 1 MiB
)

// Interpreter evaluates a parsed program against one global environment,
// enforcing the instruction, call-depth, and output-byte quotas.
type Interpreter struct {
	Globals *value.Environment
	Out     io.Writer

	instrCount int64
	instrLimit int64

	callDepth int
	callLimit int

	outputUsed  int64
	outputLimit int64

	// stringMetatable is the synthetic metatable (spec §4.3) a string
	// receiver consults for indexing -- its __index points at the string
	// library table, enabling "abc":upper(). stdlib.Install sets it via
	// SetStringMetatable; an Interpreter that never installs stdlib
	// simply has no string methods, the same as any other nil metatable.
	stringMetatable *value.Table
}

// SetStringMetatable installs the metatable string values consult when
// indexed (e.g. via `s:upper()` or `s.upper`). Passing nil removes it.
func (in *Interpreter) SetStringMetatable(t *value.Table) {
	in.stringMetatable = t
}

func New(globals *value.Environment, out io.Writer, limits Limits) *Interpreter {
	in := &Interpreter{Globals: globals, Out: out}

	in.instrLimit = limits.MaxInstructions
	if in.instrLimit == 0 {
		in.instrLimit = defaultMaxInstructions
	}
	in.callLimit = limits.MaxCallDepth
	if in.callLimit == 0 {
		in.callLimit = defaultMaxCallDepth
	}
	in.outputLimit = limits.MaxOutputBytes
	if in.outputLimit == 0 {
		in.outputLimit = defaultMaxOutputBytes
	}
	return in
}

// tick accounts for one executed statement or loop iteration, the unit
// spec §5 bounds the instruction quota by.
func (in *Interpreter) tick() error {
	if in.instrLimit < 0 {
		return nil
	}
	in.instrCount++
	if in.instrCount > in.instrLimit {
		return errs.NewQuotaError("instruction quota exceeded")
	}
	return nil
}

// write accounts print() output against the byte budget.
func (in *Interpreter) write(s string) error {
	if in.outputLimit >= 0 {
		in.outputUsed += int64(len(s))
		if in.outputUsed > in.outputLimit {
			return errs.NewQuotaError("output limit exceeded")
		}
	}
	if in.Out != nil {
		_, _ = io.WriteString(in.Out, s)
	}
	return nil
}

func (in *Interpreter) enterCall() error {
	if in.callLimit >= 0 && in.callDepth >= in.callLimit {
		return errs.NewQuotaError("stack overflow")
	}
	in.callDepth++
	return nil
}

func (in *Interpreter) exitCall() { in.callDepth-- }

// Run evaluates a whole program (chunk) in the global scope and returns
// whatever values its top-level `return`, if any, produced.
func (in *Interpreter) Run(program *ast.Program) ([]value.Value, error) {
	return in.evalStatements(program.Statements, in.Globals)
}

// RunIn evaluates program in env instead of the interpreter's own global
// scope -- the host bridge uses this to run each Execute call in the
// session's persistent scope and each Eval call in a fresh scope enclosing
// it. Every RunIn call starts the instruction and output budgets afresh.
func (in *Interpreter) RunIn(program *ast.Program, env *value.Environment) ([]value.Value, error) {
	in.instrCount = 0
	in.outputUsed = 0
	return in.evalStatements(program.Statements, env)
}

// evalStatements runs a statement list in env, stopping early on a
// returnSignal (propagated to the caller) or an error. break must be
// handled by the nearest enclosing loop, never here.
func (in *Interpreter) evalStatements(stmts []ast.Statement, env *value.Environment) ([]value.Value, error) {
	for _, stmt := range stmts {
		if err := in.tick(); err != nil {
			return nil, err
		}
		if err := in.execStatement(stmt, env); err != nil {
			if rs, ok := err.(*returnSignal); ok {
				return rs.values, nil
			}
			return nil, err
		}
	}
	return nil, nil
}

// Eval evaluates an expression to a single value, collapsing any
// multi-value result (a call or `...`) to its first value or Nil.
func (in *Interpreter) Eval(expr ast.Expression, env *value.Environment) (value.Value, error) {
	switch node := expr.(type) {
	case *ast.CallExpression, *ast.MethodCallExpression, *ast.Vararg:
		vs, err := in.EvalMulti(expr, env)
		if err != nil {
			return nil, err
		}
		if len(vs) == 0 {
			return value.NilValue, nil
		}
		return vs[0], nil

	case *ast.NilLiteral:
		return value.NilValue, nil
	case *ast.BooleanLiteral:
		return value.BoolValue(node.Value), nil
	case *ast.IntegerLiteral:
		return value.Integer{Value: node.Value}, nil
	case *ast.FloatLiteral:
		return value.Float{Value: node.Value}, nil
	case *ast.StringLiteral:
		return value.String{Value: node.Value}, nil

	case *ast.Identifier:
		if v, ok := env.Get(node.Value); ok {
			return v, nil
		}
		return value.NilValue, nil

	case *ast.ParenExpression:
		return in.Eval(node.Value, env)

	case *ast.FunctionLiteral:
		return &value.Function{
			Parameters: node.Parameters,
			IsVararg:   node.IsVararg,
			Body:       node.Body,
			Env:        env,
			Name:       node.Name,
		}, nil

	case *ast.TableLiteral:
		return in.evalTableLiteral(node, env)

	case *ast.PrefixExpression:
		right, err := in.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return in.evalPrefix(node.Operator, right)

	case *ast.InfixExpression:
		return in.evalInfix(node, env)

	case *ast.IndexExpression:
		left, err := in.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		idx, err := in.Eval(node.Index, env)
		if err != nil {
			return nil, err
		}
		return in.index(left, idx)

	case *ast.FieldExpression:
		left, err := in.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		return in.index(left, value.String{Value: node.Name})
	}

	return value.NilValue, nil
}
