// ==============================================================================================
// FILE: bridge/session.go
// ==============================================================================================
// PACKAGE: bridge
// PURPOSE: The host-facing façade (spec §4.6/§6): a sandboxed execution
//          Session with execute/eval/set/get, built around one
//          *evaluator.Interpreter and one persistent global environment,
//          exactly as original_source/abstra_lua/session.py's LuaSession
//          wraps one Interpreter + one Environment. Generalizes the
//          teacher's zero-config object.NewEnvironment() construction into
//          functional options carrying the three quota knobs, in the same
//          spirit as the teacher's NewEnvironment()/NewEnclosedEnvironment()
//          pair but with configuration surfaced to the host.
// ==============================================================================================

package bridge

import (
	"bytes"

	"luabox/errs"
	"luabox/evaluator"
	"luabox/lexer"
	"luabox/parser"
	"luabox/stdlib"
	"luabox/value"
)

// Option configures a Session at construction time.
type Option func(*evaluator.Limits)

// WithMaxInstructions bounds the number of executed statements/iterations
// per Execute/Eval call. 0 keeps the engine default; negative is unlimited.
func WithMaxInstructions(n int64) Option {
	return func(l *evaluator.Limits) { l.MaxInstructions = n }
}

// WithMaxCallDepth bounds script function call nesting.
func WithMaxCallDepth(n int) Option {
	return func(l *evaluator.Limits) { l.MaxCallDepth = n }
}

// WithMaxOutputBytes bounds the cumulative bytes print() may emit per
// Execute/Eval call.
func WithMaxOutputBytes(n int64) Option {
	return func(l *evaluator.Limits) { l.MaxOutputBytes = n }
}

// Session is a sandboxed, single-threaded script execution context. One
// Session must not be driven by more than one goroutine concurrently
// (spec §5); distinct Sessions are fully isolated.
type Session struct {
	interp *evaluator.Interpreter
	env    *value.Environment
	out    *bytes.Buffer
}

// NewSession builds a Session with stdlib installed into its globals and
// an empty top-level local scope, applying any quota options.
func NewSession(opts ...Option) *Session {
	var limits evaluator.Limits
	for _, opt := range opts {
		opt(&limits)
	}
	out := &bytes.Buffer{}
	in := evaluator.New(value.NewEnvironment(), out, limits)
	stdlib.Install(in)
	return &Session{
		interp: in,
		env:    value.NewEnclosedEnvironment(in.Globals),
		out:    out,
	}
}

// Execute runs source as a chunk and returns everything print() produced
// during this call.
func (s *Session) Execute(source string) (string, error) {
	s.out.Reset()
	program, err := parser.ParseProgram(lexer.New(source))
	if err != nil {
		return "", err
	}
	if _, err := s.interp.RunIn(program, s.env); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

// Eval evaluates expression (wrapped as `return <expression>`) and
// marshals its first result to a host value. nil is returned for a Nil
// result, a missing return, or an expression that evaluates to no values.
// Any print() output produced while evaluating is buffered, not
// discarded -- callers that care (the REPL, for an expression like a bare
// function call) can retrieve it with DrainOutput.
func (s *Session) Eval(expression string) (interface{}, error) {
	s.out.Reset()
	program, err := parser.ParseProgram(lexer.New("return " + expression))
	if err != nil {
		return nil, err
	}
	results, err := s.interp.RunIn(program, value.NewEnclosedEnvironment(s.env))
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return ToHost(s.interp, results[0]), nil
}

// DrainOutput returns and clears whatever print() output has accumulated
// since the last Execute, Eval or DrainOutput call.
func (s *Session) DrainOutput() string {
	out := s.out.String()
	s.out.Reset()
	return out
}

// Set binds name in the session's global scope to the marshalled form of
// a Go value.
func (s *Session) Set(name string, goValue interface{}) error {
	lv, err := ToScript(s.interp, goValue)
	if err != nil {
		return err
	}
	s.env.Global().Define(name, lv)
	return nil
}

// Get reads name from the session's scope and marshals it back to a Go
// value.
func (s *Session) Get(name string) (interface{}, error) {
	v, ok := s.env.Get(name)
	if !ok {
		return nil, nil
	}
	return ToHost(s.interp, v), nil
}

// IsQuota reports whether err (as returned from Execute/Eval) represents
// a sandbox quota violation, per spec §9's pinned "propagate past pcall"
// answer extended to the host boundary.
func IsQuota(err error) bool { return errs.IsQuota(err) }
