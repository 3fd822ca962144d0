// ==============================================================================================
// FILE: evaluator/api.go
// PURPOSE: The exported surface stdlib builtins use to call back into the
//          engine (apply a function value, stringify, index, measure
//          length) without reaching into evaluator's unexported helpers.
//          Grounded in the teacher's applyFunction, generalized into
//          package-exported methods because here the caller (stdlib) lives
//          across a package boundary the teacher never had (its builtins
//          live inside the same evaluator/object packages).
// ==============================================================================================

package evaluator

import "luabox/value"

// Call invokes fn (a *value.Function, *value.Builtin, or callable table)
// with args, the same way the evaluator invokes a CallExpression.
func (in *Interpreter) Call(fn value.Value, args []value.Value) ([]value.Value, error) {
	return in.call(fn, args)
}

// ToString renders v honoring __tostring, the primitive behind the
// stdlib's tostring()/print().
func (in *Interpreter) ToString(v value.Value) (string, error) {
	return in.tostring(v)
}

// Index implements `left[key]`, honoring __index chains.
func (in *Interpreter) Index(left, key value.Value) (value.Value, error) {
	return in.index(left, key)
}

// NewIndex implements `left[key] = val`, honoring __newindex.
func (in *Interpreter) NewIndex(left, key, val value.Value) error {
	return in.newindex(left, key, val)
}

// Length implements `#v`, honoring __len for tables.
func (in *Interpreter) Length(v value.Value) (value.Value, error) {
	return in.length(v)
}

// Write sends s to the session's output sink, accounting it against the
// output-byte quota the way print() does.
func (in *Interpreter) Write(s string) error {
	return in.write(s)
}
