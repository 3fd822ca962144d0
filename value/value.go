// ==============================================================================================
// FILE: value/value.go
// ==============================================================================================
// PACKAGE: value
// PURPOSE: Runtime value representation for the interpreter -- the tagged
//          union of spec §3.1 (Nil/Boolean/Integer/Float/String/Table/
//          Function) plus the Environment lexical-scope chain of §3.4.
//          Grounded in the teacher interpreter's object/object.go (the
//          Object interface with Type()/Inspect(), the Hashable/HashKey
//          map-key pattern) and object/environment.go (outer-chain scope),
//          generalized from Eloquence's fixed Integer/Float/Boolean/String/
//          Null/Function/Array/Map set to the spec's numerically-coherent
//          Integer/Float pair, metatable-bearing Table, and closures that
//          capture an *Environment the way the teacher's Function does.
//
//          Renamed from the teacher's "object" package to "value" to match
//          the vocabulary the specification itself uses throughout.
// ==============================================================================================

package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"luabox/ast"
)

// Value is the interface every runtime value implements. Unlike the
// teacher's Object, there is no ObjectType constant set -- Type() returns
// the same strings the language's own `type()` builtin reports ("nil",
// "boolean", "number", "string", "table", "function").
type Value interface {
	Type() string
	Inspect() string
}

// Nil is the singleton absent value. Use NilValue, not a fresh Nil{}, so
// comparisons by identity aren't required but remain cheap.
type Nil struct{}

func (Nil) Type() string    { return "nil" }
func (Nil) Inspect() string { return "nil" }

// NilValue is the canonical nil, returned wherever the evaluator has
// nothing else to produce.
var NilValue Value = Nil{}

type Boolean struct{ Value bool }

func (b Boolean) Type() string { return "boolean" }
func (b Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}

var (
	True  Value = Boolean{Value: true}
	False Value = Boolean{Value: false}
)

// BoolValue returns the canonical True/False singleton for a bool.
func BoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

type Integer struct{ Value int64 }

func (i Integer) Type() string    { return "number" }
func (i Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func (f Float) Type() string { return "number" }
func (f Float) Inspect() string {
	if math.IsNaN(f.Value) {
		return "nan"
	}
	if math.IsInf(f.Value, 1) {
		return "inf"
	}
	if math.IsInf(f.Value, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(f.Value, 'g', 14, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

type String struct{ Value string }

func (s String) Type() string    { return "string" }
func (s String) Inspect() string { return s.Value }

// Function is a script-defined closure: it carries the defining
// environment so free variables resolve by lexical scope, not call stack.
type Function struct {
	Parameters []*ast.Identifier
	IsVararg   bool
	Body       *ast.Block
	Env        *Environment
	Name       string // best-effort, for Inspect()/error messages only
}

func (*Function) Type() string { return "function" }
func (f *Function) Inspect() string {
	if f.Name != "" {
		return fmt.Sprintf("function: %s: %p", f.Name, f)
	}
	return fmt.Sprintf("function: %p", f)
}

// BuiltinFunc is the Go-native signature for standard-library and
// host-bridge functions: it receives already-adjusted arguments and
// returns a (possibly empty, possibly multi-value) result list.
type BuiltinFunc func(args []Value) ([]Value, error)

type Builtin struct {
	Fn   BuiltinFunc
	Name string
}

func (*Builtin) Type() string { return "function" }
func (b *Builtin) Inspect() string {
	return fmt.Sprintf("function: builtin: %s", b.Name)
}

// IsTruthy implements spec §3.1: everything is truthy except nil and false.
func IsTruthy(v Value) bool {
	switch x := v.(type) {
	case Nil:
		return false
	case Boolean:
		return x.Value
	}
	return true
}

// TypeName reports the language-level type name, the same string `type()`
// returns and error messages quote.
func TypeName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type()
}

// RawEqual implements primitive `==` with numeric coherence (spec §3.1:
// integers and floats compare equal when they denote the same
// mathematical value) and reference identity for tables/functions. This is
// the "raw" comparison -- the evaluator tries __eq only when both operands
// are tables and this returns false.
func RawEqual(a, b Value) bool {
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x.Value == y.Value
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x.Value == y.Value
		case Float:
			return float64(x.Value) == y.Value
		}
		return false
	case Float:
		switch y := b.(type) {
		case Integer:
			return x.Value == float64(y.Value)
		case Float:
			return x.Value == y.Value
		}
		return false
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case *Table:
		y, ok := b.(*Table)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	}
	return false
}

// floatToExactInt reports whether f denotes an integer value representable
// losslessly as int64 -- used both for table-key normalization (§3.3) and
// by the stdlib's math.tointeger/string formatting helpers.
func floatToExactInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < -9.2233720368547758e18 || f >= 9.2233720368547758e18 {
		return 0, false
	}
	i := int64(f)
	if float64(i) == f {
		return i, true
	}
	return 0, false
}

// FloatToExactInt exposes floatToExactInt for callers outside the package
// (stdlib's math.tointeger, string.format's %d operand coercion).
func FloatToExactInt(f float64) (int64, bool) { return floatToExactInt(f) }
