// ==============================================================================================
// FILE: value/environment.go
// PURPOSE: Lexical scoping (spec §3.4): a chain of scopes, innermost first.
//          Adapted from the teacher's object/environment.go outer-chain
//          design, extended with Assign (find-and-update an existing
//          binding anywhere up the chain) because the host language's
//          assignment to a bare name that isn't a known local implicitly
//          creates or updates a GLOBAL, unlike the teacher's always-shadow
//          Set.
// ==============================================================================================

package value

type Environment struct {
	vars  map[string]Value
	outer *Environment

	// Vararg bookkeeping: only a scope created by NewFunctionEnvironment for
	// a vararg function carries isVararg=true and a varargs slice. `...`
	// resolution stops at the nearest function-scope boundary regardless
	// (it never closes over an enclosing function's varargs).
	isFuncScope bool
	isVararg    bool
	varargs     []Value
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// NewEnclosedEnvironment creates a scope nested inside outer, used for
// blocks and loop bodies that are not themselves a function call boundary.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	e := NewEnvironment()
	e.outer = outer
	return e
}

// NewFunctionEnvironment creates the scope for a function call. It always
// marks a function-scope boundary so `...` lookups know where to stop;
// varargs is only non-empty (and usable) when isVararg is true.
func NewFunctionEnvironment(outer *Environment, isVararg bool, varargs []Value) *Environment {
	e := NewEnclosedEnvironment(outer)
	e.isFuncScope = true
	e.isVararg = isVararg
	e.varargs = varargs
	return e
}

// Varargs resolves `...` by walking outward to the nearest function-scope
// boundary. ok is false if that function is not itself a vararg function.
func (e *Environment) Varargs() (vs []Value, ok bool) {
	if e.isFuncScope {
		if e.isVararg {
			return e.varargs, true
		}
		return nil, false
	}
	if e.outer != nil {
		return e.outer.Varargs()
	}
	return nil, false
}

// Get resolves name by walking outward through enclosing scopes.
func (e *Environment) Get(name string) (Value, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Define binds name in THIS scope (a `local` declaration), shadowing any
// outer binding of the same name.
func (e *Environment) Define(name string, val Value) {
	e.vars[name] = val
}

// Assign updates an existing binding of name, searching outward, and
// reports whether one was found. It never creates a new binding -- a
// caller that gets false back should fall back to Global().Define, which
// is how the host language's implicit-global assignment is implemented.
func (e *Environment) Assign(name string, val Value) bool {
	if _, ok := e.vars[name]; ok {
		e.vars[name] = val
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// Global walks to the outermost scope.
func (e *Environment) Global() *Environment {
	if e.outer == nil {
		return e
	}
	return e.outer.Global()
}
