// ==============================================================================================
// FILE: value/table.go
// PURPOSE: Table, the language's one composite data structure (spec §3.3):
//          an associative container with a metatable pointer and an
//          insertion-ordered key list so `next`/`pairs` have a stable,
//          reproducible traversal order. Key normalization collapses a
//          float key that denotes an exact integer onto the Integer key,
//          so t[1] and t[1.0] are the same slot.
// ==============================================================================================

package value

import (
	"fmt"
	"math"

	"luabox/errs"
)

// Table is always used by pointer; its identity is its equality under
// RawEqual and its address is what table: %p prints.
type Table struct {
	data  map[Value]Value
	keys  []Value
	index map[Value]int

	Metatable *Table
}

func NewTable() *Table {
	return &Table{
		data:  make(map[Value]Value),
		index: make(map[Value]int),
	}
}

func (*Table) Type() string { return "table" }

// normalizeKey collapses an exact-integer float onto its Integer form so
// numeric keys are coherent (spec §3.3).
func normalizeKey(key Value) Value {
	if f, ok := key.(Float); ok {
		if i, exact := floatToExactInt(f.Value); exact {
			return Integer{Value: i}
		}
	}
	return key
}

// RawGet looks up a key with no metamethod dispatch. Absent keys and a nil
// key both simply report Nil -- only RawSet rejects a nil key.
func (t *Table) RawGet(key Value) Value {
	key = normalizeKey(key)
	if v, ok := t.data[key]; ok {
		return v
	}
	return NilValue
}

// RawSet stores val at key with no metamethod dispatch. Assigning Nil
// deletes the key. A nil or NaN key is a RuntimeError, matching the host
// language's own table semantics.
func (t *Table) RawSet(key, val Value) error {
	if _, isNil := key.(Nil); isNil {
		return errs.NewRuntimeError("table index is nil")
	}
	if f, ok := key.(Float); ok && math.IsNaN(f.Value) {
		return errs.NewRuntimeError("table index is NaN")
	}
	key = normalizeKey(key)

	if _, isNil := val.(Nil); isNil {
		if _, exists := t.data[key]; exists {
			delete(t.data, key)
			t.removeKey(key)
		}
		return nil
	}

	if _, exists := t.data[key]; !exists {
		t.index[key] = len(t.keys)
		t.keys = append(t.keys, key)
	}
	t.data[key] = val
	return nil
}

func (t *Table) removeKey(key Value) {
	idx, ok := t.index[key]
	if !ok {
		return
	}
	t.keys = append(t.keys[:idx], t.keys[idx+1:]...)
	delete(t.index, key)
	for i := idx; i < len(t.keys); i++ {
		t.index[t.keys[i]] = i
	}
}

// Len returns the sequence-length hint: the largest n such that keys
// 1..n are all present with non-nil values (a "border" in Lua terms).
func (t *Table) Len() int64 {
	var n int64
	for {
		if _, ok := t.data[Integer{Value: n + 1}]; !ok {
			break
		}
		n++
	}
	return n
}

// Next supports `next`/pairs iteration in insertion order. Passing Nil
// starts iteration; passing the key most recently returned continues it.
// Returns ok=false once iteration is exhausted.
func (t *Table) Next(key Value) (k, v Value, ok bool, err error) {
	if _, isNil := key.(Nil); isNil {
		if len(t.keys) == 0 {
			return NilValue, NilValue, false, nil
		}
		first := t.keys[0]
		return first, t.data[first], true, nil
	}
	key = normalizeKey(key)
	idx, found := t.index[key]
	if !found {
		return nil, nil, false, errs.NewRuntimeError("invalid key to 'next'")
	}
	if idx+1 >= len(t.keys) {
		return NilValue, NilValue, false, nil
	}
	nextKey := t.keys[idx+1]
	return nextKey, t.data[nextKey], true, nil
}

// Inspect renders the table's identity, matching the host language's own
// `tostring(t)` default (overridable via __tostring at the evaluator layer).
func (t *Table) Inspect() string { return fmt.Sprintf("table: %p", t) }
