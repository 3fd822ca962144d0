// ==============================================================================================
// FILE: stdlib/os.go
// PURPOSE: The small `os` subset SPEC_FULL.md carries over from
//          original_source/abstra_lua (clock/time/difftime plus a date
//          that ignores its format argument --
//          filesystem/process/env access stays out of a sandboxed
//          interpreter's scope, per spec.md's Non-goals).
// ==============================================================================================

package stdlib

import (
	"time"

	"luabox/value"
)

func installOS(g *value.Environment) {
	o := value.NewTable()
	start := time.Now()

	o.RawSet(value.String{Value: "clock"}, builtin("os.clock", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Float{Value: time.Since(start).Seconds()}}, nil
	}))

	o.RawSet(value.String{Value: "time"}, builtin("os.time", func(args []value.Value) ([]value.Value, error) {
		return []value.Value{value.Integer{Value: time.Now().Unix()}}, nil
	}))

	o.RawSet(value.String{Value: "difftime"}, builtin("os.difftime", func(args []value.Value) ([]value.Value, error) {
		t2, _ := toNumberArg(nth(args, 0))
		t1, _ := toNumberArg(nth(args, 1))
		return []value.Value{value.Float{Value: t2 - t1}}, nil
	}))

	o.RawSet(value.String{Value: "date"}, builtin("os.date", func(args []value.Value) ([]value.Value, error) {
		format := "%c"
		if s, ok := nth(args, 0).(value.String); ok {
			format = s.Value
		}
		_ = format // a strftime-compatible formatter is out of scope; ctime-style default only
		return []value.Value{value.String{Value: time.Now().Format(time.ANSIC)}}, nil
	}))

	g.Define("os", o)
}
