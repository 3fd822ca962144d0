// ==============================================================================================
// FILE: stdlib/string.go
// PURPOSE: The `string` library (spec §4.5): byte/char/len/sub/rep/reverse/
//          upper/lower/find/match/gmatch/gsub/format, built on pattern.go's
//          backtracking matcher. Grounded in
//          original_source/abstra_lua/stdlib.py's string_lib section for
//          the exact argument defaults (negative indices, optional
//          init/plain arguments) and in the teacher's object/builtins.go
//          `upper`/`lower`/`split`/`join` for the plain byte-level string
//          helpers that don't touch the pattern engine.
// ==============================================================================================

package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"luabox/errs"
	"luabox/value"
)

// installString registers the string library into g and returns its
// table, so Install can point a synthetic string metatable's __index at
// it (spec §4.3).
func installString(in call, g *value.Environment) *value.Table {
	s := value.NewTable()
	set := func(name string, fn value.BuiltinFunc) { s.RawSet(value.String{Value: name}, builtin("string."+name, fn)) }

	set("len", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'len' (string expected)")
		}
		return []value.Value{value.Integer{Value: int64(len(str.Value))}}, nil
	})

	set("upper", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'upper' (string expected)")
		}
		return []value.Value{value.String{Value: strings.ToUpper(str.Value)}}, nil
	})

	set("lower", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'lower' (string expected)")
		}
		return []value.Value{value.String{Value: strings.ToLower(str.Value)}}, nil
	})

	set("reverse", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'reverse' (string expected)")
		}
		b := []byte(str.Value)
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
		return []value.Value{value.String{Value: string(b)}}, nil
	})

	set("byte", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'byte' (string expected)")
		}
		i := int64(1)
		if len(args) > 1 {
			if n, ok := toIntArg(args[1]); ok {
				i = n
			}
		}
		j := i
		if len(args) > 2 {
			if n, ok := toIntArg(args[2]); ok {
				j = n
			}
		}
		lo, hi := resolveRange(len(str.Value), i, j)
		var out []value.Value
		for idx := lo; idx <= hi; idx++ {
			out = append(out, value.Integer{Value: int64(str.Value[idx-1])})
		}
		return out, nil
	})

	set("char", func(args []value.Value) ([]value.Value, error) {
		b := make([]byte, len(args))
		for i, a := range args {
			n, ok := toIntArg(a)
			if !ok || n < 0 || n > 255 {
				return nil, argErrorf("bad argument #%d to 'char' (value out of range)", i+1)
			}
			b[i] = byte(n)
		}
		return []value.Value{value.String{Value: string(b)}}, nil
	})

	set("sub", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'sub' (string expected)")
		}
		i := int64(1)
		if len(args) > 1 {
			if n, ok := toIntArg(args[1]); ok {
				i = n
			}
		}
		j := int64(-1)
		if len(args) > 2 {
			if n, ok := toIntArg(args[2]); ok {
				j = n
			}
		}
		lo, hi := resolveRange(len(str.Value), i, j)
		if lo > hi {
			return []value.Value{value.String{Value: ""}}, nil
		}
		return []value.Value{value.String{Value: str.Value[lo-1 : hi]}}, nil
	})

	set("rep", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'rep' (string expected)")
		}
		n, ok := toIntArg(nth(args, 1))
		if !ok {
			return nil, argErrorf("bad argument #2 to 'rep' (number expected)")
		}
		sep := ""
		if len(args) > 2 {
			if sv, ok := args[2].(value.String); ok {
				sep = sv.Value
			}
		}
		if n <= 0 {
			return []value.Value{value.String{Value: ""}}, nil
		}
		parts := make([]string, n)
		for i := range parts {
			parts[i] = str.Value
		}
		return []value.Value{value.String{Value: strings.Join(parts, sep)}}, nil
	})

	set("find", func(args []value.Value) ([]value.Value, error) {
		str, pat, initArg, plain, err := findArgs(args)
		if err != nil {
			return nil, err
		}
		init := resolveInit(len(str), initArg)
		if plain || !hasSpecials(pat) {
			idx := strings.Index(str[min(init, len(str)):], pat)
			if idx < 0 {
				return []value.Value{value.NilValue}, nil
			}
			start := init + idx
			return []value.Value{
				value.Integer{Value: int64(start + 1)},
				value.Integer{Value: int64(start + len(pat))},
			}, nil
		}
		if err := checkPattern(pat); err != nil {
			return nil, err
		}
		start, end, caps, ok := patternFind(str, pat, init)
		if !ok {
			return []value.Value{value.NilValue}, nil
		}
		out := []value.Value{value.Integer{Value: int64(start + 1)}, value.Integer{Value: int64(end)}}
		out = append(out, capturesToValues(str, caps)...)
		return out, nil
	})

	set("match", func(args []value.Value) ([]value.Value, error) {
		str, pat, initArg, _, err := findArgs(args)
		if err != nil {
			return nil, err
		}
		if err := checkPattern(pat); err != nil {
			return nil, err
		}
		init := resolveInit(len(str), initArg)
		start, end, caps, ok := patternFind(str, pat, init)
		if !ok {
			return []value.Value{value.NilValue}, nil
		}
		if len(caps) == 0 {
			return []value.Value{value.String{Value: str[start:end]}}, nil
		}
		return capturesToValues(str, caps), nil
	})

	set("gmatch", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'gmatch' (string expected)")
		}
		pat, ok := nth(args, 1).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #2 to 'gmatch' (string expected)")
		}
		if err := checkPattern(pat.Value); err != nil {
			return nil, err
		}
		pos := 0
		iter := builtin("gmatch-iterator", func(_ []value.Value) ([]value.Value, error) {
			for pos <= len(str.Value) {
				start, end, caps, ok := patternFind(str.Value, pat.Value, pos)
				if !ok {
					return []value.Value{value.NilValue}, nil
				}
				if end == start {
					pos = end + 1
				} else {
					pos = end
				}
				if len(caps) == 0 {
					return []value.Value{value.String{Value: str.Value[start:end]}}, nil
				}
				return capturesToValues(str.Value, caps), nil
			}
			return []value.Value{value.NilValue}, nil
		})
		return []value.Value{iter}, nil
	})

	set("gsub", func(args []value.Value) ([]value.Value, error) {
		str, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'gsub' (string expected)")
		}
		pat, ok := nth(args, 1).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #2 to 'gsub' (string expected)")
		}
		if err := checkPattern(pat.Value); err != nil {
			return nil, err
		}
		repl := nth(args, 2)
		maxN := int64(-1)
		if len(args) > 3 {
			if n, ok := toIntArg(args[3]); ok {
				maxN = n
			}
		}

		var out strings.Builder
		pos := 0
		count := int64(0)
		src := str.Value
		for pos <= len(src) {
			if maxN >= 0 && count >= maxN {
				break
			}
			start, end, caps, ok := patternFind(src, pat.Value, pos)
			if !ok {
				break
			}
			out.WriteString(src[pos:start])
			whole := src[start:end]
			replaced, err := applyGsubRepl(in, repl, whole, src, caps)
			if err != nil {
				return nil, err
			}
			out.WriteString(replaced)
			count++
			if end == start {
				if start < len(src) {
					out.WriteByte(src[start])
				}
				pos = start + 1
			} else {
				pos = end
			}
		}
		if pos < len(src) {
			out.WriteString(src[pos:])
		}
		return []value.Value{value.String{Value: out.String()}, value.Integer{Value: count}}, nil
	})

	set("format", func(args []value.Value) ([]value.Value, error) {
		f, ok := nth(args, 0).(value.String)
		if !ok {
			return nil, argErrorf("bad argument #1 to 'format' (string expected)")
		}
		out, err := luaFormat(f.Value, args[1:])
		if err != nil {
			return nil, err
		}
		return []value.Value{value.String{Value: out}}, nil
	})

	g.Define("string", s)
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// resolveRange converts Lua's 1-based, negative-from-end i/j indices into
// a clamped 1-based inclusive [lo, hi] range over a string of length n.
func resolveRange(n int, i, j int64) (int64, int64) {
	if i < 0 {
		i = int64(n) + i + 1
	}
	if i < 1 {
		i = 1
	}
	if j < 0 {
		j = int64(n) + j + 1
	}
	if j > int64(n) {
		j = int64(n)
	}
	return i, j
}

func resolveInit(n int, initArg int64) int {
	if initArg < 0 {
		initArg = int64(n) + initArg + 1
	}
	if initArg < 1 {
		initArg = 1
	}
	return int(initArg - 1)
}

func findArgs(args []value.Value) (str, pat string, init int64, plain bool, err error) {
	sv, ok := nth(args, 0).(value.String)
	if !ok {
		return "", "", 0, false, argErrorf("bad argument #1 (string expected)")
	}
	pv, ok := nth(args, 1).(value.String)
	if !ok {
		return "", "", 0, false, argErrorf("bad argument #2 (string expected)")
	}
	init = 1
	if len(args) > 2 {
		if n, ok := toIntArg(args[2]); ok {
			init = n
		}
	}
	if len(args) > 3 {
		plain = value.IsTruthy(args[3])
	}
	return sv.Value, pv.Value, init, plain, nil
}

func hasSpecials(pat string) bool {
	return strings.ContainsAny(pat, "^$*+?.([%-")
}

func capturesToValues(src string, caps []capture) []value.Value {
	out := make([]value.Value, len(caps))
	for i, c := range caps {
		if c.len == capPosition {
			out[i] = value.Integer{Value: int64(c.start + 1)}
		} else {
			out[i] = value.String{Value: src[c.start : c.start+c.len]}
		}
	}
	return out
}

func applyGsubRepl(in call, repl value.Value, whole, src string, caps []capture) (string, error) {
	capVals := capturesToValues(src, caps)
	capOrWhole := func(i int) value.Value {
		if i == 0 && len(capVals) == 0 {
			return value.String{Value: whole}
		}
		if i-1 < len(capVals) {
			return capVals[i-1]
		}
		return value.NilValue
	}

	switch r := repl.(type) {
	case value.String:
		var out strings.Builder
		s := r.Value
		for i := 0; i < len(s); i++ {
			if s[i] == '%' && i+1 < len(s) {
				nc := s[i+1]
				if nc == '%' {
					out.WriteByte('%')
					i++
					continue
				}
				if nc >= '0' && nc <= '9' {
					v := capOrWhole(int(nc - '0'))
					if sv, ok := v.(value.String); ok {
						out.WriteString(sv.Value)
					} else if _, ok := v.(value.Nil); !ok {
						out.WriteString(v.Inspect())
					}
					i++
					continue
				}
			}
			out.WriteByte(s[i])
		}
		return out.String(), nil

	case *value.Table:
		key := capOrWhole(1)
		v := r.RawGet(key)
		return gsubResultToString(v, whole)

	default:
		callArgs := capVals
		if len(callArgs) == 0 {
			callArgs = []value.Value{value.String{Value: whole}}
		}
		results, err := in.Call(repl, callArgs)
		if err != nil {
			return "", err
		}
		var v value.Value
		if len(results) > 0 {
			v = results[0]
		}
		return gsubResultToString(v, whole)
	}
}

func gsubResultToString(v value.Value, whole string) (string, error) {
	switch x := v.(type) {
	case nil, value.Nil:
		return whole, nil
	case value.String:
		return x.Value, nil
	case value.Integer, value.Float:
		return v.Inspect(), nil
	}
	if b, ok := v.(value.Boolean); ok && !b.Value {
		return whole, nil
	}
	return "", errs.NewRuntimeError("invalid replacement value (a %s)", value.TypeName(v))
}

// luaFormat implements the C-printf subset spec §4.5 names: %d %i %u %o %x
// %X %f %e %E %g %G %s %q %c with -+ #0 flags, width, and precision.
func luaFormat(format string, args []value.Value) (string, error) {
	var out strings.Builder
	ai := 0
	next := func() (value.Value, error) {
		if ai >= len(args) {
			return nil, argErrorf("bad argument #%d to 'format' (no value)", ai+2)
		}
		v := args[ai]
		ai++
		return v, nil
	}

	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			out.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(format) && strings.ContainsRune("-+ #0", rune(format[j])) {
			j++
		}
		for j < len(format) && format[j] >= '0' && format[j] <= '9' {
			j++
		}
		if j < len(format) && format[j] == '.' {
			j++
			for j < len(format) && format[j] >= '0' && format[j] <= '9' {
				j++
			}
		}
		if j >= len(format) {
			return "", argErrorf("invalid conversion to 'format'")
		}
		verb := format[j]
		spec := format[i : j+1]
		i = j + 1

		switch verb {
		case '%':
			out.WriteByte('%')
		case 'd', 'i':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, ok := toIntArg(v)
			if !ok {
				return "", argErrorf("bad argument #%d to 'format' (number expected)", ai+1)
			}
			out.WriteString(fmt.Sprintf(strings.Replace(spec, string(verb), "d", 1), n))
		case 'u':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, _ := toIntArg(v)
			out.WriteString(fmt.Sprintf(strings.Replace(spec, "u", "d", 1), uint64(n)))
		case 'o', 'x', 'X':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, _ := toIntArg(v)
			out.WriteString(fmt.Sprintf(spec, n))
		case 'f', 'e', 'E', 'g', 'G':
			v, err := next()
			if err != nil {
				return "", err
			}
			f, ok := toNumberArg(v)
			if !ok {
				return "", argErrorf("bad argument #%d to 'format' (number expected)", ai+1)
			}
			out.WriteString(fmt.Sprintf(spec, f))
		case 'c':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, _ := toIntArg(v)
			out.WriteByte(byte(n))
		case 's':
			v, err := next()
			if err != nil {
				return "", err
			}
			var sv string
			if s, ok := v.(value.String); ok {
				sv = s.Value
			} else {
				sv = v.Inspect()
			}
			out.WriteString(fmt.Sprintf(spec, sv))
		case 'q':
			v, err := next()
			if err != nil {
				return "", err
			}
			out.WriteString(quoteLua(v))
		default:
			return "", argErrorf("invalid conversion '%%%c' to 'format'", verb)
		}
	}
	return out.String(), nil
}

func quoteLua(v value.Value) string {
	s, ok := v.(value.String)
	if !ok {
		return v.Inspect()
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s.Value); i++ {
		c := s.Value[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case 26:
			b.WriteString(`\26`)
		default:
			if c < 32 || c == 127 {
				b.WriteString("\\" + strconv.Itoa(int(c)))
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
