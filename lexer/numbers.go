package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseNumberLiteral decodes the raw digit text produced by readNumber into
// either an int64 or a float64. Decimal integers that overflow 64 bits
// become floats (Lua semantics); hex integers wrap modulo 2^64.
func parseNumberLiteral(lit string, isHex, isFloat bool) (interface{}, error) {
	if isHex {
		return parseHexNumber(lit, isFloat)
	}
	if !isFloat {
		if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return v, nil
		}
		// Overflow: fall back to float, matching Lua's coercion of
		// out-of-range decimal integer literals.
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q", lit)
		}
		return f, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed number %q", lit)
	}
	return f, nil
}

func parseHexNumber(lit string, isFloat bool) (interface{}, error) {
	body := lit[2:] // strip "0x"/"0X"
	if !isFloat {
		var v uint64
		if body == "" {
			return nil, fmt.Errorf("malformed number %q", lit)
		}
		for _, ch := range body {
			d, ok := hexVal(ch)
			if !ok {
				return nil, fmt.Errorf("malformed number %q", lit)
			}
			v = v*16 + uint64(d) // wraps modulo 2^64, matching Lua hex ints
		}
		return int64(v), nil
	}
	return parseHexFloat(body)
}

// parseHexFloat implements float.fromhex-style semantics for "a.bpDDD" /
// "a.b" (exponent optional for hex floats, base 2 applied to the exponent).
func parseHexFloat(body string) (float64, error) {
	mantissa := body
	exp := 0
	if i := strings.IndexAny(body, "pP"); i >= 0 {
		mantissa = body[:i]
		e, err := strconv.Atoi(body[i+1:])
		if err != nil {
			return 0, fmt.Errorf("malformed hex float exponent")
		}
		exp = e
	}

	intPart, fracPart := mantissa, ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}

	var value float64
	for _, ch := range intPart {
		d, ok := hexVal(ch)
		if !ok {
			return 0, fmt.Errorf("malformed hex float")
		}
		value = value*16 + float64(d)
	}
	scale := 1.0 / 16.0
	for _, ch := range fracPart {
		d, ok := hexVal(ch)
		if !ok {
			return 0, fmt.Errorf("malformed hex float")
		}
		value += float64(d) * scale
		scale /= 16
	}
	return value * math.Pow(2, float64(exp)), nil
}
