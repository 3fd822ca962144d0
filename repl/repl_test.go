// ==============================================================================================
// FILE: repl/repl_test.go
// PURPOSE: REPL smoke tests, adapted from the teacher's
//          repl_unit_test.go/repl_sanity_test.go/repl_integration_test.go:
//          drive Start over a string reader and assert on substrings of
//          the captured output, translated from Eloquence's English-word
//          grammar to the Lua-like grammar this module implements.
// ==============================================================================================

package repl

import (
	"bytes"
	"strings"
	"testing"
)

func runSession(input string) string {
	in := strings.NewReader(input)
	var out bytes.Buffer
	Start(in, &out)
	return out.String()
}

func TestREPLEvaluatesExpression(t *testing.T) {
	output := runSession("10 + 20\n.exit")
	if !strings.Contains(output, "30") {
		t.Errorf("REPL failed simple arithmetic. Output:\n%s", output)
	}
}

func TestREPLVariablePersistsAcrossLines(t *testing.T) {
	input := "x = 50\nx = x + 10\nx\n.exit"
	output := runSession(input)
	if !strings.Contains(output, "60") {
		t.Errorf("REPL failed variable persistence. Output:\n%s", output)
	}
}

func TestREPLDebugTogglePrintsTokens(t *testing.T) {
	input := ".debug\nx = 10\n.exit"
	output := runSession(input)
	if !strings.Contains(output, "[ TOKENS ]") {
		t.Error("debug mode did not print tokens")
	}
}

func TestREPLClearResetsSession(t *testing.T) {
	input := "x = 10\n.clear\nx\n.exit"
	output := runSession(input)
	if strings.Contains(output, "10") {
		t.Error(".clear did not reset the session")
	}
}

func TestREPLPrintInsideExpressionIsCaptured(t *testing.T) {
	output := runSession(`print("hello")` + "\n.exit")
	if !strings.Contains(output, "hello") {
		t.Errorf("REPL dropped print() output from an expression line. Output:\n%s", output)
	}
}

func TestREPLEmptyLinesAreIgnored(t *testing.T) {
	output := runSession("\n\n\n10\n.exit")
	if !strings.Contains(output, "10") {
		t.Error("REPL choked on empty lines")
	}
}

func TestREPLSyntaxErrorIsReported(t *testing.T) {
	output := runSession("x = = =\n.exit")
	if !strings.Contains(output, "ERROR") {
		t.Error("REPL did not report a syntax error")
	}
}

func TestREPLUnknownCommand(t *testing.T) {
	output := runSession(".foobar\n.exit")
	if !strings.Contains(output, "Unknown command") {
		t.Error("REPL did not catch an unknown dot-command")
	}
}

func TestREPLNumericForLoopPrints(t *testing.T) {
	// A session built by Start always uses bridge.NewSession() with
	// default (generous) quotas, so a small loop runs to completion and
	// its print() output reaches the REPL's writer.
	output := runSession("for i = 1, 3 do print(i) end\n.exit")
	if !strings.Contains(output, "1") || !strings.Contains(output, "3") {
		t.Errorf("REPL failed a numeric for loop. Output:\n%s", output)
	}
}
