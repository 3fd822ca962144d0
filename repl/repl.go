// ==============================================================================================
// FILE: repl/repl.go
// ==============================================================================================
// PACKAGE: repl
// PURPOSE: The Read-Eval-Print Loop interface. Grounded on the teacher's
//          repl/repl.go: a bufio.Scanner read loop, a colored ANSI banner,
//          dot-commands (.exit/.clear/.debug/.help), and optional
//          token/AST debug dumps. The teacher drove lexer/parser/evaluator
//          directly against one shared object.Environment; this module
//          drives one bridge.Session instead, so the REPL gets the same
//          sandbox quotas and host-bridge marshalling spec.md gives every
//          other embedder -- the REPL is just another host.
// ==============================================================================================

package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"luabox/bridge"
	"luabox/errs"
	"luabox/lexer"
	"luabox/token"
)

const (
	PROMPT = "lua> "
	LOGO   = `
┏━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┓
┃  _             _                                   ┃
┃ | |_   _  __ _| |__   _____  __                    ┃
┃ | | | | |/ _` + "`" + ` | '_ \ / _ \ \/ /                    ┃
┃ | | |_| | (_| | |_) | (_) >  <                     ┃
┃ |_|\__,_|\__,_|_.__/ \___/_/\_\                     ┃
┃                                                     ┃
┃ luabox -- a sandboxed scripting console             ┃
┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
`
)

// ANSI color codes for terminal output.
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	Bold   = "\033[1m"
)

// Start launches the Read-Eval-Print Loop. It reads lines from in, drives
// one bridge.Session across the whole run so locals and globals persist
// line to line, and writes results/diagnostics to out.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	session := bridge.NewSession()
	debugMode := false

	fmt.Fprint(out, LOGO)
	printHelp(out)

	for {
		fmt.Fprint(out, Cyan+PROMPT+Reset)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			switch line {
			case ".exit":
				fmt.Fprintln(out, Yellow+"Goodbye!"+Reset)
				return
			case ".clear":
				session = bridge.NewSession()
				fmt.Fprintln(out, Green+"Session cleared (memory reset)."+Reset)
				continue
			case ".debug":
				debugMode = !debugMode
				status := "DISABLED"
				if debugMode {
					status = "ENABLED"
				}
				fmt.Fprintf(out, Gray+"Debug mode %s\n"+Reset, status)
				continue
			case ".help":
				printHelp(out)
				continue
			default:
				fmt.Fprintf(out, Red+"Unknown command: %s. Type .help for info.\n"+Reset, line)
				continue
			}
		}

		if debugMode {
			printTokens(out, line)
		}

		result, err := session.Eval(line)
		if err != nil {
			// Only retry as a plain statement chunk when wrapping the line
			// in `return` was itself invalid syntax (an assignment, a
			// `local`, a multi-statement line) -- a line that parsed fine
			// as an expression but failed at runtime must not be re-run,
			// since its side effects (if any) already happened once.
			if _, isSyntax := err.(*errs.SyntaxError); isSyntax {
				if err2 := execAsStatement(session, out, line); err2 == nil {
					continue
				}
			}
			printEvalError(out, err)
			continue
		}
		if captured := session.DrainOutput(); captured != "" {
			fmt.Fprint(out, captured)
		}
		printEvalResult(out, result)
	}
}

// execAsStatement runs line as a statement chunk (no implicit `return`),
// printing whatever print() output it produced.
func execAsStatement(session *bridge.Session, out io.Writer, line string) error {
	captured, err := session.Execute(line)
	if err != nil {
		return err
	}
	if captured != "" {
		fmt.Fprint(out, captured)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, Gray+"Commands:")
	fmt.Fprintln(out, "  .exit   Quit the REPL")
	fmt.Fprintln(out, "  .clear  Reset session memory")
	fmt.Fprintln(out, "  .debug  Toggle verbose token output")
	fmt.Fprintln(out, "  .help   Show this message"+Reset)
	fmt.Fprintln(out)
}

func printTokens(out io.Writer, line string) {
	fmt.Fprintln(out, Gray+"┌── [ TOKENS ] ──────────────────────────────────────────┐"+Reset)
	l := lexer.New(line)
	for {
		tok, err := l.NextToken()
		if err != nil {
			fmt.Fprintf(out, "│ %-15s : %s\n", "ERROR", err.Error())
			break
		}
		if tok.Type == token.EOF {
			break
		}
		fmt.Fprintf(out, "│ %-15s : %s\n", tok.Type, tok.Literal)
	}
	fmt.Fprintln(out, Gray+"└────────────────────────────────────────────────────────┘"+Reset)
}

func printEvalError(out io.Writer, err error) {
	if bridge.IsQuota(err) {
		fmt.Fprintf(out, Red+Bold+"QUOTA: "+Reset+Red+"%s\n"+Reset, err.Error())
		return
	}
	fmt.Fprintf(out, Red+Bold+"ERROR: "+Reset+Red+"%s\n"+Reset, err.Error())
}

// printEvalResult formats a marshalled host value the way the teacher's
// printEvalResult switched on object type, but over the plain Go values
// bridge.Session.Eval returns.
func printEvalResult(out io.Writer, v interface{}) {
	if v == nil {
		return
	}
	switch x := v.(type) {
	case int64, float64:
		fmt.Fprintf(out, Yellow+"%v\n"+Reset, x)
	case bool:
		color := Green
		if !x {
			color = Red
		}
		fmt.Fprintf(out, color+"%v\n"+Reset, x)
	case string:
		fmt.Fprintf(out, Green+"%s\n"+Reset, x)
	case []interface{}:
		fmt.Fprintf(out, Blue+"%v\n"+Reset, x)
	case map[string]interface{}:
		fmt.Fprintf(out, Blue+"%v\n"+Reset, x)
	case func(args []interface{}) ([]interface{}, error):
		fmt.Fprintf(out, Purple+"(function)\n"+Reset)
	default:
		fmt.Fprintf(out, "%v\n", x)
	}
}
