// ==============================================================================================
// FILE: main.go
// PURPOSE: CLI entry point, adapted from the teacher's main.go: script-file
//          mode (run a file and exit) vs REPL mode (interactive console),
//          now driving one bridge.Session instead of wiring
//          lexer/parser/evaluator/object.Environment by hand.
// ==============================================================================================

package main

import (
	"fmt"
	"os"

	"luabox/bridge"
	"luabox/repl"
)

func main() {
	if len(os.Args) > 1 {
		runFile(os.Args[1])
		return
	}

	fmt.Println("luabox -- a sandboxed scripting console.")
	fmt.Println("Type your commands below (or 'luabox <file>' to run a script).")
	repl.Start(os.Stdin, os.Stdout)
}

func runFile(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %s\n", err)
		os.Exit(1)
	}

	session := bridge.NewSession()
	out, err := session.Execute(string(data))
	if out != "" {
		fmt.Print(out)
	}
	if err != nil {
		if bridge.IsQuota(err) {
			fmt.Fprintf(os.Stderr, "quota exceeded: %s\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}
