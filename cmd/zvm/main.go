/*
Zvm runs a compiled zkcircuit bytecode program.

Usage:

	zvm [flags] [subcommand]

Subcommands:

	run (default)
		Witness a single entry point against the given arguments and print
		its outputs.

	test
		Witness every UnitTest entry the program carries and report
		pass/fail, stepping one at a time when run against a terminal.

The flags are:

	-b, --binary FILE
		Compiled bytecode file to load. Required.

	-e, --entry NAME
		Entry point to run, for the "run" subcommand. Defaults to "main".

	-w, --witness CSV
		Comma-separated decimal field-element arguments, for the "run"
		subcommand.
*/
package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/zkcircuit"
	"github.com/dekarrin/zkcircuit/internal/cliutil"
	"github.com/dekarrin/zkcircuit/internal/vmstate"
)

const (
	exitSuccess = iota
	exitRuntimeError
	exitInitError
	exitTestFailure
)

var (
	binaryPath = pflag.StringP("binary", "b", "", "Compiled bytecode file to load")
	entryName  = pflag.StringP("entry", "e", "main", "Entry point to run")
	witness    = pflag.StringP("witness", "w", "", "Comma-separated decimal field-element arguments")
)

func main() {
	pflag.Parse()

	if *binaryPath == "" {
		fmt.Fprintln(os.Stderr, "zvm: --binary is required")
		os.Exit(exitInitError)
	}

	sub := "run"
	if args := pflag.Args(); len(args) > 0 {
		sub = args[0]
	}

	var code int
	switch sub {
	case "run":
		code = runEntry()
	case "test":
		code = runTests()
	default:
		fmt.Fprintf(os.Stderr, "zvm: unknown subcommand %q\n", sub)
		code = exitInitError
	}
	os.Exit(code)
}

func runEntry() int {
	rt, err := zkcircuit.LoadRuntime(*binaryPath)
	if err != nil {
		cliutil.PrintErr("zvm", err)
		return exitInitError
	}

	entry, ok := rt.Entry(*entryName)
	if !ok {
		cliutil.PrintErr("zvm", fmt.Errorf("no such entry %q", *entryName))
		return exitInitError
	}

	var args []vmstate.Scalar
	if *witness != "" {
		for _, raw := range strings.Split(*witness, ",") {
			raw = strings.TrimSpace(raw)
			n, ok := new(big.Int).SetString(raw, 10)
			if !ok {
				cliutil.PrintErr("zvm", fmt.Errorf("not a decimal field element: %q", raw))
				return exitInitError
			}
			args = append(args, vmstate.NewFieldScalar(n))
		}
	}

	out, err := rt.Run(entry, args)
	if err != nil {
		cliutil.PrintErr("zvm", err)
		return exitRuntimeError
	}

	strs := make([]string, len(out))
	for i, v := range out {
		strs[i] = v.Value.String()
	}
	fmt.Println(strings.Join(strs, ", "))
	return exitSuccess
}

// runTests witnesses every UnitTest entry the program carries. When run
// against a terminal it steps one test at a time with readline, the way
// the teacher's tqi pauses for a line of input between game turns, so a
// long failing suite can be inspected test-by-test instead of scrolling
// past.
func runTests() int {
	rt, err := zkcircuit.LoadRuntime(*binaryPath)
	if err != nil {
		cliutil.PrintErr("zvm", err)
		return exitInitError
	}

	rl, rlErr := readline.NewEx(&readline.Config{Prompt: "[enter to continue, q to stop] "})
	interactive := rlErr == nil
	if interactive {
		defer rl.Close()
	}

	failures := 0
	aborted := false
	rt.RunUnitTests(func(res zkcircuit.UnitTestResult) {
		if aborted {
			return
		}
		if res.Passed {
			fmt.Printf("PASS %s\n", res.Name)
		} else {
			failures++
			if res.Err != nil {
				fmt.Printf("FAIL %s: %s\n", res.Name, res.Err)
			} else {
				fmt.Printf("FAIL %s: got [%s]\n", res.Name, strings.Join(res.Got, ", "))
			}
		}

		if interactive {
			line, err := rl.Readline()
			if err != nil || strings.EqualFold(strings.TrimSpace(line), "q") {
				aborted = true
			}
		}
	})

	if failures > 0 {
		return exitTestFailure
	}
	return exitSuccess
}
