/*
Zkc compiles a zkcircuit project manifest to bytecode.

Usage:

	zkc [flags] [subcommand]

Subcommands:

	build (default)
		Compile the manifest's entry source and write bytecode to the
		manifest's configured output path.

	run-repl
		Load the manifest, compile it once, and open an interactive session
		for witnessing calls against its entries one at a time.

The flags are:

	-m, --manifest FILE
		Project manifest to load. Defaults to "zkc.toml" in the current
		directory.

	-p, --publish
		After a successful build, assign and print a fresh process-external
		address for every contract type compiled.
*/
package main

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/zkcircuit"
	"github.com/dekarrin/zkcircuit/internal/cliutil"
	"github.com/dekarrin/zkcircuit/internal/vmstate"
)

const (
	exitSuccess = iota
	exitCompileError
	exitInitError
)

var (
	manifestPath = pflag.StringP("manifest", "m", "zkc.toml", "Project manifest to load")
	publish      = pflag.BoolP("publish", "p", false, "Assign and print a published address per compiled contract type")
)

func main() {
	pflag.Parse()

	sub := "build"
	if args := pflag.Args(); len(args) > 0 {
		sub = args[0]
	}

	var code int
	switch sub {
	case "build":
		code = runBuild()
	case "run-repl":
		code = runRepl()
	default:
		fmt.Fprintf(os.Stderr, "zkc: unknown subcommand %q\n", sub)
		code = exitInitError
	}
	os.Exit(code)
}

func runBuild() int {
	proj, err := zkcircuit.OpenProject(*manifestPath)
	if err != nil {
		cliutil.PrintErr("zkc", err)
		return exitInitError
	}

	prog, errs := proj.Compile()
	if len(errs) > 0 {
		cliutil.PrintErrs("zkc", errs)
		return exitCompileError
	}

	out, err := proj.WriteBytecode(prog)
	if err != nil {
		cliutil.PrintErr("zkc", err)
		return exitCompileError
	}
	fmt.Printf("wrote %s\n", out)

	if *publish {
		addrs := zkcircuit.PublishAddresses(prog)
		names := make([]string, 0, len(addrs))
		for name := range addrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cliutil.Report(fmt.Sprintf("published %s at address %s", name, addrs[name]))
		}
	}

	return exitSuccess
}

// runRepl compiles the manifest once, then repeatedly reads an entry name
// plus decimal field-element arguments and witnesses a call to it, the way
// the teacher's tqi reads a command and advances game state once per line.
func runRepl() int {
	proj, err := zkcircuit.OpenProject(*manifestPath)
	if err != nil {
		cliutil.PrintErr("zkc", err)
		return exitInitError
	}

	prog, errs := proj.Compile()
	if len(errs) > 0 {
		cliutil.PrintErrs("zkc", errs)
		return exitCompileError
	}

	out, err := proj.WriteBytecode(prog)
	if err != nil {
		cliutil.PrintErr("zkc", err)
		return exitCompileError
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: "zkc> "})
	if err != nil {
		cliutil.PrintErr("zkc", fmt.Errorf("starting repl: %w", err))
		return exitInitError
	}
	defer rl.Close()

	fmt.Printf("loaded %s, %d entries (QUIT to exit)\n", out, len(prog.Entries))

	rt, err := zkcircuit.LoadRuntime(out)
	if err != nil {
		cliutil.PrintErr("zkc", err)
		return exitInitError
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "quit") {
			break
		}

		entry, ok := rt.Entry(fields[0])
		if !ok {
			fmt.Printf("no such entry %q\n", fields[0])
			continue
		}

		args := make([]vmstate.Scalar, 0, len(fields)-1)
		for _, a := range fields[1:] {
			n, ok := new(big.Int).SetString(a, 10)
			if !ok {
				fmt.Printf("not a decimal field element: %q\n", a)
				continue
			}
			args = append(args, vmstate.NewFieldScalar(n))
		}

		outVals, err := rt.Run(entry, args)
		if err != nil {
			cliutil.PrintErr(fields[0], err)
			continue
		}
		strs := make([]string, len(outVals))
		for i, v := range outVals {
			strs[i] = v.Value.String()
		}
		fmt.Println(strings.Join(strs, ", "))
	}

	fmt.Println("goodbye")
	return exitSuccess
}
