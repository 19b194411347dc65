package builtins

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
)

// Export marks variables as exported, optionally assigning:
// `export NAME[=VALUE]...`. Without arguments it lists the exported
// variables.
func Export(p *interp.Proc) int {
	if len(p.Args) == 1 {
		for _, line := range p.Interp.Vars.List(true) {
			fmt.Fprintln(p.Stdout, line)
		}
		return 0
	}

	status := 0
	for _, arg := range p.Args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if !interp.ValidVarName(name) {
			printError(p, "export: %s: not a valid identifier\n", name)
			status = 1
			continue
		}
		var err error
		if hasValue {
			err = p.Interp.Vars.Set(name, value, interp.FlagExported)
		} else {
			err = p.Interp.Vars.Export(name)
		}
		if err != nil {
			printError(p, "export: %v\n", err)
			status = 1
		}
	}
	return status
}

// Unset removes variables. Read-only variables refuse.
func Unset(p *interp.Proc) int {
	if len(p.Args) == 1 {
		printError(p, "unset: usage: unset NAME...\n")
		return interp.StatusUsage
	}
	status := 0
	for _, name := range p.Args[1:] {
		if err := p.Interp.Vars.Unset(name); err != nil {
			printError(p, "unset: %v\n", err)
			status = 1
		}
	}
	return status
}

// Env prints the process environment.
func Env(p *interp.Proc) int {
	env := os.Environ()
	sort.Strings(env)
	for _, kv := range env {
		fmt.Fprintln(p.Stdout, kv)
	}
	return 0
}

// Set without arguments lists all shell variables. Assignment happens
// through NAME=value words, not through set.
func Set(p *interp.Proc) int {
	if len(p.Args) > 1 {
		printError(p, "set: options are not supported\n")
		return interp.StatusUsage
	}
	for _, line := range p.Interp.Vars.List(false) {
		fmt.Fprintln(p.Stdout, line)
	}
	return 0
}

func init() {
	interp.RegisterBuiltin("Set environment variable", Export, "export")
	interp.RegisterBuiltin("Unset a variable", Unset, "unset")
	interp.RegisterBuiltin("Print environment variables", Env, "env")
	interp.RegisterBuiltin("Show shell variables", Set, "set")
}
