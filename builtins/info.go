package builtins

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
)

// Type indicates how each name would be interpreted.
func Type(p *interp.Proc) int {
	if len(p.Args) == 1 {
		printError(p, "type: usage: type NAME...\n")
		return interp.StatusUsage
	}
	status := 0
	for _, name := range p.Args[1:] {
		if v, ok := p.Interp.Aliases.Get(name); ok {
			fmt.Fprintf(p.Stdout, "%s is aliased to `%s'\n", name, v)
			continue
		}
		if interp.IsBuiltin(name) {
			fmt.Fprintf(p.Stdout, "%s is a shell builtin\n", name)
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			fmt.Fprintf(p.Stdout, "%s is %s\n", name, path)
		} else {
			printError(p, "type: %s: not found\n", name)
			status = 1
		}
	}
	return status
}

// Which locates commands on the search path; builtins report as such.
func Which(p *interp.Proc) int {
	if len(p.Args) == 1 {
		printError(p, "which: usage: which NAME...\n")
		return interp.StatusUsage
	}
	status := 0
	for _, name := range p.Args[1:] {
		if interp.IsBuiltin(name) {
			fmt.Fprintf(p.Stdout, "%s: shell builtin\n", name)
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			fmt.Fprintln(p.Stdout, path)
		} else {
			status = 1
		}
	}
	return status
}

// Help lists the builtins with their one-line descriptions, or shows a
// single command's entry.
func Help(p *interp.Proc) int {
	entries := interp.ListBuiltins()

	if len(p.Args) > 1 {
		want := p.Args[1]
		for _, e := range entries {
			for _, n := range e.Names {
				if n == want {
					fmt.Fprintf(p.Stdout, "%s - %s\n", strings.Join(e.Names, ", "), e.Short)
					return 0
				}
			}
		}
		printError(p, "help: no help topics match `%s'\n", want)
		return 1
	}

	fmt.Fprintf(p.Stdout, "%s builtin commands:\n\n", colorBoldCyan.Sprint("aish"))
	sorted := make([]*interp.BuiltinEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Names[0] < sorted[j].Names[0] })
	for _, e := range sorted {
		fmt.Fprintf(p.Stdout, "  %-14s %s\n", e.Names[0], e.Short)
	}
	fmt.Fprintln(p.Stdout, "\nUse 'help NAME' for details on a single command.")
	return 0
}

func init() {
	interp.RegisterBuiltin("Indicate how a command would be interpreted", Type, "type")
	interp.RegisterBuiltin("Locate a command", Which, "which")
	interp.RegisterBuiltin("Display help for builtins", Help, "help")
}
