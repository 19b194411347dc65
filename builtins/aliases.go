package builtins

import (
	"fmt"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
)

// Alias defines or displays aliases: `alias`, `alias name`, or
// `alias name=value`.
func Alias(p *interp.Proc) int {
	if len(p.Args) == 1 {
		for _, line := range p.Interp.Aliases.List() {
			fmt.Fprintln(p.Stdout, line)
		}
		return 0
	}

	status := 0
	for _, arg := range p.Args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			if v, ok := p.Interp.Aliases.Get(name); ok {
				fmt.Fprintf(p.Stdout, "alias %s='%s'\n", name, v)
			} else {
				printError(p, "alias: %s: not found\n", name)
				status = 1
			}
			continue
		}
		if name == "" {
			printError(p, "alias: invalid alias name\n")
			status = 1
			continue
		}
		p.Interp.Aliases.Set(name, trimAliasQuotes(value))
	}
	return status
}

// trimAliasQuotes strips one level of surrounding quotes so both
// `alias ll='ls -la'` typed at the prompt (quotes consumed by the
// tokenizer) and rc-file forms that arrive quoted behave the same.
func trimAliasQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Unalias removes alias definitions.
func Unalias(p *interp.Proc) int {
	if len(p.Args) == 1 {
		printError(p, "unalias: usage: unalias NAME...\n")
		return interp.StatusUsage
	}
	status := 0
	for _, name := range p.Args[1:] {
		if !p.Interp.Aliases.Unset(name) {
			printError(p, "unalias: %s: not found\n", name)
			status = 1
		}
	}
	return status
}

func init() {
	interp.RegisterBuiltin("Define or display aliases", Alias, "alias")
	interp.RegisterBuiltin("Remove alias definitions", Unalias, "unalias")
}
