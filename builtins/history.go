package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
)

// History displays or manipulates the persistent command log.
//
//	history            show all entries
//	history N          show the last N entries
//	history -c|purge   clear the log
//	history !N         re-execute entry N
//	history execute N  re-execute entry N
//
// Re-execution takes the original line through the full expansion
// pipeline again rather than replaying cached tokens.
func History(p *interp.Proc) int {
	ring := p.Interp.History
	if ring == nil {
		return 0
	}

	if len(p.Args) == 1 {
		printHistory(p, ring.Len())
		return 0
	}

	arg := p.Args[1]

	if n, err := strconv.Atoi(arg); err == nil && n > 0 {
		printHistory(p, n)
		return 0
	}

	if arg == "-c" || arg == "purge" {
		ring.Clear()
		printSuccess(p, "History cleared\n")
		return 0
	}

	index := -1
	if strings.HasPrefix(arg, "!") && len(arg) > 1 {
		index, _ = strconv.Atoi(arg[1:])
	} else if arg == "execute" && len(p.Args) == 3 {
		index, _ = strconv.Atoi(p.Args[2])
	}

	if index > 0 {
		line, ok := ring.Get(index - 1)
		if !ok {
			printError(p, "history: %d: event not found\n", index)
			return 1
		}
		fmt.Fprintln(p.Stdout, line)
		return p.Interp.Run(line)
	}

	printError(p, "history: usage:\n")
	printError(p, "  history          - Show all history\n")
	printError(p, "  history N        - Show last N entries\n")
	printError(p, "  history -c       - Clear history\n")
	printError(p, "  history !N       - Re-execute entry N\n")
	return 1
}

func printHistory(p *interp.Proc, n int) {
	ring := p.Interp.History
	total := ring.Len()
	start := total - n
	if start < 0 {
		start = 0
	}
	for i := start; i < total; i++ {
		entry, _ := ring.Get(i)
		fmt.Fprintf(p.Stdout, "%5d  %s\n", i+1, entry)
	}
}

func init() {
	interp.RegisterBuiltin("Show command history", History, "history", "log")
}
