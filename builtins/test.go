package builtins

import (
	"strconv"

	"github.com/aisha-shell/aish/core/interp"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Test evaluates a conditional expression.
//
// File tests: -e exists, -f regular, -d directory, -r readable,
// -w writable, -x executable, -s non-empty. String tests: -z empty,
// -n non-empty, = / ==, !=. Numeric tests: -eq -ne -lt -le -gt -ge.
func Test(p *interp.Proc) int {
	return evalTest(p, p.Args[1:])
}

// Bracket is `[`, requiring a closing `]`.
func Bracket(p *interp.Proc) int {
	args := p.Args[1:]
	if len(args) == 0 || args[len(args)-1] != "]" {
		printError(p, "[: missing ']'\n")
		return interp.StatusUsage
	}
	return evalTest(p, args[:len(args)-1])
}

func evalTest(p *interp.Proc, args []string) int {
	switch len(args) {
	case 0:
		return 1
	case 1:
		return boolStatus(args[0] != "")
	case 2:
		return unaryTest(p, args[0], args[1])
	case 3:
		return binaryTest(p, args[0], args[1], args[2])
	}
	printError(p, "test: unrecognized condition\n")
	return interp.StatusUsage
}

func unaryTest(p *interp.Proc, op, arg string) int {
	fs := p.Interp.FS
	switch op {
	case "-e":
		ok, _ := afero.Exists(fs, arg)
		return boolStatus(ok)
	case "-f":
		info, err := fs.Stat(arg)
		return boolStatus(err == nil && info.Mode().IsRegular())
	case "-d":
		ok, _ := afero.DirExists(fs, arg)
		return boolStatus(ok)
	case "-s":
		info, err := fs.Stat(arg)
		return boolStatus(err == nil && info.Size() > 0)
	case "-r":
		return boolStatus(unix.Access(arg, unix.R_OK) == nil)
	case "-w":
		return boolStatus(unix.Access(arg, unix.W_OK) == nil)
	case "-x":
		return boolStatus(unix.Access(arg, unix.X_OK) == nil)
	case "-z":
		return boolStatus(arg == "")
	case "-n":
		return boolStatus(arg != "")
	case "!":
		return boolStatus(arg == "")
	}
	printError(p, "test: %s: unrecognized condition\n", op)
	return interp.StatusUsage
}

func binaryTest(p *interp.Proc, left, op, right string) int {
	switch op {
	case "=", "==":
		return boolStatus(left == right)
	case "!=":
		return boolStatus(left != right)
	}

	l, lerr := strconv.ParseInt(left, 10, 64)
	r, rerr := strconv.ParseInt(right, 10, 64)
	if lerr != nil || rerr != nil {
		l, r = 0, 0
	}
	switch op {
	case "-eq":
		return boolStatus(l == r)
	case "-ne":
		return boolStatus(l != r)
	case "-lt":
		return boolStatus(l < r)
	case "-le":
		return boolStatus(l <= r)
	case "-gt":
		return boolStatus(l > r)
	case "-ge":
		return boolStatus(l >= r)
	}
	printError(p, "test: %s: unrecognized condition\n", op)
	return interp.StatusUsage
}

func boolStatus(ok bool) int {
	if ok {
		return 0
	}
	return 1
}

func init() {
	interp.RegisterBuiltin("Evaluate conditional expression", Test, "test")
	interp.RegisterBuiltin("Evaluate conditional expression", Bracket, "[")
}
