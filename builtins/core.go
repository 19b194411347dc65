package builtins

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aisha-shell/aish/core/interp"
)

// Echo prints its arguments. -n suppresses the newline, -e interprets
// backslash escapes, -E (the default) does not.
func Echo(p *interp.Proc) int {
	noNewline := false
	escapes := false
	start := 1

	// Option parsing follows echo's historical quirk: any argument of
	// only [neE] flag letters counts, the first non-option stops.
optloop:
	for ; start < len(p.Args); start++ {
		arg := p.Args[start]
		if len(arg) < 2 || arg[0] != '-' {
			break
		}
		for _, c := range arg[1:] {
			if c != 'n' && c != 'e' && c != 'E' {
				break optloop
			}
		}
		for _, c := range arg[1:] {
			switch c {
			case 'n':
				noNewline = true
			case 'e':
				escapes = true
			case 'E':
				escapes = false
			}
		}
	}

	for i, arg := range p.Args[start:] {
		if i > 0 {
			fmt.Fprint(p.Stdout, " ")
		}
		if escapes {
			arg = unescape(arg)
		}
		fmt.Fprint(p.Stdout, arg)
	}
	if !noNewline {
		fmt.Fprintln(p.Stdout)
	}
	return 0
}

// unescape interprets echo -e style backslash sequences.
func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\\':
			sb.WriteByte('\\')
		case 'e':
			sb.WriteByte(0x1b)
		case '0':
			val := 0
			for n := 0; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(s[i]-'0')
			}
			sb.WriteByte(byte(val))
		case 'x':
			val := 0
			for n := 0; n < 2 && i+1 < len(s) && isHex(s[i+1]); n++ {
				i++
				val = val*16 + hexVal(s[i])
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// Pwd prints the working directory.
func Pwd(p *interp.Proc) int {
	wd, err := os.Getwd()
	if err != nil {
		printError(p, "pwd: error retrieving current directory\n")
		return 1
	}
	fmt.Fprintln(p.Stdout, wd)
	return 0
}

// Exit terminates the shell with an optional status. Inside a pipeline
// it only ends the stage.
func Exit(p *interp.Proc) int {
	code := p.Interp.LastStatus
	if len(p.Args) > 1 {
		n, err := strconv.Atoi(p.Args[1])
		if err != nil {
			printError(p, "exit: %s: numeric argument required\n", p.Args[1])
			n = interp.StatusUsage
		}
		code = n & 0xff
	}
	if !p.InPipeline {
		p.Interp.ExitRequested = true
		p.Interp.ExitCode = code
	}
	return code
}

// Clear clears the terminal screen.
func Clear(p *interp.Proc) int {
	fmt.Fprint(p.Stdout, "\x1b[2J\x1b[H")
	return 0
}

// True always succeeds.
func True(p *interp.Proc) int { return 0 }

// False always fails.
func False(p *interp.Proc) int { return 1 }

// Colon is the null command.
func Colon(p *interp.Proc) int { return 0 }

func init() {
	interp.RegisterBuiltin("Display a line of text", Echo, "echo")
	interp.RegisterBuiltin("Print working directory", Pwd, "pwd")
	interp.RegisterBuiltin("Exit the shell", Exit, "exit", "quit")
	interp.RegisterBuiltin("Clear the terminal screen", Clear, "clear")
	interp.RegisterBuiltin("Return success", True, "true")
	interp.RegisterBuiltin("Return failure", False, "false")
	interp.RegisterBuiltin("Null command (no-op)", Colon, ":")
}
