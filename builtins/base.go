// Package builtins holds the bodies of the shell's builtin commands.
// Each builtin is a function over an interp.Proc; registration happens
// in init so importing this package for side effects populates the
// interpreter's builtin table.
package builtins

import (
	"fmt"
	"io"

	"github.com/aisha-shell/aish/core/interp"
	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
)

var (
	colorBoldCyan = color.New(color.FgCyan, color.Bold)
	colorGreen    = color.New(color.FgGreen)
	colorRed      = color.New(color.FgRed)
)

// printError writes a red error line to the proc's stderr.
func printError(p *interp.Proc, format string, a ...interface{}) {
	fmt.Fprint(p.Stderr, colorRed.Sprintf(format, a...))
}

// printSuccess writes a green confirmation line to stdout.
func printSuccess(p *interp.Proc, format string, a ...interface{}) {
	fmt.Fprint(p.Stdout, colorGreen.Sprintf(format, a...))
}

// SimpleCommand wraps a builtin body with getopt flag parsing and a
// uniform --help surface.
type SimpleCommand struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string
	// NeverBail runs the callback even when flag parsing fails.
	NeverBail bool

	showHelp *bool
	flags    *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}
	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "usage: %s\n", s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses the proc's arguments and, if parsing succeeded, calls the
// callback with the positional remainder available via Flags().Args().
func (s *SimpleCommand) Run(p *interp.Proc, callback func() int) int {
	opts := s.Flags()
	if s.showHelp == nil {
		s.showHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(p.Args, nil)
	if err != nil && !s.NeverBail {
		fmt.Fprintf(p.Stderr, "error: %s\n\n", err)
		s.PrintHelp(p.Stderr)
		return interp.StatusUsage
	}

	if *s.showHelp {
		s.PrintHelp(p.Stdout)
		return 0
	}

	return callback()
}
