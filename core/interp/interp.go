// Package interp owns the shell's execution state: the variable,
// alias, and job stores, the command builder, and the executor that
// turns a command tree into child processes and an exit status.
package interp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aisha-shell/aish/core/ai"
	"github.com/aisha-shell/aish/core/config"
	"github.com/aisha-shell/aish/core/expand"
	"github.com/aisha-shell/aish/core/history"
	"github.com/aisha-shell/aish/core/logger"
	"github.com/aisha-shell/aish/core/token"
	"github.com/spf13/afero"
)

// Interp is the interpreter value threaded through every component.
// All stores are owned by it; nothing shell-global lives outside this
// struct apart from the builtin registry, the foreground-pid word, and
// the previous directory the cd builtin keeps for `cd -`.
type Interp struct {
	FS     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Vars    *VarStore
	Aliases *AliasStore
	Jobs    *JobTable
	History *history.Ring
	Log     logger.Logger

	// AI and Config are the out-of-core collaborators builtins reach
	// through the Proc handle.
	AI     *ai.Client
	Config *config.Configuration

	// ShellName and Positional back $0 and $1..$9/$#.
	ShellName  string
	Positional []string

	// SelfExe is the path re-exec'd for background supervisors and
	// subshells.
	SelfExe string

	// Dir overrides the working directory (tests); empty means the
	// process working directory.
	Dir string

	// LastStatus backs $?.
	LastStatus int

	lastBackgroundPID int

	// ExitRequested is set by the exit builtin; the main loop checks
	// it after every line.
	ExitRequested bool
	ExitCode      int
}

// Options configures New.
type Options struct {
	FS         afero.Fs
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	History    *history.Ring
	Log        logger.Logger
	ShellName  string
	Positional []string
	SelfExe    string
}

// New builds an interpreter with the environment imported into the
// variable store.
func New(opts Options) *Interp {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.ShellName == "" {
		opts.ShellName = "aish"
	}
	if opts.SelfExe == "" {
		if exe, err := os.Executable(); err == nil {
			opts.SelfExe = exe
		}
	}
	return &Interp{
		FS:         opts.FS,
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		Vars:       NewVarStoreFromEnviron(os.Environ()),
		Aliases:    NewAliasStore(),
		Jobs:       NewJobTable(),
		History:    opts.History,
		Log:        opts.Log,
		ShellName:  opts.ShellName,
		Positional: opts.Positional,
		SelfExe:    opts.SelfExe,
	}
}

// LookupVar implements expand.VarResolver, answering both stored
// variables and the computed specials.
func (in *Interp) LookupVar(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(in.LastStatus), true
	case "$":
		return strconv.Itoa(os.Getpid()), true
	case "!":
		if in.lastBackgroundPID == 0 {
			return "", true
		}
		return strconv.Itoa(in.lastBackgroundPID), true
	case "#":
		return strconv.Itoa(len(in.Positional)), true
	case "@", "*":
		return "", true
	case "0":
		return in.ShellName, true
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		i := int(name[0] - '1')
		if i < len(in.Positional) {
			return in.Positional[i], true
		}
		return "", true
	}
	return in.Vars.Get(name)
}

// Assign implements expand.VarResolver for the ${NAME:=default} form.
func (in *Interp) Assign(name, value string) {
	_ = in.Vars.Set(name, value, 0)
}

// LookupAlias implements expand.AliasResolver.
func (in *Interp) LookupAlias(name string) (string, bool) {
	return in.Aliases.Get(name)
}

// LastBackgroundPID returns the pid of the most recently launched
// background supervisor.
func (in *Interp) LastBackgroundPID() int { return in.lastBackgroundPID }

// Run takes one raw input line through the whole pipeline: alias and
// variable expansion, tokenization, grammar validation, tree building,
// and execution. The result is the line's exit status, which also
// becomes $?.
func (in *Interp) Run(line string) int {
	status := in.run(line)
	in.LastStatus = status
	return status
}

func (in *Interp) run(line string) int {
	line = expand.Aliases(line, in)
	line = expand.Variables(line, in)

	toks, err := token.Scan(line)
	if err != nil {
		fmt.Fprintf(in.Stderr, "aish: %v\n", err)
		in.Log.Error("tokenize", err)
		return 2
	}
	if err := token.Validate(toks); err != nil {
		fmt.Fprintln(in.Stderr, "Invalid Syntax!")
		in.Log.Error("syntax", err)
		return 2
	}

	list, err := in.BuildList(toks)
	if err != nil {
		if !errors.Is(err, errRedirection) {
			fmt.Fprintf(in.Stderr, "aish: %v\n", err)
		}
		return 1
	}
	if len(list.Segments) == 0 {
		return in.LastStatus
	}
	return in.execList(list)
}
