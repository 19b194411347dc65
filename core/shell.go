// Package core wires the shell together: the main read-eval loop, the
// prompt, the rc file, and the glue between the interpreter, editor,
// history, configuration, and AI helper.
package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aisha-shell/aish/core/ai"
	"github.com/aisha-shell/aish/core/config"
	"github.com/aisha-shell/aish/core/editor"
	"github.com/aisha-shell/aish/core/history"
	"github.com/aisha-shell/aish/core/interp"
	"github.com/aisha-shell/aish/core/logger"
	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// Version is the released shell version.
const Version = "1.0.0"

// StateDirName is the per-user directory holding config.yaml and the
// app log.
const StateDirName = ".aisha"

// RCName is the executable startup file in the home directory.
const RCName = ".aisharc"

// Shell is one interactive session.
type Shell struct {
	Interp *interp.Interp
	Editor *editor.Editor
	Config *config.Configuration

	log      logger.Logger
	logClose io.Closer

	interactive bool
	plainIn     *bufio.Reader
}

// NewShell builds a fully wired shell reading from stdin. Interactive
// niceties (editor, banner, signal dispatch) engage only when stdin is
// a terminal.
func NewShell() (*Shell, error) {
	fs := afero.NewOsFs()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	stateDir := filepath.Join(home, StateDirName)

	cfg, cfgErr := config.Load(fs, stateDir)

	log, logClose, err := logger.Open(stateDir)
	if err != nil {
		log = logger.Nop()
	}
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "aish: config: %v\n", cfgErr)
		log.Error("config", cfgErr)
	}

	hist := history.New(fs, config.ExpandHome(cfg.History.File, home), cfg.History.Size)

	in := interp.New(interp.Options{
		FS:      fs,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		History: hist,
		Log:     log,
	})
	in.Config = cfg
	in.AI = ai.NewClient(cfg.AI.Endpoint, cfg.AI.Model, os.Getenv(cfg.AI.KeyEnv), cfg.AI.RequestsPerMinute)

	completer := editor.NewOSCompleter(
		func() string {
			v, _ := in.Vars.Get("PATH")
			return v
		},
		interp.BuiltinNames,
		func() []string { return in.Vars.Names() },
	)
	ed := editor.New(os.Stdin, os.Stdout, hist, completer)

	s := &Shell{
		Interp:      in,
		Editor:      ed,
		Config:      cfg,
		log:         log,
		logClose:    logClose,
		interactive: isatty(os.Stdin),
		plainIn:     bufio.NewReader(os.Stdin),
	}
	return s, nil
}

func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Run is the main loop: drain finished jobs, render the prompt, read a
// line, execute it. It returns the shell's final exit status.
func (s *Shell) Run() int {
	if s.interactive {
		interp.InstallSignalHandlers()
		s.Welcome()
	}
	s.LoadRC()
	defer s.Close()

	for {
		s.Interp.Jobs.Drain(s.Interp.Stdout)

		line, err := s.readLine()
		if err == io.EOF {
			if s.interactive {
				fmt.Fprintln(s.Interp.Stdout, "\nlogout")
			}
			break
		}
		if err != nil {
			fmt.Fprintf(s.Interp.Stderr, "aish: readline: %v\n", err)
			s.log.Error("readline", err)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !skipHistory(line) {
			s.Interp.History.Add(line)
		}

		start := time.Now()
		status := s.Interp.Run(line)
		s.log.Command(line, status, time.Since(start))

		if s.Interp.ExitRequested {
			return s.Interp.ExitCode
		}
	}
	return s.Interp.LastStatus
}

func (s *Shell) readLine() (string, error) {
	if s.interactive {
		return s.Editor.ReadLine(s.Prompt())
	}
	line, err := s.plainIn.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// skipHistory reports whether a line is one of the introspection
// commands that never lands in the persistent log.
func skipHistory(line string) bool {
	first := line
	if idx := strings.IndexAny(first, " \t"); idx >= 0 {
		first = first[:idx]
	}
	switch first {
	case "history", "log", "jobs", "activities", "ping":
		return true
	}
	return false
}

// RunCommand executes a single command line non-interactively; this is
// the -c path used directly and by background supervisors and
// subshells.
func (s *Shell) RunCommand(line string) int {
	defer s.Close()
	status := s.Interp.Run(line)
	if s.Interp.ExitRequested {
		return s.Interp.ExitCode
	}
	return status
}

// RunScript executes commands from r line by line, stopping on exit.
func (s *Shell) RunScript(r io.Reader) int {
	defer s.Close()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.Interp.Run(line)
		if s.Interp.ExitRequested {
			return s.Interp.ExitCode
		}
	}
	return s.Interp.LastStatus
}

// LoadRC executes ~/.aisharc as if each line were typed at the prompt.
// Errors are reported and do not abort startup.
func (s *Shell) LoadRC() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	s.loadRCFile(filepath.Join(home, RCName))
}

func (s *Shell) loadRCFile(path string) {
	f, err := s.Interp.FS.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if status := s.Interp.Run(line); status != 0 {
			fmt.Fprintf(s.Interp.Stderr, "aish: %s:%d: command failed\n", path, lineno)
		}
		if s.Interp.ExitRequested {
			s.Interp.ExitRequested = false
		}
	}
}

// Welcome prints the interactive banner.
func (s *Shell) Welcome() {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	if !s.Config.Color {
		color.NoColor = true
	}

	out := s.Interp.Stdout
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s v%s\n", cyan.Sprint("AIshA"), Version)
	fmt.Fprintf(out, "  %s\n\n", dim.Sprint("Advanced Intelligent Shell Assistant"))
	if s.Interp.AI.Available() {
		fmt.Fprintf(out, "  %s Type %s followed by what you want to do\n",
			color.GreenString("[AI Ready]"), bold.Sprint("ask"))
	} else {
		fmt.Fprintf(out, "  %s Run %s to enable AI features\n",
			color.YellowString("[AI Offline]"), bold.Sprint("aikey YOUR_KEY"))
	}
	fmt.Fprintf(out, "  Type %s for available commands\n\n", bold.Sprint("help"))
}

// Close flushes and releases resources owned by the shell.
func (s *Shell) Close() {
	if s.logClose != nil {
		s.logClose.Close()
		s.logClose = nil
	}
}
