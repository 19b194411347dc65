package builtins

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/aisha-shell/aish/core/interp"
	"github.com/anmitsu/go-shlex"
)

const aiTimeout = 60 * time.Second

// aiReady checks availability and prints the standard offline hint.
func aiReady(p *interp.Proc) bool {
	if p.Interp.AI.Available() {
		return true
	}
	printError(p, "AI is offline. Run 'aikey YOUR_KEY' or set the API key environment variable.\n")
	return false
}

func sysInfo() string {
	wd, _ := os.Getwd()
	return fmt.Sprintf("os=%s arch=%s cwd=%s", runtime.GOOS, runtime.GOARCH, wd)
}

// Chat holds a free-form conversation turn with the assistant.
func Chat(p *interp.Proc) int {
	if len(p.Args) < 2 {
		printError(p, "ai: usage: ai MESSAGE...\n")
		return interp.StatusUsage
	}
	if !aiReady(p) {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	reply, err := p.Interp.AI.Chat(ctx, strings.Join(p.Args[1:], " "))
	if err != nil {
		printError(p, "ai: %v\n", err)
		return 1
	}
	fmt.Fprintln(p.Stdout, reply)
	return 0
}

// Ask translates natural language into a shell command, previews the
// resulting argv, and prints it for the user to run.
func Ask(p *interp.Proc) int {
	if len(p.Args) < 2 {
		printError(p, "ask: usage: ask WHAT YOU WANT TO DO\n")
		return interp.StatusUsage
	}
	if !aiReady(p) {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	s, err := p.Interp.AI.Translate(ctx, strings.Join(p.Args[1:], " "), sysInfo())
	if err != nil {
		printError(p, "ask: %v\n", err)
		return 1
	}
	if !s.Success {
		printError(p, "ask: %s\n", s.Explanation)
		return 1
	}

	fmt.Fprintf(p.Stdout, "%s\n", colorBoldCyan.Sprint(s.Command))
	if s.Explanation != "" {
		fmt.Fprintln(p.Stdout, s.Explanation)
	}

	// A preview of the exact argv guards against word-splitting
	// surprises in the suggestion.
	if argv, err := shlex.Split(s.Command, true); err == nil && len(argv) > 1 {
		fmt.Fprintf(p.Stdout, "argv: [%s]\n", strings.Join(argv, ", "))
	}
	return 0
}

// Explain describes what a command does.
func Explain(p *interp.Proc) int {
	if len(p.Args) < 2 {
		printError(p, "explain: usage: explain COMMAND...\n")
		return interp.StatusUsage
	}
	if !aiReady(p) {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	reply, err := p.Interp.AI.Explain(ctx, strings.Join(p.Args[1:], " "))
	if err != nil {
		printError(p, "explain: %v\n", err)
		return 1
	}
	fmt.Fprintln(p.Stdout, reply)
	return 0
}

// AIFix asks for a correction to the most recent failed command.
func AIFix(p *interp.Proc) int {
	if !aiReady(p) {
		return 1
	}
	ring := p.Interp.History
	if ring == nil || ring.Len() == 0 {
		printError(p, "aifix: no previous command\n")
		return 1
	}
	idx := ring.Len() - 1
	last, _ := ring.Get(idx)
	// The interactive loop records this very line before running it.
	if fields := strings.Fields(last); len(fields) > 0 && fields[0] == p.Args[0] {
		if idx == 0 {
			printError(p, "aifix: no previous command\n")
			return 1
		}
		last, _ = ring.Get(idx - 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	reply, err := p.Interp.AI.Fix(ctx, last, fmt.Sprintf("exit status %d", p.Interp.LastStatus))
	if err != nil {
		printError(p, "aifix: %v\n", err)
		return 1
	}
	fmt.Fprintln(p.Stdout, reply)
	return 0
}

// AIConfig shows the current assistant settings.
func AIConfig(p *interp.Proc) int {
	cfg := p.Interp.Config
	if cfg == nil {
		printError(p, "aiconfig: no configuration loaded\n")
		return 1
	}
	state := colorRed.Sprint("offline")
	if p.Interp.AI.Available() {
		state = colorGreen.Sprint("ready")
	}
	fmt.Fprintf(p.Stdout, "status:   %s\n", state)
	fmt.Fprintf(p.Stdout, "endpoint: %s\n", cfg.AI.Endpoint)
	fmt.Fprintf(p.Stdout, "model:    %s\n", cfg.AI.Model)
	fmt.Fprintf(p.Stdout, "key env:  %s\n", cfg.AI.KeyEnv)
	return 0
}

// AIKey installs an API key for this session and exports it so child
// shells inherit it.
func AIKey(p *interp.Proc) int {
	if len(p.Args) != 2 {
		printError(p, "aikey: usage: aikey API_KEY\n")
		return interp.StatusUsage
	}
	if p.Interp.AI == nil {
		printError(p, "aikey: assistant not initialized\n")
		return 1
	}
	p.Interp.AI.SetKey(p.Args[1])

	keyEnv := "GEMINI_API_KEY"
	if p.Interp.Config != nil {
		keyEnv = p.Interp.Config.AI.KeyEnv
	}
	if err := p.Interp.Vars.Set(keyEnv, p.Args[1], interp.FlagExported); err != nil {
		printError(p, "aikey: %v\n", err)
		return 1
	}
	printSuccess(p, "AI key installed\n")
	return 0
}

func init() {
	interp.RegisterBuiltin("Chat with AI assistant", Chat, "ai")
	interp.RegisterBuiltin("Translate natural language to command", Ask, "ask")
	interp.RegisterBuiltin("Explain what a command does", Explain, "explain")
	interp.RegisterBuiltin("Get AI fix for last error", AIFix, "aifix")
	interp.RegisterBuiltin("Show AI configuration", AIConfig, "aiconfig")
	interp.RegisterBuiltin("Set the AI API key", AIKey, "aikey")
}
