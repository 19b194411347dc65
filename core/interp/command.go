package interp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aisha-shell/aish/core/expand"
	"github.com/aisha-shell/aish/core/token"
	"github.com/spf13/afero"
)

// Command is one executable pipeline stage: either an argument vector
// or a parenthesized group to run in a subshell, plus its resolved
// redirections. Multiple redirections of the same direction keep the
// last one.
type Command struct {
	Args   []string
	quoted []bool

	// Subshell holds the rendered inner text of a `( ... )` group.
	// When non-empty, Args is unused.
	Subshell string

	InputFile    string
	OutputFile   string
	AppendOutput bool
}

// Pipeline is an ordered sequence of commands connected by pipes.
type Pipeline struct {
	Cmds []*Command
	Text string
}

// AndOr is a short-circuit chain: Ops[i] (And or Or) joins Items[i]
// and Items[i+1].
type AndOr struct {
	Items []*Pipeline
	Ops   []token.Kind
}

// Segment is one list element; Background marks a trailing `&`.
type Segment struct {
	AndOr      *AndOr
	Background bool
	Text       string
}

// List is a parsed input line.
type List struct {
	Segments []*Segment
}

var errRedirection = errors.New("redirection failed")

// BuildList folds a validated token stream into the command tree. It
// also pre-validates every redirection target by opening and closing
// it; any failure aborts the whole line with no partial effects.
func (in *Interp) BuildList(toks []token.Token) (*List, error) {
	toks = trim(toks)
	if err := in.validateRedirections(toks); err != nil {
		return nil, err
	}

	list := &List{}
	for _, seg := range splitTop(toks, token.Semicolon, token.Ampersand) {
		if len(seg.toks) == 0 {
			continue
		}
		andor, err := in.buildAndOr(seg.toks)
		if err != nil {
			return nil, err
		}
		list.Segments = append(list.Segments, &Segment{
			AndOr:      andor,
			Background: seg.sep == token.Ampersand,
			Text:       token.Render(seg.toks),
		})
	}
	return list, nil
}

func (in *Interp) buildAndOr(toks []token.Token) (*AndOr, error) {
	a := &AndOr{}
	for _, part := range splitTop(toks, token.And, token.Or) {
		p, err := in.buildPipeline(part.toks)
		if err != nil {
			return nil, err
		}
		a.Items = append(a.Items, p)
		if part.sep == token.And || part.sep == token.Or {
			a.Ops = append(a.Ops, part.sep)
		}
	}
	return a, nil
}

func (in *Interp) buildPipeline(toks []token.Token) (*Pipeline, error) {
	p := &Pipeline{Text: token.Render(toks)}
	for _, part := range splitTop(toks, token.Pipe) {
		cmd, err := in.buildCommand(part.toks)
		if err != nil {
			return nil, err
		}
		p.Cmds = append(p.Cmds, cmd)
	}
	return p, nil
}

func (in *Interp) buildCommand(toks []token.Token) (*Command, error) {
	cmd := &Command{}

	if len(toks) > 0 && toks[0].Kind == token.LParen {
		inner := toks[1 : len(toks)-1]
		cmd.Subshell = token.Render(inner)
		return cmd, nil
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == token.Word:
			cmd.Args = append(cmd.Args, t.Text)
			cmd.quoted = append(cmd.quoted, t.Quoted)
		case t.Kind.IsRedirect():
			// The validator guarantees a Word follows.
			target := toks[i+1].Text
			i++
			switch t.Kind {
			case token.RedirIn:
				cmd.InputFile = target
			case token.RedirOut:
				cmd.OutputFile = target
				cmd.AppendOutput = false
			case token.RedirAppend:
				cmd.OutputFile = target
				cmd.AppendOutput = true
			case token.Heredoc, token.HereString:
				// Lexed but not executed.
			}
		}
	}

	// Pathname expansion applies to unquoted arguments only.
	g := &expand.Globber{FS: in.FS, Dir: in.workDir()}
	cmd.Args = g.Args(cmd.Args, cmd.quoted)
	cmd.quoted = nil
	return cmd, nil
}

// validateRedirections probes every redirection target in the stream
// before anything is built or spawned.
func (in *Interp) validateRedirections(toks []token.Token) error {
	depth := 0
	for i, t := range toks {
		switch t.Kind {
		case token.LParen:
			depth++
			continue
		case token.RParen:
			depth--
			continue
		}
		if depth > 0 || i+1 >= len(toks) || toks[i+1].Kind != token.Word {
			continue
		}
		target := toks[i+1].Text
		switch t.Kind {
		case token.RedirIn:
			f, err := in.FS.Open(in.resolve(target))
			if err != nil {
				fmt.Fprintln(in.Stderr, "No such file or directory")
				return errRedirection
			}
			f.Close()
		case token.RedirOut, token.RedirAppend:
			flags := os.O_WRONLY | os.O_CREATE
			if t.Kind == token.RedirAppend {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := in.FS.OpenFile(in.resolve(target), flags, 0644)
			if err != nil {
				fmt.Fprintln(in.Stderr, "Unable to create file for writing")
				return errRedirection
			}
			f.Close()
		}
	}
	return nil
}

func (in *Interp) workDir() string {
	if in.Dir != "" {
		return in.Dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func (in *Interp) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(in.workDir(), path)
}

// openRedirects opens a command's redirection targets through the
// interpreter's filesystem. Used for builtins, which run in-process;
// external children get real descriptors opened with os.Open/os.OpenFile
// in the executor.
func (in *Interp) openRedirects(cmd *Command) (rin afero.File, rout afero.File, err error) {
	if cmd.InputFile != "" {
		rin, err = in.FS.Open(in.resolve(cmd.InputFile))
		if err != nil {
			fmt.Fprintln(in.Stderr, "No such file or directory")
			return nil, nil, errRedirection
		}
	}
	if cmd.OutputFile != "" {
		flags := os.O_WRONLY | os.O_CREATE
		if cmd.AppendOutput {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		rout, err = in.FS.OpenFile(in.resolve(cmd.OutputFile), flags, 0644)
		if err != nil {
			if rin != nil {
				rin.Close()
			}
			fmt.Fprintln(in.Stderr, "Unable to create file for writing")
			return nil, nil, errRedirection
		}
	}
	return rin, rout, nil
}

type topSegment struct {
	toks []token.Token
	sep  token.Kind // separator that followed, or EOF
}

// splitTop splits toks at top level (outside parentheses) on any of
// the given separator kinds.
func splitTop(toks []token.Token, seps ...token.Kind) []topSegment {
	isSep := func(k token.Kind) bool {
		for _, s := range seps {
			if k == s {
				return true
			}
		}
		return false
	}

	var out []topSegment
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		}
		if depth == 0 && isSep(t.Kind) {
			out = append(out, topSegment{toks: toks[start:i], sep: t.Kind})
			start = i + 1
		}
	}
	if start < len(toks) {
		out = append(out, topSegment{toks: toks[start:], sep: token.EOF})
	}
	return out
}

// trim drops the trailing EOF/Newline tokens.
func trim(toks []token.Token) []token.Token {
	end := len(toks)
	for end > 0 && (toks[end-1].Kind == token.EOF || toks[end-1].Kind == token.Newline) {
		end--
	}
	return toks[:end]
}
