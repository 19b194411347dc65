// Package editor is the interactive line editor: a cooperative loop
// that owns the terminal in raw mode for the duration of one input
// line, with emacs-style bindings, history stepping, a kill buffer,
// and tab completion.
package editor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aisha-shell/aish/core/history"
)

// Editor reads lines from a terminal. It is single-threaded; one
// ReadLine call owns the terminal until it returns, and the raw-mode
// switch is undone on every control-flow exit.
type Editor struct {
	in   *os.File
	out  io.Writer
	term *terminal

	hist      *history.Ring
	completer *Completer

	line lineState
	kill []byte

	// histIdx == hist.Len() means the user is editing a fresh line.
	histIdx int
}

// New builds an editor over the given terminal descriptor pair.
func New(in *os.File, out io.Writer, hist *history.Ring, completer *Completer) *Editor {
	return &Editor{
		in:        in,
		out:       out,
		term:      newTerminal(in),
		hist:      hist,
		completer: completer,
	}
}

// ReadLine collects one line under the prompt. It returns io.EOF for
// Ctrl-D on an empty line and ("", nil) when the user aborts with
// Ctrl-C.
func (e *Editor) ReadLine(prompt string) (string, error) {
	e.line.reset()
	if e.hist != nil {
		e.histIdx = e.hist.Len()
	}

	if !e.term.isTerminal() {
		return e.readPlain()
	}

	fmt.Fprint(e.out, prompt)
	if err := e.term.enableRaw(); err != nil {
		return "", err
	}
	defer e.term.disableRaw()

	pw := promptWidth(prompt)
	for {
		k, err := decodeKey(e.in)
		if err != nil {
			return "", err
		}

		switch k {
		case keyEnter, keyCtrlJ:
			fmt.Fprint(e.out, "\r\n")
			return e.line.String(), nil

		case keyCtrlC:
			fmt.Fprint(e.out, "^C\r\n")
			return "", nil

		case keyCtrlD:
			if len(e.line.buf) == 0 {
				return "", io.EOF
			}
			e.line.deleteRight()

		case keyBackspace, keyCtrlH:
			e.line.backspace()

		case keyDelete:
			e.line.deleteRight()

		case keyArrowLeft, keyCtrlB:
			e.line.moveLeft()

		case keyArrowRight, keyCtrlF:
			e.line.moveRight()

		case keyArrowUp, keyCtrlP:
			e.historyPrev()

		case keyArrowDown, keyCtrlN:
			e.historyNext()

		case keyHome, keyCtrlA:
			e.line.moveHome()

		case keyEnd, keyCtrlE:
			e.line.moveEnd()

		case keyCtrlK:
			if cut := e.line.killToEnd(); len(cut) > 0 {
				e.kill = cut
			}

		case keyCtrlU:
			if cut := e.line.killToStart(); len(cut) > 0 {
				e.kill = cut
			}

		case keyCtrlW:
			if cut := e.line.killPrevWord(); len(cut) > 0 {
				e.kill = cut
			}

		case keyCtrlY:
			e.line.insertString(string(e.kill))

		case keyCtrlT:
			e.line.transpose()

		case keyCtrlL:
			fmt.Fprint(e.out, "\x1b[2J\x1b[H")

		case keyTab:
			e.complete(prompt, pw)

		default:
			if k >= 0x20 && k <= 0x7e {
				e.line.insert(byte(k))
			}
		}

		e.refresh(prompt, pw)
	}
}

// readPlain is the non-terminal fallback: one buffered line, no
// editing.
func (e *Editor) readPlain() (string, error) {
	var sb strings.Builder
	var b [1]byte
	for {
		n, err := e.in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(b[0])
			continue
		}
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
	}
}

// refresh redraws the edited line: carriage return, prompt, buffer,
// erase to end, then absolute cursor positioning.
func (e *Editor) refresh(prompt string, promptW int) {
	var sb strings.Builder
	sb.WriteByte('\r')
	sb.WriteString(prompt)
	sb.Write(e.line.buf)
	sb.WriteString("\x1b[K")
	col := promptW + e.line.cursor
	sb.WriteString("\r")
	if col > 0 {
		fmt.Fprintf(&sb, "\x1b[%dC", col)
	}
	io.WriteString(e.out, sb.String())
}

func (e *Editor) historyPrev() {
	if e.hist == nil || e.histIdx == 0 {
		return
	}
	e.histIdx--
	if entry, ok := e.hist.Get(e.histIdx); ok {
		e.line.set(entry)
	}
}

func (e *Editor) historyNext() {
	if e.hist == nil || e.histIdx >= e.hist.Len() {
		return
	}
	e.histIdx++
	if e.histIdx == e.hist.Len() {
		e.line.reset()
		return
	}
	if entry, ok := e.hist.Get(e.histIdx); ok {
		e.line.set(entry)
	}
}

// complete runs tab completion on the word under the cursor. One
// candidate inserts directly; several insert the common prefix when it
// grows the word, otherwise the candidates print in columns and the
// line redraws beneath them.
func (e *Editor) complete(prompt string, promptW int) {
	if e.completer == nil {
		return
	}
	line := e.line.String()
	candidates, start := e.completer.Complete(line, e.line.cursor)
	if len(candidates) == 0 {
		fmt.Fprint(e.out, "\a")
		return
	}

	if len(candidates) == 1 {
		insert := candidates[0]
		if !strings.HasSuffix(insert, "/") {
			insert += " "
		}
		e.line.replaceRange(start, e.line.cursor, insert)
		return
	}

	word := line[start:e.line.cursor]
	prefix := commonPrefix(candidates)
	if len(prefix) > len(word) {
		e.line.replaceRange(start, e.line.cursor, prefix)
		return
	}

	fmt.Fprint(e.out, "\r\n")
	e.printColumns(candidates)
}

// printColumns renders candidates in a multi-column layout sized to
// the terminal width.
func (e *Editor) printColumns(items []string) {
	maxLen := 0
	for _, s := range items {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	cols := e.term.width() / (maxLen + 2)
	if cols < 1 {
		cols = 1
	}
	for i, s := range items {
		fmt.Fprintf(e.out, "%-*s  ", maxLen, s)
		if (i+1)%cols == 0 || i == len(items)-1 {
			fmt.Fprint(e.out, "\r\n")
		}
	}
}
