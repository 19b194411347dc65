package editor

import (
	"os"

	"golang.org/x/term"
)

// terminal owns the raw-mode transitions around a ReadLine call. Every
// enable is matched by a restore on every exit path; leaving the
// terminal raw would break subsequent child programs.
type terminal struct {
	fd    int
	saved *term.State
}

func newTerminal(f *os.File) *terminal {
	return &terminal{fd: int(f.Fd())}
}

func (t *terminal) isTerminal() bool {
	return term.IsTerminal(t.fd)
}

// enableRaw switches the descriptor to raw mode: no echo, no canonical
// discipline, no signal generation, 8-bit, single-byte reads.
func (t *terminal) enableRaw() error {
	if t.saved != nil {
		return nil
	}
	saved, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = saved
	return nil
}

// disableRaw restores the saved settings. Safe to call repeatedly.
func (t *terminal) disableRaw() {
	if t.saved == nil {
		return
	}
	_ = term.Restore(t.fd, t.saved)
	t.saved = nil
}

// width reports the terminal column count, defaulting to 80.
func (t *terminal) width() int {
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// promptWidth computes the printable width of a prompt, skipping ANSI
// escape sequences (ESC '[' up to and including the terminating
// letter).
func promptWidth(prompt string) int {
	width := 0
	i := 0
	for i < len(prompt) {
		c := prompt[i]
		if c == 0x1b {
			i++
			if i < len(prompt) && prompt[i] == '[' {
				i++
				for i < len(prompt) {
					b := prompt[i]
					i++
					if b >= 0x40 && b <= 0x7e {
						break
					}
				}
			}
			continue
		}
		width++
		i++
	}
	return width
}
