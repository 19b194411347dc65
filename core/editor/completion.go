package editor

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Completer produces candidates for the word under the cursor. The
// word class decides the source: command position completes builtins
// and PATH executables, a `$` prefix completes variable names, and
// everything else completes filesystem entries.
type Completer struct {
	FS       afero.Fs
	Dir      func() string
	PathVar  func() string
	Builtins func() []string
	VarNames func() []string
}

// wordAt finds the word containing the cursor and whether it sits at
// command position. Words are delimited by whitespace and the
// separators `|`, `;`, `&`.
func wordAt(line string, cursor int) (word string, start int, isCommand bool) {
	start = cursor
	for start > 0 && !isCompletionBreak(line[start-1]) {
		start--
	}
	word = line[start:cursor]

	ws := start
	for ws > 0 && (line[ws-1] == ' ' || line[ws-1] == '\t') {
		ws--
	}
	if ws == 0 {
		return word, start, true
	}
	switch line[ws-1] {
	case '|', ';', '&':
		return word, start, true
	}
	return word, start, false
}

func isCompletionBreak(c byte) bool {
	switch c {
	case ' ', '\t', '|', ';', '&':
		return true
	}
	return false
}

// Complete returns the sorted, deduplicated candidates for the word
// under the cursor.
func (c *Completer) Complete(line string, cursor int) (candidates []string, start int) {
	word, start, isCommand := wordAt(line, cursor)

	var out []string
	switch {
	case isCommand && !strings.Contains(word, "/"):
		out = c.completeCommands(word)
	case strings.HasPrefix(word, "$"):
		out = c.completeVariables(word)
	default:
		out = c.completeFiles(word)
	}

	sort.Strings(out)
	out = dedup(out)
	return out, start
}

func (c *Completer) completeCommands(prefix string) []string {
	var out []string
	if c.Builtins != nil {
		for _, b := range c.Builtins() {
			if strings.HasPrefix(b, prefix) {
				out = append(out, b)
			}
		}
	}
	if c.PathVar == nil {
		return out
	}
	for _, dir := range strings.Split(c.PathVar(), ":") {
		if dir == "" {
			continue
		}
		infos, err := afero.ReadDir(c.FS, dir)
		if err != nil {
			continue
		}
		for _, info := range infos {
			name := info.Name()
			if !strings.HasPrefix(name, prefix) || info.IsDir() {
				continue
			}
			if info.Mode()&0111 == 0 {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

func (c *Completer) completeVariables(word string) []string {
	prefix := strings.TrimPrefix(word, "$")
	var out []string
	if c.VarNames == nil {
		return out
	}
	for _, n := range c.VarNames() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, "$"+n)
		}
	}
	return out
}

func (c *Completer) completeFiles(word string) []string {
	dirPart := ""
	prefix := word
	if idx := strings.LastIndexByte(word, '/'); idx >= 0 {
		dirPart = word[:idx+1]
		prefix = word[idx+1:]
	}

	readDir := dirPart
	switch {
	case readDir == "":
		readDir = "."
	case readDir != "/":
		readDir = strings.TrimSuffix(readDir, "/")
	}
	if !path.IsAbs(readDir) && c.Dir != nil {
		readDir = path.Join(c.Dir(), readDir)
	}

	infos, err := afero.ReadDir(c.FS, readDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, info := range infos {
		name := info.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		entry := dirPart + name
		if info.IsDir() {
			entry += "/"
		}
		out = append(out, entry)
	}
	return out
}

// commonPrefix returns the longest shared prefix of the candidates.
func commonPrefix(items []string) string {
	if len(items) == 0 {
		return ""
	}
	prefix := items[0]
	for _, s := range items[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// NewOSCompleter is the production wiring: real filesystem, process
// working directory.
func NewOSCompleter(pathVar func() string, builtins func() []string, vars func() []string) *Completer {
	return &Completer{
		FS: afero.NewOsFs(),
		Dir: func() string {
			wd, err := os.Getwd()
			if err != nil {
				return "."
			}
			return wd
		},
		PathVar:  pathVar,
		Builtins: builtins,
		VarNames: vars,
	}
}
