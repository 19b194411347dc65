// Package history keeps the shell's command log: a fixed-capacity ring
// of past lines, deduplicated against the immediately preceding entry
// and persisted to a user-scoped file on every mutation.
package history

import (
	"bufio"
	"strings"

	"github.com/spf13/afero"
)

// DefaultCapacity matches the interactive editor's history depth.
const DefaultCapacity = 1000

// Ring is the persistent command history. The zero value is not
// usable; construct with New.
type Ring struct {
	fs       afero.Fs
	path     string
	capacity int
	entries  []string
}

// New returns a ring backed by path on fs. Existing entries are loaded
// eagerly; a missing file is not an error. capacity <= 0 selects
// DefaultCapacity.
func New(fs afero.Fs, path string, capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Ring{fs: fs, path: path, capacity: capacity}
	r.load()
	return r
}

func (r *Ring) load() {
	f, err := r.fs.Open(r.path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		r.append(line)
	}
}

func (r *Ring) append(line string) bool {
	if len(r.entries) > 0 && r.entries[len(r.entries)-1] == line {
		return false
	}
	if len(r.entries) >= r.capacity {
		r.entries = r.entries[1:]
	}
	r.entries = append(r.entries, line)
	return true
}

// Add records a command line and persists the ring. Empty lines and
// immediate repeats are dropped.
func (r *Ring) Add(line string) {
	line = strings.TrimRight(line, "\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	if r.append(line) {
		r.save()
	}
}

// Clear drops every entry and truncates the backing file.
func (r *Ring) Clear() {
	r.entries = nil
	r.save()
}

func (r *Ring) save() {
	f, err := r.fs.Create(r.path)
	if err != nil {
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range r.entries {
		w.WriteString(e)
		w.WriteByte('\n')
	}
	w.Flush()
}

// Len returns the number of stored entries.
func (r *Ring) Len() int { return len(r.entries) }

// Get returns the entry at index i, oldest first. The bool is false
// when i is out of range.
func (r *Ring) Get(i int) (string, bool) {
	if i < 0 || i >= len(r.entries) {
		return "", false
	}
	return r.entries[i], true
}

// All returns a copy of the entries, oldest first.
func (r *Ring) All() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}
