package expand

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Globber expands pathname patterns against a filesystem. Dir is the
// working directory used for relative patterns.
type Globber struct {
	FS  afero.Fs
	Dir string
}

// HasGlobChars reports whether s contains a glob metacharacter (`*`,
// `?` or `[`); backslash escapes are not considered.
func HasGlobChars(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Expand returns the sorted matches for pattern. When nothing matches
// the literal pattern is kept, per the shell convention.
func (g *Globber) Expand(pattern string) []string {
	dir, file := splitPattern(pattern)

	if !HasGlobChars(file) {
		if exists, _ := afero.Exists(g.FS, g.abs(pattern)); exists {
			return []string{pattern}
		}
		return []string{pattern}
	}

	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	infos, err := afero.ReadDir(g.FS, g.abs(readDir))
	if err != nil {
		return []string{pattern}
	}

	var matches []string
	for _, info := range infos {
		name := info.Name()
		// Hidden entries only match patterns that start with a literal dot.
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(file, ".") {
			continue
		}
		if Match(file, name) {
			if dir == "" {
				matches = append(matches, name)
			} else if dir == "/" {
				matches = append(matches, "/"+name)
			} else {
				matches = append(matches, dir+"/"+name)
			}
		}
	}
	if len(matches) == 0 {
		return []string{pattern}
	}
	sort.Strings(matches)
	return matches
}

// Args expands every unquoted candidate argument in place, splicing
// matches into the list.
func (g *Globber) Args(args []string, quoted []bool) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if (quoted == nil || !quoted[i]) && HasGlobChars(a) {
			out = append(out, g.Expand(a)...)
		} else {
			out = append(out, a)
		}
	}
	return out
}

func (g *Globber) abs(p string) string {
	if path.IsAbs(p) || g.Dir == "" {
		return p
	}
	return path.Join(g.Dir, p)
}

// splitPattern separates the directory part from the final component.
// Only the final component may contain glob characters.
func splitPattern(pattern string) (dir, file string) {
	idx := strings.LastIndexByte(pattern, '/')
	if idx < 0 {
		return "", pattern
	}
	if idx == 0 {
		return "/", pattern[1:]
	}
	return pattern[:idx], pattern[idx+1:]
}

// Match reports whether name matches the glob pattern. `*` matches any
// run of characters (never across `/` because matching is per
// component), `?` exactly one character, and `[...]` a character class
// with `a-z` ranges and `!`/`^` negation.
func Match(pattern, name string) bool {
	return matchFrom(pattern, name)
}

func matchFrom(pattern, name string) bool {
	p, s := 0, 0
	for p < len(pattern) && s < len(name) {
		switch pattern[p] {
		case '*':
			for p < len(pattern) && pattern[p] == '*' {
				p++
			}
			if p == len(pattern) {
				return true
			}
			for ; s <= len(name); s++ {
				if matchFrom(pattern[p:], name[s:]) {
					return true
				}
			}
			return false
		case '?':
			p++
			s++
		case '[':
			rest, ok := matchClass(pattern[p:], name[s])
			if !ok {
				return false
			}
			p += len(pattern[p:]) - len(rest)
			s++
		default:
			if pattern[p] != name[s] {
				return false
			}
			p++
			s++
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern) && s == len(name)
}

// matchClass matches c against the class at the start of pattern
// (which begins with '['). It returns the pattern remainder after the
// class and whether c matched.
func matchClass(pattern string, c byte) (rest string, ok bool) {
	i := 1
	negated := false
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		negated = true
		i++
	}
	matched := false
	for i < len(pattern) && pattern[i] != ']' {
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			if c >= pattern[i] && c <= pattern[i+2] {
				matched = true
			}
			i += 3
		} else {
			if c == pattern[i] {
				matched = true
			}
			i++
		}
	}
	if i < len(pattern) {
		i++ // closing ]
	}
	if negated {
		matched = !matched
	}
	return pattern[i:], matched
}
