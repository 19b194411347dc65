// Package expand implements the three expansion passes: alias
// substitution and variable interpolation on the raw line before
// tokenization, and pathname globbing on word tokens afterward.
package expand

import "strings"

// AliasResolver supplies alias replacement text.
type AliasResolver interface {
	LookupAlias(name string) (string, bool)
}

// aliasGuard bounds rescanning so self-referential aliases terminate.
const aliasGuard = 16

// Aliases rewrites the first word of every command position with its
// alias replacement, rescanning until a fixed point or the guard bound.
// Command positions are the start of the line and the first word after
// each of `;`, `&`, `|`, `&&`, `||`.
func Aliases(line string, r AliasResolver) string {
	for i := 0; i < aliasGuard; i++ {
		rewritten, changed := aliasOnce(line, r)
		if !changed {
			return rewritten
		}
		line = rewritten
	}
	return line
}

func aliasOnce(line string, r AliasResolver) (string, bool) {
	var sb strings.Builder
	changed := false
	atCommand := true
	i := 0
	n := len(line)

	for i < n {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			sb.WriteByte(c)
			i++
		case c == ';' || c == '|' || c == '&':
			sb.WriteByte(c)
			i++
			// Collapse && and || so the next word is a command.
			if i < n && (line[i] == '&' || line[i] == '|') && line[i] == c {
				sb.WriteByte(line[i])
				i++
			}
			atCommand = true
		case c == '\'' || c == '"':
			// Skip over a quoted region untouched.
			quote := c
			j := i + 1
			for j < n && line[j] != quote {
				if quote == '"' && line[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			if j < n {
				j++
			}
			sb.WriteString(line[i:j])
			i = j
			atCommand = false
		default:
			// A word. Only the command-position word is a candidate.
			j := i
			for j < n && !isWordBreak(line[j]) {
				j++
			}
			word := line[i:j]
			if atCommand {
				if repl, ok := r.LookupAlias(word); ok && repl != word {
					sb.WriteString(repl)
					changed = true
				} else {
					sb.WriteString(word)
				}
			} else {
				sb.WriteString(word)
			}
			atCommand = false
			i = j
		}
	}
	return sb.String(), changed
}

func isWordBreak(c byte) bool {
	switch c {
	case ' ', '\t', ';', '|', '&', '\'', '"':
		return true
	}
	return false
}
