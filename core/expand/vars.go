package expand

import (
	"strconv"
	"strings"
)

// VarResolver supplies variable values for interpolation. Lookup must
// also answer the special names (`?`, `$`, `!`, `#`, `@`, `*` and the
// positional digits). Assign is used by the `${NAME:=default}` form.
type VarResolver interface {
	LookupVar(name string) (string, bool)
	Assign(name, value string)
}

// Variables rewrites `$NAME`, `${NAME}`, `${NAME:-def}`, `${NAME:=def}`,
// `${#NAME}` and the single-character specials. `\$` suppresses
// expansion; any other backslash pair passes through untouched.
func Variables(line string, r VarResolver) string {
	var sb strings.Builder
	i := 0
	n := len(line)
	for i < n {
		c := line[i]
		if c == '\\' && i+1 < n {
			sb.WriteByte(c)
			sb.WriteByte(line[i+1])
			i += 2
			continue
		}
		if c == '$' {
			if expanded, consumed := expandRef(line[i:], r); consumed > 0 {
				sb.WriteString(expanded)
				i += consumed
				continue
			}
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String()
}

// expandRef expands the variable reference at the start of s (which
// begins with '$'). consumed is 0 when s is not a recognizable
// reference and the '$' should be copied through literally.
func expandRef(s string, r VarResolver) (string, int) {
	if len(s) < 2 {
		return "", 0
	}
	rest := s[1:]

	if rest[0] == '{' {
		return expandBraced(s, r)
	}
	if rest[0] == '(' {
		// Command and arithmetic substitution are not supported; the
		// inner text is kept literally, quoted so it tokenizes as a
		// single word.
		inner, width := balancedParens(rest)
		if width == 0 {
			return "", 0
		}
		return quoteLiteral(inner), width + 1
	}

	// Single-character specials and positional parameters.
	switch c := rest[0]; {
	case c == '?' || c == '$' || c == '!' || c == '#' || c == '@' || c == '*':
		return lookup(r, string(c)), 2
	case c >= '0' && c <= '9':
		return lookup(r, string(c)), 2
	case isNameStart(c):
		j := 1
		for j < len(rest) && isNameChar(rest[j]) {
			j++
		}
		return lookup(r, rest[:j]), j + 1
	}
	return "", 0
}

func expandBraced(s string, r VarResolver) (string, int) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		// No closing brace; emit the dollar literally.
		return "$", 1
	}
	inner := s[2:end]
	consumed := end + 1

	if strings.HasPrefix(inner, "#") {
		name := inner[1:]
		if isName(name) || isSpecial(name) {
			return strconv.Itoa(len(lookup(r, name))), consumed
		}
		return "", consumed
	}

	// Split off a :- or := modifier if present.
	name := inner
	var op string
	var def string
	if idx := strings.Index(inner, ":"); idx >= 0 && idx+1 < len(inner) &&
		(inner[idx+1] == '-' || inner[idx+1] == '=') {
		name = inner[:idx]
		op = inner[idx+1 : idx+2]
		def = inner[idx+2:]
	}
	if !isName(name) && !isSpecial(name) {
		return "", consumed
	}

	val, ok := r.LookupVar(name)
	if op == "" {
		if !ok {
			return "", consumed
		}
		return val, consumed
	}
	if ok && val != "" {
		return val, consumed
	}
	if op == "=" {
		r.Assign(name, def)
	}
	return def, consumed
}

// balancedParens returns the content between the outer parentheses at
// the start of s and the total width consumed. width is 0 when the
// parens never balance.
func balancedParens(s string) (inner string, width int) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], i + 1
			}
		}
	}
	return "", 0
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func lookup(r VarResolver, name string) string {
	v, _ := r.LookupVar(name)
	return v
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isSpecial(s string) bool {
	if len(s) != 1 {
		return false
	}
	switch s[0] {
	case '?', '$', '!', '#', '@', '*':
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}
