package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PromptInfo carries everything prompt rendering needs, so the
// renderer stays a pure function.
type PromptInfo struct {
	User    string
	Host    string
	Home    string
	WorkDir string
	IsRoot  bool
	Now     func() time.Time
}

// RenderPrompt expands a bash-style PS1 format string:
//
//	\u user  \h short host  \H full host  \w cwd (~ for home)
//	\W cwd basename  \$ # for root else $  \t HH:MM:SS  \d date
//	\\ backslash  \[ \] non-printing markers (dropped)
//
// Unknown escapes pass through untouched.
func RenderPrompt(format string, info PromptInfo) string {
	if format == "" {
		format = "$ "
	}
	now := time.Now
	if info.Now != nil {
		now = info.Now
	}

	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '\\' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'u':
			sb.WriteString(info.User)
		case 'h':
			host := info.Host
			if idx := strings.IndexByte(host, '.'); idx >= 0 {
				host = host[:idx]
			}
			sb.WriteString(host)
		case 'H':
			sb.WriteString(info.Host)
		case 'w':
			sb.WriteString(tildeDir(info.WorkDir, info.Home))
		case 'W':
			wd := info.WorkDir
			if wd == info.Home {
				sb.WriteString("~")
			} else if base := filepath.Base(wd); base != "" {
				sb.WriteString(base)
			}
		case '$':
			if info.IsRoot {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('$')
			}
		case 't':
			sb.WriteString(now().Format("15:04:05"))
		case 'd':
			sb.WriteString(now().Format("Mon Jan 02"))
		case '\\':
			sb.WriteByte('\\')
		case '[', ']':
			// Non-printing region markers carry no output.
		default:
			sb.WriteByte('\\')
			sb.WriteByte(format[i])
		}
	}
	return sb.String()
}

func tildeDir(wd, home string) string {
	if home != "" && strings.HasPrefix(wd, home) {
		return "~" + strings.TrimPrefix(wd, home)
	}
	return wd
}

// promptInfo gathers the live values for the next prompt.
func (s *Shell) promptInfo() PromptInfo {
	wd, _ := os.Getwd()
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if v, ok := s.Interp.Vars.Get("USER"); ok {
		user = v
	}
	home, _ := os.UserHomeDir()
	return PromptInfo{
		User:    user,
		Host:    host,
		Home:    home,
		WorkDir: wd,
		IsRoot:  os.Getuid() == 0,
	}
}

// Prompt renders the current PS1.
func (s *Shell) Prompt() string {
	format := s.Config.Prompt
	if v, ok := s.Interp.Vars.Get("PS1"); ok && v != "" {
		format = v
	}
	return RenderPrompt(format, s.promptInfo())
}
