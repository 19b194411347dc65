package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeBuiltinAndAlias(t *testing.T) {
	p := newProc(t, "type", "cd")
	assert.Equal(t, 0, Type(p.Proc))
	assert.Equal(t, "cd is a shell builtin\n", p.Out.String())

	aliased := newProc(t, "type", "ll")
	aliased.In.Aliases.Set("ll", "ls -la")
	assert.Equal(t, 0, Type(aliased.Proc))
	assert.Equal(t, "ll is aliased to `ls -la'\n", aliased.Out.String())
}

func TestTypeNotFound(t *testing.T) {
	p := newProc(t, "type", "definitely-not-a-command-aish")
	assert.Equal(t, 1, Type(p.Proc))
	assert.Contains(t, p.Err.String(), "not found")
}

func TestWhichBuiltin(t *testing.T) {
	p := newProc(t, "which", "echo")
	assert.Equal(t, 0, Which(p.Proc))
	assert.Equal(t, "echo: shell builtin\n", p.Out.String())
}

func TestHelpListsEverything(t *testing.T) {
	p := newProc(t, "help")
	assert.Equal(t, 0, Help(p.Proc))

	out := p.Out.String()
	for _, want := range []string{"cd", "echo", "jobs", "history", "ask"} {
		assert.Contains(t, out, want)
	}
}

func TestHelpSingleTopic(t *testing.T) {
	p := newProc(t, "help", "pwd")
	assert.Equal(t, 0, Help(p.Proc))
	assert.Contains(t, p.Out.String(), "Print working directory")

	missing := newProc(t, "help", "nope")
	assert.Equal(t, 1, Help(missing.Proc))
}

func TestSourceRunsFile(t *testing.T) {
	p := newProc(t, "source", "/work/script.aish")
	script := "# comment\nSRCVAR=fromscript\n\n"
	writeFile(t, p, "/work/script.aish", script)

	assert.Equal(t, 0, Source(p.Proc))
	v, ok := p.In.Vars.Get("SRCVAR")
	assert.True(t, ok)
	assert.Equal(t, "fromscript", v)
}

func TestSourceMissingFile(t *testing.T) {
	p := newProc(t, "source", "/nope")
	assert.Equal(t, 1, Source(p.Proc))
}

func TestSourceUsage(t *testing.T) {
	p := newProc(t, "source")
	assert.Equal(t, 1, Source(p.Proc))
}
