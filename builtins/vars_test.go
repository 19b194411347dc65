package builtins

import (
	"os"
	"testing"

	"github.com/aisha-shell/aish/core/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAssigns(t *testing.T) {
	p := newProc(t, "export", "AISH_BTEST_A=val")
	defer os.Unsetenv("AISH_BTEST_A")

	assert.Equal(t, 0, Export(p.Proc))
	v, ok := p.In.Vars.Get("AISH_BTEST_A")
	require.True(t, ok)
	assert.Equal(t, "val", v)
	assert.Equal(t, "val", os.Getenv("AISH_BTEST_A"))
}

func TestExportExisting(t *testing.T) {
	p := newProc(t, "export", "AISH_BTEST_B")
	defer os.Unsetenv("AISH_BTEST_B")
	require.NoError(t, p.In.Vars.Set("AISH_BTEST_B", "inner", 0))

	assert.Equal(t, 0, Export(p.Proc))
	assert.Equal(t, "inner", os.Getenv("AISH_BTEST_B"))
}

func TestExportInvalidName(t *testing.T) {
	p := newProc(t, "export", "2bad=1")
	assert.Equal(t, 1, Export(p.Proc))
	assert.Contains(t, p.Err.String(), "not a valid identifier")
}

func TestExportListsExported(t *testing.T) {
	p := newProc(t, "export")
	require.NoError(t, p.In.Vars.Set("AISH_BTEST_C", "x", interp.FlagExported))
	defer os.Unsetenv("AISH_BTEST_C")

	assert.Equal(t, 0, Export(p.Proc))
	assert.Contains(t, p.Out.String(), `export AISH_BTEST_C="x"`)
}

func TestUnset(t *testing.T) {
	p := newProc(t, "unset", "AISH_BTEST_D")
	require.NoError(t, p.In.Vars.Set("AISH_BTEST_D", "x", 0))

	assert.Equal(t, 0, Unset(p.Proc))
	_, ok := p.In.Vars.Lookup("AISH_BTEST_D")
	assert.False(t, ok)
}

func TestUnsetUsage(t *testing.T) {
	p := newProc(t, "unset")
	assert.Equal(t, 2, Unset(p.Proc))
}

func TestSetListsVariables(t *testing.T) {
	p := newProc(t, "set")
	require.NoError(t, p.In.Vars.Set("AISH_BTEST_E", "1", 0))

	assert.Equal(t, 0, Set(p.Proc))
	assert.Contains(t, p.Out.String(), `AISH_BTEST_E="1"`)
}

func TestAliasDefineAndList(t *testing.T) {
	p := newProc(t, "alias", "ll=ls -la")
	assert.Equal(t, 0, Alias(p.Proc))

	v, ok := p.In.Aliases.Get("ll")
	require.True(t, ok)
	assert.Equal(t, "ls -la", v)

	show := newProc(t, "alias")
	show.In.Aliases.Set("gs", "git status")
	assert.Equal(t, 0, Alias(show.Proc))
	assert.Contains(t, show.Out.String(), "alias gs='git status'")
}

func TestAliasStripsQuotes(t *testing.T) {
	p := newProc(t, "alias", "ll='ls -la'")
	assert.Equal(t, 0, Alias(p.Proc))
	v, _ := p.In.Aliases.Get("ll")
	assert.Equal(t, "ls -la", v)
}

func TestAliasShowOne(t *testing.T) {
	p := newProc(t, "alias", "ll")
	p.In.Aliases.Set("ll", "ls -la")
	assert.Equal(t, 0, Alias(p.Proc))
	assert.Equal(t, "alias ll='ls -la'\n", p.Out.String())
}

func TestAliasUnknown(t *testing.T) {
	p := newProc(t, "alias", "nope")
	assert.Equal(t, 1, Alias(p.Proc))
}

func TestUnalias(t *testing.T) {
	p := newProc(t, "unalias", "ll")
	p.In.Aliases.Set("ll", "ls -la")

	assert.Equal(t, 0, Unalias(p.Proc))
	_, ok := p.In.Aliases.Get("ll")
	assert.False(t, ok)

	assert.Equal(t, 1, Unalias(newProc(t, "unalias", "missing").Proc))
}
