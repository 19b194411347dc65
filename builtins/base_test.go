package builtins

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/aisha-shell/aish/core/history"
	"github.com/aisha-shell/aish/core/interp"
	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func init() {
	// Keep builtin output byte-stable regardless of the test terminal.
	color.NoColor = true
}

type fakeProc struct {
	*interp.Proc
	Out *bytes.Buffer
	Err *bytes.Buffer
	In  *interp.Interp
}

// newProc builds a Proc over a memory filesystem, mirroring how the
// executor invokes builtins.
func newProc(t *testing.T, args ...string) *fakeProc {
	t.Helper()
	fs := afero.NewMemMapFs()
	var out, errOut bytes.Buffer

	in := interp.New(interp.Options{
		FS:      fs,
		Stdout:  &out,
		Stderr:  &errOut,
		History: history.New(fs, "/hist", 100),
		SelfExe: "/bin/aish-test",
	})
	in.Dir = "/work"
	require.NoError(t, fs.MkdirAll("/work", 0755))

	return &fakeProc{
		Proc: &interp.Proc{
			Interp: in,
			Args:   args,
			Stdin:  bytes.NewReader(nil),
			Stdout: &out,
			Stderr: &errOut,
		},
		Out: &out,
		Err: &errOut,
		In:  in,
	}
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
}

// Run executes each case and compares combined output against the
// golden fixture.
func (gts goldenTestSuite) Run(t *testing.T, fn interp.BuiltinFunc) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			p := newProc(t, tc.Args...)
			fn(p.Proc)
			combined := append(p.Out.Bytes(), p.Err.Bytes()...)
			g.Assert(t, tn, combined)
		})
	}
}

func writeFile(t *testing.T, p *fakeProc, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(p.In.FS, path, []byte(content), 0644))
}

func TestAllBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{
		"cd", "hop", "ls", "reveal", "pwd", "echo", "exit", "quit",
		"clear", "export", "unset", "env", "set", "alias", "unalias",
		"type", "which", "help", "jobs", "activities", "kill", "ping",
		"fg", "bg", "source", ".", "test", "[", "true", "false", ":",
		"history", "log", "ai", "ask", "explain", "aifix", "aiconfig",
		"aikey",
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := interp.LookupBuiltin(name)
			require.True(t, ok, "builtin %q not registered", name)
		})
	}
}
