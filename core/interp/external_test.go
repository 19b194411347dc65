package interp

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOSInterp builds an interpreter over the real filesystem in a
// fresh working directory, for tests that spawn actual children.
func newOSInterp(t *testing.T) (*Interp, *bytes.Buffer, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })

	var out bytes.Buffer
	in := New(Options{
		FS:      afero.NewOsFs(),
		Stdout:  &out,
		Stderr:  &out,
		SelfExe: mustLookPath(t, "sh"),
	})
	return in, &out, dir
}

func mustLookPath(t *testing.T, name string) string {
	t.Helper()
	p, err := exec.LookPath(name)
	require.NoError(t, err)
	return p
}

func TestExternalExitStatus(t *testing.T) {
	in, _, _ := newOSInterp(t)

	assert.Equal(t, 0, in.Run("sh -c 'exit 0'"))
	assert.Equal(t, 3, in.Run("sh -c 'exit 3'"))
}

func TestExternalOutputRedirection(t *testing.T) {
	in, _, _ := newOSInterp(t)

	require.Equal(t, 0, in.Run("sh -c 'echo external' >out.txt"))
	data, err := os.ReadFile("out.txt")
	require.NoError(t, err)
	assert.Equal(t, "external\n", string(data))
}

func TestExternalInputRedirection(t *testing.T) {
	in, _, _ := newOSInterp(t)
	require.NoError(t, os.WriteFile("in.txt", []byte("abc\n"), 0644))

	require.Equal(t, 0, in.Run("cat <in.txt >copied.txt"))
	data, err := os.ReadFile("copied.txt")
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(data))
}

func TestExternalPipeline(t *testing.T) {
	in, _, _ := newOSInterp(t)

	// Three stages, fully external, writing into a redirection target.
	require.Equal(t, 0, in.Run("printf 'b\\na\\n' | sort | head -n 1 >first.txt"))
	data, err := os.ReadFile("first.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(data))
}

func TestExternalPipelineStatus(t *testing.T) {
	in, _, _ := newOSInterp(t)

	// grep with no match fails, but a later succeeding stage wins.
	assert.Equal(t, 0, in.Run("printf 'xyz\\n' | grep nomatch | cat"))

	// A failing last stage decides the status.
	assert.NotEqual(t, 0, in.Run("printf 'xyz\\n' | sh -c 'exit 9'"))
}

func TestBackgroundSegment(t *testing.T) {
	in, out, _ := newOSInterp(t)

	start := time.Now()
	status := in.Run("sleep 2 &")
	elapsed := time.Since(start)

	assert.Equal(t, 0, status)
	assert.Less(t, elapsed, 500*time.Millisecond, "background launch must not block")
	assert.Equal(t, 1, in.Jobs.Len())
	assert.NotZero(t, in.LastBackgroundPID())
	assert.Contains(t, out.String(), "[1] ")

	job := in.Jobs.Jobs()[0]
	assert.Equal(t, JobRunning, job.Status)
	assert.Equal(t, job.PID, in.LastBackgroundPID())
}

func TestBackgroundDrainAnnouncesCompletion(t *testing.T) {
	in, out, _ := newOSInterp(t)

	require.Equal(t, 0, in.Run("true &"))
	pid := in.LastBackgroundPID()

	// Give the supervisor a moment to finish, then drain at the
	// "prompt boundary".
	deadline := time.Now().Add(5 * time.Second)
	for in.Jobs.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
		in.Jobs.Drain(out)
	}

	assert.Zero(t, in.Jobs.Len())
	assert.Contains(t, out.String(), "exited normally")
	_ = pid
}

func TestBackgroundDollarBang(t *testing.T) {
	in, out, _ := newOSInterp(t)

	require.Equal(t, 0, in.Run("sleep 1 &"))
	in.Run("echo-missing-ok") // not relevant to $!

	v, ok := in.LookupVar("!")
	require.True(t, ok)
	assert.NotEmpty(t, v)
	assert.Contains(t, out.String(), v, "printed pid matches $!")
}

func TestSubshellStatus(t *testing.T) {
	in, _, _ := newOSInterp(t)

	assert.Equal(t, 0, in.Run("(true; true)"))
	assert.Equal(t, 1, in.Run("(false)"))
}

func TestCommandNotFoundLeavesNoChildren(t *testing.T) {
	in, out, _ := newOSInterp(t)

	status := in.Run("definitely-not-a-command-aish")
	assert.Equal(t, StatusNotFound, status)
	assert.True(t, strings.Contains(out.String(), "command not found"))
	assert.Zero(t, in.Jobs.Len())
}
