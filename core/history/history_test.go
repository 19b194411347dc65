package history

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingAddAndGet(t *testing.T) {
	r := New(afero.NewMemMapFs(), "/h", 10)

	r.Add("echo one")
	r.Add("echo two")

	assert.Equal(t, 2, r.Len())
	first, ok := r.Get(0)
	require.True(t, ok)
	assert.Equal(t, "echo one", first)

	_, ok = r.Get(2)
	assert.False(t, ok)
}

func TestRingDedupConsecutive(t *testing.T) {
	r := New(afero.NewMemMapFs(), "/h", 10)

	r.Add("ls")
	r.Add("ls")
	r.Add("pwd")
	r.Add("ls")

	assert.Equal(t, []string{"ls", "pwd", "ls"}, r.All())
}

func TestRingIgnoresBlank(t *testing.T) {
	r := New(afero.NewMemMapFs(), "/h", 10)
	r.Add("")
	r.Add("   ")
	assert.Equal(t, 0, r.Len())
}

func TestRingEviction(t *testing.T) {
	r := New(afero.NewMemMapFs(), "/h", 3)
	for i := 0; i < 5; i++ {
		r.Add(fmt.Sprintf("cmd%d", i))
	}
	assert.Equal(t, []string{"cmd2", "cmd3", "cmd4"}, r.All())
}

func TestRingPersistence(t *testing.T) {
	fs := afero.NewMemMapFs()

	r := New(fs, "/home/t/.aisha_history", 10)
	r.Add("first")
	r.Add("second")

	data, err := afero.ReadFile(fs, "/home/t/.aisha_history")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))

	// A new ring over the same file sees the same entries.
	again := New(fs, "/home/t/.aisha_history", 10)
	assert.Equal(t, []string{"first", "second"}, again.All())
}

func TestRingClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := New(fs, "/h", 10)
	r.Add("x")
	r.Clear()

	assert.Equal(t, 0, r.Len())
	data, err := afero.ReadFile(fs, "/h")
	require.NoError(t, err)
	assert.Empty(t, string(data))
}
