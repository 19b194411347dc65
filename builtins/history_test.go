package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryList(t *testing.T) {
	p := newProc(t, "history")
	p.In.History.Add("echo one")
	p.In.History.Add("echo two")

	assert.Equal(t, 0, History(p.Proc))
	assert.Equal(t, "    1  echo one\n    2  echo two\n", p.Out.String())
}

func TestHistoryLastN(t *testing.T) {
	p := newProc(t, "history", "2")
	for _, l := range []string{"a", "b", "c", "d"} {
		p.In.History.Add(l)
	}

	assert.Equal(t, 0, History(p.Proc))
	assert.Equal(t, "    3  c\n    4  d\n", p.Out.String())
}

func TestHistoryClear(t *testing.T) {
	p := newProc(t, "history", "-c")
	p.In.History.Add("x")

	assert.Equal(t, 0, History(p.Proc))
	assert.Equal(t, 0, p.In.History.Len())
	assert.Contains(t, p.Out.String(), "History cleared")
}

func TestHistoryReExecute(t *testing.T) {
	p := newProc(t, "history", "!1")
	p.In.History.Add("NEWVAR=fromhistory")

	status := History(p.Proc)
	assert.Equal(t, 0, status)

	// Re-execution goes through the full pipeline, so the assignment
	// lands in the variable store.
	v, ok := p.In.Vars.Get("NEWVAR")
	require.True(t, ok)
	assert.Equal(t, "fromhistory", v)
	assert.Contains(t, p.Out.String(), "NEWVAR=fromhistory")
}

func TestHistoryEventNotFound(t *testing.T) {
	p := newProc(t, "history", "!99")
	p.In.History.Add("only one")

	assert.Equal(t, 1, History(p.Proc))
	assert.Contains(t, p.Err.String(), "event not found")
}

func TestHistoryUsage(t *testing.T) {
	p := newProc(t, "history", "garbage")
	assert.Equal(t, 1, History(p.Proc))
	assert.Contains(t, p.Err.String(), "usage")
}
