package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, reply)
	}))
}

func TestClientAvailable(t *testing.T) {
	c := NewClient("http://x", "m", "", 10)
	assert.False(t, c.Available())

	c.SetKey("k")
	assert.True(t, c.Available())

	var nilClient *Client
	assert.False(t, nilClient.Available())
}

func TestClientNoKey(t *testing.T) {
	c := NewClient("http://x", "m", "", 10)
	_, err := c.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestClientChat(t *testing.T) {
	srv := fakeServer(t, "use tar -xzf")
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "test-key", 10)
	got, err := c.Chat(context.Background(), "how do I extract a tarball?")
	require.NoError(t, err)
	assert.Equal(t, "use tar -xzf", got)
}

func TestClientTranslateStructured(t *testing.T) {
	srv := fakeServer(t, `{"success":true,"command":"ls -la","explanation":"lists files"}`)
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "test-key", 10)
	s, err := c.Translate(context.Background(), "show all files", "cwd=/tmp")
	require.NoError(t, err)
	assert.True(t, s.Success)
	assert.Equal(t, "ls -la", s.Command)
	assert.Equal(t, "lists files", s.Explanation)
}

func TestClientTranslateUnstructuredFallback(t *testing.T) {
	srv := fakeServer(t, "du -sh *")
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", "test-key", 10)
	s, err := c.Translate(context.Background(), "disk usage", "")
	require.NoError(t, err)
	assert.True(t, s.Success)
	assert.Equal(t, "du -sh *", s.Command)
}

func TestClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", "test-key", 10)
	_, err := c.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClientRateLimit(t *testing.T) {
	srv := fakeServer(t, "ok")
	defer srv.Close()

	c := NewClient(srv.URL, "m", "test-key", 1)
	_, err := c.Chat(context.Background(), "one")
	require.NoError(t, err)

	// The bucket holds a single token per minute; the second call in
	// the same instant must be rejected.
	_, err = c.Chat(context.Background(), "two")
	assert.ErrorIs(t, err, ErrRateLimited)
}
