package builtins

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aisha-shell/aish/core/ai"
	"github.com/aisha-shell/aish/core/config"
	"github.com/stretchr/testify/assert"
)

func fakeAIServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, reply)
	}))
}

func TestAIBuiltinsOfflineWithoutKey(t *testing.T) {
	for name, fn := range map[string]func() int{
		"ai":      func() int { p := newProc(t, "ai", "hello"); return Chat(p.Proc) },
		"ask":     func() int { p := newProc(t, "ask", "list files"); return Ask(p.Proc) },
		"explain": func() int { p := newProc(t, "explain", "ls -la"); return Explain(p.Proc) },
		"aifix":   func() int { p := newProc(t, "aifix"); return AIFix(p.Proc) },
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 1, fn())
		})
	}
}

func TestChatBuiltin(t *testing.T) {
	srv := fakeAIServer(t, "hello from the assistant")
	defer srv.Close()

	p := newProc(t, "ai", "hello")
	p.In.AI = ai.NewClient(srv.URL, "m", "k", 10)

	assert.Equal(t, 0, Chat(p.Proc))
	assert.Contains(t, p.Out.String(), "hello from the assistant")
}

func TestAskBuiltinStructured(t *testing.T) {
	srv := fakeAIServer(t, `{"success":true,"command":"ls -la /tmp","explanation":"long listing"}`)
	defer srv.Close()

	p := newProc(t, "ask", "show", "temp", "files")
	p.In.AI = ai.NewClient(srv.URL, "m", "k", 10)

	assert.Equal(t, 0, Ask(p.Proc))
	out := p.Out.String()
	assert.Contains(t, out, "ls -la /tmp")
	assert.Contains(t, out, "long listing")
	assert.Contains(t, out, "argv: [ls, -la, /tmp]")
}

func TestAskBuiltinRefusal(t *testing.T) {
	srv := fakeAIServer(t, `{"success":false,"command":"","explanation":"cannot do that"}`)
	defer srv.Close()

	p := newProc(t, "ask", "impossible")
	p.In.AI = ai.NewClient(srv.URL, "m", "k", 10)

	assert.Equal(t, 1, Ask(p.Proc))
	assert.Contains(t, p.Err.String(), "cannot do that")
}

func TestAIConfigBuiltin(t *testing.T) {
	p := newProc(t, "aiconfig")
	p.In.Config = config.Default()
	p.In.AI = ai.NewClient("https://x", "test-model", "", 10)

	assert.Equal(t, 0, AIConfig(p.Proc))
	out := p.Out.String()
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "gemini-2.0-flash")
}

func TestAIKeyBuiltin(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	p := newProc(t, "aikey", "secret123")
	p.In.Config = config.Default()
	p.In.AI = ai.NewClient("https://x", "m", "", 10)

	assert.Equal(t, 0, AIKey(p.Proc))
	assert.True(t, p.In.AI.Available())

	v, ok := p.In.Vars.Get("GEMINI_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "secret123", v)
}

func TestAIKeyUsage(t *testing.T) {
	p := newProc(t, "aikey")
	assert.Equal(t, 2, AIKey(p.Proc))
}
