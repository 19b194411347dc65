package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testInfo() PromptInfo {
	return PromptInfo{
		User:    "tuser",
		Host:    "box.example.com",
		Home:    "/home/tuser",
		WorkDir: "/home/tuser/src",
		IsRoot:  false,
		Now: func() time.Time {
			return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
		},
	}
}

func TestRenderPrompt(t *testing.T) {
	cases := []struct {
		name   string
		format string
		want   string
	}{
		{"default-style", `\u@\h:\w\$ `, "tuser@box:~/src$ "},
		{"full-host", `\H`, "box.example.com"},
		{"basename", `\W`, "src"},
		{"time", `\t`, "14:30:05"},
		{"date", `\d`, "Sat Mar 09"},
		{"escaped-backslash", `\\`, `\`},
		{"unknown-escape", `\q`, `\q`},
		{"nonprinting-markers", `\[\e[32m\]$`, `\e[32m$`},
		{"empty-defaults", ``, "$ "},
		{"plain", "% ", "% "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RenderPrompt(tc.format, testInfo()))
		})
	}
}

func TestRenderPromptRoot(t *testing.T) {
	info := testInfo()
	info.IsRoot = true
	assert.Equal(t, "#", RenderPrompt(`\$`, info))
}

func TestRenderPromptHomeDir(t *testing.T) {
	info := testInfo()
	info.WorkDir = info.Home
	assert.Equal(t, "~", RenderPrompt(`\w`, info))
	assert.Equal(t, "~", RenderPrompt(`\W`, info))
}

func TestRenderPromptOutsideHome(t *testing.T) {
	info := testInfo()
	info.WorkDir = "/etc"
	assert.Equal(t, "/etc", RenderPrompt(`\w`, info))
}
