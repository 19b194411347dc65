// Package ai is the narrow request/response client for the shell's
// assistant features. It speaks the Gemini generateContent JSON shape
// over HTTPS and knows nothing about the interpreter; builtins call in
// with text and get text (or a structured command suggestion) back.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juju/ratelimit"
)

const (
	promptTranslate = "You are a shell command translator for AIshA (Advanced Intelligent Shell Assistant). " +
		"Convert the user's natural language request into a valid shell command. " +
		"Consider the user's current working directory and system information provided. " +
		"Return ONLY a single shell command that can be executed directly. " +
		"If you cannot translate the request into a command, set success to false and explain why."

	promptExplain = "You are a shell command expert for AIshA. " +
		"Explain what the given command does in simple, clear terms. " +
		"Break down each part of the command (flags, arguments, pipes). " +
		"Be concise but thorough."

	promptFix = "You are a shell debugging assistant for AIshA. " +
		"The user ran a command that produced an error. " +
		"Analyze the error and provide a corrected command. " +
		"Explain briefly what went wrong and why the fix works."

	promptChat = "You are AIshA (Advanced Intelligent Shell Assistant), a helpful AI integrated " +
		"into a Unix shell. Help users with shell commands, scripting, and system administration. " +
		"Keep responses concise and practical."
)

// ErrNoKey is returned when no API key is configured.
var ErrNoKey = errors.New("no API key configured")

// ErrRateLimited is returned when the request budget is exhausted.
var ErrRateLimited = errors.New("rate limited, try again shortly")

// Client talks to the generation endpoint. Construct with NewClient.
type Client struct {
	endpoint string
	model    string
	key      string
	httpc    *http.Client
	bucket   *ratelimit.Bucket
}

// NewClient builds a client. key may be empty; Available reports
// whether requests can be made. requestsPerMinute caps the outbound
// call rate with a token bucket.
func NewClient(endpoint, model, key string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		key:      key,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		bucket:   ratelimit.NewBucket(time.Minute/time.Duration(requestsPerMinute), int64(requestsPerMinute)),
	}
}

// Available reports whether a key is configured.
func (c *Client) Available() bool { return c != nil && c.key != "" }

// SetKey installs or replaces the API key.
func (c *Client) SetKey(key string) { c.key = key }

// Suggestion is the structured result of a Translate request.
type Suggestion struct {
	Success     bool   `json:"success"`
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
}

// Translate converts a natural-language request into a shell command.
// sysInfo carries working directory and platform context.
func (c *Client) Translate(ctx context.Context, request, sysInfo string) (*Suggestion, error) {
	text, err := c.generate(ctx, promptTranslate,
		fmt.Sprintf("System info:\n%s\n\nRequest: %s", sysInfo, request), true)
	if err != nil {
		return nil, err
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		// Fall back to treating the whole reply as the command.
		return &Suggestion{Success: true, Command: text}, nil
	}
	return &s, nil
}

// Explain describes what a command does.
func (c *Client) Explain(ctx context.Context, command string) (string, error) {
	return c.generate(ctx, promptExplain, command, false)
}

// Fix proposes a correction for a failed command.
func (c *Client) Fix(ctx context.Context, command, errText string) (string, error) {
	return c.generate(ctx, promptFix,
		fmt.Sprintf("Command: %s\nError output:\n%s", command, errText), false)
}

// Chat holds a one-shot conversation turn.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.generate(ctx, promptChat, message, false)
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, system, user string, wantJSON bool) (string, error) {
	if !c.Available() {
		return "", ErrNoKey
	}
	if c.bucket.TakeAvailable(1) == 0 {
		return "", ErrRateLimited
	}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: system}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: user}}}},
	}
	if wantJSON {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, c.model, c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("api error: %s", out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
