// Package ai talks to the OpenAI chat completions API on behalf of stash:
// translating natural-language requests into the search grammar and
// rewriting note bodies. The query engine never calls into this package;
// translator output is handed to it as ordinary query input.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stashmd/stash/internal/config"
	"github.com/stashmd/stash/internal/note"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// ErrorKind distinguishes translator failure classes so callers can fall
// back to treating raw input as a literal query.
type ErrorKind int

const (
	KindConfig ErrorKind = iota
	KindHTTP
	KindAPI
	KindResponse
)

// Error is the translator error type. It is deliberately distinct from the
// query parser's errors.
type Error struct {
	Kind   ErrorKind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return fmt.Sprintf("ai: config error: %s", e.Msg)
	case KindHTTP:
		return fmt.Sprintf("ai: http error: %v", e.Err)
	case KindAPI:
		return fmt.Sprintf("ai: api error: %d - %s", e.Status, e.Msg)
	default:
		return fmt.Sprintf("ai: invalid response: %s", e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Client is a thin chat-completions client.
type Client struct {
	httpClient *http.Client
	cfg        *config.Config
	baseURL    string
}

// NewClient builds a translator client from the stored configuration. A
// missing API key is a config-kind error.
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.HasAPIKey() {
		return nil, &Error{Kind: KindConfig, Msg: "api key not configured", Err: config.ErrAPIKeyNotSet}
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		baseURL:    defaultBaseURL,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const translatePrompt = `You are a command parser for the 'stash' note-taking application. Your job is to convert natural language queries into valid stash search queries.

IMPORTANT: Return ONLY the search query, NOT a full command. Do not include 'stash search' in your response. Do not wrap your response in quotes.

Available search patterns:
- text search: just the search term (e.g., rust, async await)
- tag search: #tagname (e.g., #rust, #webdev)
- project search: +projectname (e.g., +myapp, +backend)
- combined: #tag +project text (e.g., #rust +webapp error handling)
- exclude tag: -#tagname (e.g., -#old)
- exclude text: -term (e.g., -draft)
- multi-word phrase: "exact phrase" (double quotes)

Examples:
- find rust notes -> #rust
- show me my webapp project -> +webapp
- notes about rust in my webapp -> #rust +webapp
- math notes -> math
- find notes with javascript but not old stuff -> #javascript -#old

Return ONLY the search query that would come after 'stash search'.`

// TranslateQuery converts free-form natural language into a string
// conforming to the search grammar.
func (c *Client) TranslateQuery(ctx context.Context, input string) (string, error) {
	req := chatRequest{
		Model: c.cfg.AI.Model,
		Messages: []chatMessage{
			{Role: "system", Content: translatePrompt},
			{Role: "user", Content: "Convert this natural language query to a stash search query: " + input},
		},
		MaxTokens:   100,
		Temperature: 0.1,
	}

	raw, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}

	translated := cleanTranslated(raw)
	if translated == "" {
		return "", &Error{Kind: KindResponse, Msg: "model returned an empty query"}
	}
	return translated, nil
}

// RewriteNote asks the model to polish a note body using the configured
// prompt style.
func (c *Client) RewriteNote(ctx context.Context, n note.Note) (string, error) {
	req := chatRequest{
		Model: c.cfg.AI.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.RewriteSystemPrompt()},
			{Role: "user", Content: "Please clean up and improve the following note content. Keep the same meaning and tone, but make it clearer, fix any grammar issues, and ensure proper markdown formatting:\n\n" + n.Body},
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	}

	rewritten, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rewritten) == "" {
		return "", &Error{Kind: KindResponse, Msg: "model returned empty content"}
	}
	return rewritten, nil
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	apiKey, err := c.cfg.GetAPIKey()
	if err != nil {
		return "", &Error{Kind: KindConfig, Msg: "api key not configured", Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &Error{Kind: KindHTTP, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindHTTP, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindHTTP, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &Error{Kind: KindAPI, Status: resp.StatusCode, Msg: strings.TrimSpace(string(msg))}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{Kind: KindResponse, Msg: "malformed completion payload", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Kind: KindResponse, Msg: "completion had no choices"}
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// cleanTranslated strips the wrapping the model tends to add despite the
// system prompt: code fences, quotes, and echoed command prefixes.
func cleanTranslated(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimPrefix(cleaned, "stash search ")
	cleaned = strings.TrimPrefix(cleaned, "search ")
	if len(cleaned) >= 2 {
		if (cleaned[0] == '"' && cleaned[len(cleaned)-1] == '"' && strings.Count(cleaned, `"`) == 2) ||
			(cleaned[0] == '\'' && cleaned[len(cleaned)-1] == '\'') {
			cleaned = cleaned[1 : len(cleaned)-1]
		}
	}
	return strings.TrimSpace(cleaned)
}

// IsTranslatorError reports whether err originated in this package.
func IsTranslatorError(err error) bool {
	var aiErr *Error
	return errors.As(err, &aiErr)
}
