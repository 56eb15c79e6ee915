// Package forward relays slash commands and interactive actions to the
// application backend over HTTP/JSON.
package forward

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
)

// CommandRequest is the body posted for slash command subcommands.
type CommandRequest struct {
	IntegrationID int64  `json:"integration_id"`
	TeamID        string `json:"team_id"`
	ChannelID     string `json:"channel_id"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name,omitempty"`
	Command       string `json:"command"`
	Subcommand    string `json:"subcommand"`
	Text          string `json:"text"`
	ResponseURL   string `json:"response_url,omitempty"`
	TriggerID     string `json:"trigger_id,omitempty"`
}

// TemplateUseRequest is the body posted when a user picks a template.
type TemplateUseRequest struct {
	IntegrationID int64  `json:"integration_id"`
	TeamID        string `json:"team_id"`
	ChannelID     string `json:"channel_id"`
	UserID        string `json:"user_id"`
	ActionID      string `json:"action_id"`
	BlockID       string `json:"block_id,omitempty"`
	Value         string `json:"value"`
	ResponseURL   string `json:"response_url,omitempty"`
	TriggerID     string `json:"trigger_id,omitempty"`
}

type Client interface {
	Chat(ctx context.Context, req CommandRequest) (json.RawMessage, error)
	Templates(ctx context.Context, req CommandRequest) (json.RawMessage, error)
	UseTemplate(ctx context.Context, req TemplateUseRequest) (json.RawMessage, error)
}

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("forward %s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("forward %s: status %d", e.Path, e.StatusCode)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("forward base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *httpClient) Chat(ctx context.Context, req CommandRequest) (json.RawMessage, error) {
	return c.post(ctx, "/chat", req)
}

func (c *httpClient) Templates(ctx context.Context, req CommandRequest) (json.RawMessage, error) {
	return c.post(ctx, "/templates", req)
}

func (c *httpClient) UseTemplate(ctx context.Context, req TemplateUseRequest) (json.RawMessage, error) {
	return c.post(ctx, "/templates/use", req)
}

func (c *httpClient) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("forward %s: response is not JSON", path)
	}
	return json.RawMessage(respBody), nil
}
