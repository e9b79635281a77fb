package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

// ParseMode selects how Telegram interprets markup in the text.
type ParseMode string

const (
	ModeNone ParseMode = ""
	ModeHTML ParseMode = "HTML"
)

// Message is a single sendMessage call.
type Message struct {
	ChatID                string
	Text                  string
	ParseMode             ParseMode
	DisableWebPagePreview bool
}

// Poll is a single sendPoll call.
type Poll struct {
	ChatID                string
	Question              string
	Options               []string
	IsAnonymous           bool
	AllowsMultipleAnswers bool
}

// APIError is returned when Telegram rejects a request.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram %s: status %d", e.Method, e.StatusCode)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(apiURL, token string, client *http.Client) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is not configured")
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(apiURL, "/"), token: token, client: client}, nil
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// SendMessage posts msg once and returns the sent message id. Any non-2xx
// status or an "ok": false body is returned as *APIError.
func (c *Client) SendMessage(ctx context.Context, msg Message) (int64, error) {
	payload := map[string]any{
		"chat_id":                  msg.ChatID,
		"text":                     msg.Text,
		"disable_web_page_preview": msg.DisableWebPagePreview,
	}
	if msg.ParseMode != ModeNone {
		payload["parse_mode"] = string(msg.ParseMode)
	}
	return c.call(ctx, "sendMessage", payload)
}

// SendPoll posts p once and returns the sent message id.
func (c *Client) SendPoll(ctx context.Context, p Poll) (int64, error) {
	payload := map[string]any{
		"chat_id":                 p.ChatID,
		"question":                p.Question,
		"options":                 p.Options,
		"is_anonymous":            p.IsAnonymous,
		"allows_multiple_answers": p.AllowsMultipleAnswers,
	}
	return c.call(ctx, "sendPoll", payload)
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return 0, fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("reading %s response: %w", method, err)
	}

	var ar apiResponse
	_ = json.Unmarshal(raw, &ar)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !ar.OK {
		return 0, &APIError{Method: method, StatusCode: resp.StatusCode, Description: ar.Description}
	}
	return ar.Result.MessageID, nil
}
