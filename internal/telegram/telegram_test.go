package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type captured struct {
	path    string
	payload map[string]any
}

func newServer(t *testing.T, status int, body string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &got.payload)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New("", "", nil); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestSendMessage(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":42}}`, &got)

	c, err := New(srv.URL, "123:abc", srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := c.SendMessage(context.Background(), Message{
		ChatID:                "@channel",
		Text:                  "<b>hi</b>",
		ParseMode:             ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if id != 42 {
		t.Errorf("expected message id 42, got %d", id)
	}
	if got.path != "/bot123:abc/sendMessage" {
		t.Errorf("unexpected path %q", got.path)
	}
	if got.payload["chat_id"] != "@channel" || got.payload["text"] != "<b>hi</b>" {
		t.Errorf("unexpected payload: %v", got.payload)
	}
	if got.payload["parse_mode"] != "HTML" {
		t.Errorf("expected parse_mode HTML, got %v", got.payload["parse_mode"])
	}
	if got.payload["disable_web_page_preview"] != true {
		t.Errorf("expected preview disabled, got %v", got.payload["disable_web_page_preview"])
	}
}

func TestSendMessagePlainOmitsParseMode(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":1}}`, &got)
	c, _ := New(srv.URL, "t", srv.Client())

	if _, err := c.SendMessage(context.Background(), Message{ChatID: "1", Text: "plain"}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, ok := got.payload["parse_mode"]; ok {
		t.Errorf("expected no parse_mode for plain text, got %v", got.payload["parse_mode"])
	}
}

func TestSendMessageRejected(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`, &got)
	c, _ := New(srv.URL, "t", srv.Client())

	_, err := c.SendMessage(context.Background(), Message{ChatID: "1", Text: "<b>"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "can't parse entities") {
		t.Errorf("expected description in error, got %q", apiErr.Error())
	}
}

func TestSendMessageOKFalse(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"ok":false,"description":"chat not found"}`, &got)
	c, _ := New(srv.URL, "t", srv.Client())

	if _, err := c.SendMessage(context.Background(), Message{ChatID: "1", Text: "x"}); err == nil {
		t.Error("expected error when ok is false")
	}
}

func TestSendMessageTransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, _ := New(srv.URL, "secret-token", nil)
	_, err := c.SendMessage(context.Background(), Message{ChatID: "1", Text: "x"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Errorf("error leaks token: %v", err)
	}
}

func TestSendPoll(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":7}}`, &got)
	c, _ := New(srv.URL, "t", srv.Client())

	_, err := c.SendPoll(context.Background(), Poll{
		ChatID:   "1",
		Question: "Up or down?",
		Options:  []string{"Up", "Down"},
	})
	if err != nil {
		t.Fatalf("SendPoll: %v", err)
	}
	if got.path != "/bott/sendPoll" {
		t.Errorf("unexpected path %q", got.path)
	}
	opts, ok := got.payload["options"].([]any)
	if !ok || len(opts) != 2 {
		t.Errorf("unexpected options: %v", got.payload["options"])
	}
	if got.payload["is_anonymous"] != false {
		t.Errorf("expected is_anonymous false, got %v", got.payload["is_anonymous"])
	}
}
