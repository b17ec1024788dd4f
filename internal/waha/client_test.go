package waha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saham-bot/internal/store"
)

func gatewayConfig(baseURL, apiKey string) *store.Config {
	cfg := &store.Config{}
	cfg.Waha.BaseURL = baseURL
	cfg.Waha.Session = "default"
	cfg.Waha.APIKey = apiKey
	cfg.Reply.Signature = "© Haris Stockbit"
	return cfg
}

func TestSendTextPayload(t *testing.T) {
	var gotPath string
	var gotBody sendTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(gatewayConfig(srv.URL, ""))
	if err := c.SendText(context.Background(), "628123@c.us", "halo"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if gotPath != "/api/sendText" {
		t.Errorf("path = %q, want /api/sendText", gotPath)
	}
	if gotBody.ChatID != "628123@c.us" {
		t.Errorf("chatId = %q", gotBody.ChatID)
	}
	if gotBody.Session != "default" {
		t.Errorf("session = %q", gotBody.Session)
	}
	if !strings.HasSuffix(gotBody.Text, "© Haris Stockbit") {
		t.Errorf("text missing signature: %q", gotBody.Text)
	}
}

func TestSendTextAuthHeaders(t *testing.T) {
	var gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewClient(gatewayConfig(srv.URL, "sekrit"))
	if err := c.SendText(context.Background(), "628123@c.us", "halo"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if gotKey != "sekrit" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestSendTextGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not found", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(gatewayConfig(srv.URL, ""))
	if err := c.SendText(context.Background(), "628123@c.us", "halo"); err == nil {
		t.Fatal("expected error from 401 response")
	}
}

func TestWithSignature(t *testing.T) {
	c := &Client{signature: "© Haris Stockbit"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"appends footer", "halo", "halo\n\n© Haris Stockbit"},
		{"already signed", "halo\n\n© Haris Stockbit", "halo\n\n© Haris Stockbit"},
		{"signed with trailing newline", "halo\n\n© Haris Stockbit\n", "halo\n\n© Haris Stockbit"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.withSignature(tt.in); got != tt.want {
				t.Errorf("withSignature(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithSignatureDisabled(t *testing.T) {
	c := &Client{}
	if got := c.withSignature("halo"); got != "halo" {
		t.Errorf("got %q, want text unchanged", got)
	}
}
