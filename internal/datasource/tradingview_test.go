package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHistoryParsesBars(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"s":"ok","t":[1705276800,1705363200],"o":[7500,7550],"h":[7575,7550],"l":[7450,7525],"c":[7550,7525],"v":[120000,146800]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	bars, err := c.History(context.Background(), "BBCA", "IDX", "D", 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(bars) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(bars))
	}
	last := bars[1]
	if last.Close != 7525 || last.Open != 7550 || last.Vol != 146800 {
		t.Errorf("Unexpected last bar: %+v", last)
	}
	if bars[0].Ts >= bars[1].Ts {
		t.Error("Expected bars oldest first")
	}

	if want := "symbol=IDX%3ABBCA"; !strings.Contains(gotPath, want) {
		t.Errorf("Expected request for %s, got %s", want, gotPath)
	}
	if !strings.Contains(gotPath, "resolution=D") || !strings.Contains(gotPath, "countback=2") {
		t.Errorf("Expected resolution and countback params, got %s", gotPath)
	}
}

func TestHistoryNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.History(context.Background(), "ZZZZ", "IDX", "D", 2)
	if reason, ok := ReasonOf(err); !ok || reason != ReasonSymbolNotFound {
		t.Errorf("Expected symbol_not_found, got %v", err)
	}
}

func TestHistoryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"s":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := c.History(context.Background(), "BBCA", "IDX", "D", 2)
	if reason, ok := ReasonOf(err); !ok || reason != ReasonTimeout {
		t.Errorf("Expected timeout reason, got %v", err)
	}
}

func TestHistoryAuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.History(context.Background(), "BBCA", "IDX", "D", 2)
	if reason, ok := ReasonOf(err); !ok || reason != ReasonAuthFailure {
		t.Errorf("Expected auth_failure, got %v", err)
	}
}

func TestHistoryMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.History(context.Background(), "BBCA", "IDX", "D", 2)
	if reason, ok := ReasonOf(err); !ok || reason != ReasonMalformedResponse {
		t.Errorf("Expected malformed_response, got %v", err)
	}
}

func TestHistoryMismatchedSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s":"ok","t":[1,2],"o":[1],"h":[1,2],"l":[1,2],"c":[1,2]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})

	_, err := c.History(context.Background(), "BBCA", "IDX", "D", 2)
	if reason, ok := ReasonOf(err); !ok || reason != ReasonMalformedResponse {
		t.Errorf("Expected malformed_response for mismatched series, got %v", err)
	}
}

func TestSigninTokenUsedAndFailureRemembered(t *testing.T) {
	signins := 0
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signins++
		w.Write([]byte(`{"user":{"auth_token":"tok-123"}}`))
	}))
	defer auth.Close()

	var gotAuth string
	data := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"s":"ok","t":[1],"o":[1],"h":[2],"l":[1],"c":[2],"v":[10]}`))
	}))
	defer data.Close()

	c := NewClient(ClientConfig{
		BaseURL:  data.URL,
		AuthURL:  auth.URL,
		Username: "user",
		Password: "pass",
	})

	ctx := context.Background()
	if _, err := c.History(ctx, "BBCA", "IDX", "D", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := c.History(ctx, "BBRI", "IDX", "D", 2); err != nil {
		t.Fatal(err)
	}

	if signins != 1 {
		t.Errorf("Expected a single sign-in per process, got %d", signins)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Expected bearer token on history requests, got %q", gotAuth)
	}
}

func TestSigninFailureNotRetried(t *testing.T) {
	signins := 0
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signins++
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer auth.Close()

	c := NewClient(ClientConfig{
		BaseURL:  "http://127.0.0.1:0",
		AuthURL:  auth.URL,
		Username: "user",
		Password: "wrong",
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.History(ctx, "BBCA", "IDX", "D", 2)
		if reason, ok := ReasonOf(err); !ok || reason != ReasonAuthFailure {
			t.Fatalf("Expected auth_failure, got %v", err)
		}
	}

	if signins != 1 {
		t.Errorf("Expected failed sign-in to be remembered, got %d attempts", signins)
	}
}

