package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendJSON(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL,
		map[string]any{"model": "test"},
		map[string]string{"Authorization": "Bearer k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if string(raw) != `{"ok": true}` {
		t.Fatalf("body %q", raw)
	}
	if gotAuth != "Bearer k" || gotContentType != "application/json" {
		t.Fatalf("headers auth=%q content-type=%q", gotAuth, gotContentType)
	}
	if gotBody["model"] != "test" {
		t.Fatalf("request body %v", gotBody)
	}
}

func TestSendJSONNon2xxReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL, map[string]any{}, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if status != http.StatusTooManyRequests {
		t.Fatalf("status %d", status)
	}
	if string(raw) != `{"error": "rate limited"}` {
		t.Fatalf("error body must be returned for diagnostics, got %q", raw)
	}
}
