package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeforge/internal/providers"
)

func TestGenerateSendsKeyAndConfig(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "hello"}}}},
			},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "gemini-pro"})
	resp, err := c.Generate(context.Background(), providers.Request{
		Secret:          "sekrit",
		Instruction:     "make a button",
		Temperature:     0.2,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "hello" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if gotPath != "/models/gemini-pro:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "sekrit" {
		t.Fatalf("secret not passed as key param, got %q", gotKey)
	}

	gc, ok := gotPayload["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("generationConfig missing in payload: %#v", gotPayload)
	}
	if gc["temperature"] != 0.2 || gc["topK"] != float64(40) || gc["topP"] != 0.95 || gc["maxOutputTokens"] != float64(8192) {
		t.Fatalf("unexpected generation config %#v", gc)
	}
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), providers.Request{Secret: "s", Instruction: "x"})

	var ue *providers.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", ue.Status)
	}
	if ue.Body != `{"error":"quota exceeded"}` {
		t.Fatalf("expected provider body surfaced, got %q", ue.Body)
	}
}

func TestGenerateInvalidResponseShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), providers.Request{Secret: "s", Instruction: "x"})

	var ue *providers.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Body != "invalid response shape" {
		t.Fatalf("unexpected body %q", ue.Body)
	}
}

func TestGenerateSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	if _, err := c.Generate(context.Background(), providers.Request{Secret: "s", Instruction: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", calls)
	}
}
