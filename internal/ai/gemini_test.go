package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
)

func testRequest() Request {
	return Request{
		System: "You are a helpful assistant.",
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello!"},
			{Role: RoleUser, Content: "what is Go?"},
		},
		Params: affect.GenerationParams{Temperature: 0.7, TopP: 0.9, TopK: 40},
	}
}

func newTestProvider(url string) Generator {
	return NewGemini(GeminiConfig{
		APIKey:            "test-key",
		BaseURL:           url,
		RequestsPerMinute: -1,
	})
}

func TestGenerateWireFormat(t *testing.T) {
	var captured geminiRequest
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": "Go is a programming language."}},
				},
			}},
		})
	}))
	defer srv.Close()

	got, err := newTestProvider(srv.URL).Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Go is a programming language." {
		t.Errorf("reply = %q", got)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}

	// System exchange (2) + three turns.
	if len(captured.Contents) != 5 {
		t.Fatalf("contents length = %d, want 5", len(captured.Contents))
	}
	if captured.Contents[0].Role != "user" || captured.Contents[0].Parts[0].Text != "You are a helpful assistant." {
		t.Errorf("system turn = %+v", captured.Contents[0])
	}
	if captured.Contents[3].Role != "model" {
		t.Errorf("assistant turn mapped to %q, want model", captured.Contents[3].Role)
	}
	if captured.GenerationConfig.Temperature != 0.7 || captured.GenerationConfig.TopK != 40 {
		t.Errorf("generation config = %+v", captured.GenerationConfig)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestGenerateResourceExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid key","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), testRequest())
	if err == nil || errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want wrapped API error", err)
	}
}
