package gtts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shortreel/internal/services/gtts"
)

func TestSynthesizeSingleChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_tts" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("tl") != "en" {
			t.Errorf("unexpected language %q", q.Get("tl"))
		}
		if q.Get("client") != "tw-ob" {
			t.Errorf("unexpected client %q", q.Get("client"))
		}
		if q.Get("q") != "Hello world" {
			t.Errorf("unexpected text %q", q.Get("q"))
		}
		_, _ = w.Write([]byte("MP3A"))
	}))
	defer server.Close()

	client := gtts.NewClient(gtts.WithBaseURL(server.URL))
	got, err := client.Synthesize(context.Background(), "Hello world", "en")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(got) != "MP3A" {
		t.Fatalf("unexpected audio: %q", got)
	}
}

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("X"))
	}))
	defer server.Close()

	long := strings.Repeat("word ", 60) // well past one request's worth
	client := gtts.NewClient(gtts.WithBaseURL(server.URL))
	got, err := client.Synthesize(context.Background(), long, "en")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(requests) < 2 {
		t.Fatalf("expected multiple chunk requests, got %d", len(requests))
	}
	if len(got) != len(requests) {
		t.Fatalf("expected one byte per chunk, got %d bytes for %d chunks", len(got), len(requests))
	}
	for _, q := range requests {
		if len([]rune(q)) > 100 {
			t.Fatalf("chunk exceeds limit: %q", q)
		}
	}
}

func TestSynthesizeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	client := gtts.NewClient(gtts.WithBaseURL(server.URL))
	if _, err := client.Synthesize(context.Background(), "Hello", "en"); err == nil {
		t.Fatal("expected http error")
	}
}

func TestSplitChunks(t *testing.T) {
	chunks := gtts.SplitChunks("alpha beta gamma", 11)
	if len(chunks) != 2 || chunks[0] != "alpha beta" || chunks[1] != "gamma" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}

	hard := gtts.SplitChunks(strings.Repeat("a", 25), 10)
	if len(hard) != 3 {
		t.Fatalf("expected hard split into 3, got %v", hard)
	}

	if got := gtts.SplitChunks("  spaced   out  ", 100); len(got) != 1 || got[0] != "spaced out" {
		t.Fatalf("unexpected whitespace handling: %v", got)
	}
}
