package azurevision

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngwafranklin/docintake/internal/infrastructure/resilience"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}, testLogger())
}

func newTestClient(endpoint string) *Client {
	return New(Config{
		Endpoint:          endpoint,
		APIKey:            "test-key",
		PollInterval:      time.Millisecond,
		PollTimeout:       time.Second,
		RequestsPerSecond: 1000,
	}, testExecutor(), testLogger())
}

func readServer(t *testing.T, pages [][]string, failPolls int) *httptest.Server {
	t.Helper()
	var polls atomic.Int32
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Operation-Location", server.URL+"/vision/v3.2/read/analyzeResults/op-1")
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /vision/v3.2/read/analyzeResults/op-1", func(w http.ResponseWriter, r *http.Request) {
		if int(polls.Add(1)) <= failPolls {
			json.NewEncoder(w).Encode(map[string]any{"status": "running"})
			return
		}
		var results []map[string]any
		for i, lines := range pages {
			var lineObjs []map[string]string
			for _, l := range lines {
				lineObjs = append(lineObjs, map[string]string{"text": l})
			}
			results = append(results, map[string]any{"page": i + 1, "lines": lineObjs})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "succeeded",
			"analyzeResult": map[string]any{"readResults": results},
		})
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRecognizeSinglePage(t *testing.T) {
	server := readServer(t, [][]string{{"FORMULAIRE D'ENROLEMENT", "Nom du promoteur: KAMGA Jean"}}, 0)
	c := newTestClient(server.URL)

	text, err := c.Recognize(context.Background(), []byte("img"), false)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if !strings.Contains(text, "KAMGA Jean") {
		t.Errorf("text = %q", text)
	}
	if strings.Contains(text, "--- Page") {
		t.Errorf("text = %q, single page must not carry page markers", text)
	}
}

func TestRecognizePollsUntilSucceeded(t *testing.T) {
	server := readServer(t, [][]string{{"line one"}}, 2)
	c := newTestClient(server.URL)

	text, err := c.Recognize(context.Background(), []byte("img"), false)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "line one" {
		t.Errorf("text = %q", text)
	}
}

func TestRecognizeMultiPagePDFHasMarkers(t *testing.T) {
	server := readServer(t, [][]string{{"page one text"}, {"page two text"}}, 0)
	c := newTestClient(server.URL)

	text, err := c.Recognize(context.Background(), []byte("%PDF"), true)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if !strings.Contains(text, "--- Page 1 ---") || !strings.Contains(text, "--- Page 2 ---") {
		t.Errorf("text = %q, want page markers", text)
	}
}

func TestRecognizeFailedOperation(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", server.URL+"/op")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /op", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "failed"})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Recognize(context.Background(), []byte("img"), false); err == nil {
		t.Fatal("expected failed operation to surface as error")
	}
}

func TestRecognizeRetriesTransientStatus(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Operation-Location", server.URL+"/op")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /op", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"analyzeResult": map[string]any{"readResults": []map[string]any{
				{"page": 1, "lines": []map[string]string{{"text": "recovered"}}},
			}},
		})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(server.URL)
	text, err := c.Recognize(context.Background(), []byte("img"), false)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "recovered" {
		t.Errorf("text = %q", text)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestRecognizeRetriesConsumeRateLimitTokens(t *testing.T) {
	var attempts atomic.Int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /vision/v3.2/read/analyze", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Operation-Location", server.URL+"/op")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /op", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"analyzeResult": map[string]any{"readResults": []map[string]any{
				{"page": 1, "lines": []map[string]string{{"text": "throttled"}}},
			}},
		})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	// 20 rps, burst 1: the retried submission has to wait ~50ms for a token
	c := New(Config{
		Endpoint:          server.URL,
		APIKey:            "test-key",
		PollInterval:      time.Millisecond,
		PollTimeout:       time.Second,
		RequestsPerSecond: 20,
	}, testExecutor(), testLogger())

	start := time.Now()
	text, err := c.Recognize(context.Background(), []byte("img"), false)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "throttled" {
		t.Errorf("text = %q", text)
	}
	if attempts.Load() != 2 {
		t.Fatalf("attempts = %d, want 2", attempts.Load())
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("elapsed = %v, the retry must block on the rate limiter", elapsed)
	}
}

func TestRecognizeDoesNotRetryAuthFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Recognize(context.Background(), []byte("img"), false); err == nil {
		t.Fatal("expected auth failure")
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, a 401 must not be retried", attempts.Load())
	}
}

func TestRecognizeEmptyInput(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	if _, err := c.Recognize(context.Background(), nil, false); err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestNameIsStable(t *testing.T) {
	if got := newTestClient("http://localhost").Name(); got != "azure-vision" {
		t.Errorf("Name() = %q", got)
	}
}
