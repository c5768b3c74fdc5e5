// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aurasync/internal/config"
	"github.com/tomtom215/aurasync/internal/models"
)

func newTestImmichClient(t *testing.T, handler http.Handler) *ImmichClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewImmichClient(config.ImmichConfig{
		URL:      server.URL + "/api",
		APIKey:   "test-api-key",
		AlbumID:  "album-1",
		Timeout:  5 * time.Second,
		PageSize: 1000,
	})
	client.retryBaseDelay = time.Millisecond
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func makeAssets(prefix string, n int) []models.ImmichAsset {
	assets := make([]models.ImmichAsset, n)
	for i := range assets {
		assets[i] = models.ImmichAsset{ID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return assets
}

func TestImmichClient_Headers(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/server/ping" {
			t.Errorf("path = %q, want /api/server/ping", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-api-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		writeJSON(t, w, map[string]string{"res": "pong"})
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestImmichClient_PingFailure(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))

	err := client.Ping(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Ping() error = %v, want *HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Body, "Invalid API key") {
		t.Errorf("Body = %q, want the server message", statusErr.Body)
	}
}

func TestImmichClient_SearchPagination(t *testing.T) {
	t.Parallel()

	const total = 2500
	all := makeAssets("asset", total)
	var requests atomic.Int32

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/search/metadata" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req models.ImmichSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		start := (req.Page - 1) * req.Size
		end := start + req.Size
		if end > total {
			end = total
		}
		var items []models.ImmichAsset
		if start < total {
			items = all[start:end]
		}
		writeJSON(t, w, models.ImmichSearchResponse{Assets: models.ImmichSearchPage{
			Total: total,
			Count: len(items),
			Items: items,
		}})
	}))

	got, err := client.SearchUntaggedAlbumAssets(context.Background(), "album-1")
	if err != nil {
		t.Fatalf("SearchUntaggedAlbumAssets() error = %v", err)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("page requests = %d, want 3", n)
	}
	if len(got) != total {
		t.Fatalf("assets = %d, want %d", len(got), total)
	}
	for i, a := range got {
		if a.ID != all[i].ID {
			t.Fatalf("asset %d = %q, want %q (order must be preserved)", i, a.ID, all[i].ID)
		}
	}
}

func TestImmichClient_SearchServerCapsPageSize(t *testing.T) {
	t.Parallel()

	const (
		total     = 1000
		serverCap = 400
	)
	all := makeAssets("asset", total)
	var requests atomic.Int32

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		var req models.ImmichSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		// The server ignores the requested size and pages by its own limit.
		start := (req.Page - 1) * serverCap
		end := start + serverCap
		if end > total {
			end = total
		}
		var items []models.ImmichAsset
		if start < total {
			items = all[start:end]
		}
		writeJSON(t, w, models.ImmichSearchResponse{Assets: models.ImmichSearchPage{
			Total: total,
			Count: len(items),
			Items: items,
		}})
	}))

	got, err := client.SearchUntaggedAlbumAssets(context.Background(), "album-1")
	if err != nil {
		t.Fatalf("SearchUntaggedAlbumAssets() error = %v", err)
	}
	if len(got) != total {
		t.Fatalf("assets = %d, want %d", len(got), total)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("page requests = %d, want 3", n)
	}
	if got[total-1].ID != all[total-1].ID {
		t.Errorf("last asset = %q, want %q", got[total-1].ID, all[total-1].ID)
	}
}

func TestImmichClient_SearchRequestBody(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		want := `{"albumIds":["album-1"],"tagIds":null,"withExif":true,"size":1000,"page":1}`
		if string(body) != want {
			t.Errorf("body = %s, want %s", body, want)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		writeJSON(t, w, models.ImmichSearchResponse{})
	}))

	got, err := client.SearchUntaggedAlbumAssets(context.Background(), "album-1")
	if err != nil {
		t.Fatalf("SearchUntaggedAlbumAssets() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("assets = %d, want 0", len(got))
	}
}

func TestImmichClient_SearchStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		page := models.ImmichSearchPage{Total: 5000}
		if n == 1 {
			page.Items = makeAssets("a", 10)
		}
		writeJSON(t, w, models.ImmichSearchResponse{Assets: page})
	}))
	client.pageSize = 10

	got, err := client.SearchUntaggedAlbumAssets(context.Background(), "album-1")
	if err != nil {
		t.Fatalf("SearchUntaggedAlbumAssets() error = %v", err)
	}
	if len(got) != 10 {
		t.Errorf("assets = %d, want 10", len(got))
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("page requests = %d, want 2", n)
	}
}

func TestImmichClient_SearchError(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := client.SearchUntaggedAlbumAssets(context.Background(), "album-1"); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestImmichClient_RateLimitRetry(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, map[string]string{"res": "pong"})
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestImmichClient_RateLimitExhausted(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	client.maxRetries = 2

	err := client.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded after 2 retries") {
		t.Fatalf("Ping() error = %v, want rate limit error", err)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestImmichClient_RateLimitCancelled(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Ping() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff wait did not honor context cancellation")
	}
}

func TestImmichClient_Downloads(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/assets/a1/original":
			_, _ = w.Write([]byte("original-bytes"))
		case "/api/assets/a1/thumbnail":
			_, _ = w.Write([]byte("thumb-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))

	dir := t.TempDir()
	tests := []struct {
		name string
		fn   func(ctx context.Context, id, dst string) error
		id   string
		want string
		ok   bool
	}{
		{"original", client.DownloadOriginal, "a1", "original-bytes", true},
		{"thumbnail", client.DownloadThumbnail, "a1", "thumb-bytes", true},
		{"missing asset", client.DownloadOriginal, "nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(dir, tt.name)
			err := tt.fn(context.Background(), tt.id, dst)
			if (err == nil) != tt.ok {
				t.Fatalf("error = %v, want ok=%v", err, tt.ok)
			}
			if !tt.ok {
				return
			}
			got, err := os.ReadFile(dst)
			if err != nil {
				t.Fatalf("read %s: %v", dst, err)
			}
			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImmichClient_GetOrCreateTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		existing    []models.ImmichTag
		wantID      string
		wantCreated bool
	}{
		{
			name:     "existing tag",
			existing: []models.ImmichTag{{ID: "t0", Name: "other"}, {ID: "t1", Name: "synced-to-aura"}},
			wantID:   "t1",
		},
		{
			name:        "missing tag is created",
			existing:    []models.ImmichTag{{ID: "t0", Name: "other"}},
			wantID:      "new-tag",
			wantCreated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var created atomic.Bool
			client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.Method == http.MethodGet && r.URL.Path == "/api/tags":
					writeJSON(t, w, tt.existing)
				case r.Method == http.MethodPost && r.URL.Path == "/api/tags":
					var req models.ImmichCreateTagRequest
					_ = json.NewDecoder(r.Body).Decode(&req)
					if req.Name != "synced-to-aura" {
						t.Errorf("create name = %q", req.Name)
					}
					created.Store(true)
					w.WriteHeader(http.StatusCreated)
					writeJSON(t, w, models.ImmichTag{ID: "new-tag", Name: req.Name})
				default:
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
			}))

			id, err := client.GetOrCreateTag(context.Background(), "synced-to-aura")
			if err != nil {
				t.Fatalf("GetOrCreateTag() error = %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
			if created.Load() != tt.wantCreated {
				t.Errorf("created = %v, want %v", created.Load(), tt.wantCreated)
			}
		})
	}
}

func TestImmichClient_TagAssets(t *testing.T) {
	t.Parallel()

	client := newTestImmichClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tags/tag-1/assets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"ids":["a","b"]}` {
			t.Errorf("body = %s", body)
		}
		writeJSON(t, w, []models.ImmichBulkIDResult{
			{ID: "a", Success: true},
			{ID: "b", Success: false, Error: "duplicate"},
		})
	}))

	if err := client.TagAssets(context.Background(), "tag-1", []string{"a", "b"}); err != nil {
		t.Fatalf("TagAssets() error = %v", err)
	}
}

func TestReadBodyForError(t *testing.T) {
	t.Parallel()

	short := readBodyForError(strings.NewReader("oops"))
	if string(short) != "oops" {
		t.Errorf("short body = %q", short)
	}

	long := readBodyForError(strings.NewReader(strings.Repeat("x", maxErrorBodySize+100)))
	if !strings.HasSuffix(string(long), "... (truncated)") {
		t.Error("long body should be marked truncated")
	}
	if len(long) > maxErrorBodySize+32 {
		t.Errorf("long body = %d bytes, want it capped", len(long))
	}
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	if newLimiter(0) != nil {
		t.Error("rps 0 should be unlimited")
	}
	l := newLimiter(0.5)
	if l == nil || l.Burst() != 1 {
		t.Errorf("rps 0.5 limiter = %v, want burst 1", l)
	}
	if l := newLimiter(10); l.Burst() != 10 {
		t.Errorf("burst = %d, want 10", l.Burst())
	}
}
