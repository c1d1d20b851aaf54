package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artfit/artfit/pkg/cache"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/httputil"
)

func newTestClient(t *testing.T, srv *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	client := NewClient(c, "test", time.Hour, headers)
	if srv != nil {
		client.SetHTTPClient(srv.Client())
	}
	return client
}

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("nil cache should fall back to a null cache")
	}

	calls := 0
	var v string
	for range 2 {
		err := client.Cached(context.Background(), "k", false, &v, func() error {
			calls++
			v = "x"
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2 without a cache", calls)
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer shop" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv, map[string]string{"Authorization": "Bearer shop"})

	var resp response
	if err := client.Get(context.Background(), srv.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Override")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, map[string]string{"X-Override": "default"})

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), srv.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if got != "overridden" {
		t.Errorf("header = %q, want %q", got, "overridden")
	}
}

func TestClientGetStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		want      error
		retryable bool
	}{
		{"not found", http.StatusNotFound, ErrNotFound, false},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, false},
		{"forbidden", http.StatusForbidden, ErrUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, ErrNetwork, true},
		{"server error", http.StatusInternalServerError, ErrNetwork, true},
		{"bad request", http.StatusBadRequest, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.code)
			}))
			defer srv.Close()

			client := newTestClient(t, srv, nil)
			var resp map[string]string
			err := client.Get(context.Background(), srv.URL, &resp)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Get() error = %v, want %v", err, tt.want)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
			if !strings.Contains(err.Error(), "nope") {
				t.Errorf("error %q should carry the response body", err)
			}
		})
	}
}

func TestClientCached(t *testing.T) {
	client := newTestClient(t, nil, nil)
	ctx := context.Background()

	type data struct {
		Value string `json:"value"`
	}

	calls := 0
	fetch := func(v *data) func() error {
		return func() error {
			calls++
			v.Value = "fetched"
			return nil
		}
	}

	var first data
	if err := client.Cached(ctx, "k", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second data
	if err := client.Cached(ctx, "k", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q", second.Value)
	}

	var third data
	if err := client.Cached(ctx, "k", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh should fetch, calls = %d", calls)
	}

	if err := client.Invalidate(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	var fourth data
	_ = client.Cached(ctx, "k", false, &fourth, fetch(&fourth))
	if calls != 3 {
		t.Errorf("invalidate should force a fetch, calls = %d", calls)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := newTestClient(t, nil, nil)

	calls := 0
	var v string
	err := client.Cached(context.Background(), "err", false, &v, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", calls)
	}
}

func TestClientPostJSON(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id":"p1"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var resp struct {
		ID string `json:"id"`
	}
	if err := client.PostJSON(context.Background(), srv.URL, map[string]any{"title": "Tee"}, &resp); err != nil {
		t.Fatal(err)
	}
	if gotBody["title"] != "Tee" || resp.ID != "p1" {
		t.Errorf("body = %v, resp = %+v", gotBody, resp)
	}
}

func TestClientPutJSONNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	err := client.PutJSON(context.Background(), srv.URL, map[string]any{}, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("PutJSON() error = %v, want ErrNetwork", err)
	}
	if httputil.IsRetryable(err) {
		t.Error("write errors should not be marked retryable")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestClientPostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if r.FormValue("kind") != "print" {
			t.Errorf("kind = %q", r.FormValue("kind"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "print_file_1.png" || string(data) != "PNGDATA" {
			t.Errorf("file = %s %q", hdr.Filename, data)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part Content-Type = %q", ct)
		}
		w.Write([]byte(`{"artworkUrl":"https://cdn/x.png"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, nil)
	var resp struct {
		ArtworkURL string `json:"artworkUrl"`
	}
	err := client.PostMultipart(context.Background(), srv.URL,
		FilePart{Field: "file", Filename: "print_file_1.png", ContentType: "image/png", Data: []byte("PNGDATA")},
		map[string]string{"kind": "print"}, &resp)
	if err != nil {
		t.Fatal(err)
	}
	if resp.ArtworkURL != "https://cdn/x.png" {
		t.Errorf("ArtworkURL = %q", resp.ArtworkURL)
	}
}

func TestClientConnectionErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := newTestClient(t, nil, nil)
	err := client.Get(context.Background(), url+"/x?token=secret", nil)
	if !errors.Is(err, ErrNetwork) || !httputil.IsRetryable(err) {
		t.Fatalf("error = %v, want retryable ErrNetwork", err)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks query string: %v", err)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"nil", nil, ""},
		{"not found", fmt.Errorf("%w: product 1", ErrNotFound), errs.ErrCodeNotFound},
		{"unauthorized", ErrUnauthorized, errs.ErrCodeUnauthorized},
		{"network", ErrNetwork, errs.ErrCodeNetwork},
		{"structured", errs.New(errs.ErrCodeInvalidInput, "bad"), errs.ErrCodeInvalidInput},
		{"plain", errors.New("boom"), errs.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shop-Token") != "" {
			t.Error("default headers sent to image host")
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "artfit") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/art.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("12345678"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv, map[string]string{"X-Shop-Token": "tok", "User-Agent": "artfit/test"})
	ctx := context.Background()

	data, ct, err := client.Fetch(ctx, srv.URL+"/art.png", 16)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "12345678" || ct != "image/png" {
		t.Errorf("Fetch = %q, %q", data, ct)
	}

	if _, _, err := client.Fetch(ctx, srv.URL+"/art.png", 4); !errors.Is(err, ErrNetwork) {
		t.Errorf("oversized body error = %v, want ErrNetwork", err)
	}
	if _, _, err := client.Fetch(ctx, srv.URL+"/missing.png", 16); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing error = %v, want ErrNotFound", err)
	}
	if _, _, err := client.Fetch(ctx, "file:///etc/passwd", 16); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("bad scheme error = %v, want INVALID_INPUT", err)
	}
}
