package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/artfit/artfit/pkg/cache"
	errs "github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/httputil"
	"github.com/artfit/artfit/pkg/observability"
)

// maxErrorBody bounds how much of an error response is kept in the error.
const maxErrorBody = 512

// Client provides shared HTTP functionality for API clients: default
// headers, response caching for reads and retries for transient failures.
//
// A Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client. Cached reads are stored under namespace with
// the given ttl. A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// SetKeyer replaces the cache keyer, e.g. with a shop-scoped one.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// Cached fills v from the cache, or runs fetch with retries and caches v.
// If refresh is true the cache is not read, but the fresh value is stored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	return c.CachedTTL(ctx, key, c.ttl, refresh, v, fetch)
}

// CachedTTL is Cached with an explicit ttl.
func (c *Client) CachedTTL(ctx context.Context, key string, ttl time.Duration, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, c.namespace)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, k, data, ttl) == nil {
			observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Invalidate drops a cached read.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.keyer.HTTPKey(c.namespace, key))
}

// Get performs a GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders performs a GET with extra headers merged over the defaults.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, headers, v)
}

// PostJSON sends body as JSON and decodes the response into v (if non-nil).
// It is not retried.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body, v any) error {
	return c.sendJSON(ctx, http.MethodPost, rawURL, body, v)
}

// PutJSON is PostJSON with the PUT method.
func (c *Client) PutJSON(ctx context.Context, rawURL string, body, v any) error {
	return c.sendJSON(ctx, http.MethodPut, rawURL, body, v)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, body, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return single(c.do(req, nil, v))
}

// FilePart is one file of a multipart upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// PostMultipart uploads file plus form fields and decodes the JSON
// response into v. It is not retried.
func (c *Client) PostMultipart(ctx context.Context, rawURL string, file FilePart, fields map[string]string, v any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, val := range fields {
		if err := mw.WriteField(k, val); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(file.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	hc := *c.http
	if hc.Timeout != 0 && hc.Timeout < uploadTimeout {
		hc.Timeout = uploadTimeout
	}
	return single(c.doWith(&hc, req, nil, v))
}

// Fetch downloads rawURL, reading at most limit bytes, and returns the
// body with its Content-Type. Transient failures are retried. Default
// headers are not sent, since image URLs usually point at a CDN rather
// than the backend.
func (c *Client) Fetch(ctx context.Context, rawURL string, limit int64) ([]byte, string, error) {
	if err := errs.ValidateURL(rawURL); err != nil {
		return nil, "", err
	}
	var (
		data []byte
		ct   string
	)
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		if ua := c.headers["User-Agent"]; ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return httputil.Retryable(fmt.Errorf("%w: GET %s: %v", ErrNetwork, redact(req.URL), err))
		}
		defer resp.Body.Close()
		if err := checkStatus(resp); err != nil {
			return err
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return httputil.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, redact(req.URL), err))
		}
		if int64(len(data)) > limit {
			return fmt.Errorf("%w: %s is larger than %d bytes", ErrNetwork, redact(req.URL), limit)
		}
		ct = resp.Header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", single(err)
	}
	return data, ct, nil
}

func (c *Client) do(req *http.Request, headers map[string]string, v any) error {
	return c.doWith(c.http, req, headers, v)
}

func (c *Client) doWith(hc *http.Client, req *http.Request, headers map[string]string, v any) error {
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	ctx := req.Context()
	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return httputil.Retryable(fmt.Errorf("%w: %s %s: %v", ErrNetwork, req.Method, redact(req.URL), err))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg != "" {
		msg = ": " + msg
	}

	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w%s", ErrNotFound, msg)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d%s", ErrUnauthorized, code, msg)
	case code == http.StatusTooManyRequests || code >= 500:
		after := httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return httputil.RetryAfter(fmt.Errorf("%w: status %d%s", ErrNetwork, code, msg), after)
	default:
		return fmt.Errorf("%w: status %d%s", ErrNetwork, code, msg)
	}
}

// single strips the retry marker from errors of calls that are never
// retried, so callers see the plain cause.
func single(err error) error {
	if re, ok := err.(*httputil.RetryableError); ok {
		return re.Err
	}
	return err
}

// redact drops the query string, which may carry tokens.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}
