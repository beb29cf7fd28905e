// Package explorer is a client for the XSN block explorer REST API.
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	klog "github.com/xsnexplorer/xsn-trezor/internal/log"
)

// DefaultTimeout is the HTTP timeout used by New.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

// Client errors.
var (
	ErrRequestFailed   = errors.New("explorer request failed")
	ErrInvalidResponse = errors.New("invalid explorer response")
	ErrNotFound        = errors.New("not found")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("explorer returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 404 to ErrNotFound and everything else to ErrRequestFailed.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrRequestFailed
}

// Client is an explorer REST client.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *bigcache.BigCache
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache caches raw transactions, which never change once broadcast.
func WithCache(cache *bigcache.BigCache) Option {
	return func(c *Client) { c.cache = cache }
}

// New creates a client for the explorer at baseURL.
func New(baseURL string, opts ...Option) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout, opts...)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  klog.Explorer,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewRawTxCache creates a cache for WithCache. Entries expire after ttl.
func NewRawTxCache(ctx context.Context, ttl time.Duration) (*bigcache.BigCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntrySize = 4096
	cfg.HardMaxCacheSize = 32 // MB
	cfg.Verbose = false
	return bigcache.New(ctx, cfg)
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	c.logger.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Explorer request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func addressPath(address string, suffix string) string {
	return "/addresses/" + url.PathEscape(address) + suffix
}
