// Package transport is the HTTP client core: base URL resolution, default
// headers, token injection, cache-busting on reads, JSON encoding and
// decoding, and the retry policy around every call.
//
// # Error Handling
//
// Failures are classified with sentinel errors matched by errors.Is:
// ErrUnavailable (no response), ErrServer (5xx), ErrClient (4xx other than
// 401), ErrUnauthorized (401), ErrNotAuthenticated (no token, nothing sent)
// and ErrMalformedResponse. A 401 clears the stored credentials and fires the
// auth-expired handler once before the error is returned. The package never
// produces user-facing text.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
	"github.com/dmitrijs2005/marketclient/internal/timex"
	"github.com/sethvargo/go-retry"
)

const (
	// AuthHeaderName carries "Token <value>" on outbound requests.
	AuthHeaderName = "Authorization"
	// CacheBustParam is appended to GET requests.
	CacheBustParam = "_t"

	DefaultTimeout = 15 * time.Second
	healthPath     = "/health/"
	maxBodyBytes   = 8 << 20
)

// Credentials is what the client needs from the credential store.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	ClearAuth(ctx context.Context) error
}

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one logical backend call.
type Request struct {
	Method string
	// Path is appended to the base URL verbatim, e.g. "/auth/login/".
	Path  string
	Query url.Values
	// Body is JSON-encoded. json.RawMessage and []byte are sent as-is.
	Body any
	// RequireAuth rejects the call locally when no token is stored.
	RequireAuth bool
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Policy    RetryPolicy
	HTTP      Doer
	UserAgent string
	Clock     timex.Clock
}

type Client struct {
	base      string
	http      Doer
	creds     Credentials
	policy    RetryPolicy
	timeout   time.Duration
	userAgent string
	clock     timex.Clock
	log       logging.Logger

	mu            sync.RWMutex
	onAuthExpired func()

	// onRetry observes every scheduled retry; used by metrics and tests.
	onRetry func(method, path string, delay time.Duration)
}

func New(opts Options, creds Credentials, log logging.Logger) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &Client{
		base:      strings.TrimRight(u.String(), "/"),
		http:      opts.HTTP,
		creds:     creds,
		policy:    opts.Policy,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		clock:     opts.Clock,
		log:       log,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.policy == nil {
		c.policy = DefaultPolicy{BaseDelay: time.Second, MaxRetries: 3}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = "marketclient/1.0"
	}
	if c.clock == nil {
		c.clock = timex.RealClock{}
	}
	return c, nil
}

// OnAuthExpired registers the handler invoked after a 401 has cleared the
// session. It replaces any previous handler.
func (c *Client) OnAuthExpired(fn func()) {
	c.mu.Lock()
	c.onAuthExpired = fn
	c.mu.Unlock()
}

// BaseURL returns the resolved base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Do performs r, retrying per the policy, and decodes a 2xx body into out
// (which may be nil). If out has a Validate() error method it is called.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if r.RequireAuth && token == "" {
		return ErrNotAuthenticated
	}

	body, err := encodeBody(r.Body)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.Method, r.Path, err)
	}

	var (
		status int
		data   []byte
	)
	err = retry.Do(ctx, c.backoff(r), func(ctx context.Context) error {
		code, b, err := c.send(ctx, r, token, body)
		if err != nil {
			if c.policy.Retryable(r.Method, err) {
				return retry.RetryableError(err)
			}
			return err
		}
		status, data = code, b
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return c.expire(ctx, err)
		}
		return err
	}

	return decode(r, status, data, out)
}

// Ping is a single unauthenticated probe of the health endpoint. It is not
// retried.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.send(ctx, Request{Method: http.MethodGet, Path: healthPath}, "", nil)
	return err
}

func (c *Client) backoff(r Request) retry.Backoff {
	next := c.policy.Backoff()
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if !stop {
			metrics.HTTPRetries.WithLabelValues(r.Method).Inc()
			c.log.Debug(context.Background(), "retrying request", "method", r.Method, "path", r.Path, "delay", d)
			if c.onRetry != nil {
				c.onRetry(r.Method, r.Path, d)
			}
		}
		return d, stop
	})
}

func (c *Client) send(parent context.Context, r Request, token string, body []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	target, err := c.url(r)
	if err != nil {
		return 0, nil, err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthHeaderName, "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Caller cancellation is final; a per-attempt timeout is not.
		if parent.Err() != nil {
			return 0, nil, parent.Err()
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, metrics.StatusLabel(0)).Inc()
		return 0, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if parent.Err() != nil {
			return 0, nil, parent.Err()
		}
		return 0, nil, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}

	metrics.HTTPRequests.WithLabelValues(r.Method, metrics.StatusLabel(resp.StatusCode)).Inc()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, &HTTPError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Body: data}
	}
	return resp.StatusCode, data, nil
}

func (c *Client) url(r Request) (string, error) {
	u, err := url.Parse(c.base + r.Path)
	if err != nil {
		return "", fmt.Errorf("build url for %s: %w", r.Path, err)
	}
	q := u.Query()
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if r.Method == http.MethodGet {
		q.Set(CacheBustParam, strconv.FormatInt(c.clock.Now().UnixMilli(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) expire(ctx context.Context, cause error) error {
	metrics.AuthExpired.Inc()

	var clearErr error
	if err := c.creds.ClearAuth(ctx); err != nil {
		c.log.Error(ctx, "clearing credentials after 401 failed", "error", err)
		clearErr = fmt.Errorf("clear credentials: %w", err)
	}

	c.mu.RLock()
	fn := c.onAuthExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}

	return errors.Join(cause, clearErr)
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

type validator interface {
	Validate() error
}

// decode leaves out untouched when a 201 or 204 carries no body. Any other
// empty 2xx is malformed when the caller expects a value.
func decode(r Request, status int, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if status == http.StatusCreated || status == http.StatusNoContent {
			return nil
		}
		return fmt.Errorf("%w: %s %s: empty body", ErrMalformedResponse, r.Method, r.Path)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, r.Method, r.Path, err)
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, r.Method, r.Path, err)
		}
	}
	return nil
}
