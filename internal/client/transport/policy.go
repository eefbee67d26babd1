package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy decides whether a failed attempt is tried again and how long
// to wait first. Backoff is called once per request.
type RetryPolicy interface {
	Backoff() retry.Backoff
	Retryable(method string, err error) bool
}

// DefaultPolicy retries network failures and 5xx responses with exponential
// backoff: BaseDelay, 2*BaseDelay, 4*BaseDelay ... up to MaxRetries retries.
// It does not look at the method, so a POST that hit a 5xx is sent again.
type DefaultPolicy struct {
	BaseDelay  time.Duration
	MaxRetries int
}

func (p DefaultPolicy) Backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.WithMaxRetries(uint64(maxRetries), retry.NewExponential(base))
}

func (p DefaultPolicy) Retryable(_ string, err error) bool {
	return transient(err)
}

// IdempotentPolicy keeps the DefaultPolicy schedule but never retries
// methods that are not idempotent (POST, PATCH).
type IdempotentPolicy struct {
	DefaultPolicy
}

func (p IdempotentPolicy) Retryable(method string, err error) bool {
	switch method {
	case http.MethodPost, http.MethodPatch:
		return false
	}
	return p.DefaultPolicy.Retryable(method, err)
}

func transient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
