// Package ratelimit wraps an LLMService in a token-bucket limiter.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Ensure Limited implements the interface.
var _ driven.LLMService = (*Limited)(nil)

// DefaultBackoff is applied after a 429 without a Retry-After header.
const DefaultBackoff = 30 * time.Second

// Config holds the limiter settings.
type Config struct {
	// RequestsPerSecond is the sustained call rate. Zero or less disables limiting.
	RequestsPerSecond float64

	// Burst is the bucket size (default: 1).
	Burst int
}

// Limited is an LLMService that waits for a token before every call and backs off
// after the provider reports rate limiting.
type Limited struct {
	next    driven.LLMService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// Wrap returns next unchanged when limiting is disabled.
func Wrap(next driven.LLMService, cfg Config) driven.LLMService {
	if next == nil || cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a limiter around next.
func New(next driven.LLMService, cfg Config) *Limited {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		now:     time.Now,
	}
}

// Wait blocks until a call may proceed or ctx ends.
func (l *Limited) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := retryAt.Sub(l.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// observe records a provider 429 so later calls wait it out.
func (l *Limited) observe(err error) {
	if !errors.Is(err, httpjson.ErrRateLimited) {
		return
	}
	backoff := DefaultBackoff
	var rle *httpjson.RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		backoff = rle.RetryAfter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if at := l.now().Add(backoff); at.After(l.retryAt) {
		l.retryAt = at
	}
	logger.Warn("oracle rate limited, backing off %s", backoff)
}

// Generate waits for a token and delegates.
func (l *Limited) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := l.Wait(ctx); err != nil {
		return "", err
	}
	out, err := l.next.Generate(ctx, prompt, opts)
	l.observe(err)
	return out, err
}

// ModelName returns the wrapped model name.
func (l *Limited) ModelName() string { return l.next.ModelName() }

// Fingerprint returns the wrapped fingerprint; limiting does not change answers.
func (l *Limited) Fingerprint() string { return l.next.Fingerprint() }

// Ping is not rate limited.
func (l *Limited) Ping(ctx context.Context) error { return l.next.Ping(ctx) }

// Close closes the wrapped service.
func (l *Limited) Close() error { return l.next.Close() }
