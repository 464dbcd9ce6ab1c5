package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedProvider caps the request rate sent to the inner provider.
// Callers block until a token is available or ctx is done.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit allows perMinute requests per minute with a burst of
// burst. A non-positive perMinute disables limiting.
func WithRateLimit(p Provider, perMinute, burst int) Provider {
	if perMinute <= 0 {
		return p
	}
	if burst <= 0 {
		burst = 1
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	return &RateLimitedProvider{inner: p, limiter: rate.NewLimiter(every, burst)}
}

func (r *RateLimitedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitedProvider) ModelID() string {
	return r.inner.ModelID()
}
