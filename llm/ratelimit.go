package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to an underlying model.
type RateLimited struct {
	next    Model
	limiter *rate.Limiter
}

// NewRateLimited allows at most perSecond calls per second to next, with a
// burst of one.
func NewRateLimited(next Model, perSecond float64) *RateLimited {
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Complete implements Model.
func (r *RateLimited) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return r.next.Complete(ctx, prompt, stop)
}
