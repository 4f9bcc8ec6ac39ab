package aws

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/driftsentry/driftsentry/internal/core/ports"
)

const (
	defaultRateLimitRPS = 20
	minRateLimitRPS     = 1
	maxRateLimitRPS     = 100
)

// apiLimiter throttles all AWS API calls made by the resolver so that
// a large state file cannot trip service-side rate limits.
type apiLimiter struct {
	limiter *rate.Limiter
}

func newAPILimiter(rps int, logger ports.Logger) *apiLimiter {
	limitValue := defaultRateLimitRPS
	switch {
	case rps >= minRateLimitRPS && rps <= maxRateLimitRPS:
		limitValue = rps
	case rps != 0:
		logger.Warnf(context.Background(),
			"invalid AWS API rate limit %d, using default %d RPS (valid range %d-%d)",
			rps, defaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
	}
	return &apiLimiter{limiter: rate.NewLimiter(rate.Limit(limitValue), limitValue)}
}

func (l *apiLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
