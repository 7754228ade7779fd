package stats

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Policy shapes read retries: attempt n waits min(Base*2^n, Cap).
type Policy struct {
	MaxRetries uint64
	Base       time.Duration
	Cap        time.Duration
}

var DefaultPolicy = Policy{MaxRetries: 2, Base: time.Second, Cap: 5 * time.Second}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * p.Base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.Cap
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// Retry runs fn until it succeeds or the policy is exhausted, returning the
// last error.
func Retry[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		return fn(ctx)
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).
			Dur("wait", wait).Msg("stats query failed, retrying")
	})
}
