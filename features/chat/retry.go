package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// retryPolicy retries transient provider failures with doubled delays.
// Quota exhaustion and temporary unavailability are worth waiting out;
// anything else fails immediately.
type retryPolicy struct {
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newRetryPolicy(attempts int) retryPolicy {
	if attempts < 1 {
		attempts = 1
	}
	return retryPolicy{
		attempts:     attempts,
		initialDelay: time.Second,
		maxDelay:     8 * time.Second,
	}
}

func retryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusServiceUnavailable
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}

// do runs op until it succeeds, fails permanently, or the attempt budget is
// spent. The context deadline still cuts the whole loop short.
func (p retryPolicy) do(ctx context.Context, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.initialDelay
	eb.MaxInterval = p.maxDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0

	attempt := 0
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		slog.WarnContext(ctx, "transient completion failure, retrying",
			"error", err, "attempt", attempt)
		return err
	}

	b := backoff.WithMaxRetries(backoff.WithContext(eb, ctx), uint64(p.attempts-1))
	return backoff.Retry(wrapped, b)
}
