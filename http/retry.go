package http

import (
	"context"
	"errors"
	"time"
)

// fetchFunc is the signature for a single fetch attempt.
type fetchFunc func(ctx context.Context, url string) (string, error)

// fetchWithRetryDelays calls fetch once plus one retry per delay. Only
// transport failures are retried; status errors, invalid requests and
// cancellation of ctx end the loop immediately.
func fetchWithRetryDelays(ctx context.Context, url string, fetch fetchFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		var terr *transportError
		if !errors.As(err, &terr) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
