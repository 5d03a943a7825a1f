package source

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WithRetry wraps a source with bounded exponential-backoff retries for
// transient fetch failures. Not-found and auth errors are permanent and
// returned immediately. maxRetries bounds the retry count beyond the first
// attempt; 0 disables retrying.
func WithRetry(src Source, maxRetries int) Source {
	if maxRetries <= 0 {
		return src
	}
	return &retrySource{src: src, maxRetries: maxRetries}
}

type retrySource struct {
	src        Source
	maxRetries int
}

func (r *retrySource) Fetch(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	op := func() error {
		s, err := r.src.Fetch(ctx)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuth) {
				return backoff.Permanent(err)
			}
			return err
		}
		snap = s
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.maxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return snap, nil
}
