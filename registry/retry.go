package registry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// dialWithRetry retries dial (a connection-establishment attempt) with
// exponential backoff, per SPEC_FULL.md's DOMAIN STACK entry for
// cenkalti/backoff/v4: only dial/auth errors are retried here, never query
// execution (§7 — execution failures are reported as BackendFailure, not
// silently retried).
func dialWithRetry(ctx context.Context, dial func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(dial, backoff.WithContext(b, ctx))
}
