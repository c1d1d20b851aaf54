// Package httputil provides retry helpers for the catalog client.
//
// # Retry
//
// [Retry] re-runs an operation that failed with a [RetryableError],
// doubling the delay after each attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// A 429 or 503 may carry Retry-After; [RetryAfter] records it and the
// [Policy] waits at least that long, up to MaxDelay.
//
// Only idempotent reads are retried. Uploads, mockup generation and product
// create/update run once and surface their failure immediately, because
// repeating them could create duplicate files or listings.
package httputil
