package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artfit/artfit/pkg/httputil"
)

func ExampleRetry() {
	attempt := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempt++
		if attempt < 3 {
			return httputil.Retryable(errors.New("503 service unavailable"))
		}
		return nil
	})
	fmt.Println("attempts:", attempt, "err:", err)
	// Output: attempts: 3 err: <nil>
}
