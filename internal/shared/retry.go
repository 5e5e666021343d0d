package shared

import (
	"fmt"
	"math/rand"
	"time"
)

// RetryWithBackoff retries fn up to maxAttempts times with exponential
// backoff and jitter. Used by the player's device-reopen attempts (3x);
// the scanner's batch commit has its own retry-once loop.
func RetryWithBackoff(maxAttempts int, initialDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		delay := initialDelay * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
		time.Sleep(delay + jitter)
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}
