package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jihoonbyun/loandraft/internal/llm"
)

// MaxRetries bounds the model calls made for a single drafting job.
// Rate limits and upstream 5xx responses are retried; everything else
// fails the job on the first attempt.
const MaxRetries = 3

const maxBackoff = 30 * time.Second

// IsRetryable reports whether a generation error is transient.
func IsRetryable(err error) bool {
	var rerr *llm.RetryableError
	return errors.As(err, &rerr)
}

// Backoff returns the wait before retry attempt n (0-indexed): exponential
// from one second, capped, plus up to 50% jitter so concurrent jobs hitting
// the same rate limit do not retry in lockstep.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > maxBackoff {
		base = maxBackoff
	}
	return base + time.Duration(rand.Int64N(int64(base)/2))
}
