// Package retry runs an operation a bounded number of times with a fixed
// delay between failed attempts.
package retry

import (
	"fmt"
	"time"
)

// Policy describes how often an operation is attempted.
type Policy struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int

	// Delay is slept between a failed attempt and the next one. No delay
	// follows the final attempt.
	Delay time.Duration

	// Sleep replaces time.Sleep, mainly for tests.
	Sleep func(time.Duration)

	// OnRetry, if set, is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// Fixed returns a policy of n attempts separated by delay.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay}
}

// ExhaustedError reports that every attempt failed. Err is the cause of the
// final attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls fn until it succeeds or the policy's attempts are used up.
// fn receives the 1-based attempt number. On exhaustion Do returns an
// *ExhaustedError wrapping the last failure.
func Do(p Policy, fn func(attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = fn(attempt)
		if last == nil {
			return nil
		}
		if attempt < attempts {
			if p.OnRetry != nil {
				p.OnRetry(attempt, last)
			}
			if p.Delay > 0 {
				sleep(p.Delay)
			}
		}
	}

	return &ExhaustedError{Attempts: attempts, Err: last}
}
