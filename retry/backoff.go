// Package retry contains the pause logic for loops that retry an operation
// after a failure, such as the accept loop of a server.
package retry

import (
	"context"
	"time"
)

// ExpConfig is used to configure exponential backoff
type ExpConfig struct {
	Min   time.Duration
	Max   time.Duration
	Scale float64
}

// Exponential contains the current state of the backoff logic.
//
// An Exponential is not safe for concurrent use.
type Exponential struct {
	config  ExpConfig
	current time.Duration
}

// NewExponential creates a backoff starting at config.Min
func NewExponential(config ExpConfig) *Exponential {
	return &Exponential{
		config:  config,
		current: config.Min,
	}
}

// Next returns the duration to wait and grows the following one, up to
// config.Max
func (b *Exponential) Next() time.Duration {
	delay := b.current
	b.current = time.Duration(float64(b.current) * b.config.Scale)
	if b.current > b.config.Max {
		b.current = b.config.Max
	}
	return delay
}

// Reset returns the backoff to its initial state, usually after a success
func (b *Exponential) Reset() {
	b.current = b.config.Min
}

// Sleep waits for the sooner event between two:
// -- closing the context, the error associated with the context returned
// -- the duration to elapse, nil returned
// If duration is 0 or negative the function returns immediately
func Sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
