package llm

import (
	"context"
	"fmt"
)

// Waiter blocks until a call keyed by key may proceed
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Throttled rate-limits calls to an underlying generator, keyed by
// provider name
type Throttled struct {
	Generator
	waiter Waiter
}

// NewThrottled wraps gen so every Generate waits on waiter first
func NewThrottled(gen Generator, waiter Waiter) *Throttled {
	return &Throttled{Generator: gen, waiter: waiter}
}

// Generate waits for clearance, then delegates
func (t *Throttled) Generate(ctx context.Context, prompt string) (string, error) {
	if err := t.waiter.Wait(ctx, t.Name()); err != nil {
		return "", fmt.Errorf("rate limit %s: %w", t.Name(), err)
	}
	return t.Generator.Generate(ctx, prompt)
}
