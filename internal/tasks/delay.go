package tasks

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/traxyt/internal/shared"
)

// DelayPolicy is the pause between searched tracks, drawn uniformly from [Min, Min+Spread).
//
// The zero value does not pause.
type DelayPolicy struct {
	Min    time.Duration
	Spread time.Duration
}

// NewDelayPolicy builds a policy from the [delay] config table.
func NewDelayPolicy(cfg shared.DelayConfig) DelayPolicy {
	return DelayPolicy{Min: cfg.Min(), Spread: cfg.Spread()}
}

// Next draws one pause length.
func (d DelayPolicy) Next() time.Duration {
	pause := d.Min
	if d.Spread > 0 {
		pause += rand.N(d.Spread)
	}
	return pause
}

// Wait sleeps for [DelayPolicy.Next] or until ctx is done, returning ctx's error in that case.
func (d DelayPolicy) Wait(ctx context.Context) error {
	pause := d.Next()
	if pause <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
