package fleetctl

import (
	"context"
	"time"
)

// AwaitCondition evaluates pred now and then on every interval tick or wake
// event until it returns true, the budget is spent or ctx ends. It reports
// whether pred was observed true. With a zero budget pred is checked once.
//
// wake may be nil. It lets a caller re-check early, e.g. when a watched file
// changes, without shortening the budget.
func AwaitCondition(ctx context.Context, pred func() bool, interval, budget time.Duration, wake <-chan struct{}) bool {
	if pred() {
		return true
	}
	if budget <= 0 {
		return false
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.NewTimer(budget)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return pred()
		case <-ticker.C:
		case <-wake:
		}
		if pred() {
			return true
		}
	}
}
