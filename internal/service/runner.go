package service

import (
	"context"
	"time"
)

// RunOnce drives a single service cycle: setup, presence online, one
// cycle, presence offline, teardown. Teardown and the offline publish run
// even when the cycle fails.
func RunOnce(setup, cycle, teardown func() error, availability *Availability) error {
	if setup != nil {
		if err := setup(); err != nil {
			return err
		}
	}

	if availability != nil {
		availability.Online()
	}

	var cycleErr error
	if cycle != nil {
		cycleErr = cycle()
	}

	if availability != nil {
		availability.Offline()
	}
	if teardown != nil {
		if err := teardown(); err != nil && cycleErr == nil {
			cycleErr = err
		}
	}
	return cycleErr
}

// RunLoop calls onTick every interval until ctx is cancelled, marking
// presence online for the duration. A tick that overruns the interval
// delays the next tick rather than stacking.
//
// Returns the first onTick error, or nil on context cancellation.
func RunLoop(ctx context.Context, interval time.Duration, onTick func() error, availability *Availability) error {
	if availability != nil {
		availability.Online()
		defer availability.Offline()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		// Cancellation racing the timer must not trigger another tick.
		if ctx.Err() != nil {
			return nil
		}

		if err := onTick(); err != nil {
			return err
		}
		timer.Reset(interval)
	}
}
