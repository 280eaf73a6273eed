package erp

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrHourlyBudget signals that the per-hour request budget is exhausted.
// The current run must fail; only a later run gets a fresh budget.
var ErrHourlyBudget = errors.New("erp hourly request budget exhausted")

// budgetLimiter enforces a per-minute and a per-hour request budget.
// Minute exhaustion blocks the caller until the window resets; hour
// exhaustion is a hard failure.
type budgetLimiter struct {
	mu sync.Mutex

	perMinute int
	perHour   int

	minuteStart time.Time
	hourStart   time.Time
	minuteUsed  int
	hourUsed    int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newBudgetLimiter(perMinute, perHour int) *budgetLimiter {
	return &budgetLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Acquire consumes one request slot, blocking while the minute window is
// exhausted. It returns ErrHourlyBudget when the hour window is spent.
func (l *budgetLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()

		if l.hourStart.IsZero() || now.Sub(l.hourStart) >= time.Hour {
			l.hourStart = now
			l.hourUsed = 0
		}
		if l.minuteStart.IsZero() || now.Sub(l.minuteStart) >= time.Minute {
			l.minuteStart = now
			l.minuteUsed = 0
		}

		if l.perHour > 0 && l.hourUsed >= l.perHour {
			l.mu.Unlock()
			return ErrHourlyBudget
		}

		if l.perMinute > 0 && l.minuteUsed >= l.perMinute {
			wait := time.Minute - now.Sub(l.minuteStart)
			l.mu.Unlock()
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		l.minuteUsed++
		l.hourUsed++
		l.mu.Unlock()
		return nil
	}
}
