package schedule

import (
	"fmt"
	"time"

	"github.com/hashicorp/cronexpr"
)

// NextRun returns the next time a cron expression fires. The result
// is in UTC.
func NextRun(cron string) (time.Time, error) {
	return NextRunAfter(cron, time.Now().UTC())
}

// NextRunAfter returns the first time a cron expression fires after a
// specific time. It returns an error if the expression is invalid or
// never fires again.
func NextRunAfter(cron string, after time.Time) (time.Time, error) {
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression: %w", err)
	}
	next := expr.Next(after)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("cron expression %q never fires after %v", cron, after)
	}
	return next, nil
}

func ValidateCron(cron string) error {
	_, err := cronexpr.Parse(cron)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
