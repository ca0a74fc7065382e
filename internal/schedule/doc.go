// Package schedule provides utilities for cron expression handling and deferred execution.
//
// Cron functions parse and validate cron expressions and compute upcoming run times.
// Wait blocks until a computed run time arrives, honoring cancellation.
package schedule
