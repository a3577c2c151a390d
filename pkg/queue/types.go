// Package queue is C6: it dispatches Job rows created by the batcher (C4)
// through the LLM adapter (C5) with bounded concurrency, retries, failure
// isolation, and per-upload cancellation.
package queue

import "time"

// JobResult summarizes one job's outcome for progress reporting (C9).
type JobResult struct {
	JobID      string
	Succeeded  bool
	UnitCount  int
	TokensUsed int
	Error      string
}

// dayWindow returns the [start, end) UTC bounds for one calendar date, used
// to reload a DailyAnalysis's messages before scoring.
func dayWindow(date time.Time) (time.Time, time.Time) {
	start := date.UTC().Truncate(24 * time.Hour)
	return start, start.Add(24 * time.Hour)
}
