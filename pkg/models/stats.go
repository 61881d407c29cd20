package models

import "time"

// RunSummary aggregates copy outcomes for one remote root, or for a whole
// run when summed across roots.
type RunSummary struct {
	Successes    int64
	Errors       int64
	Skipped      int64
	Overwritten  int64
	BytesPulled  int64
	Elapsed      time.Duration
	SkippedPaths []string
}

// Add accumulates another summary's counters into s. Elapsed time and the
// skipped-path list stay per root and are not combined.
func (s *RunSummary) Add(other *RunSummary) {
	s.Successes += other.Successes
	s.Errors += other.Errors
	s.Skipped += other.Skipped
	s.Overwritten += other.Overwritten
	s.BytesPulled += other.BytesPulled
}
