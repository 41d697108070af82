package models

import "time"

// Run describes one completed batch for the run journal.
type Run struct {
	Source      string
	Destination string
	Provider    string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// RunRow pairs an input row with the result recorded for it.
type RunRow struct {
	Record AddressRecord
	Result GeocodeResult
}
