package model

import "time"

const (
	// DecoyCount is the number of decoy strings written per sanitization.
	DecoyCount = 5
	// DecoyLength is the character length of every decoy string.
	DecoyLength = 264
	// DecoyPause separates consecutive decoy writes.
	DecoyPause = 100 * time.Millisecond
)

// SanitizationReport describes one completed (or aborted) sanitization run.
// Writes counts decoys that reached the clipboard channel.
type SanitizationReport struct {
	Trigger    string
	Writes     int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// OK reports whether every decoy was written.
func (r SanitizationReport) OK() bool {
	return r.Err == nil && r.Writes == DecoyCount
}

// Duration returns how long the run took.
func (r SanitizationReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
