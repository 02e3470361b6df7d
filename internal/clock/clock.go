// Package clock abstracts the time operations background work depends on so
// tests can run pause-driven sequences without sleeping.
package clock

import "time"

// Clock provides the current time and one-shot timers. Production code uses
// Real; tests substitute a fake that fires immediately or on demand.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed. If d <= 0
	// the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
