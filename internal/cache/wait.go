package cache

import "time"

// Visibility is the foreground state of the consumer, used to throttle polling.
type Visibility int

const (
	Visible Visibility = iota
	Unfocused
	Hidden
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case Unfocused:
		return "unfocused"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Scheduling constants
const (
	BaseBackoff     = time.Second
	MaxBackoff      = 60 * time.Second
	PageLoadGrace   = 5 * time.Second
	HiddenInterval  = 60 * time.Second
	UnfocusedFactor = 1.5
	JitterMin       = 0.8
	JitterSpread    = 0.4
)

// waitParams is everything the next refresh delay depends on.
type waitParams struct {
	interval      time.Duration
	errors        int
	sincePageLoad time.Duration
	visibility    Visibility
	// random is uniform in [0, 1)
	random float64
}

// backoff returns the retry delay after n consecutive failures.
func backoff(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	if n > 7 {
		return MaxBackoff
	}
	return min(BaseBackoff<<(n-1), MaxBackoff)
}

// nextWait computes the delay before the next refresh of a loop.
func nextWait(p waitParams) time.Duration {
	wait := p.interval
	if p.errors > 0 {
		wait = backoff(p.errors)
	}

	if p.sincePageLoad < PageLoadGrace {
		wait += PageLoadGrace - p.sincePageLoad/2
	}

	switch p.visibility {
	case Hidden:
		wait = HiddenInterval
	case Unfocused:
		wait = time.Duration(float64(wait) * UnfocusedFactor)
	}

	return time.Duration(float64(wait) * (JitterMin + JitterSpread*p.random))
}
