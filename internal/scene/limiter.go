package scene

import "time"

// Limiter paces ticks to a target rate.
type Limiter struct {
	FPS  int // zero or negative disables pacing
	next time.Time
}

func NewLimiter(fps int) *Limiter {
	return &Limiter{FPS: fps}
}

// Wait blocks until the next tick is due. Uses a hybrid sleep/spin
// approach for better precision on high rate caps.
func (l *Limiter) Wait() {
	if l.FPS <= 0 {
		l.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(l.FPS)

	if l.next.IsZero() {
		l.next = time.Now().Add(target)
	} else {
		l.next = l.next.Add(target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// spin for the final few microseconds
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(l.next); late > target {
		l.next = time.Now().Add(target)
	}
}
