package production

import "time"

// Stopwatch is the running/stopped state of a step's timer. The zero
// value is a stopped watch. Keeping the state behind methods makes
// "stopped" explicit instead of a nullable timestamp.
type Stopwatch struct {
	running bool
	since   time.Time
}

// Start begins counting from now. Starting a running watch restarts the
// current interval; the engine never does that without flushing first.
func (w *Stopwatch) Start(now time.Time) {
	w.running = true
	w.since = now
}

// Flush stops the watch and returns the minutes of the interval that was
// running, fractional. Zero when the watch was already stopped.
func (w *Stopwatch) Flush(now time.Time) float64 {
	if !w.running {
		return 0
	}
	elapsed := now.Sub(w.since).Minutes()
	w.running = false
	w.since = time.Time{}
	return elapsed
}

// Running reports whether the watch is counting.
func (w Stopwatch) Running() bool { return w.running }

// Live returns the minutes of the interval currently running, without
// stopping the watch. Zero when stopped. Recomputed on every call — never
// cached, since it grows with the clock.
func (w Stopwatch) Live(now time.Time) float64 {
	if !w.running {
		return 0
	}
	return now.Sub(w.since).Minutes()
}
