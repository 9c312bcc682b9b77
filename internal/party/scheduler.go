package party

import "time"

// TimerHandle lets the engine stop a scheduled callback early. Stopping is
// best-effort; callbacks still re-validate state when they fire, which is the
// real cancellation mechanism.
type TimerHandle interface {
	Stop() bool
}

// Scheduler schedules one-shot delayed callbacks. The suggestion lifecycle
// timers go through it so tests can fire them by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}
