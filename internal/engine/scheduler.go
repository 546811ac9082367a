package engine

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from firing. It reports false if the call
	// already fired or was already stopped.
	Stop() bool
}

// Scheduler runs f once after d. The engine uses it for the delayed
// opponent move.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler returns a Scheduler backed by time.AfterFunc.
func RealScheduler() Scheduler {
	return timerScheduler{}
}
