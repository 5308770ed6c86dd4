package tests

import "time"

// ReceivesWithin reports whether a value arrives on ch (or ch is closed) before the timeout expires.
func ReceivesWithin[T any](ch chan T, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
