package domain

import (
	"math"
	"time"
)

// ElapsedMinutes rounds the running time of a session to whole minutes,
// half up, the way the early-stop rule expects.
func ElapsedMinutes(start, now time.Time) int {
	ms := now.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(math.Round(float64(ms) / 60000))
}

// IsEarlyStop reports whether a session stopped after elapsed (rounded)
// minutes ended before its configured duration.
func IsEarlyStop(elapsedMinutes, focusDuration int) bool {
	return elapsedMinutes < focusDuration
}

// Remaining is the time left on a session, clamped at zero.
func Remaining(start time.Time, focusDuration int, now time.Time) time.Duration {
	left := time.Duration(focusDuration)*time.Minute - now.Sub(start)
	if left < 0 {
		return 0
	}
	return left
}

// RemainingSeconds is Remaining rounded up to whole seconds, the value a
// countdown displays.
func RemainingSeconds(start time.Time, focusDuration int, now time.Time) int {
	ms := Remaining(start, focusDuration, now).Milliseconds()
	return int((ms + 999) / 1000)
}

// SessionDeadline is the instant a session started at start expires.
func SessionDeadline(start time.Time, focusDuration int) time.Time {
	return start.Add(time.Duration(focusDuration) * time.Minute)
}
