package domain

import "time"

// AccessWindow bounds when a user may authenticate. Both bounds are inclusive
// and compared as absolute instants.
type AccessWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowDecision is the outcome of evaluating an access window.
type WindowDecision int

const (
	WindowPermitted WindowDecision = iota
	WindowTooEarly
	WindowExpired
)

// EvaluateWindow decides whether access is permitted at the given instant.
// A nil window means no administrator has constrained the user, which permits.
// The returned bound carries the violated edge for user-facing messages.
func EvaluateWindow(now time.Time, window *AccessWindow) (WindowDecision, time.Time) {
	if window == nil {
		return WindowPermitted, time.Time{}
	}
	if !window.Start.IsZero() && now.Before(window.Start) {
		return WindowTooEarly, window.Start
	}
	if !window.End.IsZero() && now.After(window.End) {
		return WindowExpired, window.End
	}
	return WindowPermitted, time.Time{}
}
