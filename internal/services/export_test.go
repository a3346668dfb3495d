package services

import "time"

// SetClock replaces the clock of f.
func SetClock(f *RenderFunction, now func() time.Time) {
	f.now = now
}
