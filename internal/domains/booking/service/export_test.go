package service

import (
	"testing"
	"time"
)

// SetClock pins the service's notion of today for the duration of the test.
func SetClock(t *testing.T, now time.Time) {
	t.Helper()

	previous := clock
	clock = func() time.Time { return now }

	t.Cleanup(func() { clock = previous })
}
