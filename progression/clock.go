// progression/clock.go
package progression

import "time"

// Clock supplies wall-clock time so regeneration and streak logic can be
// tested without real sleep.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return realClock{} }
