package attendance

import "time"

// Clock abstracts wall-clock reads. Every mutating operation stamps "now"
// implicitly, so tests inject a controllable clock to drive session
// transitions precisely.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }
