package clock

import "time"

// Clock abstracts time.Now so session timestamps can be controlled in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func New() Clock {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}
