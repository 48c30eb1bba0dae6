package clock

import "time"

// Clock supplies the current instant. Services take it as an explicit
// dependency so tests can substitute a controllable implementation.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func System() Clock {
	return systemClock{}
}

// DayKeyFunc maps an instant to the calendar bucket used for daily quota
// counting. Kept injectable so the reset boundary can change without
// touching the store or the coordinator.
type DayKeyFunc func(t time.Time) string

func UTCDayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
