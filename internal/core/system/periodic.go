package system

import "time"

// DefaultPersistenceInterval is the cadence of periodic character saves.
const DefaultPersistenceInterval = 30 * time.Second

// SysScheduler gates a system S to run at most once per Interval. The type
// parameter only distinguishes schedulers of different systems when stored
// as world resources.
type SysScheduler[S any] struct {
	Interval time.Duration
	lastRun  time.Time
}

// NewSysScheduler starts the interval at now, so the first run happens one
// full interval after construction.
func NewSysScheduler[S any](interval time.Duration, now time.Time) *SysScheduler[S] {
	if interval <= 0 {
		interval = DefaultPersistenceInterval
	}
	return &SysScheduler[S]{Interval: interval, lastRun: now}
}

// ShouldRun reports whether Interval has elapsed since the last run and, if
// so, restarts the interval at now.
func (s *SysScheduler[S]) ShouldRun(now time.Time) bool {
	if now.Sub(s.lastRun) >= s.Interval {
		s.lastRun = now
		return true
	}
	return false
}

func (s *SysScheduler[S]) LastRun() time.Time { return s.lastRun }
