package schedule

import "time"

// SetTick shortens the dispatch interval for tests.
func (s *Scheduler) SetTick(d time.Duration) { s.tick = d }

var MatchCron = matchCron
