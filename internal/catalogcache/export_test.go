package catalogcache

import "time"

// SetClock overrides the time source for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}
