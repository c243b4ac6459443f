package monitor

import "time"

// Schedule gates a periodic action on an injected clock.
type Schedule struct {
	interval time.Duration
	last     time.Time
}

func NewSchedule(interval time.Duration) *Schedule {
	return &Schedule{interval: interval}
}

// Due reports whether the interval has elapsed since the last Mark.
func (s *Schedule) Due(now time.Time) bool {
	return s.Remaining(now) <= 0
}

// Remaining is the time left until Due, never negative.
func (s *Schedule) Remaining(now time.Time) time.Duration {
	left := s.interval - now.Sub(s.last)
	if left < 0 {
		return 0
	}
	return left
}

func (s *Schedule) Mark(now time.Time) {
	s.last = now
}

// State is the rotation cursor over the asset table.
type State struct {
	cursor int
	size   int
	loaded bool // at least one asset has data worth showing
}

func NewState(size int) *State {
	return &State{size: size}
}

func (s *State) Current() int {
	return s.cursor
}

// Advance moves to the next asset, wrapping to the first.
func (s *State) Advance() int {
	if s.size > 0 {
		s.cursor = (s.cursor + 1) % s.size
	}
	return s.cursor
}
