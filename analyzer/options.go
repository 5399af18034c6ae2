package analyzer

import (
	"time"

	"k8s.io/utils/clock"
)

const (
	DefPollInterval   = 3 * time.Second
	DefSearchDebounce = 300 * time.Millisecond
)

type Option func(*Session)

// WithClock replaces the wall clock driving polling and debouncing.
func WithClock(c clock.WithTickerAndDelayedExecution) Option {
	return func(s *Session) {
		s.clock = c
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func WithSearchDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.searchWait = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}
