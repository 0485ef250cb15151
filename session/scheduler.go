package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TickerScheduler runs callbacks on a ticker goroutine.
type TickerScheduler struct {
	// Time supplies tickers. Nil uses the system clock.
	Time TimeProvider
}

// Every starts a goroutine invoking fn each period. Stopping does not wait
// for an in-flight callback to return.
func (s TickerScheduler) Every(period time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	tp := getTimeProvider(s.Time)

	go func() {
		ticker := tp.NewTicker(period)
		defer ticker.Stop()

		logrus.WithFields(logrus.Fields{
			"function": "TickerScheduler.Every",
			"period":   period,
		}).Debug("Starting tick loop")

		for {
			select {
			case <-ctx.Done():
				logrus.WithFields(logrus.Fields{
					"function": "TickerScheduler.Every",
				}).Debug("Tick loop stopped")
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return cancel
}

// ManualScheduler fires callbacks only when its clock is advanced. It drives
// the tick loop in tests and in offline rendering.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	jobs   map[int]*manualJob
}

type manualJob struct {
	id     int
	period time.Duration
	due    time.Duration
	fn     func()
}

// NewManualScheduler creates a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]*manualJob)}
}

// Every registers fn to run each period of advanced time.
func (s *ManualScheduler) Every(period time.Duration, fn func()) func() {
	if period <= 0 {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	job := &manualJob{id: s.nextID, period: period, due: s.now + period, fn: fn}
	s.jobs[job.id] = job

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, job.id)
	}
}

// Advance moves the clock forward by d, running every callback that falls
// due in order. It returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	ran := 0

	for {
		job := s.earliest(target)
		if job == nil {
			break
		}
		s.now = job.due
		job.due += job.period

		s.mu.Unlock()
		job.fn()
		ran++
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
	return ran
}

// earliest returns the registered job due first at or before target.
// Callers hold s.mu.
func (s *ManualScheduler) earliest(target time.Duration) *manualJob {
	due := make([]*manualJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.due <= target {
			due = append(due, j)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].due != due[b].due {
			return due[a].due < due[b].due
		}
		return due[a].id < due[b].id
	})
	return due[0]
}

// Now returns the scheduler clock.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Active returns the number of registered callbacks.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
