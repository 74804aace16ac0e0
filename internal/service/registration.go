package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubhub-app/clubhub-backend/internal/logger"
	"github.com/clubhub-app/clubhub-backend/internal/model"
)

// DefaultPollInterval is the period between registration list refreshes
// while a view is active.
const DefaultPollInterval = 30 * time.Second

// Ticker abstracts time.Ticker so the polling lifecycle can be tested
// deterministically and later swapped for a push mechanism.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Registrations maintains an in-memory snapshot of a profile's upcoming
// event registrations, refreshed by polling while the consuming view is
// active.
type Registrations struct {
	store  model.RegistrationStore
	logger *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	snapshot []model.EventRegistration

	pollMu    sync.Mutex
	pollStop  func()
	newTicker func(d time.Duration) Ticker
	interval  time.Duration
}

// NewRegistrations creates a Registrations service polling at interval.
// A non-positive interval falls back to DefaultPollInterval.
func NewRegistrations(store model.RegistrationStore, logger *logger.Logger, interval time.Duration) *Registrations {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Registrations{
		store:     store,
		logger:    logger,
		now:       time.Now,
		newTicker: newRealTicker,
		interval:  interval,
	}
}

// Upcoming is the pure transform applied to a raw fetch result: keep only
// registrations whose event starts strictly after now, default a missing
// status to pending, sort ascending by start time and truncate to limit
// when limit > 0.
func Upcoming(registrations []model.EventRegistration, now time.Time, limit int) []model.EventRegistration {
	out := make([]model.EventRegistration, 0, len(registrations))
	for _, reg := range registrations {
		if !reg.Event.StartTime.After(now) {
			continue
		}
		if reg.Status == "" {
			reg.Status = model.StatusPending
		}
		out = append(out, reg)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Event.StartTime.Before(out[j].Event.StartTime)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Fetch loads the profile's registrations joined with their events and runs
// the transform. On fetch failure the previous snapshot is kept: stale data
// is preferred over clearing the view.
func (s *Registrations) Fetch(ctx context.Context, profileID uuid.UUID, limit int) ([]model.EventRegistration, error) {
	raw, err := s.store.ListByProfile(ctx, profileID)
	if err != nil {
		s.logger.Error("failed to fetch registrations", "profile_id", profileID, "error", err)
		return s.Snapshot(), fmt.Errorf("failed to fetch registrations: %w", err)
	}

	upcoming := Upcoming(raw, s.now(), limit)
	s.setSnapshot(upcoming)
	return upcoming, nil
}

// Snapshot returns the current in-memory list.
func (s *Registrations) Snapshot() []model.EventRegistration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EventRegistration, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

func (s *Registrations) setSnapshot(regs []model.EventRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = regs
}

// StartPolling begins refreshing the snapshot every interval until
// StopPolling is called or ctx is cancelled. Calling it while a poll is
// already running restarts the poll. Each tick is independent; failures are
// logged and absorbed.
func (s *Registrations) StartPolling(ctx context.Context, profileID uuid.UUID, limit int) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	if s.pollStop != nil {
		s.pollStop()
	}

	pollCtx, cancel := context.WithCancel(ctx)
	ticker := s.newTicker(s.interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C():
				// Runs against the parent context: stopping the poll does
				// not abort a fetch already underway, its result is still
				// applied. Errors are logged inside Fetch.
				_, _ = s.Fetch(ctx, profileID, limit)
			}
		}
	}()

	s.pollStop = func() {
		cancel()
		ticker.Stop()
		<-done
	}
}

// StopPolling cancels the poll timer. A fetch already underway is allowed
// to complete and its result is applied; no further ticks follow.
func (s *Registrations) StopPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.pollStop != nil {
		s.pollStop()
		s.pollStop = nil
	}
}

// Cancel deletes the registration and immediately re-fetches the list so
// the caller sees the removal without waiting for the next poll tick.
func (s *Registrations) Cancel(ctx context.Context, profileID, registrationID uuid.UUID, limit int) ([]model.EventRegistration, error) {
	if err := s.store.Delete(ctx, registrationID); err != nil {
		return nil, fmt.Errorf("failed to cancel registration: %w", err)
	}
	return s.Fetch(ctx, profileID, limit)
}
