package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clubhub-app/clubhub-backend/internal/model"
	"github.com/clubhub-app/clubhub-backend/internal/testutil"
)

// MockRegistrationStore mocks the RegistrationStore interface
type MockRegistrationStore struct {
	mock.Mock
}

func (m *MockRegistrationStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.EventRegistration, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]model.EventRegistration), args.Error(1)
}

func (m *MockRegistrationStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeTicker lets tests drive poll ticks by hand.
type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

func regAt(start time.Time, status model.RegistrationStatus) model.EventRegistration {
	return model.EventRegistration{
		ID:        uuid.New(),
		EventID:   uuid.New(),
		ProfileID: uuid.New(),
		Status:    status,
		Event: model.Event{
			ID:        uuid.New(),
			Title:     "event",
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
			Type:      model.EventTypeGame,
		},
	}
}

func TestUpcoming_FilterAndOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	past := regAt(now.Add(-time.Hour), model.StatusAccepted)
	soon := regAt(now.Add(time.Hour), model.StatusAccepted)
	later := regAt(now.Add(25*time.Hour), model.StatusAccepted)

	// deliberately unsorted input
	out := Upcoming([]model.EventRegistration{later, past, soon}, now, 0)

	require.Len(t, out, 2)
	assert.Equal(t, soon.ID, out[0].ID)
	assert.Equal(t, later.ID, out[1].ID)
}

func TestUpcoming_StartTimeStrictlyAfterNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exact := regAt(now, model.StatusAccepted)

	out := Upcoming([]model.EventRegistration{exact}, now, 0)
	assert.Empty(t, out)
}

func TestUpcoming_DefaultsStatusToPending(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	missing := regAt(now.Add(time.Hour), "")
	declined := regAt(now.Add(2*time.Hour), model.StatusDeclined)

	out := Upcoming([]model.EventRegistration{missing, declined}, now, 0)
	require.Len(t, out, 2)
	assert.Equal(t, model.StatusPending, out[0].Status)
	assert.Equal(t, model.StatusDeclined, out[1].Status)
}

func TestUpcoming_LimitTruncation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	regs := make([]model.EventRegistration, 0, 5)
	for i := 1; i <= 5; i++ {
		regs = append(regs, regAt(now.Add(time.Duration(i)*time.Hour), model.StatusAccepted))
	}

	compact := Upcoming(regs, now, 2)
	require.Len(t, compact, 2)
	assert.Equal(t, regs[0].ID, compact[0].ID)
	assert.Equal(t, regs[1].ID, compact[1].ID)

	full := Upcoming(regs, now, 0)
	assert.Len(t, full, 5)
}

func TestRegistrations_Fetch_KeepsSnapshotOnFailure(t *testing.T) {
	store := &MockRegistrationStore{}
	s := NewRegistrations(store, testutil.MakeNoopLogger(), time.Second)
	profileID := uuid.New()
	now := time.Now()

	good := []model.EventRegistration{regAt(now.Add(time.Hour), model.StatusAccepted)}
	store.On("ListByProfile", mock.Anything, profileID).Return(good, nil).Once()

	_, err := s.Fetch(context.Background(), profileID, 0)
	require.NoError(t, err)
	require.Len(t, s.Snapshot(), 1)

	store.On("ListByProfile", mock.Anything, profileID).Return([]model.EventRegistration(nil), errors.New("network down")).Once()

	stale, err := s.Fetch(context.Background(), profileID, 0)
	assert.Error(t, err)
	// previous list survives a failed refresh
	assert.Len(t, stale, 1)
	assert.Len(t, s.Snapshot(), 1)
}

func TestRegistrations_PollLifecycle(t *testing.T) {
	store := &MockRegistrationStore{}
	s := NewRegistrations(store, testutil.MakeNoopLogger(), 30*time.Second)
	profileID := uuid.New()

	ticker := &fakeTicker{ch: make(chan time.Time)}
	s.newTicker = func(d time.Duration) Ticker {
		assert.Equal(t, 30*time.Second, d)
		return ticker
	}

	var fetches atomic.Int32
	store.On("ListByProfile", mock.Anything, profileID).
		Run(func(mock.Arguments) { fetches.Add(1) }).
		Return([]model.EventRegistration{}, nil)

	s.StartPolling(context.Background(), profileID, 3)

	// three ticks, three fetches
	for i := 0; i < 3; i++ {
		ticker.ch <- time.Now()
	}
	assert.Eventually(t, func() bool { return fetches.Load() == 3 }, time.Second, 5*time.Millisecond)

	s.StopPolling()
	assert.True(t, ticker.stopped.Load())

	// further ticks go nowhere: the loop has exited
	select {
	case ticker.ch <- time.Now():
		t.Fatal("tick delivered after stop")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(3), fetches.Load())
}

func TestRegistrations_StopWithoutStart(t *testing.T) {
	s := NewRegistrations(&MockRegistrationStore{}, testutil.MakeNoopLogger(), time.Second)
	assert.NotPanics(t, s.StopPolling)
}

func TestRegistrations_Cancel(t *testing.T) {
	store := &MockRegistrationStore{}
	s := NewRegistrations(store, testutil.MakeNoopLogger(), time.Second)
	profileID := uuid.New()
	registrationID := uuid.New()
	now := time.Now()

	t.Run("delete then immediate refetch", func(t *testing.T) {
		remaining := []model.EventRegistration{regAt(now.Add(time.Hour), model.StatusAccepted)}
		store.On("Delete", mock.Anything, registrationID).Return(nil).Once()
		store.On("ListByProfile", mock.Anything, profileID).Return(remaining, nil).Once()

		out, err := s.Cancel(context.Background(), profileID, registrationID, 0)
		require.NoError(t, err)
		assert.Len(t, out, 1)
		store.AssertExpectations(t)
	})

	t.Run("delete failure skips refetch", func(t *testing.T) {
		store.On("Delete", mock.Anything, registrationID).Return(model.ErrNotFound).Once()

		_, err := s.Cancel(context.Background(), profileID, registrationID, 0)
		assert.Error(t, err)
	})
}
