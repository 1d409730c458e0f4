package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/cancellation"
	"github.com/m04kA/SMC-ReservationService/internal/service/conflictguard"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/internal/testutil"
	"github.com/m04kA/SMC-ReservationService/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var (
	owner    = domain.Actor{UserID: 1, Role: domain.RoleClient}
	stranger = domain.Actor{UserID: 2, Role: domain.RoleClient}
	admin    = domain.Actor{UserID: 100, Role: domain.RoleAdmin}

	appointmentDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type recordingCache struct {
	mu    sync.Mutex
	dates []time.Time
}

func (c *recordingCache) Invalidate(_ context.Context, dates ...time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dates = append(c.dates, dates...)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	store   *memstore.Store
	clock   *fixedClock
	cache   *recordingCache
	events  *recordingPublisher
	metrics *testutil.Metrics
	svc     *Service
}

func newFixture(now time.Time) *fixture {
	store := memstore.New()
	metrics := &testutil.Metrics{}
	logger := &testutil.Logger{}
	f := &fixture{
		store:   store,
		clock:   &fixedClock{now: now},
		cache:   &recordingCache{},
		events:  &recordingPublisher{},
		metrics: metrics,
	}

	guard := conflictguard.NewGuard(store, store.TxManager(), metrics, logger)
	f.svc = NewService(
		store,
		guard,
		cancellation.NewPolicy(24*time.Hour, time.UTC),
		domain.DefaultSlotCatalog(time.UTC),
		f.cache,
		f.events,
		metrics,
		store.TxManager(),
		logger,
	).WithTimeProvider(f.clock)
	return f
}

func (f *fixture) seed(userID int64, date time.Time, slot types.TimeString, status domain.ReservationStatus) *domain.Reservation {
	return f.store.Seed(domain.Reservation{
		UserID:    userID,
		VehicleID: userID * 10,
		ServiceID: 2,
		Date:      date,
		Time:      slot,
		Status:    status,
	})
}

func TestService_CancelLeadTime(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		actor   domain.Actor
		wantErr error
	}{
		{name: "client a day and an hour before", now: time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC), actor: owner},
		{name: "client 23 hours before", now: time.Date(2025, 1, 14, 11, 0, 0, 0, time.UTC), actor: owner, wantErr: domain.ErrPolicy},
		{name: "admin a day and an hour before", now: time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC), actor: admin},
		{name: "admin 23 hours before", now: time.Date(2025, 1, 14, 11, 0, 0, 0, time.UTC), actor: admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.now)
			r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusConfirmed)

			got, err := f.svc.Cancel(context.Background(), models.TransitionRequest{Actor: tt.actor, ReservationID: r.ID})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, _ := f.store.GetByID(context.Background(), r.ID)
				assert.Equal(t, domain.StatusConfirmed, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, got.Status)
			assert.NotNil(t, got.CancelledAt)
		})
	}
}

func TestService_CancelRecordsReasonAndNotifies(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC))
	r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)

	got, err := f.svc.Cancel(context.Background(), models.TransitionRequest{
		Actor:         owner,
		ReservationID: r.ID,
		Reason:        ptr.Ptr("car sold"),
	})

	require.NoError(t, err)
	assert.Equal(t, "car sold", *got.CancellationReason)
	assert.Equal(t, []time.Time{appointmentDate}, f.cache.dates)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.EventCancelled, f.events.events[0].Type)
	assert.Equal(t, 1, f.metrics.Transitions["PENDING->CANCELLED"])
}

func TestService_TerminalReservationsAreImmutable(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, status := range []domain.ReservationStatus{domain.StatusCancelled, domain.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(now)
			r := f.seed(owner.UserID, appointmentDate, "10:00", status)
			ctx := context.Background()

			_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: r.ID, Time: ptr.Ptr(types.TimeString("11:00"))})
			assert.ErrorIs(t, err, domain.ErrInvalidState)

			_, err = f.svc.Cancel(ctx, models.TransitionRequest{Actor: owner, ReservationID: r.ID})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)

			_, err = f.svc.Complete(ctx, models.TransitionRequest{Actor: admin, ReservationID: r.ID})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)

			_, err = f.svc.Confirm(ctx, models.TransitionRequest{Actor: admin, ReservationID: r.ID})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)

			stored, _ := f.store.GetByID(ctx, r.ID)
			assert.Equal(t, status, stored.Status)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestService_TransitionAuthorization(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, models.TransitionRequest{Actor: stranger, ReservationID: r.ID})
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = f.svc.Confirm(ctx, models.TransitionRequest{Actor: owner, ReservationID: r.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	confirmed, err := f.svc.Confirm(ctx, models.TransitionRequest{Actor: admin, ReservationID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	completedAt := time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)
	completed, err := f.svc.Complete(ctx, models.TransitionRequest{Actor: domain.SystemActor(), ReservationID: r.ID, At: &completedAt})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, completedAt, *completed.CompletedAt)

	_, err = f.svc.Cancel(ctx, models.TransitionRequest{Actor: admin, ReservationID: 999})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("moves to a free slot on another date", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
		newDate := appointmentDate.AddDate(0, 0, 1)

		got, err := f.svc.Update(ctx, models.UpdateRequest{
			Actor:         owner,
			ReservationID: r.ID,
			Date:          &newDate,
			Time:          ptr.Ptr(types.TimeString("14:00")),
			Notes:         ptr.Ptr("winter tyres"),
		})

		require.NoError(t, err)
		assert.Equal(t, newDate, got.Date)
		assert.Equal(t, types.TimeString("14:00"), got.Time)
		assert.Equal(t, []time.Time{appointmentDate, newDate}, f.cache.dates)
		require.Len(t, f.events.events, 1)
		assert.Equal(t, domain.EventUpdated, f.events.events[0].Type)
	})

	t.Run("taken slot is a conflict", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
		f.seed(stranger.UserID, appointmentDate, "11:00", domain.StatusConfirmed)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: r.ID, Time: ptr.Ptr(types.TimeString("11:00"))})

		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("confirmed is not editable", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusConfirmed)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: r.ID, Notes: ptr.Ptr("x")})

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: stranger, ReservationID: r.ID, Notes: ptr.Ptr("x")})

		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("past date is rejected", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
		past := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: r.ID, Date: &past})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("break slot is rejected", func(t *testing.T) {
		f := newFixture(now)
		r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: r.ID, Time: ptr.Ptr(types.TimeString("13:00"))})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		f := newFixture(now)

		_, err := f.svc.Update(ctx, models.UpdateRequest{Actor: owner, ReservationID: 1})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_List(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
	f.seed(owner.UserID, appointmentDate, "11:00", domain.StatusCancelled)
	f.seed(stranger.UserID, appointmentDate, "12:00", domain.StatusConfirmed)
	ctx := context.Background()

	own, err := f.svc.List(ctx, models.ListRequest{Actor: owner})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := f.svc.List(ctx, models.ListRequest{Actor: admin})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cancelled, err := f.svc.List(ctx, models.ListRequest{Actor: owner, Status: ptr.Ptr("cancelled")})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, types.TimeString("11:00"), cancelled[0].Time)

	_, err = f.svc.List(ctx, models.ListRequest{Actor: owner, Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_ListByDateIncludesInactive(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	f.seed(owner.UserID, appointmentDate, "11:00", domain.StatusCancelled)
	f.seed(stranger.UserID, appointmentDate, "10:00", domain.StatusPending)
	f.seed(stranger.UserID, appointmentDate.AddDate(0, 0, 1), "10:00", domain.StatusPending)

	list, err := f.svc.ListByDate(context.Background(), appointmentDate)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, types.TimeString("10:00"), list[0].Time)
	assert.Equal(t, domain.StatusCancelled, list[1].Status)
}

func TestService_Get(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, owner, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = f.svc.Get(ctx, stranger, r.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = f.svc.Get(ctx, admin, r.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, admin, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	r := f.seed(owner.UserID, appointmentDate, "10:00", domain.StatusPending)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, owner, r.ID), domain.ErrAuthorization)
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, 404), domain.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, admin, r.ID))
	assert.Zero(t, f.store.Len())
	assert.Equal(t, []time.Time{appointmentDate}, f.cache.dates)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.EventDeleted, f.events.events[0].Type)
}
