package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rms/config"
	kafkaMocks "rms/infras/kafka/mocks"
	metricsMocks "rms/infras/metrics/mocks"
	otelMocks "rms/infras/otel/mocks"
	"rms/internal/domains/availability/engine"
	reservationMocks "rms/internal/domains/reservation/mocks"
	"rms/internal/domains/reservation/model"
	"rms/internal/domains/reservation/model/dto"
	"rms/internal/domains/reservation/service"
	restaurantMocks "rms/internal/domains/restaurant/mocks"
	restaurantModel "rms/internal/domains/restaurant/model"
	restaurantService "rms/internal/domains/restaurant/service"
	tableMocks "rms/internal/domains/table/mocks"
	tableModel "rms/internal/domains/table/model"
	cacheMocks "rms/shared/cache/mocks"
	"rms/shared/constant"
	"rms/shared/failure"
	"rms/shared/policy"
	"rms/shared/timezone"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const topic = "rms.reservation"

var scope = restaurantModel.Scope{OrganizationID: "org-1", RestaurantID: "r1"}

// fakeLoader serves a two-seat t1 and a four-seat t2, open 17:00-23:00, with holds.
type fakeLoader struct {
	holds []engine.Hold
}

func (f *fakeLoader) Day(_ context.Context, _ string, date time.Time) (engine.Day, error) {
	return engine.Day{
		Date: timezone.StartOfDay(date),
		Tables: []engine.Table{
			{ID: "t1", Capacity: 2, Active: true},
			{ID: "t2", Capacity: 4, Active: true},
		},
		Holds: f.holds,
		Hours: engine.ServiceHours{Open: 17 * 60, Close: 23 * 60},
	}, nil
}

func (f *fakeLoader) Source(restaurantID string) engine.DaySource {
	return engine.DaySourceFunc(func(ctx context.Context, date time.Time) (engine.Day, error) {
		return f.Day(ctx, restaurantID, date)
	})
}

type fixture struct {
	repo        *reservationMocks.MockReservation
	tables      *tableMocks.MockTable
	restaurants *restaurantMocks.MockRestaurant
	cache       *cacheMocks.MockRedisCache
	kafka       *kafkaMocks.MockClient
	loader      *fakeLoader
	date        time.Time
	svc         service.Reservation
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Kafka.Topic.Reservation = topic

	f := &fixture{
		repo:        reservationMocks.NewMockReservation(ctrl),
		tables:      tableMocks.NewMockTable(ctrl),
		restaurants: restaurantMocks.NewMockRestaurant(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
		kafka:       kafkaMocks.NewMockClient(ctrl),
		loader:      &fakeLoader{},
		date:        timezone.StartOfDay(timezone.Now()).AddDate(0, 0, 7),
	}

	otel := otelMocks.NewOtel()
	restaurants := restaurantService.New(f.restaurants, cfg, f.cache, otel)
	policies := policy.NewStatic(policy.Defaults(cfg), nil)

	f.svc = service.New(f.repo, f.tables, f.loader, restaurants, policies, cfg, f.cache, f.kafka, metricsMocks.NewMetrics(), otel)

	return f
}

func (f *fixture) expectRestaurant() {
	f.restaurants.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(restaurantModel.Restaurant{ID: "r1", OrganizationID: "org-1"}, nil)
}

func (f *fixture) expectAfterWrite(events int) {
	f.cache.EXPECT().Clear(gomock.Any(), "availability:r1:*").Return(nil)
	f.kafka.EXPECT().Publish(gomock.Any(), topic, gomock.Any()).Return(nil).Times(events)
}

func (f *fixture) request(partySize int, clock string) dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		CustomerName: "Ada",
		PartySize:    partySize,
		Date:         f.date.Format(timezone.DateLayout),
		Time:         clock,
		Duration:     intPtr(90),
	}
}

func intPtr(v int) *int {
	return &v
}

func TestReservationService_Create(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(1)

	start := timezone.At(f.date, 19*60)

	f.repo.EXPECT().
		Commit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r model.Reservation) error {
			assert.Equal(t, pq.StringArray{"t1"}, r.TableIDs)
			assert.Equal(t, "r1", r.RestaurantID)
			assert.Equal(t, model.StatusPending, r.Status)
			assert.Equal(t, "staff-1", r.CreatedBy)
			assert.True(t, start.Equal(r.StartsAt))
			assert.True(t, start.Add(90*time.Minute).Equal(r.EndsAt))

			return nil
		})

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "staff-1")

	res, err := f.svc.Create(ctx, scope, f.request(2, "19:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "19:00", res.Time)
	assert.Equal(t, []string{"t1"}, res.TableIDs)
}

func TestReservationService_CreateRequestedTable(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(1)

	f.repo.EXPECT().
		Commit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r model.Reservation) error {
			assert.Equal(t, pq.StringArray{"t2"}, r.TableIDs)

			return nil
		})

	req := f.request(2, "19:00")
	req.TableID = "t2"

	res, err := f.svc.Create(context.Background(), scope, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, res.TableIDs)
}

func TestReservationService_CreateRejected(t *testing.T) {
	tests := []struct {
		name     string
		req      func(f *fixture) dto.CreateReservationRequest
		setup    func(f *fixture)
		wantCode int
	}{
		{
			name:     "zero party size",
			req:      func(f *fixture) dto.CreateReservationRequest { return f.request(0, "19:00") },
			wantCode: http.StatusBadRequest,
		},
		{
			name: "explicit zero duration",
			req: func(f *fixture) dto.CreateReservationRequest {
				req := f.request(2, "19:00")
				req.Duration = intPtr(0)

				return req
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "outside service hours",
			req:  func(f *fixture) dto.CreateReservationRequest { return f.request(2, "22:00") },
			setup: func(f *fixture) {
				f.expectRestaurant()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "no table large enough",
			req:  func(f *fixture) dto.CreateReservationRequest { return f.request(6, "19:00") },
			setup: func(f *fixture) {
				f.expectRestaurant()
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "requested table taken",
			req: func(f *fixture) dto.CreateReservationRequest {
				req := f.request(2, "19:00")
				req.TableID = "t1"

				return req
			},
			setup: func(f *fixture) {
				f.expectRestaurant()

				start := timezone.At(f.date, 18*60)
				f.loader.holds = []engine.Hold{{ReservationID: "res-0", TableIDs: []string{"t1"}, Start: start, End: start.Add(2 * time.Hour)}}
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.svc.Create(context.Background(), scope, tt.req(f))
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
			assert.False(t, failure.IsRetryable(err))
		})
	}
}

func TestReservationService_CreateConflict(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	f.repo.EXPECT().
		Commit(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("reservation lost its tables: %w", engine.ErrConflict))

	_, err := f.svc.Create(context.Background(), scope, f.request(2, "19:00"))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.True(t, failure.IsRetryable(err))
}

func TestReservationService_CreateCommitError(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	f.repo.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

	_, err := f.svc.Create(context.Background(), scope, f.request(2, "19:00"))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	assert.False(t, failure.IsRetryable(err))
}

func TestReservationService_CreateUnknownWaitlistEntry(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	f.repo.EXPECT().
		Commit(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("failed to insert reservation: %w", &pq.Error{Code: constant.PqErrorCodeFkViolation}))

	_, err := f.svc.Create(context.Background(), scope, f.request(2, "19:00"))
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func confirmed(f *fixture) model.Reservation {
	start := timezone.At(f.date, 19*60)

	return model.Reservation{
		ID:              "res-1",
		RestaurantID:    "r1",
		PartySize:       4,
		ReservationDate: f.date,
		StartTime:       "19:00",
		DurationMinutes: 90,
		StartsAt:        start,
		EndsAt:          start.Add(90 * time.Minute),
		Status:          model.StatusConfirmed,
		TableIDs:        pq.StringArray{"t2"},
	}
}

func TestReservationService_UpdateStatusCancel(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(2)

	current := confirmed(f)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
	f.repo.EXPECT().
		UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusConfirmed, model.StatusCancelled, gomock.Any()).
		Return(true, nil)
	f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return([]tableModel.Table{
		{ID: "t1", Capacity: 2, Active: true},
		{ID: "t2", Capacity: 4, Active: true},
	}, nil)

	res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusCancelled})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, model.StatusCancelled, res.Reservation.Status)
	require.NotNil(t, res.FreedSlot)
	assert.Equal(t, 4, res.FreedSlot.Capacity)
	assert.True(t, current.StartsAt.Equal(res.FreedSlot.Start))
	assert.True(t, current.EndsAt.Equal(res.FreedSlot.End))
}

func TestReservationService_UpdateStatusCompletedAfterEnd(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(1)

	current := confirmed(f)
	current.Status = model.StatusSeated
	current.StartsAt = timezone.Now().Add(-3 * time.Hour)
	current.EndsAt = current.StartsAt.Add(90 * time.Minute)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
	f.repo.EXPECT().
		UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusSeated, model.StatusCompleted, gomock.Any()).
		Return(true, nil)

	res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusCompleted})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, model.StatusCompleted, res.Reservation.Status)
	assert.Nil(t, res.FreedSlot, "a reservation past its end frees nothing")
}

func TestReservationService_UpdateStatusCompletedEarly(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(2)

	current := confirmed(f)
	current.Status = model.StatusSeated
	current.StartsAt = timezone.Now().Add(-30 * time.Minute)
	current.EndsAt = current.StartsAt.Add(90 * time.Minute)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
	f.repo.EXPECT().
		UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusSeated, model.StatusCompleted, gomock.Any()).
		Return(true, nil)
	f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return([]tableModel.Table{{ID: "t2", Capacity: 4, Active: true}}, nil)

	res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusCompleted})
	require.NoError(t, err)

	require.NotNil(t, res.FreedSlot)
	assert.True(t, res.FreedSlot.Start.After(current.StartsAt), "early completion frees from now on")
	assert.True(t, current.EndsAt.Equal(res.FreedSlot.End))
	assert.Equal(t, 4, res.FreedSlot.Capacity)
}

func TestReservationService_UpdateStatusSeat(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()
	f.expectAfterWrite(1)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(f), nil)
	f.repo.EXPECT().
		UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusConfirmed, model.StatusSeated, gomock.Any()).
		Return(true, nil)

	res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusSeated})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Nil(t, res.FreedSlot)
}

func TestReservationService_UpdateStatusIdempotent(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(f), nil)

	res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusConfirmed})
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Equal(t, model.StatusConfirmed, res.Reservation.Status)
}

func TestReservationService_UpdateStatusInvalidTransition(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	current := confirmed(f)
	current.Status = model.StatusCompleted

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)

	_, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusConfirmed})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.False(t, failure.IsRetryable(err))
}

func TestReservationService_UpdateStatusLostRace(t *testing.T) {
	t.Run("already applied by a retry", func(t *testing.T) {
		f := newFixture(t)
		f.expectRestaurant()

		current := confirmed(f)
		latest := current
		latest.Status = model.StatusSeated

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			f.repo.EXPECT().UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusConfirmed, model.StatusSeated, gomock.Any()).Return(false, nil),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(latest, nil),
		)

		res, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusSeated})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, model.StatusSeated, res.Reservation.Status)
	})

	t.Run("moved elsewhere", func(t *testing.T) {
		f := newFixture(t)
		f.expectRestaurant()

		current := confirmed(f)
		latest := current
		latest.Status = model.StatusCancelled

		gomock.InOrder(
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil),
			f.repo.EXPECT().UpdateStatus(gomock.Any(), "r1", "res-1", model.StatusConfirmed, model.StatusSeated, gomock.Any()).Return(false, nil),
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(latest, nil),
		)

		_, err := f.svc.UpdateStatus(context.Background(), scope, "res-1", dto.UpdateStatusRequest{Status: model.StatusSeated})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.True(t, failure.IsRetryable(err))
	})
}

func TestReservationService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture(t)
		f.expectRestaurant()
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(confirmed(f), nil)

		res, err := f.svc.Get(context.Background(), scope, "res-1")
		require.NoError(t, err)
		assert.Equal(t, "res-1", res.ID)
		assert.Equal(t, f.date.Format(timezone.DateLayout), res.Date)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.expectRestaurant()
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.Get(context.Background(), scope, "res-9")
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_GetAll(t *testing.T) {
	f := newFixture(t)
	f.expectRestaurant()

	req := dto.ListRequest{Status: model.StatusConfirmed}
	req.Page = 1
	req.Limit = 1

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), req.QueryParams, gomock.Any()).Return([]model.Reservation{confirmed(f)}, nil)

	res, err := f.svc.GetAll(context.Background(), scope, req)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Reservations, 1)
}
