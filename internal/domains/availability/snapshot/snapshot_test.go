package snapshot_test

import (
	"context"
	"errors"
	"rms/infras/otel/mocks"
	"rms/internal/domains/availability/engine"
	"rms/internal/domains/availability/snapshot"
	reservationMocks "rms/internal/domains/reservation/mocks"
	reservationModel "rms/internal/domains/reservation/model"
	restaurantMocks "rms/internal/domains/restaurant/mocks"
	restaurantModel "rms/internal/domains/restaurant/model"
	tableMocks "rms/internal/domains/table/mocks"
	tableModel "rms/internal/domains/table/model"
	"rms/shared/timezone"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	tables       *tableMocks.MockTable
	reservations *reservationMocks.MockReservation
	restaurants  *restaurantMocks.MockRestaurant
	loader       snapshot.Loader
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		tables:       tableMocks.NewMockTable(ctrl),
		reservations: reservationMocks.NewMockReservation(ctrl),
		restaurants:  restaurantMocks.NewMockRestaurant(ctrl),
	}
	f.loader = snapshot.New(f.tables, f.reservations, f.restaurants, mocks.NewOtel())

	return f
}

func date(t *testing.T) time.Time {
	d, err := timezone.ParseDate("2025-03-14")
	require.NoError(t, err)

	return d
}

func TestLoader_Day(t *testing.T) {
	f := newFixture(t)
	d := date(t)
	start := timezone.At(d, 19*60)

	f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return([]tableModel.Table{
		{ID: "t1", Capacity: 4, Location: "patio", Active: true},
		{ID: "t2", Capacity: 2, Active: false},
	}, nil)
	f.restaurants.EXPECT().ServiceHours(gomock.Any(), "r1", time.Friday).Return(restaurantModel.ServiceHours{
		RestaurantID: "r1",
		Weekday:      int(time.Friday),
		OpenTime:     "17:00",
		CloseTime:    "23:00",
	}, nil)
	f.reservations.EXPECT().LoadReservations(gomock.Any(), "r1", d).Return([]reservationModel.Reservation{
		{ID: "res-1", Status: reservationModel.StatusConfirmed, TableIDs: pq.StringArray{"t1"}, StartsAt: start, EndsAt: start.Add(90 * time.Minute)},
		{ID: "res-2", Status: reservationModel.StatusPending},
		{ID: "res-3", Status: reservationModel.StatusCancelled, TableIDs: pq.StringArray{"t1"}, StartsAt: start, EndsAt: start.Add(time.Hour)},
	}, nil)

	day, err := f.loader.Day(context.Background(), "r1", d.Add(13*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, d, day.Date)
	assert.Equal(t, engine.ServiceHours{Open: 17 * 60, Close: 23 * 60}, day.Hours)
	assert.Equal(t, []engine.Table{
		{ID: "t1", Capacity: 4, Location: "patio", Active: true},
		{ID: "t2", Capacity: 2, Active: false},
	}, day.Tables)
	assert.Equal(t, []engine.Hold{
		{ReservationID: "res-1", TableIDs: []string{"t1"}, Start: start, End: start.Add(90 * time.Minute)},
	}, day.Holds)
}

func TestLoader_DayClosed(t *testing.T) {
	f := newFixture(t)
	d := date(t)

	f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return(nil, nil)
	f.restaurants.EXPECT().ServiceHours(gomock.Any(), "r1", time.Friday).Return(restaurantModel.ServiceHours{
		RestaurantID: "r1",
		OpenTime:     "late",
		CloseTime:    "23:00",
	}, nil)
	f.reservations.EXPECT().LoadReservations(gomock.Any(), "r1", d).Return(nil, nil)

	day, err := f.loader.Day(context.Background(), "r1", d)
	require.NoError(t, err)
	assert.True(t, day.Hours.Closed)
}

func TestLoader_DayErrors(t *testing.T) {
	d := date(t)

	t.Run("tables", func(t *testing.T) {
		f := newFixture(t)
		f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return(nil, errors.New("database error"))

		_, err := f.loader.Day(context.Background(), "r1", d)
		assert.Error(t, err)
	})

	t.Run("reservations", func(t *testing.T) {
		f := newFixture(t)
		f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return(nil, nil)
		f.restaurants.EXPECT().ServiceHours(gomock.Any(), "r1", time.Friday).Return(restaurantModel.ServiceHours{}, nil)
		f.reservations.EXPECT().LoadReservations(gomock.Any(), "r1", d).Return(nil, errors.New("database error"))

		_, err := f.loader.Day(context.Background(), "r1", d)
		assert.Error(t, err)
	})
}

func TestLoader_SourceLoadsTablesOnce(t *testing.T) {
	f := newFixture(t)
	d := date(t)

	f.tables.EXPECT().LoadTables(gomock.Any(), "r1").Return([]tableModel.Table{{ID: "t1", Capacity: 4, Active: true}}, nil).Times(1)
	f.restaurants.EXPECT().ServiceHours(gomock.Any(), "r1", gomock.Any()).Return(restaurantModel.ServiceHours{}, nil).Times(2)
	f.reservations.EXPECT().LoadReservations(gomock.Any(), "r1", gomock.Any()).Return(nil, nil).Times(2)

	source := f.loader.Source("r1")

	first, err := source.Day(context.Background(), d)
	require.NoError(t, err)

	second, err := source.Day(context.Background(), d.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, first.Tables, second.Tables)
	assert.Equal(t, d.AddDate(0, 0, 1), second.Date)
}
