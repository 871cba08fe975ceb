// Package snapshot loads the read-only inputs of the availability engine from the
// table, reservation and restaurant stores.
package snapshot

import (
	"context"
	"fmt"
	"rms/infras/otel"
	"rms/internal/domains/availability/engine"
	reservationModel "rms/internal/domains/reservation/model"
	reservationRepo "rms/internal/domains/reservation/repository"
	restaurantRepo "rms/internal/domains/restaurant/repository"
	tableModel "rms/internal/domains/table/model"
	tableRepo "rms/internal/domains/table/repository"
	"rms/shared/constant"
	"rms/shared/logger"
	"rms/shared/timezone"
	"sync"
	"time"
)

const (
	defectHoldWithoutTable = "hold_without_table"
	defectBadServiceHours  = "bad_service_hours"
	defectUnknownTable     = "unknown_table"
)

type Loader interface {
	Day(ctx context.Context, restaurantID string, date time.Time) (engine.Day, error)
	// Source returns a DaySource for one search. Tables are loaded once per source.
	Source(restaurantID string) engine.DaySource
}

type loaderImpl struct {
	tables       tableRepo.Table
	reservations reservationRepo.Reservation
	restaurants  restaurantRepo.Restaurant
	otel         otel.Otel
}

func New(tables tableRepo.Table, reservations reservationRepo.Reservation, restaurants restaurantRepo.Restaurant, otel otel.Otel) Loader {
	return &loaderImpl{
		tables:       tables,
		reservations: reservations,
		restaurants:  restaurants,
		otel:         otel,
	}
}

func (l *loaderImpl) Day(ctx context.Context, restaurantID string, date time.Time) (engine.Day, error) {
	tables, err := l.loadTables(ctx, restaurantID)
	if err != nil {
		return engine.Day{}, err
	}

	return l.day(ctx, restaurantID, date, tables)
}

func (l *loaderImpl) Source(restaurantID string) engine.DaySource {
	var (
		once   sync.Once
		tables []engine.Table
		err    error
	)

	return engine.DaySourceFunc(func(ctx context.Context, date time.Time) (engine.Day, error) {
		once.Do(func() {
			tables, err = l.loadTables(ctx, restaurantID)
		})

		if err != nil {
			return engine.Day{}, err
		}

		return l.day(ctx, restaurantID, date, tables)
	})
}

func (l *loaderImpl) loadTables(ctx context.Context, restaurantID string) ([]engine.Table, error) {
	rows, err := l.tables.LoadTables(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	return tableModel.ToEngine(rows), nil
}

func (l *loaderImpl) day(ctx context.Context, restaurantID string, date time.Time, tables []engine.Table) (day engine.Day, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".snapshot.Day")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date = timezone.StartOfDay(date)

	scope.SetAttributes(map[string]any{
		constant.OtelRestaurantAttributeKey: restaurantID,
		constant.RequestParamDate:           date.Format(timezone.DateLayout),
	})

	row, err := l.restaurants.ServiceHours(ctx, restaurantID, date.Weekday())
	if err != nil {
		return day, fmt.Errorf("failed to load service hours: %w", err)
	}

	hours, err := row.ToEngine()
	if err != nil {
		logger.Defect(defectBadServiceHours, map[string]any{
			"restaurant_id": restaurantID,
			"weekday":       row.Weekday,
			"error":         err.Error(),
		})

		hours = engine.ServiceHours{Closed: true}
	}

	reservations, err := l.reservations.LoadReservations(ctx, restaurantID, date)
	if err != nil {
		return day, fmt.Errorf("failed to load reservations: %w", err)
	}

	return engine.Day{
		Date:   date,
		Tables: tables,
		Holds:  holds(restaurantID, reservations),
		Hours:  hours,
	}, nil
}

func holds(restaurantID string, reservations []reservationModel.Reservation) []engine.Hold {
	result := make([]engine.Hold, 0, len(reservations))

	for _, reservation := range reservations {
		if !reservationModel.IsBlocking(reservation.Status) {
			continue
		}

		if len(reservation.TableIDs) == 0 {
			logger.Defect(defectHoldWithoutTable, map[string]any{
				"restaurant_id":  restaurantID,
				"reservation_id": reservation.ID,
				"status":         reservation.Status,
			})

			continue
		}

		result = append(result, reservation.ToHold())
	}

	return result
}

// ReportUnknownTables logs holds that point at tables missing from the inventory.
func ReportUnknownTables(restaurantID string, refs []engine.TableRef) {
	for _, ref := range refs {
		logger.Defect(defectUnknownTable, map[string]any{
			"restaurant_id":  restaurantID,
			"reservation_id": ref.ReservationID,
			"table_id":       ref.TableID,
		})
	}
}
