package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/internal/domains/availability/engine"
	"rms/internal/domains/reservation/model"
	"rms/shared"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gRepo "rms/shared/repository"
	"rms/shared/timezone"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	advisoryLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"
	lockForUpdate     = "FOR UPDATE"
)

type Reservation interface {
	LoadReservations(ctx context.Context, restaurantID string, date time.Time) ([]model.Reservation, error)
	Commit(ctx context.Context, reservation model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateStatus(ctx context.Context, restaurantID, id, from, to, user string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

type holdRow struct {
	ID       string         `db:"id"`
	TableIDs pq.StringArray `db:"table_ids"`
	StartsAt time.Time      `db:"starts_at"`
	EndsAt   time.Time      `db:"ends_at"`
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// LoadReservations returns the blocking reservations that can overlap a service window
// opening on date. Windows may run past midnight, so the range covers two calendar days
// and picks up late seatings from the day before.
func (r *repositoryImpl) LoadReservations(ctx context.Context, restaurantID string, date time.Time) ([]model.Reservation, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.LoadReservations")
	defer scope.End()

	windowStart := timezone.StartOfDay(date)
	windowEnd := windowStart.AddDate(0, 0, 2)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRestaurantID,
				Value:    restaurantID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    model.BlockingStatuses,
				Operator: gDto.FilterOperatorIn,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldEndsAt,
				Value:    windowStart,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStartsAt,
				Value:    windowEnd,
				Operator: gDto.FilterOperatorLessEq,
				Table:    model.TableName,
			},
		},
	}

	reservations, err := r.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldStartsAt, SortDir: gDto.SortDirAsc}, filter)
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	return reservations, nil
}

// Commit inserts reservation after re-validating its tables inside one transaction.
// Commits of the same restaurant are serialised by an advisory lock and the overlapping
// rows are locked, so two commits can never both pass the recheck for the same table.
// A lost race is reported as a wrapped engine.ErrConflict.
func (r *repositoryImpl) Commit(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.Commit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := r.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Str("reservation_id", reservation.ID).Msg("failed to roll back commit transaction")
		}
	}()

	if _, err = tx.ExecContext(ctx, advisoryLockQuery, reservation.RestaurantID); err != nil {
		return fmt.Errorf("failed to acquire reservation lock: %w", err)
	}

	query, args, err := sq.
		Select(model.FieldID, model.FieldTableIDs, model.FieldStartsAt, model.FieldEndsAt).
		From(model.TableName).
		Where(sq.Eq{
			model.FieldRestaurantID: reservation.RestaurantID,
			model.FieldStatus:       model.BlockingStatuses,
		}).
		Where(sq.Lt{model.FieldStartsAt: reservation.EndsAt}).
		Where(sq.Gt{model.FieldEndsAt: reservation.StartsAt}).
		Where(sq.Expr(model.FieldTableIDs+" && ?", pq.Array([]string(reservation.TableIDs)))).
		Suffix(lockForUpdate).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build overlap query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var rows []holdRow
	if err = tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to lock overlapping reservations: %w", err)
	}

	holds := make([]engine.Hold, 0, len(rows))
	for _, row := range rows {
		holds = append(holds, engine.Hold{ReservationID: row.ID, TableIDs: row.TableIDs, Start: row.StartsAt, End: row.EndsAt})
	}

	if err = engine.Recheck(holds, reservation.TableIDs, reservation.StartsAt, reservation.EndsAt, reservation.ID); err != nil {
		return fmt.Errorf("reservation %s lost its tables: %w", reservation.ID, err)
	}

	if err = r.InsertTx(ctx, tx, reservation); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("reservation %s already exists: %w", reservation.ID, engine.ErrConflict)
		}

		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	return nil
}

// UpdateStatus moves the reservation from one status to another and reports whether
// the row was still in from.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, restaurantID, id, from, to, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.UpdateStatus")
	defer scope.End()

	filter := shared.FilterByRestaurant(restaurantID, id, model.FieldRestaurantID, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldStatus,
		Value:    from,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	affected, err := r.UpdateAffected(ctx, map[string]any{
		model.FieldStatus:        to,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}, filter)
	if err != nil {
		scope.TraceError(err)

		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return affected > 0, nil
}
