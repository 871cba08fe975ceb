package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/internal/domains/waitlist/model"
	"rms/shared"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gRepo "rms/shared/repository"
	"rms/shared/timezone"
)

type Waitlist interface {
	LoadWaitlist(ctx context.Context, restaurantID string, statuses ...string) ([]model.Waitlist, error)
	Insert(ctx context.Context, model model.Waitlist) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Waitlist, error)
	UpdateStatus(ctx context.Context, restaurantID, id, from, to, user string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Waitlist]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Waitlist {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Waitlist](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// LoadWaitlist returns the restaurant's entries in join order, limited to statuses when given.
func (r *repositoryImpl) LoadWaitlist(ctx context.Context, restaurantID string, statuses ...string) ([]model.Waitlist, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".waitlist.LoadWaitlist")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRestaurantID,
				Value:    restaurantID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	if len(statuses) > 0 {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    statuses,
			Operator: gDto.FilterOperatorIn,
			Table:    model.TableName,
		})
	}

	entries, err := r.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldJoinedAt, SortDir: gDto.SortDirAsc}, filter)
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to load waitlist: %w", err)
	}

	return entries, nil
}

// UpdateStatus moves the entry from one status to another and reports whether the row
// was still in from. Moving to notified stamps notified_at.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, restaurantID, id, from, to, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".waitlist.UpdateStatus")
	defer scope.End()

	filter := shared.FilterByRestaurant(restaurantID, id, model.FieldRestaurantID, model.FieldID, model.TableName)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldStatus,
		Value:    from,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	now := timezone.Now()
	mod := map[string]any{
		model.FieldStatus:        to,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: user,
	}

	if to == model.StatusNotified {
		mod[model.FieldNotifiedAt] = now
	}

	affected, err := r.UpdateAffected(ctx, mod, filter)
	if err != nil {
		scope.TraceError(err)

		return false, fmt.Errorf("failed to update waitlist status: %w", err)
	}

	return affected > 0, nil
}
