package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/internal/domains/restaurant/model"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gRepo "rms/shared/repository"
	"time"
)

type Restaurant interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Restaurant, error)
	ServiceHours(ctx context.Context, restaurantID string, weekday time.Weekday) (model.ServiceHours, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Restaurant]
	hours gRepo.Repository[model.ServiceHours]
	db    *postgres.Connection
	otel  otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Restaurant {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Restaurant](model.EntityName, model.TableName, model.FieldID, db, otel),
		hours:      gRepo.NewRepository[model.ServiceHours](model.HoursEntityName, model.HoursTableName, model.FieldHoursID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// ServiceHours returns the row for weekday, or a zero value when none is configured.
func (r *repositoryImpl) ServiceHours(ctx context.Context, restaurantID string, weekday time.Weekday) (model.ServiceHours, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".restaurant.ServiceHours")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldHoursRestaurantID,
				Value:    restaurantID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.HoursTableName,
			},
			gDto.Filter{
				Field:    model.FieldWeekday,
				Value:    int(weekday),
				Operator: gDto.FilterOperatorEq,
				Table:    model.HoursTableName,
			},
		},
	}

	hours, err := r.hours.Get(ctx, filter)
	if err != nil {
		scope.TraceError(err)

		return hours, fmt.Errorf("failed to get service hours: %w", err)
	}

	return hours, nil
}
