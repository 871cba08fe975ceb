package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/internal/domains/table/model"
	"rms/shared/constant"
	gDto "rms/shared/dto"
	gRepo "rms/shared/repository"
)

type Table interface {
	LoadTables(ctx context.Context, restaurantID string) ([]model.Table, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Table, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Table]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Table {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Table](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// LoadTables returns every table of the restaurant, inactive ones included.
func (r *repositoryImpl) LoadTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".table.LoadTables")
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

	tables, err := r.GetAll(ctx, gDto.QueryParams{SortBy: model.FieldID, SortDir: gDto.SortDirAsc}, filter)
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	return tables, nil
}
