package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"rms/infras/otel"
	"rms/infras/postgres"
	"rms/shared/constant"
	"rms/shared/dto"
	"rms/shared/logger"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	errRequiredFilter = errors.New("required filter")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type field struct {
	name  string
	index []int
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository implements the common single-table queries for a row type T. Columns are
// read from the db tags of T, including embedded structs.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	fields        []field
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		fields:        getFields(reflect.TypeOf(zero), nil),
	}
}

func (repo *Repository[T]) scopeName(op string) string {
	return fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op)
}

// Columns returns the table columns in declaration order.
func (repo *Repository[T]) Columns() []string {
	columns := make([]string, 0, len(repo.fields))
	for _, f := range repo.fields {
		columns = append(columns, f.name)
	}

	return columns
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, model T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("insert"))
	defer scope.End()

	row := reflect.ValueOf(model)
	values := make([]any, 0, len(repo.fields))

	for _, f := range repo.fields {
		values = append(values, row.FieldByIndex(f.index).Interface())
	}

	query, args, err := psql.Insert(repo.table).Columns(repo.Columns()...).Values(values...).ToSql()
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to build insert (%s): %w", repo.entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = exec.ExecContext(ctx, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to insert data (%s): %w", repo.entity, err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("Insert"))
	defer scope.End()

	return repo.insert(ctx, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("InsertTx"))
	defer scope.End()

	return repo.insert(ctx, sqltx, model)
}

// Get returns the first matching row, or the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("Get"))
	defer scope.End()

	var model T

	query, args, err := repo.where(repo.selectBuilder(columns...), filter).Limit(1).ToSql()
	if err != nil {
		scope.TraceError(err)

		return model, fmt.Errorf("failed to build query (%s): %w", repo.entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.db.Read.GetContext(ctx, &model, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, fmt.Errorf("failed to get data (%s): %w", repo.entity, err)
	}

	return model, nil
}

// GetAll returns the matching rows. Sorting is applied only for known columns, and
// pagination only when params carries a limit.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("GetAll"))
	defer scope.End()

	builder := repo.where(repo.selectBuilder(columns...), filter)

	if params.SortBy != constant.Empty {
		if slices.Contains(repo.Columns(), params.SortBy) {
			dir := params.SortDir
			if dir == constant.Empty {
				dir = dto.SortDirAsc
			}

			builder = builder.OrderBy(fmt.Sprintf("%s.%s %s", repo.table, params.SortBy, dir))
		} else {
			log.Warn().Str("entity", repo.entity).Str("sort_by", params.SortBy).Msg("ignoring unknown sort column")
		}
	}

	if params.Limit > 0 {
		builder = builder.Limit(uint64(params.Limit)).Offset(uint64(params.Offset())) //nolint:gosec
	}

	query, args, err := builder.ToSql()
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to build query (%s): %w", repo.entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var models []T

	if err = repo.db.Read.SelectContext(ctx, &models, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get all data (%s): %w", repo.entity, err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("Count"))
	defer scope.End()

	builder := psql.Select(fmt.Sprintf("COUNT(%s.%s)", repo.table, repo.primaryColumn)).From(repo.table)

	query, args, err := repo.where(builder, filter).ToSql()
	if err != nil {
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to build query (%s): %w", repo.entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int

	if err = repo.db.Read.GetContext(ctx, &count, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count data (%s): %w", repo.entity, err)
	}

	return count, nil
}

// UpdateAffected applies mod to the rows matching filter and reports how many changed.
// Put the expected current state into filter to get a compare-and-set update.
func (repo *Repository[T]) UpdateAffected(ctx context.Context, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, repo.scopeName("UpdateAffected"))
	defer scope.End()

	predicate := filter.Sqlizer()
	if predicate == nil {
		return 0, errRequiredFilter
	}

	query, args, err := psql.Update(repo.table).SetMap(mod).Where(predicate).ToSql()
	if err != nil {
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to build update (%s): %w", repo.entity, err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := repo.db.Write.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to update data (%s): %w", repo.entity, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to read affected rows (%s): %w", repo.entity, err)
	}

	return affected, nil
}

func (repo *Repository[T]) selectBuilder(columns ...string) sq.SelectBuilder {
	selected := make([]string, 0, len(repo.fields))

	for _, name := range repo.Columns() {
		if len(columns) > 0 && !slices.Contains(columns, name) {
			continue
		}

		selected = append(selected, repo.table+"."+name)
	}

	return psql.Select(selected...).From(repo.table)
}

func (repo *Repository[T]) where(builder sq.SelectBuilder, filter dto.FilterGroup) sq.SelectBuilder {
	if predicate := filter.Sqlizer(); predicate != nil {
		return builder.Where(predicate)
	}

	return builder
}

func getFields(reflectType reflect.Type, parent []int) []field {
	var fields []field

	for i := range reflectType.NumField() {
		structField := reflectType.Field(i)
		index := append(slices.Clone(parent), i)

		if structField.Anonymous && structField.Type.Kind() == reflect.Struct {
			fields = append(fields, getFields(structField.Type, index)...)

			continue
		}

		if name := structField.Tag.Get("db"); name != constant.Empty && name != "-" {
			fields = append(fields, field{name: name, index: index})
		}
	}

	return fields
}
