package model

import (
	"rms/internal/domains/availability/engine"
	"rms/shared/model"
)

const (
	TableName  = "dining_tables"
	EntityName = "table"

	FieldID           = "id"
	FieldRestaurantID = "restaurant_id"
	FieldNumber       = "number"
	FieldCapacity     = "capacity"
	FieldLocation     = "location"
	FieldActive       = "is_active"
)

type Table struct {
	ID           string `db:"id"`
	RestaurantID string `db:"restaurant_id"`
	Number       string `db:"number"`
	Capacity     int    `db:"capacity"`
	Location     string `db:"location"`
	Active       bool   `db:"is_active"`
	model.Metadata
}

func (t Table) ToEngine() engine.Table {
	return engine.Table{
		ID:       t.ID,
		Capacity: t.Capacity,
		Location: t.Location,
		Active:   t.Active,
	}
}

func ToEngine(rows []Table) []engine.Table {
	tables := make([]engine.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, row.ToEngine())
	}

	return tables
}
