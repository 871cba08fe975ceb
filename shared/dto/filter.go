package dto

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLess      = "less"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreater   = "greater"
	FilterOperatorGreaterEq = "greater_eq"
	FilterIsNotNull         = "is_not_null"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

// Filter is a single column predicate. Value must be a slice for FilterOperatorIn.
type Filter struct {
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like in not_eq less less_eq greater greater_eq is_null is_not_null"`
	Table    string
}

func (f Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

// Sqlizer turns the filter into a squirrel predicate. Unknown operators yield nil.
func (f Filter) Sqlizer() sq.Sqlizer {
	column := f.column()

	switch f.Operator {
	case FilterOperatorEq, FilterOperatorIn:
		return sq.Eq{column: f.Value}
	case FilterOperatorNotEq:
		return sq.NotEq{column: f.Value}
	case FilterOperatorLike:
		return sq.ILike{column: fmt.Sprintf("%%%v%%", f.Value)}
	case FilterOperatorLess:
		return sq.Lt{column: f.Value}
	case FilterOperatorLessEq:
		return sq.LtOrEq{column: f.Value}
	case FilterOperatorGreater:
		return sq.Gt{column: f.Value}
	case FilterOperatorGreaterEq:
		return sq.GtOrEq{column: f.Value}
	case FilterIsNull:
		return sq.Eq{column: nil}
	case FilterIsNotNull:
		return sq.NotEq{column: nil}
	default:
		return nil
	}
}

// FilterGroup combines filters and nested groups. An empty operator means AND.
type FilterGroup struct {
	Filters  []any
	Operator string
}

// Sqlizer returns nil when the group holds no usable predicate.
func (g FilterGroup) Sqlizer() sq.Sqlizer {
	parts := make([]sq.Sqlizer, 0, len(g.Filters))

	for _, filter := range g.Filters {
		var part sq.Sqlizer

		switch fill := filter.(type) {
		case Filter:
			part = fill.Sqlizer()
		case FilterGroup:
			part = fill.Sqlizer()
		}

		if part != nil {
			parts = append(parts, part)
		}
	}

	switch {
	case len(parts) == 0:
		return nil
	case len(parts) == 1:
		return parts[0]
	case g.Operator == FilterGroupOperatorOr:
		return sq.Or(parts)
	default:
		return sq.And(parts)
	}
}

// Append adds a filter and returns the group for chaining.
func (g FilterGroup) Append(filters ...any) FilterGroup {
	g.Filters = append(append([]any{}, g.Filters...), filters...)

	return g
}
