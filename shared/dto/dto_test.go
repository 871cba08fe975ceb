package dto_test

import (
	"net/http/httptest"
	"rms/shared/constant"
	"rms/shared/dto"
	"rms/shared/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: createdAt.Add(time.Hour),
		CreatedBy:  "staff-1",
	})

	parsed, err := time.Parse(constant.DateFormat, metadata.CreatedAt)
	require.NoError(t, err)

	assert.True(t, parsed.Equal(createdAt))
	assert.Equal(t, "staff-1", metadata.CreatedBy)
	assert.Empty(t, metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		paginate bool
		want     dto.QueryParams
	}{
		{
			name: "all parameters",
			url:  "/?page=2&limit=20&sort_by=starts_at&sort_dir=desc",
			want: dto.QueryParams{Page: 2, Limit: 20, SortBy: "starts_at", SortDir: dto.SortDirDesc},
		},
		{
			name:     "defaults when paginating",
			url:      "/",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "no defaults without pagination",
			url:  "/",
			want: dto.QueryParams{},
		},
		{
			name:     "malformed numbers fall back",
			url:      "/?page=abc&limit=-5",
			paginate: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "limit is capped",
			url:  "/?limit=5000",
			want: dto.QueryParams{Limit: constant.DefaultValueMaxLimit},
		},
		{
			name: "unknown sort direction ignored",
			url:  "/?sort_dir=sideways",
			want: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var params dto.QueryParams
			params.FromRequest(httptest.NewRequest("GET", tt.url, nil), tt.paginate)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, dto.QueryParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 3}.Offset())
}

func TestFilter_Sqlizer(t *testing.T) {
	tests := []struct {
		name   string
		filter dto.Filter
		query  string
		args   []any
	}{
		{
			name:   "equal",
			filter: dto.Filter{Field: "status", Value: "active", Operator: dto.FilterOperatorEq, Table: "waitlist_entries"},
			query:  "waitlist_entries.status = ?",
			args:   []any{"active"},
		},
		{
			name:   "in",
			filter: dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn},
			query:  "status IN (?,?)",
			args:   []any{"pending", "confirmed"},
		},
		{
			name:   "like",
			filter: dto.Filter{Field: "customer_name", Value: "ana", Operator: dto.FilterOperatorLike},
			query:  "customer_name ILIKE ?",
			args:   []any{"%ana%"},
		},
		{
			name:   "range",
			filter: dto.Filter{Field: "party_size", Value: 4, Operator: dto.FilterOperatorGreaterEq},
			query:  "party_size >= ?",
			args:   []any{4},
		},
		{
			name:   "null",
			filter: dto.Filter{Field: "notified_at", Operator: dto.FilterIsNull},
			query:  "notified_at IS NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.filter.Sqlizer().ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.query, query)
			assert.ElementsMatch(t, tt.args, args)
		})
	}
}

func TestFilterGroup_Sqlizer(t *testing.T) {
	assert.Nil(t, dto.FilterGroup{}.Sqlizer())
	assert.Nil(t, dto.FilterGroup{}.Append(dto.Filter{Field: "id", Operator: "between"}).Sqlizer())

	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}.Append(
		dto.Filter{Field: "restaurant_id", Value: "r1", Operator: dto.FilterOperatorEq},
		dto.FilterGroup{Operator: dto.FilterGroupOperatorOr}.Append(
			dto.Filter{Field: "status", Value: "active", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "status", Value: "notified", Operator: dto.FilterOperatorEq},
		),
	)

	query, args, err := group.Sqlizer().ToSql()
	require.NoError(t, err)

	assert.Equal(t, "(restaurant_id = ? AND (status = ? OR status = ?))", query)
	assert.Equal(t, []any{"r1", "active", "notified"}, args)
}
