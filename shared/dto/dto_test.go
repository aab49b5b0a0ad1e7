package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"stayvista/shared/constant"
	"stayvista/shared/dto"
	"stayvista/shared/model"
	"stayvista/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	metadata := dto.Metadata{}
	metadata.FromModel(model.Stamp("host@example.com", createdAt))

	assert.Equal(t, timezone.Format(createdAt, constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, metadata.CreatedAt, metadata.ModifiedAt)
	assert.Equal(t, "host@example.com", metadata.CreatedBy)
	assert.Equal(t, "host@example.com", metadata.ModifiedBy)
}

func TestMetadata_FromModelZeroTimes(t *testing.T) {
	metadata := dto.Metadata{CreatedAt: "stale"}
	metadata.FromModel(model.Metadata{CreatedBy: "seed"})

	assert.Empty(t, metadata.CreatedAt)
	assert.Empty(t, metadata.ModifiedAt)
	assert.Equal(t, "seed", metadata.CreatedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=price&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "price", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults applied",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "defaults not applied",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "page=abc&limit=-5",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit capped",
			query:    "limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:           "unknown sort direction ignored",
			query:          "page=3&sort_by=created_at&sort_dir=sideways",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: 3, Limit: constant.DefaultValueLimit, SortBy: "created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/rooms?"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, dto.QueryParams{}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, dto.QueryParams{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, dto.QueryParams{Page: 4}.Offset())
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "eq with table",
			filter:    dto.Filter{Field: "category", Value: "Beach", Operator: dto.FilterOperatorEq, Table: "rooms"},
			wantWhere: "rooms.category = :category",
			wantArgs:  map[string]any{"category": "Beach"},
		},
		{
			name:      "in expands slice",
			filter:    dto.Filter{Field: "status", Value: []string{"pending", "paid"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "paid"},
		},
		{
			name:      "arg name overrides field",
			filter:    dto.Filter{ArgName: "check_out_after", Field: "check_out", Value: "2025-01-01", Operator: dto.FilterOperatorGreater},
			wantWhere: "check_out > :check_out_after",
			wantArgs:  map[string]any{"check_out_after": "2025-01-01"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "payment_intent_id", Operator: dto.FilterIsNull},
			wantWhere: "payment_intent_id IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "in with empty slice matches nothing",
			filter:    dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "like is case insensitive",
			filter:    dto.Filter{Field: "title", Value: "loft", Operator: dto.FilterOperatorLike, Table: "rooms"},
			wantWhere: "LOWER(rooms.title) LIKE LOWER(:title)",
			wantArgs:  map[string]any{"title": "%loft%"},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "title", Operator: "regex"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "guest_email", Value: "guest@example.com", Operator: dto.FilterOperatorEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{ArgName: "s1", Field: "status", Value: "paid", Operator: dto.FilterOperatorEq},
					dto.Filter{ArgName: "s2", Field: "status", Value: "confirmed", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(guest_email = :guest_email AND (status = :s1 OR status = :s2))", where)
	assert.Len(t, args, 3)

	skipping := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "title", Operator: "regex"},
			dto.Filter{Field: "deleted_at", Operator: dto.FilterIsNull},
		},
	}
	where, _ = skipping.GetWhereClause()

	assert.Equal(t, "(deleted_at IS NULL)", where)

	empty := dto.FilterGroup{}
	where, args = empty.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}
