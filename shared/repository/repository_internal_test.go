package repository

import (
	"testing"
	"time"

	"stayvista/infras/otel/mocks"
	"stayvista/shared/dto"

	"github.com/stretchr/testify/assert"
)

type stamp struct {
	CreatedAt time.Time `db:"created_at"`
}

type listing struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	HostName  string `db:"host_name" table:"users" column:"name"`
	internal  string
	Ephemeral string
	stamp
}

func newListingRepo() Repository[listing] {
	return NewRepository[listing]("listing", "rooms", "id", nil, mocks.NewOtel())
}

func TestGetColumns(t *testing.T) {
	repo := newListingRepo()

	assert.Equal(t, []string{"id", "title", "created_at"}, repo.writes)
	assert.Equal(t, "rooms.id, rooms.title, users.name AS host_name, rooms.created_at", repo.selectList())
	assert.Equal(t, "rooms.title", repo.selectList("title"))
}

func TestInsertSQL(t *testing.T) {
	repo := newListingRepo()

	assert.Equal(t, "INSERT INTO rooms (id, title, created_at) VALUES (:id, :title, :created_at)", repo.insertSQL())
}

func TestOrderBy(t *testing.T) {
	repo := newListingRepo()

	tests := []struct {
		name   string
		params dto.QueryParams
		want   string
	}{
		{"own column", dto.QueryParams{SortBy: "created_at", SortDir: dto.SortDirDesc}, "ORDER BY rooms.created_at DESC"},
		{"joined column refused", dto.QueryParams{SortBy: "name", SortDir: dto.SortDirAsc}, ""},
		{"unknown column refused", dto.QueryParams{SortBy: "price; DROP TABLE rooms", SortDir: dto.SortDirAsc}, ""},
		{"missing direction", dto.QueryParams{SortBy: "title"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.orderBy(tt.params))
		})
	}
}

func TestWhere(t *testing.T) {
	repo := newListingRepo()

	where, args := repo.where(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = repo.where(dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Field: "id", Value: "r-1", Operator: dto.FilterOperatorEq, Table: "rooms"}},
	})
	assert.Equal(t, "WHERE (rooms.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "r-1"}, args)
}

func TestFiltersRequiredForDestructiveStatements(t *testing.T) {
	repo := newListingRepo()

	assert.ErrorIs(t, repo.delete(t.Context(), nil, dto.FilterGroup{}), errRequiredFilter)

	_, err := repo.update(t.Context(), nil, map[string]any{"title": "x"}, dto.FilterGroup{})
	assert.ErrorIs(t, err, errRequiredFilter)

	_, err = repo.exist(t.Context(), nil, dto.FilterGroup{})
	assert.ErrorIs(t, err, errRequiredFilter)
}
