package query

import (
	"context"
	"fmt"
	"math"
	"strings"

	"rentbroker/internal/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 10
	DefaultSortBy   = "id"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// PageParams are the raw listing controls as they arrive from the caller.
type PageParams struct {
	Page          *int
	PageSize      *int
	SortBy        string
	SortDirection string
}

// PageRequest is a normalized page: Page >= 0, Size >= 1, SortBy a whitelisted column.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction Direction
}

func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Sortable maps accepted sort names to columns.
type Sortable map[string]string

// SortableColumns accepts every column under its snake_case and camelCase name.
func SortableColumns(columns ...string) Sortable {
	s := make(Sortable, len(columns)*2)
	for _, c := range columns {
		s[c] = c
		s[camel(c)] = c
	}
	return s
}

func camel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// Request normalizes p. Unknown sort names and directions are InvalidArgument.
func (p PageParams) Request(sortable Sortable) (PageRequest, error) {
	req := PageRequest{Page: 0, Size: DefaultPageSize, SortBy: DefaultSortBy, Direction: Asc}

	if p.Page != nil && *p.Page > 0 {
		req.Page = *p.Page
	}
	if p.PageSize != nil && *p.PageSize >= 1 {
		req.Size = *p.PageSize
	}
	if req.Page > math.MaxInt/req.Size {
		return PageRequest{}, apperrors.InvalidArgument("page %d is out of range", req.Page)
	}

	if sortBy := strings.TrimSpace(p.SortBy); sortBy != "" {
		column, ok := sortable[sortBy]
		if !ok {
			return PageRequest{}, apperrors.InvalidArgument("cannot sort by %q", sortBy)
		}
		req.SortBy = column
	}

	switch strings.ToUpper(strings.TrimSpace(p.SortDirection)) {
	case "", string(Asc):
	case string(Desc):
		req.Direction = Desc
	default:
		return PageRequest{}, apperrors.InvalidArgument("sort direction must be ASC or DESC")
	}

	return req, nil
}

// Spec is a composed predicate plus the page to fetch.
type Spec struct {
	Where Predicate
	Page  PageRequest
}

func (s Spec) where() Predicate {
	if s.Where == nil {
		return Noop
	}
	return s.Where
}

func (s Spec) order(db *gorm.DB) *gorm.DB {
	page := s.Page
	if page.SortBy == "" {
		page.SortBy = DefaultSortBy
	}
	db = db.Order(clause.OrderByColumn{Column: col(page.SortBy), Desc: page.Direction == Desc})
	if page.SortBy != DefaultSortBy {
		db = db.Order(clause.OrderByColumn{Column: col(DefaultSortBy)})
	}
	return db
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// Map converts the content of a page, keeping its counters.
func Map[T, R any](p *Page[T], fn func(*T) R) *Page[R] {
	out := &Page[R]{
		Content:       make([]R, len(p.Content)),
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
	for i := range p.Content {
		out.Content[i] = fn(&p.Content[i])
	}
	return out
}

// Find counts the rows matching spec and loads the requested page of them.
// Extra scopes (e.g. Preload) only apply to the page query.
func Find[T any](ctx context.Context, db *gorm.DB, spec Spec, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	size := spec.Page.Size
	if size < 1 {
		size = DefaultPageSize
	}

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(spec.where()).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	// pages past the end are empty; the offset is never computed for them
	items := make([]T, 0)
	if total > 0 && int64(spec.Page.Page) <= (total-1)/int64(size) {
		q := db.WithContext(ctx).Model(new(T)).Scopes(spec.where()).Scopes(scopes...)
		err := spec.order(q).Offset(spec.Page.Page * size).Limit(size).Find(&items).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load page: %w", err)
		}
	}

	return &Page[T]{
		Content:       items,
		Page:          spec.Page.Page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
	}, nil
}
