// Package store is the entity store: durable CRUD for items, pallets and
// audit logs with field-level invariants and uniqueness enforced at write
// time. Constraint violations surface as apperrors types; the database's
// unique indexes are the race-safe backstop behind the application checks.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"smartshelf/internal/apperrors"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 250
)

// ListParams is the common paging/sorting envelope for list queries.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

func (p ListParams) normalized() ListParams {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// orderClause resolves the requested sort field against a whitelist of
// sortable columns. Unknown fields fall back to created_at.
func orderClause(sortBy, sortOrder string, columns map[string]string) string {
	column, ok := columns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "ASC") {
		direction = "ASC"
	}
	return column + " " + direction
}

// searchPattern builds the case-insensitive LIKE pattern for substring search.
func searchPattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func translateError(err error, entity, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflict(entity + " already exists")
	default:
		return err
	}
}
