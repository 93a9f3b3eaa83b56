package persistence

import (
	"strings"

	"github.com/merchstock/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies pagination and ordering from the filter to the query.
// OrderBy is matched against an allow list so callers cannot inject arbitrary
// SQL through the sort column.
func applyFilter(query *gorm.DB, filter shared.Filter, sortable ...string) *gorm.DB {
	orderBy := "created_at"
	for _, column := range sortable {
		if filter.OrderBy == column {
			orderBy = column
			break
		}
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}
	query = query.Order(orderBy + " " + orderDir)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}
