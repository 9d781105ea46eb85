package repository

import "gorm.io/gorm"

const maxPageSize = 200

// applyPagination limits a listing query. pageSize <= 0 returns every row;
// larger sizes are capped at maxPageSize.
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	pageSize = min(pageSize, maxPageSize)
	page = max(page, 1)
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
