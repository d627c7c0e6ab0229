package util

import (
	"strconv"
)

const MaxPageSize = 100

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Calculate normalises page and size and returns the row offset and limit.
// A size outside 1..MaxPageSize falls back to def.
func Calculate(page, size, def int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = def
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: TotalPages(total, limit)}
}
