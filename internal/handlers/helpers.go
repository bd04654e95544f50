package handlers

import (
	"math"
	"strconv"

	"github.com/anonto42/spinforge/backend/internal/apperror"
	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func getUserIDFromContext(c echo.Context) uint {
	return middleware.UserIDFromContext(c)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, param, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("Invalid " + resource + " ID")
	}
	return uint(id), nil
}

// pagination reads ?page= and ?limit=, falling back to defaults on bad input.
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return page, limit
}

func paginationMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

// optionalBool parses "true"/"false"; anything else means "no filter".
func optionalBool(raw string) *bool {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// optionalUint parses a numeric filter; anything else means "no filter".
func optionalUint(raw string) *uint {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}
