package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ratehub/ratehub-backend/internal/errors"
)

const maxFilterLength = 100

// parseIDParam reads a positive integer path parameter. Writes the 400
// response itself and reports ok=false on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name+" parameter.")
		return 0, false
	}
	return uint(id), true
}

// parseIntQuery returns the query value as int, or the fallback when absent.
// Non-numeric input reports ok=false without writing a response.
func parseIntQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parsePagination reads page and limit, rejecting non-numeric or
// out-of-range values with a 400.
func parsePagination(c *gin.Context) (page, limit int, ok bool) {
	page, okPage := parseIntQuery(c, "page", 1)
	limit, okLimit := parseIntQuery(c, "limit", 0)
	if !okPage || !okLimit || page < 0 || limit < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "page and limit must be positive integers.")
		return 0, 0, false
	}
	return page, limit, true
}

// clampPage applies the same defaults the services use, so the echoed
// pagination block matches the rows actually returned.
func clampPage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// validateFilterTerm checks a substring filter's length cap
func validateFilterTerm(c *gin.Context, name, value string) bool {
	if len(value) > maxFilterLength {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, name+" filter must be at most 100 characters.")
		return false
	}
	return true
}

// parseMinRating reads the minRating filter. Zero means absent; otherwise
// the value must be a float in [1,5].
func parseMinRating(c *gin.Context) (float64, bool) {
	raw := c.Query("minRating")
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 1 || value > 5 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "minRating must be a number between 1 and 5.")
		return 0, false
	}
	return value, true
}

// validateSortOrder accepts only ASC/DESC in either case, or empty
func validateSortOrder(c *gin.Context, value string) bool {
	switch value {
	case "", "asc", "desc", "ASC", "DESC":
		return true
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "sortOrder must be ASC or DESC.")
	return false
}

// paginationPayload is the envelope every list endpoint returns
func paginationPayload(page, limit int, total int64) gin.H {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return gin.H{
		"currentPage": page,
		"totalPages":  totalPages,
		"totalItems":  total,
		"limit":       limit,
		"hasNextPage": page < totalPages,
		"hasPrevPage": page > 1,
	}
}
