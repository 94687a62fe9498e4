package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates storage errors into a code and a non-leaking
// message. Raw driver messages never reach the client; the context string
// (e.g. "delete store") selects the wording.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Internal server error",
		}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// Unique constraint violation (postgres 23505, sqlite "UNIQUE constraint failed")
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// Check constraint violation (23514)
	if strings.Contains(errStr, "check constraint") {
		if strings.Contains(errStr, "score") {
			return ErrorInfo{
				Code:    RatingInvalidScore,
				Message: "Rating score must be between 1 and 5",
			}
		}
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "Invalid input value",
		}
	}

	// Connectivity problems surface as a retryable failure
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Storage is temporarily unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "User with this email already exists",
		}
	}

	if strings.Contains(errStr, "ratings") ||
		(strings.Contains(errStr, "user_id") && strings.Contains(errStr, "store_id")) {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "A rating for this store already exists. Please try again",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "The record already exists",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The record is referenced by other data and cannot be deleted",
		}
	}
	if strings.Contains(errStr, "store_id") {
		return ErrorInfo{
			Code:    StoreNotFound,
			Message: "Store not found",
		}
	}
	if strings.Contains(errStr, "user_id") || strings.Contains(errStr, "owner_id") {
		return ErrorInfo{
			Code:    UserNotFound,
			Message: "User not found",
		}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced record not found",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "store") {
		return "Store not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "rating") {
		return "Rating not found"
	}
	return "Requested record not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") {
		return "Internal server error while creating the record"
	}
	if strings.Contains(contextLower, "update") {
		return "Internal server error while updating the record"
	}
	if strings.Contains(contextLower, "delete") {
		return "Internal server error while deleting the record"
	}
	return "Internal server error. Please try again later"
}

// ParseAndRespond parses err and writes the standard error envelope
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
