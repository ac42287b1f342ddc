package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe classification of an error
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError classifies persistence errors by status and code without
// exposing driver text. resource names the entity for not-found messages.
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return internal()
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: notFoundMessage(resource)}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalTimeout,
			Message: "The request took too long. Please try again",
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint"):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "The record already exists"}
	case strings.Contains(msg, "foreign key constraint"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "A referenced record does not exist"}
	case strings.Contains(msg, "not-null constraint") || strings.Contains(msg, "not null constraint"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "A required field is missing"}
	case strings.Contains(msg, "check constraint"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidRange, Message: "A value is out of the allowed range"}
	}
	return internal()
}

func internal() ErrorInfo {
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

func notFoundMessage(resource string) string {
	if resource == "" {
		return "Resource not found"
	}
	return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
}
