package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	apperrors "github.com/thriftmap/thriftmap-backend/internal/errors"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
)

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid path id", map[string]interface{}{
			name:    raw,
			"error": errString(err),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request", map[string]interface{}{
		"error": err.Error(),
	})

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apperrors.RespondWithValidationError(c, bindingFields(verrs))
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Malformed request")
}

// respondServiceError maps service and persistence errors to a status and a
// client-safe body. Unexpected errors are logged with their cause.
func respondServiceError(c *gin.Context, err error, resource string) {
	log := middleware.GetLoggerFromContext(c)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Warn("Validation failed", map[string]interface{}{
			"fields": verr.Fields,
		})
		apperrors.RespondWithValidationError(c, verr.Fields)
	case errors.Is(err, service.ErrStoreNotFound):
		apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidRating):
		apperrors.BadRequest(c, apperrors.StoreInvalidRating, "Rating must be an integer between 1 and 5")
	default:
		info := apperrors.ParseError(err, resource)
		if info.Status >= 500 {
			log.Error("Request failed", err, map[string]interface{}{
				"resource": resource,
			})
		}
		apperrors.RespondWithError(c, info.Status, info.Code, info.Message)
	}
}
