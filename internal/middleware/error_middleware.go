package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsegaye25/load-tracking/internal/app/models/dto"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
	"github.com/tsegaye25/load-tracking/internal/pkg/auth"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
)

// MapError translates a service error into an HTTP status and a wire-level
// error detail. Shared by the central handler and the bulk endpoint, which
// reports one detail per course instead of failing the request.
func MapError(err error) (int, *dto.ErrorDetail) {
	var detail *dto.ErrorDetail
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOf(err, "Validation failed"))

	case errors.Is(err, apperrors.ErrPermissionDenied):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOf(err, "Permission denied"))

	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrStaleWrite):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeConflict, messageOf(err, "Conflicting update"))

	case errors.Is(err, apperrors.ErrInvalidTransition):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, messageOf(err, "Invalid status transition"))

	case errors.Is(err, apperrors.ErrTransitionFailed):
		status = http.StatusServiceUnavailable
		detail = dto.NewErrorDetail(dto.ErrorCodeTransitionFailed,
			"The transition could not be committed, please retry")

	case errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found"))

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		status = http.StatusConflict
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already registered")

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")

	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, auth.ErrExpiredToken):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")

	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidFormat):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	case errors.Is(err, apperrors.ErrTokenNotFound):
		status = http.StatusUnauthorized
		detail = dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")

	case errors.Is(err, apperrors.ErrAccountDisabled):
		status = http.StatusForbidden
		detail = dto.NewErrorDetail(dto.ErrorCodeForbidden, "Account is disabled")

	case errors.Is(err, apperrors.ErrRepositoryTimeout):
		status = http.StatusGatewayTimeout
		detail = dto.NewErrorDetail(dto.ErrorCodeRepositoryTimeout, "The data store did not answer in time")

	case errors.Is(err, apperrors.ErrRepository):
		status = http.StatusInternalServerError
		detail = dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database error")

	default:
		detail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	// Structured context rides along when the error carries it.
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if ce.Field != "" {
			detail.WithField(ce.Field)
		}
		if ce.Code != "" {
			detail.WithReason(ce.Code)
		}
		if ce.CourseID != 0 {
			detail.WithCourse(ce.CourseID)
		}
		if ce.Details != nil {
			detail.WithDetails(ce.Details)
		}
	}

	return status, detail
}

// HandleAPIError writes the standard error envelope for a service error
func HandleAPIError(c *gin.Context, err error) {
	status, detail := MapError(err)

	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request failed")
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleValidationError writes a 400 for a request binding failure
func HandleValidationError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

func messageOf(err error, fallback string) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
