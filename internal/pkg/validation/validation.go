package validation

import (
	"regexp"
	"strings"

	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// courseCodePattern matches institutional course codes such as SWEG3104.
var courseCodePattern = regexp.MustCompile(`^[A-Za-z]{2,6}[0-9]{3,4}$`)

// minReasonLength is the shortest acceptable rejection reason.
const minReasonLength = 3

// ValidateCourseCode checks the course code format
func ValidateCourseCode(code string) error {
	if !courseCodePattern.MatchString(code) {
		return apperrors.NewValidationError("code", "course code must be 2-6 letters followed by 3-4 digits")
	}
	return nil
}

// ValidateReason checks that a free-text reason is meaningful
func ValidateReason(reason string) error {
	if len(strings.TrimSpace(reason)) < minReasonLength {
		return apperrors.NewValidationError("reason", "reason is too short")
	}
	return nil
}

// ValidateHours rejects negative hour values
func ValidateHours(field string, value float64) error {
	if value < 0 {
		return apperrors.NewValidationError(field, "hours cannot be negative")
	}
	return nil
}
