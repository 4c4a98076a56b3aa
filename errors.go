package atelier

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
	"github.com/eringen/atelier/records"
)

var (
	// ErrNotAuthenticated is returned by every admin write when no identity
	// is attached to the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidAccessCode is returned when a gallery code does not match.
	ErrInvalidAccessCode = errors.New("invalid code")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTooManyAttempts is returned when a client exceeds the attempt limit.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// ValidationError reports form fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedKeys(e.Fields) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// fromValidator converts validator errors into a ValidationError keyed by
// the form's json field names.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = describeTag(fe)
	}
	return ve
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "url", "http_url":
		return "must be a URL"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// StatusCode maps an error from the workflows to an HTTP status.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidAccessCode):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case imaging.IsDecodeError(err):
		return http.StatusBadRequest
	case assets.IsUploadError(err):
		return http.StatusBadGateway
	}
	switch records.KindOf(err) {
	case records.KindNotFound:
		return http.StatusNotFound
	case records.KindValidation:
		return http.StatusUnprocessableEntity
	case records.KindPermission:
		return http.StatusForbidden
	case records.KindNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// UserMessage turns an error into a short message fit for the admin UI.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		ue *assets.UploadError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "Not authenticated. Please log in again."
	case errors.Is(err, ErrInvalidAccessCode):
		return "Invalid access code. Please try again."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many attempts. Try again later."
	case errors.Is(err, ErrNotFound), records.IsNotFound(err):
		return "Not found."
	case errors.As(err, &ve):
		return ve.Error()
	case imaging.IsDecodeError(err):
		return "The file could not be read as an image."
	case errors.As(err, &ue):
		return "Upload failed: " + ue.Reason
	}
	switch records.KindOf(err) {
	case records.KindValidation:
		return "The record conflicts with an existing one."
	case records.KindPermission:
		return "You do not have permission to change this record."
	case records.KindNetwork:
		return "The database is unavailable. Please try again."
	}
	return "Something went wrong. Please try again."
}
