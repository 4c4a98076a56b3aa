package atelier

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/imaging"
)

func TestStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"nil", nil, http.StatusOK, ""},
		{"unauthenticated", ErrNotAuthenticated, http.StatusUnauthorized, "Not authenticated. Please log in again."},
		{"wrapped code", fmt.Errorf("unlock: %w", ErrInvalidAccessCode), http.StatusForbidden, "Invalid access code. Please try again."},
		{"limited", ErrTooManyAttempts, http.StatusTooManyRequests, "Too many attempts. Try again later."},
		{"not found", ErrNotFound, http.StatusNotFound, "Not found."},
		{"validation", invalidField("title", "is required"), http.StatusUnprocessableEntity, "validation failed: title: is required"},
		{"decode", &imaging.DecodeError{Err: errors.New("bad")}, http.StatusBadRequest, "The file could not be read as an image."},
		{"upload", &assets.UploadError{Bucket: "images", Path: "a.jpg", Reason: "timeout"}, http.StatusBadGateway, "Upload failed: timeout"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
			assert.Equal(t, tt.msg, UserMessage(tt.err))
		})
	}
}

func TestValidationErrorFieldsAreSorted(t *testing.T) {
	ve := &ValidationError{Fields: map[string]string{"title": "is required", "category": "is required"}}
	assert.Equal(t, "validation failed: category: is required; title: is required", ve.Error())
}

func TestValidatorUsesJSONNames(t *testing.T) {
	err := fromValidator(newValidator().Struct(BlogPostForm{Category: "Cooking"}))
	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Equal(t, "is required", ve.Fields["title"])
		assert.Equal(t, "is required", ve.Fields["excerpt"])
		assert.Contains(t, ve.Fields, "category")
	}
}
