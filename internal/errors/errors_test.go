package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"recipe not found", ErrRecipeNotFound, http.StatusNotFound, "RECIPE_NOT_FOUND"},
		{"wrapped user not found", fmt.Errorf("load: %w", ErrUserNotFound), http.StatusNotFound, "USER_NOT_FOUND"},
		{"not in set", ErrNotInSet, http.StatusNotFound, "NOT_IN_LIST"},
		{"already in set", ErrAlreadyInSet, http.StatusBadRequest, "ALREADY_IN_LIST"},
		{"self subscription", ErrSelfSubscription, http.StatusBadRequest, "SELF_SUBSCRIPTION"},
		{"duplicate subscription", ErrDuplicateSubscription, http.StatusBadRequest, "DUPLICATE_SUBSCRIPTION"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"validation", FieldError("name", "required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	assert.NoError(t, verr.OrNil())

	verr.Add("tags", "at least one tag is required")
	verr.Add("ingredients", "at least one ingredient is required")
	verr.Add("ingredients", "amount must be at least 1")

	err := verr.OrNil()
	assert.Error(t, err)
	assert.True(t, verr.Has("tags"))
	assert.False(t, verr.Has("name"))
	assert.Equal(t,
		"validation failed: ingredients: at least one ingredient is required; amount must be at least 1, tags: at least one tag is required",
		err.Error())

	resp := MapErrorToHTTP(fmt.Errorf("create: %w", err)).ToErrorResponse()
	assert.Len(t, resp.Fields["ingredients"], 2)
}
