package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecipeNotFound is returned when a recipe id does not resolve.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrIngredientNotFound is returned when an ingredient id does not resolve.
	ErrIngredientNotFound = errors.New("ingredient not found")
	// ErrTagNotFound is returned when a tag id does not resolve.
	ErrTagNotFound = errors.New("tag not found")
	// ErrAlreadyInSet is returned when a recipe is already in the favorites or cart set.
	ErrAlreadyInSet = errors.New("recipe is already in the list")
	// ErrNotInSet is returned when removing a recipe that is not in the set.
	ErrNotInSet = errors.New("recipe is not in the list")
	// ErrSelfSubscription is returned when a user tries to follow themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	// ErrDuplicateSubscription is returned when the subscription already exists.
	ErrDuplicateSubscription = errors.New("already subscribed to this user")
	// ErrSubscriptionNotFound is returned when unsubscribing from a user that is not followed.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrForbidden is returned when the caller may not modify the target.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrUnauthorized is returned when the action needs an authenticated user.
	ErrUnauthorized = errors.New("authentication credentials were not provided")
	// ErrInvalidShortLink is returned when a short link code cannot be decoded.
	ErrInvalidShortLink = errors.New("invalid short link")
)

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns e when it holds messages, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FieldError is a shortcut for a single-field ValidationError.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "validation failed",
			Code:       "VALIDATION_ERROR",
			Fields:     verr.Fields,
		}
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrRecipeNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRecipeNotFound.Error(), "RECIPE_NOT_FOUND")
	case errors.Is(err, ErrIngredientNotFound):
		return NewHTTPError(http.StatusNotFound, ErrIngredientNotFound.Error(), "INGREDIENT_NOT_FOUND")
	case errors.Is(err, ErrTagNotFound):
		return NewHTTPError(http.StatusNotFound, ErrTagNotFound.Error(), "TAG_NOT_FOUND")
	case errors.Is(err, ErrNotInSet):
		return NewHTTPError(http.StatusNotFound, ErrNotInSet.Error(), "NOT_IN_LIST")
	case errors.Is(err, ErrSubscriptionNotFound):
		return NewHTTPError(http.StatusNotFound, ErrSubscriptionNotFound.Error(), "SUBSCRIPTION_NOT_FOUND")
	case errors.Is(err, ErrInvalidShortLink):
		return NewHTTPError(http.StatusNotFound, ErrInvalidShortLink.Error(), "INVALID_SHORT_LINK")
	case errors.Is(err, ErrAlreadyInSet):
		return NewHTTPError(http.StatusBadRequest, ErrAlreadyInSet.Error(), "ALREADY_IN_LIST")
	case errors.Is(err, ErrSelfSubscription):
		return NewHTTPError(http.StatusBadRequest, ErrSelfSubscription.Error(), "SELF_SUBSCRIPTION")
	case errors.Is(err, ErrDuplicateSubscription):
		return NewHTTPError(http.StatusBadRequest, ErrDuplicateSubscription.Error(), "DUPLICATE_SUBSCRIPTION")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
