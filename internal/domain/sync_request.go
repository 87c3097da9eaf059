package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const InvalidEventIDMessage = "The ID must be a valid UUID."

var validate = validator.New(validator.WithRequiredStructEnabled())

// SyncRequest is the operator's request to pull an Airmeet event.
// EventID is passed to the job untouched once it validates.
type SyncRequest struct {
	EventID string `form:"eventId" json:"eventId" validate:"uuid_rfc4122"`
}

func (r SyncRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Field: "eventId", Message: InvalidEventIDMessage}
	}
	return fmt.Errorf("failed to validate sync request: %w", err)
}

// ValidationError is a user-facing problem with a single form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fields returns the error keyed by form field, the shape templates render.
func (e *ValidationError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}
