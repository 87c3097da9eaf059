package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		valid   bool
	}{
		{name: "lowercase uuid", eventID: "123e4567-e89b-12d3-a456-426614174000", valid: true},
		{name: "random v4", eventID: "f47ac10b-58cc-4372-a567-0e02b2c3d479", valid: true},
		{name: "uppercase", eventID: "F47AC10B-58CC-4372-A567-0E02B2C3D479", valid: true},
		{name: "not a uuid", eventID: "not-a-uuid"},
		{name: "empty", eventID: ""},
		{name: "missing dashes", eventID: "123e4567e89b12d3a456426614174000"},
		{name: "braced", eventID: "{123e4567-e89b-12d3-a456-426614174000}"},
		{name: "urn prefix", eventID: "urn:uuid:123e4567-e89b-12d3-a456-426614174000"},
		{name: "trailing space", eventID: "123e4567-e89b-12d3-a456-426614174000 "},
		{name: "non hex", eventID: "123e4567-e89b-12d3-a456-42661417400g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SyncRequest{EventID: tt.eventID}.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, "eventId", verr.Field)
			assert.Equal(t, "The ID must be a valid UUID.", verr.Message)
			assert.Equal(t, map[string]string{"eventId": InvalidEventIDMessage}, verr.Fields())
		})
	}
}
