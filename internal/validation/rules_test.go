package validation

import (
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

func TestEmailValidation(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		shouldErr bool
	}{
		{
			name:      "valid email",
			email:     "user@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with subdomain",
			email:     "user@mail.example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with plus",
			email:     "user+tag@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with dots",
			email:     "first.last@example.com",
			shouldErr: false,
		},
		{
			name:      "invalid - no @",
			email:     "userexample.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no domain",
			email:     "user@",
			shouldErr: true,
		},
		{
			name:      "invalid - no local part",
			email:     "@example.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no TLD",
			email:     "user@example",
			shouldErr: true,
		},
		{
			name:      "invalid - spaces",
			email:     "user @example.com",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "no whitespace",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " validstring",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "validstring ",
			shouldErr: true,
		},
		{
			name:      "both leading and trailing",
			input:     " validstring ",
			shouldErr: true,
		},
		{
			name:      "internal spaces allowed",
			input:     "valid string",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUUID(t *testing.T) {
	assert.NoError(t, UUID.Validate(uuid.Must(uuid.NewV7()).String()))
	assert.NoError(t, UUID.Validate(""))
	assert.Error(t, UUID.Validate("not-a-uuid"))
}

type incidentInput struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
}

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("plain error is wrapped as invalid input", func(t *testing.T) {
		result := WrapValidationError(assert.AnError)
		assert.Error(t, result)
		assert.True(t, apperrors.Is(result, apperrors.ErrInvalidInput))
		assert.Contains(t, result.Error(), "invalid input")
	})

	t.Run("field errors become a field list", func(t *testing.T) {
		input := incidentInput{Title: "ab", Severity: "URGENT"}
		err := validation.ValidateStruct(&input,
			validation.Field(&input.Title, validation.Required, validation.Length(3, 200)),
			validation.Field(&input.Severity, validation.In("LOW", "MEDIUM", "HIGH", "CRITICAL")),
		)

		result := WrapValidationError(err)

		var validationErr *apperrors.ValidationError
		require.True(t, apperrors.As(result, &validationErr))
		assert.True(t, apperrors.Is(result, apperrors.ErrInvalidInput))
		assert.Contains(t, validationErr.Fields, "title")
		assert.Contains(t, validationErr.Fields, "severity")
	})
}

func TestFieldError(t *testing.T) {
	err := FieldError("role", "must be one of ADMIN, RESPONDER, VIEWER")

	var validationErr *apperrors.ValidationError
	require.True(t, apperrors.As(err, &validationErr))
	assert.Equal(t, "must be one of ADMIN, RESPONDER, VIEWER", validationErr.Fields["role"])
}
