package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"token": "abc"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("invalid request body")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	tests := []struct {
		name    string
		in      payload
		wantMsg string
	}{
		{
			name:    "missing email",
			in:      payload{Password: "password123"},
			wantMsg: "field Email is a required field",
		},
		{
			name:    "bad email",
			in:      payload{Email: "not-an-email", Password: "password123"},
			wantMsg: "field Email must be a valid email",
		},
		{
			name:    "short password",
			in:      payload{Email: "user@example.com", Password: "abc"},
			wantMsg: "field Password is too short",
		},
	}

	v := validator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.wantMsg)
		})
	}
}
