package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/incidenthub/internal/errors"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
		assert.True(t, got.Valid())
	}

	for _, invalid := range []string{"", "admin", "SUPERUSER", " VIEWER"} {
		_, err := ParseRole(invalid)
		assert.ErrorIs(t, err, ErrInvalidRole, invalid)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, invalid)
		assert.False(t, Role(invalid).Valid())
	}
}

func TestUser_Summary(t *testing.T) {
	u := &User{Name: "Ada", Email: "ada@example.com", Role: RoleResponder, Password: "hash"}

	s := u.Summary()

	assert.Equal(t, u.ID, s.ID)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.Equal(t, RoleResponder, s.Role)
}
