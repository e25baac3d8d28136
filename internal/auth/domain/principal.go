// Package domain defines session authentication domain models: principals,
// credential kinds and persisted refresh credentials.
package domain

import (
	"github.com/google/uuid"

	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// Principal is the verified identity carried by an access credential.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   userDomain.Role
}

// HasRole reports whether the principal holds one of roles.
func (p *Principal) HasRole(roles ...userDomain.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
