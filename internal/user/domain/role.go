package domain

// Role is the authorization level carried by every access credential.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleResponder Role = "RESPONDER"
	RoleViewer    Role = "VIEWER"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleResponder, RoleViewer}

// ParseRole validates s against the known roles.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}
