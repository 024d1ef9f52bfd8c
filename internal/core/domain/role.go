package domain

import "fmt"

// Role is the closed set of roles a principal can hold.
type Role string

const (
	RoleFarmer   Role = "Farmer"
	RoleEmployee Role = "Employee"
)

// ParseRole converts a claim or stored value into a Role. Unknown values,
// including the empty string, are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFarmer, RoleEmployee:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
