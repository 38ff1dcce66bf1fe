package models

import "fmt"

// Role is the closed set of actor roles. Every role check in the system
// goes through this type; handlers never compare raw strings.
type Role string

const (
	RoleAuthority Role = "authority"
	RoleHospital  Role = "hospital"
	RolePatient   Role = "patient"
)

// ParseRole converts a string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAuthority, RoleHospital, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}
