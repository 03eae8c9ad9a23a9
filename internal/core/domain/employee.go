package domain

import (
	"fmt"
	"strings"
)

// Role is the authorization role carried by a session.
type Role string

const (
	RoleNone       Role = ""
	RoleClient     Role = "Client"
	RoleTechnician Role = "Technician"
	RoleMechanic   Role = "Mechanic"
)

// IsEmployee reports whether r is one of the employee roles.
func (r Role) IsEmployee() bool {
	return r == RoleTechnician || r == RoleMechanic
}

// ParseRole accepts an employee role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, known := range []Role{RoleTechnician, RoleMechanic} {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return RoleNone, InvalidInput(fmt.Sprintf("unknown employee role %q", s))
}

// Employee is a shop worker. The role never changes after creation.
type Employee struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

func (e Employee) String() string {
	return fmt.Sprintf("ID: %d | Name: %s | Role: %s", e.ID, e.Name, e.Role)
}
