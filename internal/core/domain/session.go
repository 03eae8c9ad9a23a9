package domain

import "fmt"

// Session is the engine's single live identity. The variants are Anonymous,
// ClientSession, TechnicianSession and MechanicSession; no other type can
// satisfy the interface.
type Session interface {
	Role() Role
	sealed()
}

// Identity is the minimum kept about a bound caller. Credential material is
// never part of it.
type Identity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Anonymous struct{}

type ClientSession struct{ Identity }

type TechnicianSession struct{ Identity }

type MechanicSession struct{ Identity }

func (Anonymous) Role() Role         { return RoleNone }
func (ClientSession) Role() Role     { return RoleClient }
func (TechnicianSession) Role() Role { return RoleTechnician }
func (MechanicSession) Role() Role   { return RoleMechanic }

func (Anonymous) sealed()         {}
func (ClientSession) sealed()     {}
func (TechnicianSession) sealed() {}
func (MechanicSession) sealed()   {}

func (Anonymous) String() string { return "not logged in" }

func (s ClientSession) String() string {
	return fmt.Sprintf("client %s (ID: %d)", s.Name, s.ID)
}

func (s TechnicianSession) String() string {
	return fmt.Sprintf("technician %s (ID: %d)", s.Name, s.ID)
}

func (s MechanicSession) String() string {
	return fmt.Sprintf("mechanic %s (ID: %d)", s.Name, s.ID)
}

// IdentityOf returns the bound identity, or false for Anonymous.
func IdentityOf(s Session) (Identity, bool) {
	switch v := s.(type) {
	case ClientSession:
		return v.Identity, true
	case TechnicianSession:
		return v.Identity, true
	case MechanicSession:
		return v.Identity, true
	case Anonymous, nil:
		return Identity{}, false
	default:
		panic(fmt.Sprintf("domain: unknown session variant %T", s))
	}
}

// EmployeeSession binds an employee to the session variant of its role.
func EmployeeSession(e Employee) (Session, error) {
	id := Identity{ID: e.ID, Name: e.Name}
	switch e.Role {
	case RoleTechnician:
		return TechnicianSession{id}, nil
	case RoleMechanic:
		return MechanicSession{id}, nil
	default:
		return Anonymous{}, UnknownRole(e.ID, e.Role)
	}
}
