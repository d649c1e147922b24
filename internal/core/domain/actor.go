package domain

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDoctor       Role = "DOCTOR"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleAdmin        Role = "ADMIN"
)

func ParseRole(str string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(str))) {
	case RoleDoctor:
		return RoleDoctor, true
	case RoleReceptionist:
		return RoleReceptionist, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Actor is the authenticated caller as reported by the identity gateway.
// For doctors, ID is the doctor record id, which is what slot ownership
// checks compare against.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// CanManageWorkload reports whether the actor may perform technician
// workload transitions. There is no per-technician ownership; the role
// check is the only gate.
func (a Actor) CanManageWorkload() bool {
	switch a.Role {
	case RoleReceptionist, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
