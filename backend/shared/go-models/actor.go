package models

import "github.com/google/uuid"

type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleOwner, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Actor is the caller on whose behalf a mutation is requested.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// SystemActor drives scheduled transitions and settlement side effects.
var SystemActor = Actor{ID: uuid.Nil, Role: RoleSystem}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }

// IDPtr returns nil for the system actor so records carry no fake user reference.
func (a Actor) IDPtr() *uuid.UUID {
	if a.IsSystem() || a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
