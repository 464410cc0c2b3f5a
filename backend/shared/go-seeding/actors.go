package seeding

import (
	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// Identities are owned by the auth platform; the tenancy engine only ever
// sees their ids in JWT claims, so seeding pins well-known ids instead of
// inserting account rows.
const (
	DefaultAdminID  = "11111111-2222-3333-4444-555555555555"
	DefaultOwnerID  = "0a9e6c1d-4b52-4f3e-9d1a-6b7e1aaa1111"
	DefaultRenterID = "0a9e6c1d-4b52-4f3e-9d1a-6b7e1aaa2222"

	DefaultAvailableUnitID = "5e1d7a40-3c2b-4d8e-8f21-7a9c00000001"
	DefaultPendingUnitID   = "5e1d7a40-3c2b-4d8e-8f21-7a9c00000002"
)

func DefaultAdmin() models.Actor {
	return models.Actor{ID: uuid.MustParse(DefaultAdminID), Role: models.RoleAdmin}
}

func DefaultOwner() models.Actor {
	return models.Actor{ID: uuid.MustParse(DefaultOwnerID), Role: models.RoleOwner}
}

func DefaultRenter() models.Actor {
	return models.Actor{ID: uuid.MustParse(DefaultRenterID), Role: models.RoleTenant}
}

// DefaultActors lists the seeded identities in a stable order.
func DefaultActors() []models.Actor {
	return []models.Actor{DefaultAdmin(), DefaultOwner(), DefaultRenter()}
}
