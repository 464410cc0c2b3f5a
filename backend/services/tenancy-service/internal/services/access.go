package services

import (
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

func ownsUnit(actor models.Actor, u *models.Unit) bool {
	return u != nil && actor.ID == u.OwnerID
}

func isPrivileged(actor models.Actor) bool {
	return actor.IsAdmin() || actor.IsSystem()
}

// canViewTenancy: the renter, the unit's owner, or an admin.
func canViewTenancy(actor models.Actor, t *models.Tenancy, u *models.Unit) bool {
	return isPrivileged(actor) || actor.ID == t.RenterID || ownsUnit(actor, u)
}

func canManageTenancy(actor models.Actor, u *models.Unit) bool {
	return isPrivileged(actor) || ownsUnit(actor, u)
}

// authorizeTransition enforces who may request which status. The renter may
// only cancel; the owner or an admin may confirm, reject, cancel or
// complete. Only the system reaches Active.
func authorizeTransition(actor models.Actor, t *models.Tenancy, u *models.Unit, next models.TenancyStatus) error {
	if actor.IsSystem() {
		return nil
	}
	if canManageTenancy(actor, u) {
		switch next {
		case models.TenancyStatusConfirmed, models.TenancyStatusRejected,
			models.TenancyStatusCancelled, models.TenancyStatusCompleted:
			return nil
		}
	}
	if actor.ID == t.RenterID && next == models.TenancyStatusCancelled {
		return nil
	}
	return internal_utils.NewValidationError(internal_utils.ReasonUnauthorized,
		"%s %s may not move tenancy %s to %s", actor.Role, actor.ID, t.ID, next)
}
