package testhelpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-middleware"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stretchr/testify/require"
)

// NewActor returns a fresh caller identity with the given role.
func NewActor(role models.Role) models.Actor {
	return models.Actor{ID: uuid.New(), Role: role}
}

// CreateJWT signs a short-lived access token for actor.
func (h *TestHelper) CreateJWT(actor models.Actor) string {
	signed, err := middleware.IssueToken(h.PrivateKey, actor, 15*time.Minute)
	require.NoError(h.T, err, "Failed to sign test JWT")
	return signed
}
