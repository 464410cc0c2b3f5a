package app

import (
	"context"
	"fmt"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-middleware"
	seeding "github.com/stayspot/mono-repo/backend/shared/go-seeding"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// SeedAllTestData ensures the default units exist. When a signing key is
// configured it also logs bearer tokens for the seeded identities.
// Safe to call on every start.
func (a *App) SeedAllTestData(ctx context.Context) error {
	created, err := seeding.SeedDefaultUnits(ctx, a.Store.Units)
	if err != nil {
		return fmt.Errorf("seed default units: %w", err)
	}
	utils.Logger.Infof("tenancy-service: seeding finished (%d units created)", created)

	if a.Config.RSAPrivateKey == nil {
		return nil
	}
	for _, actor := range seeding.DefaultActors() {
		token, err := middleware.IssueToken(a.Config.RSAPrivateKey, actor, constants.DevTokenTTL)
		if err != nil {
			return fmt.Errorf("issue dev token for %s: %w", actor.Role, err)
		}
		utils.Logger.Infof("Dev token for seeded %s %s: %s", actor.Role, actor.ID, token)
	}
	return nil
}
