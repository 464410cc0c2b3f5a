package seeding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type seedUnit struct {
	id     string
	title  string
	price  int64
	status models.UnitStatus
}

var defaultUnits = []seedUnit{
	{DefaultAvailableUnitID, "Sunny room near Thamel", 15000, models.UnitStatusAvailable},
	{DefaultPendingUnitID, "Quiet room in Lalitpur", 12000, models.UnitStatusPendingVerification},
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SeedDefaultUnits ensures the default owner has one listed and one
// unmoderated unit. Units that already exist are left untouched.
func SeedDefaultUnits(ctx context.Context, unitRepo repositories.UnitRepository) (int, error) {
	ownerID := uuid.MustParse(DefaultOwnerID)
	created := 0
	for _, su := range defaultUnits {
		id := uuid.MustParse(su.id)
		existing, err := unitRepo.GetByID(ctx, id)
		if err != nil {
			return created, fmt.Errorf("check existing unit %s: %w", id, err)
		}
		if existing != nil {
			utils.Logger.Infof("seeding: unit %s already present; skipping", id)
			continue
		}

		u := &models.Unit{
			ID:           id,
			OwnerID:      ownerID,
			Title:        su.title,
			MonthlyPrice: decimal.NewFromInt(su.price),
			Status:       su.status,
		}
		if err := unitRepo.Create(ctx, u); err != nil {
			if isUniqueViolation(err) {
				utils.Logger.Infof("seeding: unit %s created concurrently; skipping", id)
				continue
			}
			return created, fmt.Errorf("insert seed unit %s: %w", id, err)
		}
		created++
		utils.Logger.Infof("seeding: created unit %s (%s, %s)", id, u.Title, u.Status)
	}
	return created, nil
}
