package repositories

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

const (
	pgUniqueViolation = "23505"

	constraintOneControllingTenancy = "tenancies_one_controlling_per_unit"
	constraintOneRentPerDueDate     = "obligations_one_rent_per_due_date"
	constraintOneReminder           = "notifications_one_reminder"
)

func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// mapConstraintError turns storage-level uniqueness failures into the
// shared sentinels services branch on.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case constraintOneControllingTenancy:
		return utils.ErrUnitAlreadyControlled
	case constraintOneRentPerDueDate:
		return utils.ErrDuplicateObligation
	}
	return err
}
