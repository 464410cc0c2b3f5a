package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	internal_utils "github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/utils"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

const currencyPrefix = "Rs."

func formatMoney(d decimal.Decimal) string {
	return currencyPrefix + " " + d.StringFixed(2)
}

// RelativeDue renders a due date relative to today for reminder text.
func RelativeDue(due, today time.Time) string {
	days := utils.DaysBetween(today, due)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	case days == -1:
		return "was due 1 day ago"
	default:
		return fmt.Sprintf("was due %d days ago", -days)
	}
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "%s is not a valid id", field)
	}
	return id, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "%s must be a non-negative amount", field)
	}
	return d.Round(2), nil
}

func parseDate(raw, field string) (time.Time, error) {
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, internal_utils.NewValidationError(internal_utils.ReasonInvalidPayload, "%s must be YYYY-MM-DD", field)
	}
	return d, nil
}

// isNotFound reports whether a repository error means the row is missing.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// normalizeOverdue applies derived Overdue to list and returns the ids that
// changed so callers can persist them.
func normalizeOverdue(list []*models.Obligation, today time.Time) []uuid.UUID {
	var changed []uuid.UUID
	for _, o := range list {
		if o.NormalizeOverdue(today) {
			changed = append(changed, o.ID)
		}
	}
	return changed
}
