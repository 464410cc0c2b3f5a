package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// TransitionPlan is what a TransitionDecider wants applied.
type TransitionPlan struct {
	Status     models.TenancyStatus
	UnitStatus *models.UnitStatus // nil leaves the unit untouched
}

// TransitionDecider inspects the freshly locked tenancy and unit and either
// returns the change to apply or an error that aborts the transaction.
type TransitionDecider func(current *models.Tenancy, unit *models.Unit) (TransitionPlan, error)

type TenancyRepository interface {
	// Create inserts t together with any initial obligations in one
	// transaction; nothing is written if any row fails.
	Create(ctx context.Context, t *models.Tenancy, initial ...*models.Obligation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenancy, error)
	ListByStatuses(ctx context.Context, statuses []models.TenancyStatus) ([]*models.Tenancy, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*models.Tenancy, error)
	ListByUnitIDs(ctx context.Context, unitIDs []uuid.UUID) ([]*models.Tenancy, error)
	CountByStatus(ctx context.Context) (map[models.TenancyStatus]int, error)

	// TransitionAtomic locks the tenancy and its unit, lets decide validate
	// against the locked state, then writes both rows in one transaction.
	TransitionAtomic(ctx context.Context, id uuid.UUID, decide TransitionDecider) (*models.TenancyChange, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

type tenancyRepo struct {
	db DB
}

func NewTenancyRepository(db DB) TenancyRepository {
	return &tenancyRepo{db: db}
}

func (r *tenancyRepo) Create(ctx context.Context, t *models.Tenancy, initial ...*models.Obligation) error {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tenancies (
				id, renter_id, unit_id, status, start_date, end_date, monthly_rent,
				created_at, updated_at, row_version
			) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW(), NOW(), 1)
		`, t.ID, t.RenterID, t.UnitID, t.Status, t.StartDate, t.EndDate, t.MonthlyRent); err != nil {
			return mapConstraintError(err)
		}
		for _, o := range initial {
			if _, err := tx.Exec(ctx, insertObligation, obligationArgs(o)...); err != nil {
				return fmt.Errorf("insert %s obligation: %w", o.Kind, mapConstraintError(err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.RowVersion = 1
	return nil
}

func (r *tenancyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenancy, error) {
	return scanTenancy(r.db.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", id))
}

func (r *tenancyRepo) ListByStatuses(ctx context.Context, statuses []models.TenancyStatus) ([]*models.Tenancy, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	return r.list(ctx, baseSelectTenancy()+" WHERE status = ANY($1) ORDER BY start_date, id", strs)
}

func (r *tenancyRepo) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*models.Tenancy, error) {
	return r.list(ctx, baseSelectTenancy()+" WHERE renter_id=$1 ORDER BY created_at DESC", renterID)
}

func (r *tenancyRepo) ListByUnitIDs(ctx context.Context, unitIDs []uuid.UUID) ([]*models.Tenancy, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, baseSelectTenancy()+" WHERE unit_id = ANY($1) ORDER BY created_at DESC", unitIDs)
}

func (r *tenancyRepo) CountByStatus(ctx context.Context) (map[models.TenancyStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM tenancies GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.TenancyStatus]int)
	for rows.Next() {
		var (
			s models.TenancyStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *tenancyRepo) TransitionAtomic(
	ctx context.Context,
	id uuid.UUID,
	decide TransitionDecider,
) (*models.TenancyChange, error) {
	var change *models.TenancyChange
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanTenancy(tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		if current == nil {
			return pgx.ErrNoRows
		}
		unit, err := scanUnit(tx.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1 FOR UPDATE", current.UnitID))
		if err != nil {
			return err
		}
		if unit == nil {
			return pgx.ErrNoRows
		}

		plan, err := decide(current, unit)
		if err != nil {
			return err
		}

		from := current.Status
		if _, err := tx.Exec(ctx, `
			UPDATE tenancies
			SET status=$1, updated_at=NOW(), row_version=row_version+1
			WHERE id=$2
		`, plan.Status, id); err != nil {
			return mapConstraintError(err)
		}
		if plan.UnitStatus != nil {
			if _, err := tx.Exec(ctx, `
				UPDATE units
				SET status=$1, updated_at=NOW(), row_version=row_version+1
				WHERE id=$2
			`, *plan.UnitStatus, unit.ID); err != nil {
				return err
			}
		}

		updated, err := scanTenancy(tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", id))
		if err != nil {
			return err
		}
		updatedUnit, err := scanUnit(tx.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1", unit.ID))
		if err != nil {
			return err
		}
		change = &models.TenancyChange{Tenancy: updated, Unit: updatedUnit, FromStatus: from}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (r *tenancyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenancies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func (r *tenancyRepo) list(ctx context.Context, q string, args ...any) ([]*models.Tenancy, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Tenancy
	for rows.Next() {
		t, err := scanTenancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func baseSelectTenancy() string {
	return `
		SELECT id, renter_id, unit_id, status, start_date, end_date, monthly_rent,
		created_at, updated_at, row_version
		FROM tenancies`
}

func scanTenancy(row pgx.Row) (*models.Tenancy, error) {
	var t models.Tenancy
	if err := row.Scan(
		&t.ID, &t.RenterID, &t.UnitID, &t.Status, &t.StartDate, &t.EndDate, &t.MonthlyRent,
		&t.CreatedAt, &t.UpdatedAt, &t.RowVersion,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
