package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type ObligationRepository interface {
	Create(ctx context.Context, o *models.Obligation) error
	// CreateIfNotExists inserts a rent charge unless its (tenancy, kind, due
	// date) slot is already taken. created is false on a lost race.
	CreateIfNotExists(ctx context.Context, o *models.Obligation) (created bool, err error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Obligation, error)
	LatestRentDueDate(ctx context.Context, tenancyID uuid.UUID) (*time.Time, error)
	ListByTenancy(ctx context.Context, tenancyID uuid.UUID) ([]*models.Obligation, error)
	ListByTenancyIDs(ctx context.Context, tenancyIDs []uuid.UUID) ([]*models.Obligation, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*models.Obligation, error)
	// ListRentDueBy returns unpaid rent charges due on or before the date.
	ListRentDueBy(ctx context.Context, dueBy time.Time) ([]*models.Obligation, error)

	// MarkOverdue persists the derived Overdue state for pending charges due
	// before today. Returns the number of rows moved.
	MarkOverdue(ctx context.Context, ids []uuid.UUID, today time.Time) (int64, error)
	// MarkPaidAtomic credits an unpaid obligation. applied is false when it
	// was already Paid, in which case the stored row is returned unchanged.
	MarkPaidAtomic(ctx context.Context, id uuid.UUID, p models.Payment) (o *models.Obligation, applied bool, err error)
	// OverrideStatusAtomic sets any status and returns the row before and after.
	OverrideStatusAtomic(ctx context.Context, id uuid.UUID, status models.ObligationStatus) (before, after *models.Obligation, err error)

	// CountByStatus counts with derived Overdue applied as of today.
	CountByStatus(ctx context.Context, today time.Time) (map[models.ObligationStatus]int, error)
	SumPaid(ctx context.Context, paidFrom *time.Time) (decimal.Decimal, error)
}

type obligationRepo struct {
	db DB
}

func NewObligationRepository(db DB) ObligationRepository {
	return &obligationRepo{db: db}
}

const insertObligation = `
	INSERT INTO obligations (
		id, tenancy_id, kind, amount, due_date, paid_date, status,
		method, external_ref, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW())`

func obligationArgs(o *models.Obligation) []any {
	return []any{
		o.ID, o.TenancyID, o.Kind, o.Amount, o.DueDate, o.PaidDate, o.Status,
		o.Method, o.ExternalRef,
	}
}

func (r *obligationRepo) Create(ctx context.Context, o *models.Obligation) error {
	_, err := r.db.Exec(ctx, insertObligation, obligationArgs(o)...)
	return mapConstraintError(err)
}

func (r *obligationRepo) CreateIfNotExists(ctx context.Context, o *models.Obligation) (bool, error) {
	tag, err := r.db.Exec(ctx, insertObligation+`
		ON CONFLICT (tenancy_id, kind, due_date) WHERE kind = 'RENT' DO NOTHING
	`, obligationArgs(o)...)
	if err != nil {
		return false, mapConstraintError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *obligationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Obligation, error) {
	return scanObligation(r.db.QueryRow(ctx, baseSelectObligation()+" WHERE id=$1", id))
}

func (r *obligationRepo) LatestRentDueDate(ctx context.Context, tenancyID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	err := r.db.QueryRow(ctx, `
		SELECT MAX(due_date) FROM obligations WHERE tenancy_id=$1 AND kind='RENT'
	`, tenancyID).Scan(&latest)
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *obligationRepo) ListByTenancy(ctx context.Context, tenancyID uuid.UUID) ([]*models.Obligation, error) {
	return r.list(ctx, baseSelectObligation()+" WHERE tenancy_id=$1 ORDER BY due_date, kind", tenancyID)
}

func (r *obligationRepo) ListByTenancyIDs(ctx context.Context, tenancyIDs []uuid.UUID) ([]*models.Obligation, error) {
	if len(tenancyIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, baseSelectObligation()+" WHERE tenancy_id = ANY($1) ORDER BY due_date, kind", tenancyIDs)
}

func (r *obligationRepo) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*models.Obligation, error) {
	return r.list(ctx, `
		SELECT o.id, o.tenancy_id, o.kind, o.amount, o.due_date, o.paid_date, o.status,
		o.method, o.external_ref, o.created_at, o.updated_at
		FROM obligations o
		JOIN tenancies t ON t.id = o.tenancy_id
		WHERE t.renter_id=$1
		ORDER BY o.due_date DESC, o.kind`, renterID)
}

func (r *obligationRepo) ListRentDueBy(ctx context.Context, dueBy time.Time) ([]*models.Obligation, error) {
	return r.list(ctx, baseSelectObligation()+`
		WHERE kind='RENT' AND status IN ('PENDING','OVERDUE') AND due_date <= $1
		ORDER BY due_date, id`, dueBy)
}

func (r *obligationRepo) MarkOverdue(ctx context.Context, ids []uuid.UUID, today time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE obligations
		SET status='OVERDUE', updated_at=NOW()
		WHERE id = ANY($1) AND status='PENDING' AND due_date < $2
	`, ids, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *obligationRepo) MarkPaidAtomic(
	ctx context.Context,
	id uuid.UUID,
	p models.Payment,
) (*models.Obligation, bool, error) {
	var (
		out     *models.Obligation
		applied bool
	)
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanObligation(tx.QueryRow(ctx, baseSelectObligation()+" WHERE id=$1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		if current == nil {
			return pgx.ErrNoRows
		}
		if current.IsPaid() {
			out = current
			return nil
		}

		if _, err := tx.Exec(ctx, `
			UPDATE obligations
			SET status='PAID', paid_date=$1, method=$2, external_ref=$3, updated_at=NOW()
			WHERE id=$4
		`, p.PaidDate, p.Method, p.ExternalRef, id); err != nil {
			return err
		}
		out, err = scanObligation(tx.QueryRow(ctx, baseSelectObligation()+" WHERE id=$1", id))
		applied = true
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, applied, nil
}

func (r *obligationRepo) OverrideStatusAtomic(
	ctx context.Context,
	id uuid.UUID,
	status models.ObligationStatus,
) (before, after *models.Obligation, err error) {
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		before, err = scanObligation(tx.QueryRow(ctx, baseSelectObligation()+" WHERE id=$1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		if before == nil {
			return pgx.ErrNoRows
		}

		// Leaving Paid clears the settlement fields so a later credit can apply.
		q := `UPDATE obligations SET status=$1, updated_at=NOW() WHERE id=$2`
		if status != models.ObligationStatusPaid {
			q = `UPDATE obligations
				SET status=$1, paid_date=NULL, method=NULL, external_ref=NULL, updated_at=NOW()
				WHERE id=$2`
		}
		if _, err := tx.Exec(ctx, q, status, id); err != nil {
			return err
		}
		after, err = scanObligation(tx.QueryRow(ctx, baseSelectObligation()+" WHERE id=$1", id))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (r *obligationRepo) CountByStatus(ctx context.Context, today time.Time) (map[models.ObligationStatus]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT CASE WHEN status='PENDING' AND due_date < $1 THEN 'OVERDUE' ELSE status END AS s,
		COUNT(*)
		FROM obligations GROUP BY s`, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.ObligationStatus]int)
	for rows.Next() {
		var (
			s models.ObligationStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

func (r *obligationRepo) SumPaid(ctx context.Context, paidFrom *time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM obligations
		WHERE status='PAID' AND ($1::date IS NULL OR paid_date >= $1::date)
	`, paidFrom).Scan(&total)
	return total, err
}

/* ---------- internals ---------- */

func (r *obligationRepo) list(ctx context.Context, q string, args ...any) ([]*models.Obligation, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func baseSelectObligation() string {
	return `
		SELECT id, tenancy_id, kind, amount, due_date, paid_date, status,
		method, external_ref, created_at, updated_at
		FROM obligations`
}

func scanObligation(row pgx.Row) (*models.Obligation, error) {
	var o models.Obligation
	if err := row.Scan(
		&o.ID, &o.TenancyID, &o.Kind, &o.Amount, &o.DueDate, &o.PaidDate, &o.Status,
		&o.Method, &o.ExternalRef, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
