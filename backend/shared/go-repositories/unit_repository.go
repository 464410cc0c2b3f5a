package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

/* ───────────── public interface ───────────── */

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context, filter models.UnitFilter) ([]*models.Unit, error)

	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error

	CountByStatus(ctx context.Context) (map[models.UnitStatus]int, error)
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	return &unitRepo{db: db}
}

/* ---------- create ---------- */

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, owner_id, title, monthly_price, status,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5, NOW(), NOW(), 1)
	`, u.ID, u.OwnerID, u.Title, u.MonthlyPrice, u.Status)
	if err == nil {
		u.RowVersion = 1
	}
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return scanUnit(r.db.QueryRow(ctx, baseSelectUnit()+" WHERE id=$1", id))
}

func (r *unitRepo) List(ctx context.Context, filter models.UnitFilter) ([]*models.Unit, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	q := baseSelectUnit()
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (r *unitRepo) CountByStatus(ctx context.Context) (map[models.UnitStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM units GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.UnitStatus]int)
	for rows.Next() {
		var (
			s models.UnitStatus
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

/* ---------- update ---------- */

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE units
		SET title=$1, monthly_price=$2, status=$3, updated_at=NOW(), row_version=row_version+1
		WHERE id=$4 AND row_version=$5
	`, u.Title, u.MonthlyPrice, u.Status, u.ID, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return UpdateOptimistic[*models.Unit](ctx, id, r.GetByID, r.UpdateIfVersion, mutate)
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, owner_id, title, monthly_price, status,
		created_at, updated_at, row_version
		FROM units`
}

func scanUnit(row pgx.Row) (*models.Unit, error) {
	var u models.Unit
	if err := row.Scan(
		&u.ID, &u.OwnerID, &u.Title, &u.MonthlyPrice, &u.Status,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
