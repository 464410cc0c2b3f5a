package memory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type obligationRepo struct{ db *DB }

// rentSlotTaken mirrors the partial unique index on (tenancy, kind, due_date)
// for rent. Caller holds the lock.
func (db *DB) rentSlotTaken(o *models.Obligation) bool {
	if o.Kind != models.ObligationKindRent {
		return false
	}
	for _, existing := range db.obligations {
		if existing.TenancyID == o.TenancyID &&
			existing.Kind == models.ObligationKindRent &&
			existing.DueDate.Equal(o.DueDate) {
			return true
		}
	}
	return false
}

func (db *DB) insertObligation(o *models.Obligation) error {
	if _, exists := db.obligations[o.ID]; exists {
		return errors.New("duplicate obligation id")
	}
	if _, ok := db.tenancies[o.TenancyID]; !ok {
		return errors.New("obligation references missing tenancy")
	}
	if db.rentSlotTaken(o) {
		return utils.ErrDuplicateObligation
	}
	now := db.stamp()
	o.CreatedAt, o.UpdatedAt = now, now
	db.obligations[o.ID] = cloneObligation(o)
	return nil
}

func (r *obligationRepo) Create(_ context.Context, o *models.Obligation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.insertObligation(o)
}

func (r *obligationRepo) CreateIfNotExists(_ context.Context, o *models.Obligation) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.insertObligation(o); err != nil {
		if errors.Is(err, utils.ErrDuplicateObligation) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *obligationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Obligation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneObligation(r.db.obligations[id]), nil
}

func (r *obligationRepo) LatestRentDueDate(_ context.Context, tenancyID uuid.UUID) (*time.Time, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var latest *time.Time
	for _, o := range r.db.obligations {
		if o.TenancyID != tenancyID || o.Kind != models.ObligationKindRent {
			continue
		}
		if latest == nil || o.DueDate.After(*latest) {
			d := o.DueDate
			latest = &d
		}
	}
	return latest, nil
}

func (r *obligationRepo) collect(match func(*models.Obligation) bool) []*models.Obligation {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Obligation
	for _, o := range r.db.obligations {
		if match(o) {
			out = append(out, cloneObligation(o))
		}
	}
	sortObligations(out)
	return out
}

func (r *obligationRepo) ListByTenancy(_ context.Context, tenancyID uuid.UUID) ([]*models.Obligation, error) {
	return r.collect(func(o *models.Obligation) bool { return o.TenancyID == tenancyID }), nil
}

func (r *obligationRepo) ListByTenancyIDs(_ context.Context, tenancyIDs []uuid.UUID) ([]*models.Obligation, error) {
	want := make(map[uuid.UUID]bool, len(tenancyIDs))
	for _, id := range tenancyIDs {
		want[id] = true
	}
	return r.collect(func(o *models.Obligation) bool { return want[o.TenancyID] }), nil
}

func (r *obligationRepo) ListByRenter(_ context.Context, renterID uuid.UUID) ([]*models.Obligation, error) {
	r.db.mu.Lock()
	owned := make(map[uuid.UUID]bool)
	for id, t := range r.db.tenancies {
		if t.RenterID == renterID {
			owned[id] = true
		}
	}
	r.db.mu.Unlock()

	out := r.collect(func(o *models.Obligation) bool { return owned[o.TenancyID] })
	// newest first, like the SQL listing
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *obligationRepo) ListRentDueBy(_ context.Context, dueBy time.Time) ([]*models.Obligation, error) {
	return r.collect(func(o *models.Obligation) bool {
		return o.Kind == models.ObligationKindRent &&
			(o.Status == models.ObligationStatusPending || o.Status == models.ObligationStatusOverdue) &&
			!o.DueDate.After(dueBy)
	}), nil
}

func (r *obligationRepo) MarkOverdue(_ context.Context, ids []uuid.UUID, today time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		o, ok := r.db.obligations[id]
		if !ok {
			continue
		}
		if o.NormalizeOverdue(today) {
			o.UpdatedAt = r.db.stamp()
			n++
		}
	}
	return n, nil
}

func (r *obligationRepo) MarkPaidAtomic(_ context.Context, id uuid.UUID, p models.Payment) (*models.Obligation, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.obligations[id]
	if !ok {
		return nil, false, pgx.ErrNoRows
	}
	if o.IsPaid() {
		return cloneObligation(o), false, nil
	}
	paid := p.PaidDate
	method := p.Method
	ref := p.ExternalRef
	o.Status = models.ObligationStatusPaid
	o.PaidDate = &paid
	o.Method = &method
	o.ExternalRef = &ref
	o.UpdatedAt = r.db.stamp()
	return cloneObligation(o), true, nil
}

func (r *obligationRepo) OverrideStatusAtomic(
	_ context.Context,
	id uuid.UUID,
	status models.ObligationStatus,
) (*models.Obligation, *models.Obligation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.obligations[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	before := cloneObligation(o)
	o.Status = status
	if status != models.ObligationStatusPaid {
		o.PaidDate, o.Method, o.ExternalRef = nil, nil, nil
	}
	o.UpdatedAt = r.db.stamp()
	return before, cloneObligation(o), nil
}

func (r *obligationRepo) CountByStatus(_ context.Context, today time.Time) (map[models.ObligationStatus]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[models.ObligationStatus]int)
	for _, o := range r.db.obligations {
		c := *o
		c.NormalizeOverdue(today)
		out[c.Status]++
	}
	return out, nil
}

func (r *obligationRepo) SumPaid(_ context.Context, paidFrom *time.Time) (decimal.Decimal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	total := decimal.Zero
	for _, o := range r.db.obligations {
		if !o.IsPaid() {
			continue
		}
		if paidFrom != nil && (o.PaidDate == nil || o.PaidDate.Before(*paidFrom)) {
			continue
		}
		total = total.Add(o.Amount)
	}
	return total, nil
}
