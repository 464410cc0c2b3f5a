package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type tenancyRepo struct{ db *DB }

// controllingTenancy returns the id of a Confirmed/Active tenancy on unitID
// other than except. Caller holds the lock.
func (db *DB) controllingTenancy(unitID, except uuid.UUID) (uuid.UUID, bool) {
	for id, t := range db.tenancies {
		if id != except && t.UnitID == unitID && t.Status.IsControlling() {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (r *tenancyRepo) Create(_ context.Context, t *models.Tenancy, initial ...*models.Obligation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, exists := r.db.tenancies[t.ID]; exists {
		return errors.New("duplicate tenancy id")
	}
	if _, ok := r.db.units[t.UnitID]; !ok {
		return errors.New("tenancy references missing unit")
	}
	if t.Status.IsControlling() {
		if _, taken := r.db.controllingTenancy(t.UnitID, t.ID); taken {
			return utils.ErrUnitAlreadyControlled
		}
	}
	now := r.db.stamp()
	t.CreatedAt, t.UpdatedAt, t.RowVersion = now, now, 1
	r.db.tenancies[t.ID] = cloneTenancy(t)

	var inserted []uuid.UUID
	for _, o := range initial {
		if err := r.db.insertObligation(o); err != nil {
			for _, id := range inserted {
				delete(r.db.obligations, id)
			}
			delete(r.db.tenancies, t.ID)
			return fmt.Errorf("insert %s obligation: %w", o.Kind, err)
		}
		inserted = append(inserted, o.ID)
	}
	return nil
}

func (r *tenancyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenancy, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneTenancy(r.db.tenancies[id]), nil
}

func (r *tenancyRepo) collect(match func(*models.Tenancy) bool) []*models.Tenancy {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Tenancy
	for _, t := range r.db.tenancies {
		if match(t) {
			out = append(out, cloneTenancy(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *tenancyRepo) ListByStatuses(_ context.Context, statuses []models.TenancyStatus) ([]*models.Tenancy, error) {
	want := make(map[models.TenancyStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return r.collect(func(t *models.Tenancy) bool { return want[t.Status] }), nil
}

func (r *tenancyRepo) ListByRenter(_ context.Context, renterID uuid.UUID) ([]*models.Tenancy, error) {
	return r.collect(func(t *models.Tenancy) bool { return t.RenterID == renterID }), nil
}

func (r *tenancyRepo) ListByUnitIDs(_ context.Context, unitIDs []uuid.UUID) ([]*models.Tenancy, error) {
	want := make(map[uuid.UUID]bool, len(unitIDs))
	for _, id := range unitIDs {
		want[id] = true
	}
	return r.collect(func(t *models.Tenancy) bool { return want[t.UnitID] }), nil
}

func (r *tenancyRepo) CountByStatus(context.Context) (map[models.TenancyStatus]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[models.TenancyStatus]int)
	for _, t := range r.db.tenancies {
		out[t.Status]++
	}
	return out, nil
}

func (r *tenancyRepo) TransitionAtomic(
	_ context.Context,
	id uuid.UUID,
	decide repositories.TransitionDecider,
) (*models.TenancyChange, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.tenancies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	storedUnit, ok := r.db.units[stored.UnitID]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	plan, err := decide(cloneTenancy(stored), cloneUnit(storedUnit))
	if err != nil {
		return nil, err
	}
	if plan.Status.IsControlling() {
		if _, taken := r.db.controllingTenancy(stored.UnitID, id); taken {
			return nil, utils.ErrUnitAlreadyControlled
		}
	}

	now := r.db.stamp()
	from := stored.Status
	next := cloneTenancy(stored)
	next.Status = plan.Status
	next.UpdatedAt = now
	next.RowVersion++
	r.db.tenancies[id] = next

	if plan.UnitStatus != nil {
		u := cloneUnit(storedUnit)
		u.Status = *plan.UnitStatus
		u.UpdatedAt = now
		u.RowVersion++
		r.db.units[u.ID] = u
	}

	return &models.TenancyChange{
		Tenancy:    cloneTenancy(r.db.tenancies[id]),
		Unit:       cloneUnit(r.db.units[stored.UnitID]),
		FromStatus: from,
	}, nil
}

func (r *tenancyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tenancies[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.db.tenancies, id)
	for oid, o := range r.db.obligations {
		if o.TenancyID == id {
			delete(r.db.obligations, oid)
		}
	}
	return nil
}
