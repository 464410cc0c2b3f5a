package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
)

type unitRepo struct{ db *DB }

func (r *unitRepo) Create(_ context.Context, u *models.Unit) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, exists := r.db.units[u.ID]; exists {
		return errors.New("duplicate unit id")
	}
	now := r.db.stamp()
	u.CreatedAt, u.UpdatedAt, u.RowVersion = now, now, 1
	r.db.units[u.ID] = cloneUnit(u)
	return nil
}

func (r *unitRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneUnit(r.db.units[id]), nil
}

func (r *unitRepo) List(_ context.Context, filter models.UnitFilter) ([]*models.Unit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Unit
	for _, u := range r.db.units {
		if filter.Matches(u) {
			out = append(out, cloneUnit(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *unitRepo) UpdateIfVersion(_ context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.units[u.ID]
	if !ok || stored.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	c := cloneUnit(u)
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = r.db.stamp()
	c.RowVersion = expected + 1
	r.db.units[u.ID] = c
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return repositories.UpdateOptimistic[*models.Unit](ctx, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *unitRepo) CountByStatus(context.Context) (map[models.UnitStatus]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[models.UnitStatus]int)
	for _, u := range r.db.units {
		out[u.Status]++
	}
	return out, nil
}
