package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

// MaxUpdateAttempts bounds UpdateOptimistic before it reports contention.
const MaxUpdateAttempts = 3

// VersionedRow is an entity whose writes are guarded by row_version.
type VersionedRow interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

// LoadFunc reads the current row. A nil row means it does not exist.
type LoadFunc[T VersionedRow] func(ctx context.Context, id uuid.UUID) (T, error)

// SwapFunc writes row only while the stored version still equals expected.
type SwapFunc[T VersionedRow] func(ctx context.Context, row T, expected int64) (pgconn.CommandTag, error)

// UpdateOptimistic loads id, lets mutate change it and writes it back with a
// version check, reloading when another writer got there first. An error
// from mutate aborts without writing.
func UpdateOptimistic[T VersionedRow](
	ctx context.Context,
	id uuid.UUID,
	load LoadFunc[T],
	swap SwapFunc[T],
	mutate func(T) error,
) error {
	var missing T
	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := load(ctx, id)
		if err != nil {
			return err
		}
		if row == missing {
			return pgx.ErrNoRows
		}

		version := row.GetRowVersion()
		if err := mutate(row); err != nil {
			return err
		}
		tag, err := swap(ctx, row, version)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			row.SetRowVersion(version + 1)
			return nil
		}
		utils.Logger.WithFields(logrus.Fields{"id": id, "attempt": attempt}).Debug("Row version moved, reloading")
	}
	return fmt.Errorf("update %s after %d attempts: %w", id, MaxUpdateAttempts, utils.ErrRowVersionConflict)
}
