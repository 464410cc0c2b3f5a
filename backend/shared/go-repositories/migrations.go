package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration in file-name order. Each file is
// written to be re-runnable, so there is no bookkeeping table.
func Migrate(ctx context.Context, db DB) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		utils.Logger.Infof("Applied migration %s", name)
	}
	return nil
}
