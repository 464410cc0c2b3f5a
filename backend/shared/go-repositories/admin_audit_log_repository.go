// backend/shared/go-repositories/admin_audit_log_repository.go
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type AdminAuditLogRepository interface {
	Create(ctx context.Context, logEntry *models.AdminAuditLog) error
	ListByTarget(ctx context.Context, targetType models.AuditTargetType, targetID uuid.UUID) ([]*models.AdminAuditLog, error)
}

type adminAuditLogRepo struct {
	db DB
}

func NewAdminAuditLogRepository(db DB) AdminAuditLogRepository {
	return &adminAuditLogRepo{db: db}
}

func (r *adminAuditLogRepo) Create(ctx context.Context, logEntry *models.AdminAuditLog) error {
	q := `
        INSERT INTO admin_audit_logs (
            id, admin_id, action, target_id, target_type, details, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	_, err := r.db.Exec(ctx, q,
		logEntry.ID,
		logEntry.AdminID,
		logEntry.Action,
		logEntry.TargetID,
		logEntry.TargetType,
		logEntry.Details,
	)
	return err
}

func (r *adminAuditLogRepo) ListByTarget(
	ctx context.Context,
	targetType models.AuditTargetType,
	targetID uuid.UUID,
) ([]*models.AdminAuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, admin_id, action, target_id, target_type, details, created_at
		FROM admin_audit_logs
		WHERE target_type=$1 AND target_id=$2
		ORDER BY created_at
	`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AdminAuditLog
	for rows.Next() {
		var l models.AdminAuditLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.TargetID, &l.TargetType, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
