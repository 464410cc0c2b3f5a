package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type auditRepo struct{ db *DB }

func (r *auditRepo) Create(_ context.Context, l *models.AdminAuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *l
	c.CreatedAt = r.db.stamp()
	r.db.auditLogs = append(r.db.auditLogs, &c)
	return nil
}

func (r *auditRepo) ListByTarget(
	_ context.Context,
	targetType models.AuditTargetType,
	targetID uuid.UUID,
) ([]*models.AdminAuditLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.AdminAuditLog
	for _, l := range r.db.auditLogs {
		if l.TargetType == targetType && l.TargetID == targetID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}
