// backend/shared/go-models/admin_audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate         AuditAction = "CREATE"
	AuditUpdate         AuditAction = "UPDATE"
	AuditDelete         AuditAction = "DELETE"
	AuditModerate       AuditAction = "MODERATE"
	AuditOverrideStatus AuditAction = "OVERRIDE_STATUS"
)

type AuditTargetType string

const (
	TargetUnit       AuditTargetType = "UNIT"
	TargetTenancy    AuditTargetType = "TENANCY"
	TargetObligation AuditTargetType = "OBLIGATION"
)

type AdminAuditLog struct {
	ID         uuid.UUID        `json:"id"`
	AdminID    uuid.UUID        `json:"admin_id"`
	Action     AuditAction      `json:"action"`
	TargetID   uuid.UUID        `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    *json.RawMessage `json:"details,omitempty"` // JSONB field for before/after states
	CreatedAt  time.Time        `json:"created_at"`
}

// NewAuditDetails marshals a before/after payload for the Details column.
func NewAuditDetails(v any) (*json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(b)
	return &raw, nil
}
