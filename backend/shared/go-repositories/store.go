package repositories

import "context"

// Store bundles every repository the tenancy engine needs so callers can
// swap the Postgres backend for the in-memory one.
type Store struct {
	Units         UnitRepository
	Tenancies     TenancyRepository
	Obligations   ObligationRepository
	Notifications NotificationRepository
	AuditLogs     AdminAuditLogRepository

	// Ping reports whether the backing store is reachable.
	Ping func(ctx context.Context) error
}

// NewPostgresStore binds every repository to db.
func NewPostgresStore(db DB, ping func(ctx context.Context) error) *Store {
	return &Store{
		Units:         NewUnitRepository(db),
		Tenancies:     NewTenancyRepository(db),
		Obligations:   NewObligationRepository(db),
		Notifications: NewNotificationRepository(db),
		AuditLogs:     NewAdminAuditLogRepository(db),
		Ping:          ping,
	}
}
