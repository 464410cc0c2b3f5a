package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// NotificationRepository is the append-only store behind fanout. Only the
// read flag is ever updated.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.NotificationRecord) error
	// CreateIfAbsent inserts n unless a record with the same recipient, type
	// and related id already exists under a dedup index. It reports whether
	// the row was written.
	CreateIfAbsent(ctx context.Context, n *models.NotificationRecord) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationRecord, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, filter models.NotificationFilter) ([]*models.NotificationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.NotificationRecord, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)

	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

const insertNotification = `
	INSERT INTO notifications (
		id, recipient_id, actor_id, type, text, related_id, read, created_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

func notificationArgs(n *models.NotificationRecord) []any {
	return []any{n.ID, n.RecipientID, n.ActorID, n.Type, n.Text, n.RelatedID, n.Read, n.CreatedAt}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.NotificationRecord) error {
	_, err := r.db.Exec(ctx, insertNotification, notificationArgs(n)...)
	return err
}

func (r *notificationRepo) CreateIfAbsent(ctx context.Context, n *models.NotificationRecord) (bool, error) {
	tag, err := r.db.Exec(ctx, insertNotification+`
		ON CONFLICT (recipient_id, type, related_id) WHERE type = 'rent_reminder' DO NOTHING
	`, notificationArgs(n)...)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintOneReminder {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationRecord, error) {
	return scanNotification(r.db.QueryRow(ctx, baseSelectNotification()+" WHERE id=$1", id))
}

func (r *notificationRepo) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	filter models.NotificationFilter,
) ([]*models.NotificationRecord, error) {
	q := baseSelectNotification() + " WHERE recipient_id=$1"
	if filter.UnreadOnly {
		q += " AND read=FALSE"
	}
	q += " ORDER BY created_at DESC, id"
	args := []any{recipientID}
	if filter.Limit > 0 {
		q += " LIMIT $2"
		args = append(args, filter.Limit)
	}
	return r.list(ctx, q, args...)
}

func (r *notificationRepo) ListRecent(ctx context.Context, limit int) ([]*models.NotificationRecord, error) {
	return r.list(ctx, baseSelectNotification()+" ORDER BY created_at DESC, id LIMIT $1", limit)
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND read=FALSE`, recipientID,
	).Scan(&n)
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE id=$1 AND recipient_id=$2`, id, recipientID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read=TRUE WHERE recipient_id=$1 AND read=FALSE`, recipientID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

/* ---------- internals ---------- */

func (r *notificationRepo) list(ctx context.Context, q string, args ...any) ([]*models.NotificationRecord, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func baseSelectNotification() string {
	return `
		SELECT id, recipient_id, actor_id, type, text, related_id, read, created_at
		FROM notifications`
}

func scanNotification(row pgx.Row) (*models.NotificationRecord, error) {
	var n models.NotificationRecord
	if err := row.Scan(
		&n.ID, &n.RecipientID, &n.ActorID, &n.Type, &n.Text, &n.RelatedID, &n.Read, &n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
