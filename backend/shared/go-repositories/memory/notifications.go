package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type notificationRepo struct{ db *DB }

// reminderExists mirrors the partial unique index on rent reminders.
// Caller holds the lock.
func (db *DB) reminderExists(n *models.NotificationRecord) bool {
	if n.Type != models.NotificationRentReminder || n.RelatedID == nil {
		return false
	}
	for _, row := range db.notifications {
		e := row.rec
		if e.Type == n.Type && e.RecipientID == n.RecipientID &&
			e.RelatedID != nil && *e.RelatedID == *n.RelatedID {
			return true
		}
	}
	return false
}

func (db *DB) insertNotification(n *models.NotificationRecord) error {
	if _, exists := db.notifications[n.ID]; exists {
		return errors.New("duplicate notification id")
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = db.stamp()
	}
	db.seq++
	db.notifications[n.ID] = &notificationRow{rec: cloneNotification(n), seq: db.seq}
	return nil
}

func (r *notificationRepo) Create(_ context.Context, n *models.NotificationRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.reminderExists(n) {
		return errors.New("duplicate rent reminder")
	}
	return r.db.insertNotification(n)
}

func (r *notificationRepo) CreateIfAbsent(_ context.Context, n *models.NotificationRecord) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.reminderExists(n) {
		return false, nil
	}
	if err := r.db.insertNotification(n); err != nil {
		return false, err
	}
	return true, nil
}

func (r *notificationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.NotificationRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.notifications[id]
	if !ok {
		return nil, nil
	}
	return cloneNotification(row.rec), nil
}

// newestFirst returns matching rows ordered by creation time, ties broken by
// insertion order. Caller holds the lock.
func (db *DB) newestFirst(match func(*models.NotificationRecord) bool, limit int) []*models.NotificationRecord {
	var rows []*notificationRow
	for _, row := range db.notifications {
		if match(row.rec) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.rec.CreatedAt.Equal(b.rec.CreatedAt) {
			return a.rec.CreatedAt.After(b.rec.CreatedAt)
		}
		return a.seq > b.seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]*models.NotificationRecord, len(rows))
	for i, row := range rows {
		out[i] = cloneNotification(row.rec)
	}
	return out
}

func (r *notificationRepo) ListByRecipient(
	_ context.Context,
	recipientID uuid.UUID,
	filter models.NotificationFilter,
) ([]*models.NotificationRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.newestFirst(func(n *models.NotificationRecord) bool {
		return n.RecipientID == recipientID && (!filter.UnreadOnly || !n.Read)
	}, filter.Limit), nil
}

func (r *notificationRepo) ListRecent(_ context.Context, limit int) ([]*models.NotificationRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.newestFirst(func(*models.NotificationRecord) bool { return true }, limit), nil
}

func (r *notificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, row := range r.db.notifications {
		if row.rec.RecipientID == recipientID && !row.rec.Read {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.notifications[id]
	if !ok || row.rec.RecipientID != recipientID {
		return false, nil
	}
	row.rec.Read = true
	return true, nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, row := range r.db.notifications {
		if row.rec.RecipientID == recipientID && !row.rec.Read {
			row.rec.Read = true
			n++
		}
	}
	return n, nil
}
