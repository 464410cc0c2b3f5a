// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness rules as the SQL schema and
// serialises every operation behind one lock, so atomic repository methods
// keep their transactional meaning.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-repositories"
)

type notificationRow struct {
	rec *models.NotificationRecord
	seq int64
}

type DB struct {
	mu sync.Mutex

	units         map[uuid.UUID]*models.Unit
	tenancies     map[uuid.UUID]*models.Tenancy
	obligations   map[uuid.UUID]*models.Obligation
	notifications map[uuid.UUID]*notificationRow
	auditLogs     []*models.AdminAuditLog

	seq int64
	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		units:         make(map[uuid.UUID]*models.Unit),
		tenancies:     make(map[uuid.UUID]*models.Tenancy),
		obligations:   make(map[uuid.UUID]*models.Obligation),
		notifications: make(map[uuid.UUID]*notificationRow),
		now:           time.Now,
	}
}

// NewStore returns a repositories.Store backed by a fresh in-memory DB.
func NewStore() *repositories.Store {
	return NewDB().Store()
}

func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Units:         &unitRepo{db},
		Tenancies:     &tenancyRepo{db},
		Obligations:   &obligationRepo{db},
		Notifications: &notificationRepo{db},
		AuditLogs:     &auditRepo{db},
		Ping:          func(context.Context) error { return nil },
	}
}

// SetClock replaces the timestamp source used for created/updated stamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) stamp() time.Time { return db.now().UTC() }

func cloneUnit(u *models.Unit) *models.Unit {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneTenancy(t *models.Tenancy) *models.Tenancy {
	if t == nil {
		return nil
	}
	c := *t
	if t.EndDate != nil {
		end := *t.EndDate
		c.EndDate = &end
	}
	return &c
}

func cloneObligation(o *models.Obligation) *models.Obligation {
	if o == nil {
		return nil
	}
	c := *o
	if o.PaidDate != nil {
		d := *o.PaidDate
		c.PaidDate = &d
	}
	if o.Method != nil {
		m := *o.Method
		c.Method = &m
	}
	if o.ExternalRef != nil {
		ref := *o.ExternalRef
		c.ExternalRef = &ref
	}
	return &c
}

func cloneNotification(n *models.NotificationRecord) *models.NotificationRecord {
	if n == nil {
		return nil
	}
	c := *n
	if n.ActorID != nil {
		a := *n.ActorID
		c.ActorID = &a
	}
	if n.RelatedID != nil {
		r := *n.RelatedID
		c.RelatedID = &r
	}
	return &c
}

func sortObligations(list []*models.Obligation) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].DueDate.Equal(list[j].DueDate) {
			return list[i].DueDate.Before(list[j].DueDate)
		}
		return list[i].Kind < list[j].Kind
	})
}
