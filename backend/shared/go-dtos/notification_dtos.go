package dtos

import (
	"time"

	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

// Notification is both the inbox item and the real-time channel payload.
type Notification struct {
	ID          string                  `json:"id"`
	RecipientID string                  `json:"recipient_id"`
	ActorID     *string                 `json:"actor_id,omitempty"`
	Type        models.NotificationType `json:"type"`
	Text        string                  `json:"text"`
	RelatedID   *string                 `json:"related_id,omitempty"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"created_at"`
}

func NewNotificationFromModel(n *models.NotificationRecord) Notification {
	out := Notification{
		ID:          n.ID.String(),
		RecipientID: n.RecipientID.String(),
		Type:        n.Type,
		Text:        n.Text,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	if n.ActorID != nil {
		s := n.ActorID.String()
		out.ActorID = &s
	}
	if n.RelatedID != nil {
		s := n.RelatedID.String()
		out.RelatedID = &s
	}
	return out
}

func NewNotificationsFromModels(list []*models.NotificationRecord) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, NewNotificationFromModel(n))
	}
	return out
}
