package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationMessage          NotificationType = "message"
	NotificationBookingRequest   NotificationType = "booking_request"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingActive    NotificationType = "booking_active"
	NotificationBookingCompleted NotificationType = "booking_completed"
	NotificationRentReminder     NotificationType = "rent_reminder"
	NotificationPaymentReceived  NotificationType = "payment_received"
	NotificationUnitModerated    NotificationType = "unit_moderated"
)

// BookingNotificationType maps a tenancy status to the notification sent
// to the counter-party.
func BookingNotificationType(s TenancyStatus) NotificationType {
	switch s {
	case TenancyStatusConfirmed:
		return NotificationBookingConfirmed
	case TenancyStatusRejected:
		return NotificationBookingRejected
	case TenancyStatusCancelled:
		return NotificationBookingCancelled
	case TenancyStatusActive:
		return NotificationBookingActive
	case TenancyStatusCompleted:
		return NotificationBookingCompleted
	}
	return NotificationBookingRequest
}

// NotificationRecord is immutable once created except for the Read flag.
type NotificationRecord struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	ActorID     *uuid.UUID       `json:"actor_id,omitempty"`
	Type        NotificationType `json:"type"`
	Text        string           `json:"text"`
	RelatedID   *uuid.UUID       `json:"related_id,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

const notificationChannelPrefix = "notifications:"

// NotificationChannel is the real-time channel name for a recipient.
func NotificationChannel(recipientID uuid.UUID) string {
	return notificationChannelPrefix + recipientID.String()
}

// NotificationFilter narrows an inbox listing.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}
