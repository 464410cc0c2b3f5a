package dtos

import shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"

type NotificationListResponse struct {
	Notifications []shared_dtos.Notification `json:"notifications"`
	UnreadCount   int                        `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
