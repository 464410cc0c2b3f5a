package controllers

import (
	"net/http"
	"strconv"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/dtos"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/services"
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// GET /api/v1/notifications?unread_only=true&limit=20
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var filter models.NotificationFilter
	q := r.URL.Query()
	if raw := q.Get("unread_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid unread_only", nil, err)
			return
		}
		filter.UnreadOnly = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid limit", nil, err)
			return
		}
		filter.Limit = v
	}

	list, unread, err := c.notifications.List(r.Context(), actor.ID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NotificationListResponse{
		Notifications: shared_dtos.NewNotificationsFromModels(list),
		UnreadCount:   unread,
	})
}

// POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.notifications.MarkRead(r.Context(), actor.ID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	n, err := c.notifications.MarkAllRead(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MarkAllReadResponse{Updated: n})
}
