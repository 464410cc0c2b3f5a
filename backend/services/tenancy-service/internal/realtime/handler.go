package realtime

import (
	"net/http"
	"time"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-middleware"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	"golang.org/x/net/websocket"
)

// Handler upgrades an authenticated request and streams the caller's
// notification channel. It must sit behind middleware.AuthMiddleware.
func (h *Hub) Handler() http.Handler {
	ws := websocket.Server{
		// Browsers send an Origin that CORS already vetted; native clients
		// send none. The bearer token is the access control here.
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			origin, err := websocket.Origin(cfg, r)
			if err != nil {
				return err
			}
			cfg.Origin = origin
			return nil
		},
		Handler: h.serveConn,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.ActorFromContext(r.Context()); !ok {
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "authentication required", nil)
			return
		}
		ws.ServeHTTP(w, r)
	})
}

func (h *Hub) serveConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	actor, ok := middleware.ActorFromContext(conn.Request().Context())
	if !ok {
		return
	}
	channel := models.NotificationChannel(actor.ID)
	sub := h.Subscribe(channel)
	defer sub.Close()

	logger := utils.Logger.WithField("channel", channel)
	logger.Debug("Realtime subscriber connected")

	// Clients never send anything meaningful; reading only detects hang-ups.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			logger.Debug("Realtime subscriber disconnected")
			return
		case payload, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(constants.RealtimeWriteDeadline))
			if err := websocket.Message.Send(conn, string(payload)); err != nil {
				logger.WithError(err).Warn("Realtime send failed; dropping subscriber")
				return
			}
		}
	}
}
