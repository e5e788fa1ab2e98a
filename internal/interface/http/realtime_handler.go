package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
	"github.com/tableroapp/tablero/internal/interface/middleware"
	"github.com/tableroapp/tablero/internal/realtime"
	"github.com/tableroapp/tablero/pkg/helpers"
	"github.com/tableroapp/tablero/pkg/response"
)

// RealtimeHandler upgrades HTTP requests to the board's WebSocket channel
// and issues the signed tickets that let non-browser clients attach an
// identity to a connection.
type RealtimeHandler struct {
	Hub       *realtime.Hub
	Tickets   *helpers.TicketManager
	Directory repository.UserDirectory
	Logger    *logrus.Logger
	upgrader  websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, tickets *helpers.TicketManager, directory repository.UserDirectory, allowedOrigins []string, logger *logrus.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		Hub:       hub,
		Tickets:   tickets,
		Directory: directory,
		Logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker allows same-host requests plus any explicitly configured
// origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if lo.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Serve upgrades the connection and registers it with the hub. Identity is
// optional: a valid ticket or session tags the connection, but anonymous
// clients are admitted too.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	user := h.identity(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := realtime.NewClient(conn, h.Hub, user, h.Logger)
	h.Hub.Register(client)
}

func (h *RealtimeHandler) identity(c *gin.Context) *entity.User {
	if ticket := c.Query("ticket"); ticket != "" {
		claims, err := h.Tickets.Parse(ticket)
		if err != nil {
			h.Logger.WithError(err).Debug("invalid realtime ticket")
			return nil
		}
		u, err := h.Directory.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			return nil
		}
		return u
	}
	return middleware.CurrentUser(c)
}

// Ticket issues a short-lived signed ticket bound to the session's user.
// The route is session-gated, so CurrentUser is never nil here.
func (h *RealtimeHandler) Ticket(c *gin.Context) {
	u := middleware.CurrentUser(c)
	ticket, exp, err := h.Tickets.Generate(u.ID)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "ticket generation failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"ticket": ticket, "expires_at": exp}, "realtime ticket")
}
