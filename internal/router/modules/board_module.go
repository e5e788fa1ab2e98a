package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/tableroapp/tablero/internal/interface/http"
	"github.com/tableroapp/tablero/internal/interface/middleware"
)

// BoardModule wires the realtime channel: the WebSocket endpoint itself plus
// the session-gated ticket issuer for non-browser clients.
type BoardModule struct {
	Handler *handlers.RealtimeHandler
}

func NewBoardModule(h *handlers.RealtimeHandler) *BoardModule {
	return &BoardModule{Handler: h}
}

func (m *BoardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ws", m.Handler.Serve)

	gated := rg.Group("/")
	gated.Use(middleware.RequireSession())
	{
		gated.GET("/api/realtime/ticket", m.Handler.Ticket)
	}
}
