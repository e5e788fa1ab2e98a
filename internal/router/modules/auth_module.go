package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tableroapp/tablero/internal/container"
	handlers "github.com/tableroapp/tablero/internal/interface/http"
	"github.com/tableroapp/tablero/internal/interface/middleware"
)

// AuthModule wires the session-cookie authentication surface.
// Public: GET/POST /login, GET /faillogin, GET/POST /signup, GET /failsignup,
// GET /logout. Gated: GET /ruta-protegida.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Credential-bearing routes get per-IP-and-path limits so login and
	// signup attempts count separately.
	credLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())

	rg.GET("/", m.Handler.GetHome)

	rg.GET("/login", m.Handler.GetLogin)
	rg.POST("/login", credLimiter, m.Handler.PostLogin)
	rg.GET("/faillogin", m.Handler.GetFailLogin)

	rg.GET("/signup", m.Handler.GetSignup)
	rg.POST("/signup", credLimiter, m.Handler.PostSignup)
	rg.GET("/failsignup", m.Handler.GetFailSignup)

	rg.GET("/logout", m.Handler.Logout)

	gated := rg.Group("/")
	gated.Use(middleware.RequireSession())
	{
		gated.GET("/ruta-protegida", m.Handler.Protected)
	}
}
