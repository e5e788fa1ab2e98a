package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableroapp/tablero/internal/application"
	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/pkg/helpers"
)

const userKey = "currentUser"

// ResolveSession resolves the request's optional authenticated user exactly
// once: session cookie → session store → user directory. A missing or
// expired session leaves the request anonymous; it never fails the request
// itself.
func ResolveSession(sessions *application.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(helpers.SessionCookie)
		if err == nil && sid != "" {
			if u, rErr := sessions.Resolve(c.Request.Context(), sid); rErr == nil {
				c.Set(userKey, u)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by ResolveSession, or nil for an
// anonymous request.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// RequireSession gates protected routes. An anonymous request is redirected
// to the login entry point; this is a side effect, not an error payload.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
