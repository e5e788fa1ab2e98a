package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/application"
	"github.com/tableroapp/tablero/internal/interface/middleware"
	"github.com/tableroapp/tablero/pkg/helpers"
	"github.com/tableroapp/tablero/pkg/validation"
)

// AuthHandler serves the session-cookie authentication surface. Failures
// surface as redirects to the dedicated failure routes, never as raw error
// bodies.
type AuthHandler struct {
	Signup   application.Strategy
	Login    application.Strategy
	Sessions *application.SessionManager
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
}

func NewAuthHandler(signup, login application.Strategy, sessions *application.SessionManager, cookies *helpers.CookieManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Signup: signup, Login: login, Sessions: sessions, Cookies: cookies, Logger: logger}
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required,min=8"`
	Email     string `form:"email" binding:"required,email"`
	FirstName string `form:"firstName" binding:"required"`
	LastName  string `form:"lastName" binding:"required"`
}

func htmlPage(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}

func (h *AuthHandler) GetHome(c *gin.Context) {
	htmlPage(c, http.StatusOK, `<h1>Tablero</h1><p><a href="/login">login</a> | <a href="/signup">signup</a></p>`)
}

func (h *AuthHandler) GetLogin(c *gin.Context) {
	htmlPage(c, http.StatusOK, `<form method="post" action="/login">`+
		`<input name="username" placeholder="username">`+
		`<input name="password" type="password" placeholder="password">`+
		`<button type="submit">Login</button></form>`)
}

func (h *AuthHandler) PostLogin(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.Logger.WithField("details", validation.ToDetails(err)).Info("login form invalid")
		c.Redirect(http.StatusFound, "/faillogin")
		return
	}
	u, err := h.Login.Verify(c.Request.Context(), application.Credentials{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		h.Logger.WithField("username", form.Username).WithField("strategy", h.Login.Name()).Info("login rejected")
		c.Redirect(http.StatusFound, "/faillogin")
		return
	}
	h.establish(c, u.ID)
}

func (h *AuthHandler) GetFailLogin(c *gin.Context) {
	htmlPage(c, http.StatusOK, `<h1>Login failed</h1><p><a href="/login">try again</a></p>`)
}

func (h *AuthHandler) GetSignup(c *gin.Context) {
	htmlPage(c, http.StatusOK, `<form method="post" action="/signup">`+
		`<input name="username" placeholder="username">`+
		`<input name="password" type="password" placeholder="password">`+
		`<input name="email" placeholder="email">`+
		`<input name="firstName" placeholder="first name">`+
		`<input name="lastName" placeholder="last name">`+
		`<button type="submit">Sign up</button></form>`)
}

func (h *AuthHandler) PostSignup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		h.Logger.WithField("details", validation.ToDetails(err)).Info("signup form invalid")
		c.Redirect(http.StatusFound, "/failsignup")
		return
	}
	u, err := h.Signup.Verify(c.Request.Context(), application.Credentials{
		Username:  form.Username,
		Password:  form.Password,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		h.Logger.WithField("username", form.Username).WithField("strategy", h.Signup.Name()).Info("signup rejected")
		c.Redirect(http.StatusFound, "/failsignup")
		return
	}
	h.establish(c, u.ID)
}

func (h *AuthHandler) GetFailSignup(c *gin.Context) {
	htmlPage(c, http.StatusOK, `<h1>Signup failed</h1><p><a href="/signup">try again</a></p>`)
}

// establish records the session and sets the cookie. A session-store outage
// sends the user to the failure route rather than leaking an error body.
func (h *AuthHandler) establish(c *gin.Context, userID string) {
	sid, err := h.Sessions.Establish(c.Request.Context(), userID)
	if err != nil {
		h.Logger.WithError(err).Error("session establish failed")
		c.Redirect(http.StatusFound, "/faillogin")
		return
	}
	h.Cookies.SetSession(c, sid, h.Sessions.TTL)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(helpers.SessionCookie); err == nil {
		if dErr := h.Sessions.Destroy(c.Request.Context(), sid); dErr != nil {
			h.Logger.WithError(dErr).Warn("session destroy failed")
		}
	}
	h.Cookies.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}

// Protected is the gated demonstration route.
func (h *AuthHandler) Protected(c *gin.Context) {
	u := middleware.CurrentUser(c)
	h.Logger.WithField("username", u.Username).Debug("protected route hit")
	htmlPage(c, http.StatusOK, "<h1>Ruta OK!</h1>")
}
