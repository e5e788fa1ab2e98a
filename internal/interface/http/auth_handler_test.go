package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tableroapp/tablero/internal/application"
	"github.com/tableroapp/tablero/internal/domain/repository"
	"github.com/tableroapp/tablero/internal/infrastructure/docstore"
	handlers "github.com/tableroapp/tablero/internal/interface/http"
	"github.com/tableroapp/tablero/internal/interface/middleware"
	"github.com/tableroapp/tablero/internal/realtime"
	"github.com/tableroapp/tablero/pkg/helpers"
)

type testApp struct {
	engine    *gin.Engine
	directory repository.UserDirectory
	sessions  *application.SessionManager
	tickets   *helpers.TicketManager
}

// newTestApp wires the auth surface end to end against an in-memory user
// directory and a miniredis session store, mirroring the production route
// layout.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := docstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	directory := docstore.NewUserDirectory(db)

	sessions := application.NewSessionManager(rdb, directory, time.Minute, logger)
	cookies := helpers.NewCookie("", false)
	tickets := helpers.NewTicketManager("test-secret", time.Minute)

	auth := handlers.NewAuthHandler(
		&application.SignupStrategy{Directory: directory, Logger: logger},
		&application.LoginStrategy{Directory: directory, Logger: logger},
		sessions, cookies, logger,
	)
	rt := handlers.NewRealtimeHandler(
		realtime.NewHub(nil, nil, time.Second, logger),
		tickets, directory, nil, logger,
	)

	engine := gin.New()
	engine.Use(middleware.ResolveSession(sessions))
	engine.GET("/", auth.GetHome)
	engine.GET("/login", auth.GetLogin)
	engine.POST("/login", auth.PostLogin)
	engine.GET("/faillogin", auth.GetFailLogin)
	engine.GET("/signup", auth.GetSignup)
	engine.POST("/signup", auth.PostSignup)
	engine.GET("/failsignup", auth.GetFailSignup)
	engine.GET("/logout", auth.Logout)

	gated := engine.Group("/", middleware.RequireSession())
	gated.GET("/ruta-protegida", auth.Protected)
	gated.GET("/api/realtime/ticket", rt.Ticket)

	return &testApp{engine: engine, directory: directory, sessions: sessions, tickets: tickets}
}

func (a *testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: sid})
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func signupForm(username string) url.Values {
	return url.Values{
		"username":  {username},
		"password":  {"hunter2hunter2"},
		"email":     {username + "@example.com"},
		"firstName": {"Ana"},
		"lastName":  {"Pérez"},
	}
}

func sessionCookie(w *httptest.ResponseRecorder) string {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == helpers.SessionCookie && ck.MaxAge >= 0 {
			return ck.Value
		}
	}
	return ""
}

// signup registers a user and returns the established session id.
func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()
	w := a.postForm("/signup", signupForm(username))
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	sid := sessionCookie(w)
	require.NotEmpty(t, sid)
	return sid
}

func TestSignupEstablishesSession(t *testing.T) {
	app := newTestApp(t)
	sid := app.signup(t, "ana")

	w := app.get("/ruta-protegida", sid)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Ruta OK!")
}

func TestSignupDuplicateUsername(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	app.signup(t, "ana")

	form := signupForm("ana")
	form.Set("email", "other@example.com")
	w := app.postForm("/signup", form)

	req.Equal(http.StatusFound, w.Code)
	req.Equal("/failsignup", w.Header().Get("Location"))
	req.Empty(sessionCookie(w))

	// the original account is untouched
	u, err := app.directory.GetByUsername(context.Background(), "ana")
	req.NoError(err)
	req.Equal("ana@example.com", u.Email)
}

func TestSignupInvalidForm(t *testing.T) {
	app := newTestApp(t)
	form := signupForm("ana")
	form.Set("email", "not-an-email")
	w := app.postForm("/signup", form)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/failsignup", w.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	app.signup(t, "ana")

	w := app.postForm("/login", url.Values{
		"username": {"ana"},
		"password": {"wrong-password"},
	})
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/faillogin", w.Header().Get("Location"))
	req.Empty(sessionCookie(w))
}

func TestLoginSuccess(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	app.signup(t, "ana")

	w := app.postForm("/login", url.Values{
		"username": {"ana"},
		"password": {"hunter2hunter2"},
	})
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/", w.Header().Get("Location"))

	sid := sessionCookie(w)
	req.NotEmpty(sid)
	u, err := app.sessions.Resolve(context.Background(), sid)
	req.NoError(err)
	req.Equal("ana", u.Username)
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/ruta-protegida", "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	w = app.get("/ruta-protegida", "no-such-session")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogoutDestroysSession(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	sid := app.signup(t, "ana")

	w := app.get("/logout", sid)
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/login", w.Header().Get("Location"))

	// the old session id no longer grants access
	w = app.get("/ruta-protegida", sid)
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/login", w.Header().Get("Location"))
}

func TestRealtimeTicketIsSessionGated(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	w := app.get("/api/realtime/ticket", "")
	req.Equal(http.StatusFound, w.Code)
	req.Equal("/login", w.Header().Get("Location"))

	sid := app.signup(t, "ana")
	w = app.get("/api/realtime/ticket", sid)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"ticket"`)
}

func TestRealtimeTicketBindsSessionUser(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	sid := app.signup(t, "ana")

	w := app.get("/api/realtime/ticket", sid)
	req.Equal(http.StatusOK, w.Code)

	body := w.Body.String()
	start := strings.Index(body, `"ticket":"`)
	req.Greater(start, 0)
	rest := body[start+len(`"ticket":"`):]
	token := rest[:strings.Index(rest, `"`)]

	claims, err := app.tickets.Parse(token)
	req.NoError(err)
	u, err := app.directory.GetByUsername(context.Background(), "ana")
	req.NoError(err)
	req.Equal(u.ID, claims.UserID)
}
