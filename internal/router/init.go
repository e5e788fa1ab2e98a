package router

import (
	"github.com/tableroapp/tablero/internal/application"
	"github.com/tableroapp/tablero/internal/container"
	"github.com/tableroapp/tablero/internal/infrastructure/docstore"
	handlers "github.com/tableroapp/tablero/internal/interface/http"
	"github.com/tableroapp/tablero/internal/router/modules"
	"github.com/tableroapp/tablero/pkg/helpers"
)

// InitModules builds every feature module from the container singletons and
// adds them to the registry. Call once during startup, after the container
// is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	directory := docstore.NewUserDirectory(container.GetUserDB())
	sessions := application.NewSessionManager(container.GetRedis(), directory, cfg.SessionTTL, logger)
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	authHandler := handlers.NewAuthHandler(
		&application.SignupStrategy{Directory: directory, Logger: logger},
		&application.LoginStrategy{Directory: directory, Logger: logger},
		sessions,
		cookies,
		logger,
	)
	r.Add(modules.NewAuthModule(authHandler))

	realtimeHandler := handlers.NewRealtimeHandler(
		container.GetHub(),
		container.GetTickets(),
		directory,
		cfg.WSOrigins(),
		logger,
	)
	r.Add(modules.NewBoardModule(realtimeHandler))
}

// Sessions builds the session manager used by the engine-level
// ResolveSession middleware; it shares the directory and TTL with the auth
// module.
func Sessions() *application.SessionManager {
	cfg := container.GetConfig()
	directory := docstore.NewUserDirectory(container.GetUserDB())
	return application.NewSessionManager(container.GetRedis(), directory, cfg.SessionTTL, container.GetLogger())
}
