package container

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/config"
	"github.com/tableroapp/tablero/internal/realtime"
	"github.com/tableroapp/tablero/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router modules auto-wire themselves from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	userDB      *badger.DB
	tickets     *helpers.TicketManager
	hub         *realtime.Hub
)

func SetConfig(c *config.Config)          { cfg = c }
func GetConfig() *config.Config           { return cfg }
func SetLogger(l *logrus.Logger)          { logger = l }
func GetLogger() *logrus.Logger           { return logger }
func SetPGPool(p *pgxpool.Pool)           { pgPool = p }
func GetPGPool() *pgxpool.Pool            { return pgPool }
func SetRedis(r *redis.Client)            { redisClient = r }
func GetRedis() *redis.Client             { return redisClient }
func SetUserDB(db *badger.DB)             { userDB = db }
func GetUserDB() *badger.DB               { return userDB }
func SetTickets(t *helpers.TicketManager) { tickets = t }
func GetTickets() *helpers.TicketManager  { return tickets }
func SetHub(h *realtime.Hub)              { hub = h }
func GetHub() *realtime.Hub               { return hub }
