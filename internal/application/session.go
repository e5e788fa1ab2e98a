package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
)

var ErrNoSession = errors.New("no active session")

func sessionKey(sid string) string {
	return "session:" + sid
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SessionManager owns the server-held session records in Redis. A session
// binds an opaque id (carried in a cookie) to an authenticated user id and
// stops validating once its inactivity window elapses; every successful
// Resolve pushes the expiry forward.
type SessionManager struct {
	Redis     *redis.Client
	Directory repository.UserDirectory
	TTL       time.Duration
	Logger    *logrus.Logger
}

func NewSessionManager(rdb *redis.Client, dir repository.UserDirectory, ttl time.Duration, logger *logrus.Logger) *SessionManager {
	return &SessionManager{Redis: rdb, Directory: dir, TTL: ttl, Logger: logger}
}

// Establish records a session for the user and returns the opaque id.
func (m *SessionManager) Establish(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	key := sessionKey(sid)
	pipe := m.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":   userID,
		"issued_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, m.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

// Resolve maps a session id back to the full User, refreshing the
// inactivity window on success. A session whose user id no longer resolves
// in the directory fails with ErrNoSession rather than an internal error.
func (m *SessionManager) Resolve(ctx context.Context, sid string) (*entity.User, error) {
	if sid == "" {
		return nil, ErrNoSession
	}
	key := sessionKey(sid)
	data, err := m.Redis.HGetAll(ctx, key).Result()
	if err != nil || len(data) == 0 {
		return nil, ErrNoSession
	}
	u, err := m.Directory.GetByID(ctx, data["user_id"])
	if err != nil || u == nil {
		if m.Logger != nil {
			m.Logger.WithField("sid", sid).Warn("session resolved to unknown user")
		}
		return nil, ErrNoSession
	}
	if err := m.Redis.Expire(ctx, key, m.TTL).Err(); err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("sid", sid).Warn("session ttl refresh failed")
	}
	return u, nil
}

// Destroy removes the session record. Destroying a missing session is not
// an error.
func (m *SessionManager) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return m.Redis.Del(ctx, sessionKey(sid)).Err()
}
