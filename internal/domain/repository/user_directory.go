package repository

import (
	"context"

	"github.com/tableroapp/tablero/internal/domain/entity"
)

// UserDirectory defines the interface for user record persistence.
// Users are created on signup and looked up by username (login) or id
// (session resolution); this system never deletes them.
type UserDirectory interface {
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
