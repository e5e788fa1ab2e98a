package repository

import (
	"context"

	"github.com/tableroapp/tablero/internal/domain/entity"
)

// ProductStore exposes the list-all / append operations the realtime channel
// needs over product records.
type ProductStore interface {
	ListAll(ctx context.Context) ([]entity.Product, error)
	Append(ctx context.Context, p entity.Product) (entity.Product, error)
}

// MessageStore exposes the get-all / append operations over message records.
// Append assigns the timestamp-bearing id when the incoming record has none.
type MessageStore interface {
	GetAll(ctx context.Context) ([]entity.Message, error)
	Append(ctx context.Context, m entity.Message) (entity.Message, error)
}
