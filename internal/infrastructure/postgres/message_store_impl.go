package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// GetAll returns every stored message in insertion order. The seq column is
// the retrieval-order anchor; the hex id only encodes creation seconds.
func (s *MessageStore) GetAll(ctx context.Context) ([]entity.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_internal_id, author_email, author_name, text, revision
		FROM mensajes
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.Author.InternalID, &m.Author.Email, &m.Author.Name, &m.Text, &m.Revision); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Append persists a message, assigning a timestamp-bearing id when the
// incoming record has none.
func (s *MessageStore) Append(ctx context.Context, m entity.Message) (entity.Message, error) {
	if m.ID == "" {
		m.ID = entity.NewMessageID(time.Now())
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mensajes (id, author_internal_id, author_email, author_name, text, revision)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.Author.InternalID, m.Author.Email, m.Author.Name, m.Text, m.Revision)
	if err != nil {
		return entity.Message{}, err
	}
	return m, nil
}

var _ repository.MessageStore = (*MessageStore)(nil)
