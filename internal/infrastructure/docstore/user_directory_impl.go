package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
)

var (
	ErrDuplicateUser = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
)

// UserDirectory persists user documents in BadgerDB. Each user is stored
// twice: under its username (login lookup) and under its id (session
// resolution). Both writes happen in one transaction.
type UserDirectory struct {
	db *badger.DB
}

func NewUserDirectory(db *badger.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// Open opens the Badger database backing the directory. An empty dir opens
// an in-memory instance, which the tests rely on.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

func keyByUsername(username string) []byte { return []byte("user:name:" + username) }
func keyByID(id string) []byte             { return []byte("user:id:" + id) }

// userDoc is the on-disk document shape. The entity hides PasswordHash from
// JSON output, so the directory keeps its own representation.
type userDoc struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toDoc(u *entity.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		CreatedAt:    u.CreatedAt,
	}
}

func toEntity(doc userDoc) *entity.User {
	return &entity.User{
		ID:           doc.ID,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Email:        doc.Email,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		CreatedAt:    doc.CreatedAt,
	}
}

// Create persists a new user, failing with ErrDuplicateUser when the
// username is already taken. It assigns the user id.
func (d *UserDirectory) Create(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	doc, err := json.Marshal(toDoc(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyByUsername(u.Username)); err == nil {
			return ErrDuplicateUser
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(keyByUsername(u.Username), doc); err != nil {
			return err
		}
		return txn.Set(keyByID(u.ID), doc)
	})
}

func (d *UserDirectory) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return d.get(ctx, keyByUsername(username))
}

func (d *UserDirectory) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return d.get(ctx, keyByID(id))
}

func (d *UserDirectory) get(ctx context.Context, key []byte) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc userDoc
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toEntity(doc), nil
}

var _ repository.UserDirectory = (*UserDirectory)(nil)
