package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

func (s *ProductStore) ListAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, price, thumbnail
		FROM productos
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]entity.Product, 0)
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Thumbnail); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *ProductStore) Append(ctx context.Context, p entity.Product) (entity.Product, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO productos (name, price, thumbnail)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Name, p.Price, p.Thumbnail)

	if err := row.Scan(&p.ID); err != nil {
		return entity.Product{}, err
	}
	return p, nil
}

var _ repository.ProductStore = (*ProductStore)(nil)
