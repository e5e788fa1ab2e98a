package entity

// Product is a board item. Products are append-only: once created there is
// no update or delete path.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail"`
}
