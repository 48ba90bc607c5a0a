package catalog

import "time"

// Product is a catalog record. Values are produced only by a Store and are
// never changed after creation; callers always receive copies.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
