package catalog

import "context"

// Store owns the catalog records and the id sequence.
//
// Create assigns the next id and the creation time atomically; it expects
// input that already passed CreateRequest.Validate. Get reports a miss with
// ok == false rather than an error.
type Store interface {
	Create(ctx context.Context, name string, price float64) (Product, error)
	Get(ctx context.Context, id int64) (p Product, ok bool, err error)
	Ping(ctx context.Context) error
}
