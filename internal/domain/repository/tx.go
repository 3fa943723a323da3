package repository

import "context"

// TxManager runs a function inside one storage transaction. The transaction
// handle travels in the context, so every repository call made with the
// derived context joins the same transaction; returning an error rolls the
// whole unit of work back.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
