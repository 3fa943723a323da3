package repository

import (
	"context"

	domainRepo "github.com/tillpoint/tillpoint-api/internal/domain/repository"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key carrying the active transaction handle
const txKey ctxKey = "gorm_tx"

// WithTx stores a transaction handle in the context so repository calls made
// with the derived context join the transaction.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// dbFrom returns the transaction handle carried by the context, falling back
// to the repository's own connection.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over the shared connection
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &txManager{db: db}
}

// Do runs fn inside one database transaction. Every repository call made with
// the context passed to fn executes on the transaction; an error from fn
// rolls everything back.
func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
