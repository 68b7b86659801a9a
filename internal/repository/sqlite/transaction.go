package sqlite

import (
	"context"

	"gorm.io/gorm"

	"pdfshelf/internal/domain/repositories"
)

// TransactionManager implements repositories.TransactionManager with gorm
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(config *RepositoryConfig) repositories.TransactionManager {
	return &TransactionManager{db: config.DB}
}

// ExecTx executes fn within a transaction. gorm rolls back when fn returns
// an error or panics.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(SetTx(ctx, tx))
	})
}
