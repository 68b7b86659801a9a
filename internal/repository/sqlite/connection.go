// Package sqlite implements the metadata store on an embedded SQLite file
// through gorm. It is the default driver for single-host deployments.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pdfshelf/internal/repository"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	DB     *gorm.DB
	Tables *repository.TableNames
	Logger *slog.Logger
}

// Open opens (creating if needed) the database file at path.
// Foreign keys are enforced on every connection. Writers wait up to five
// seconds for the file lock.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type txContextKey string

const txKey txContextKey = "gorm_tx"

// SetTx stores a transaction in the context
func SetTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetExecutor returns the transaction in ctx if there is one, otherwise db,
// bound to ctx either way.
func GetExecutor(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
