// Package bootstrap opens the record store selected by configuration and
// hands back driver-agnostic repositories for the server and seed commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"pdfshelf/internal/config"
	"pdfshelf/internal/domain/repositories"
	"pdfshelf/internal/repository"
	"pdfshelf/internal/repository/postgres"
	"pdfshelf/internal/repository/sqlite"
)

// Stores bundles the repositories of one record store.
type Stores struct {
	Folders   repositories.FolderRepository
	Pdfs      repositories.PdfRepository
	TxManager repositories.TransactionManager
	Tables    *repository.TableNames

	driver string
	pool   *pgxpool.Pool
	db     *gorm.DB
}

// OpenStores connects to the configured driver. Call Close when done.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	tables := repository.NewTableNames(cfg.TablePrefix)
	s := &Stores{Tables: tables, driver: cfg.DBDriver}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		s.pool = pool
		s.Folders = postgres.NewFolderRepository(repoConfig)
		s.Pdfs = postgres.NewPdfRepository(repoConfig)
		s.TxManager = postgres.NewTransactionManager(repoConfig)
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		repoConfig := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}
		s.db = db
		s.Folders = sqlite.NewFolderRepository(repoConfig)
		s.Pdfs = sqlite.NewPdfRepository(repoConfig)
		s.TxManager = sqlite.NewTransactionManager(repoConfig)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	logger.Info("record store connected", "driver", cfg.DBDriver, "table_prefix", cfg.TablePrefix)
	return s, nil
}

// RunSchema creates missing tables and indexes.
func (s *Stores) RunSchema(ctx context.Context) error {
	if s.pool != nil {
		return postgres.RunSchema(ctx, s.pool, s.Tables)
	}
	return sqlite.RunSchema(ctx, s.db, s.Tables)
}

// DropTables removes both tables.
func (s *Stores) DropTables(ctx context.Context) error {
	if s.pool != nil {
		return postgres.DropTables(ctx, s.pool, s.Tables)
	}
	return sqlite.DropTables(ctx, s.db, s.Tables)
}

// ClearData deletes all rows and keeps the schema.
func (s *Stores) ClearData(ctx context.Context) error {
	if s.pool != nil {
		return postgres.ClearData(ctx, s.pool, s.Tables)
	}
	return sqlite.ClearData(ctx, s.db, s.Tables)
}

// Driver names the connected driver.
func (s *Stores) Driver() string {
	return s.driver
}

func (s *Stores) Close() error {
	if s.pool != nil {
		s.pool.Close()
		return nil
	}
	return sqlite.Close(s.db)
}
