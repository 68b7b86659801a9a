package postgres

import (
	"context"
	"fmt"

	"pdfshelf/internal/repository"
)

// RunSchema creates the folders and pdfs tables if they do not exist.
// upload_date is stored as text in config.UploadDateLayout.
func RunSchema(ctx context.Context, db DBTX, tables *repository.TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id   BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL
			)`, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          BIGSERIAL PRIMARY KEY,
				folder_id   BIGINT NOT NULL REFERENCES %s(id),
				filename    TEXT NOT NULL,
				tags        TEXT NOT NULL DEFAULT '',
				upload_date TEXT NOT NULL
			)`, tables.Pdfs, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_folder_id ON %s(folder_id)`, tables.Pdfs, tables.Pdfs),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	return nil
}

// DropTables drops both tables, children first
func DropTables(ctx context.Context, db DBTX, tables *repository.TableNames) error {
	for _, table := range []string{tables.Pdfs, tables.Folders} {
		if _, err := db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData deletes all rows but keeps the tables
func ClearData(ctx context.Context, db DBTX, tables *repository.TableNames) error {
	for _, table := range []string{tables.Pdfs, tables.Folders} {
		if _, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
