package sqlite

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pdfshelf/internal/repository"
)

// RunSchema creates the folders and pdfs tables if they do not exist.
// AUTOINCREMENT keeps ids monotonic across deletes.
func RunSchema(ctx context.Context, db *gorm.DB, tables *repository.TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id   INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			)`, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				folder_id   INTEGER NOT NULL REFERENCES %s(id),
				filename    TEXT NOT NULL,
				tags        TEXT NOT NULL DEFAULT '',
				upload_date TEXT NOT NULL
			)`, tables.Pdfs, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_folder_id ON %s(folder_id)`, tables.Pdfs, tables.Pdfs),
	}

	for _, stmt := range statements {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	return nil
}

// DropTables drops both tables, children first
func DropTables(ctx context.Context, db *gorm.DB, tables *repository.TableNames) error {
	for _, table := range []string{tables.Pdfs, tables.Folders} {
		if err := db.WithContext(ctx).Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData deletes all rows but keeps the tables
func ClearData(ctx context.Context, db *gorm.DB, tables *repository.TableNames) error {
	for _, table := range []string{tables.Pdfs, tables.Folders} {
		if err := db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
