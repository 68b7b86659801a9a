package repositories

import (
	"context"

	"pdfshelf/internal/domain/models"
)

// PdfRepository defines data access operations for PDF records
type PdfRepository interface {
	// Create inserts a record and sets its store-assigned ID
	Create(ctx context.Context, pdf *models.PdfRecord) error

	// GetByID retrieves a record by ID regardless of folder
	GetByID(ctx context.Context, id int64) (*models.PdfRecord, error)

	// GetInFolder retrieves a record by ID only if it belongs to folderID
	GetInFolder(ctx context.Context, id, folderID int64) (*models.PdfRecord, error)

	// ListByFolder lists records of one folder ordered by ID
	ListByFolder(ctx context.Context, folderID int64) ([]models.PdfRecord, error)

	// Search matches filename OR tags by case-insensitive substring.
	// folderID is part of the query predicate.
	Search(ctx context.Context, folderID int64, query string) ([]models.PdfRecord, error)

	// Update writes filename and tags of an existing record
	Update(ctx context.Context, pdf *models.PdfRecord) error

	// Delete removes one record
	Delete(ctx context.Context, id int64) error

	// DeleteByFolder removes every record of a folder and returns how many were removed
	DeleteByFolder(ctx context.Context, folderID int64) (int64, error)
}
