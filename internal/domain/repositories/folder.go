package repositories

import (
	"context"

	"pdfshelf/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder and sets its store-assigned ID
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID; returns domain.ErrNotFound if absent
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// List returns all folders ordered by ID
	List(ctx context.Context) ([]models.Folder, error)

	// Delete removes a folder row; returns domain.ErrNotFound if absent
	Delete(ctx context.Context, id int64) error
}
