package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/domain/repositories"
	"pdfshelf/internal/repository"
)

// SQLiteFolderRepository implements the FolderRepository interface
type SQLiteFolderRepository struct {
	db     *gorm.DB
	tables *repository.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &SQLiteFolderRepository{
		db:     config.DB,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *SQLiteFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if err := GetExecutor(ctx, r.db).Table(r.tables.Folders).Create(folder).Error; err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *SQLiteFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	var folder models.Folder
	err := GetExecutor(ctx, r.db).Table(r.tables.Folders).Where("id = ?", id).Take(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

// List returns all folders ordered by ID
func (r *SQLiteFolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	folders := []models.Folder{}
	if err := GetExecutor(ctx, r.db).Table(r.tables.Folders).Order("id").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// Delete deletes a folder. PDF rows must be removed first.
func (r *SQLiteFolderRepository) Delete(ctx context.Context, id int64) error {
	result := GetExecutor(ctx, r.db).Table(r.tables.Folders).Where("id = ?", id).Delete(&models.Folder{})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("folder %d still has pdfs: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
