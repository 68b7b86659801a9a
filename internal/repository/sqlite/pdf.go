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

// SQLitePdfRepository implements the PdfRepository interface
type SQLitePdfRepository struct {
	db     *gorm.DB
	tables *repository.TableNames
}

// NewPdfRepository creates a new PDF repository
func NewPdfRepository(config *RepositoryConfig) repositories.PdfRepository {
	return &SQLitePdfRepository{
		db:     config.DB,
		tables: config.Tables,
	}
}

func (r *SQLitePdfRepository) table(ctx context.Context) *gorm.DB {
	return GetExecutor(ctx, r.db).Table(r.tables.Pdfs)
}

// Create creates a new PDF record
func (r *SQLitePdfRepository) Create(ctx context.Context, pdf *models.PdfRecord) error {
	if err := r.table(ctx).Create(pdf).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("folder %d: %w", pdf.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create pdf: %w", err)
	}
	return nil
}

// GetByID retrieves a PDF record by ID
func (r *SQLitePdfRepository) GetByID(ctx context.Context, id int64) (*models.PdfRecord, error) {
	return r.take(r.table(ctx).Where("id = ?", id), id)
}

// GetInFolder retrieves a PDF record by ID scoped to a folder
func (r *SQLitePdfRepository) GetInFolder(ctx context.Context, id, folderID int64) (*models.PdfRecord, error) {
	return r.take(r.table(ctx).Where("id = ? AND folder_id = ?", id, folderID), id)
}

// ListByFolder lists a folder's PDF records ordered by ID
func (r *SQLitePdfRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.PdfRecord, error) {
	pdfs := []models.PdfRecord{}
	if err := r.table(ctx).Where("folder_id = ?", folderID).Order("id").Find(&pdfs).Error; err != nil {
		return nil, fmt.Errorf("list pdfs: %w", err)
	}
	return pdfs, nil
}

// Search matches filename or tags by substring within one folder. SQLite
// LIKE ignores ASCII case.
func (r *SQLitePdfRepository) Search(ctx context.Context, folderID int64, q string) ([]models.PdfRecord, error) {
	pattern := repository.ContainsPattern(q)

	pdfs := []models.PdfRecord{}
	err := r.table(ctx).
		Where("folder_id = ?", folderID).
		Where(`(filename LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("id").
		Find(&pdfs).Error
	if err != nil {
		return nil, fmt.Errorf("search pdfs: %w", err)
	}
	return pdfs, nil
}

// Update writes filename and tags
func (r *SQLitePdfRepository) Update(ctx context.Context, pdf *models.PdfRecord) error {
	result := r.table(ctx).Where("id = ?", pdf.ID).Updates(map[string]interface{}{
		"filename": pdf.Filename,
		"tags":     pdf.Tags,
	})
	if result.Error != nil {
		return fmt.Errorf("update pdf: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("pdf %d: %w", pdf.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete deletes a PDF record
func (r *SQLitePdfRepository) Delete(ctx context.Context, id int64) error {
	result := r.table(ctx).Where("id = ?", id).Delete(&models.PdfRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete pdf: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("pdf %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByFolder deletes all PDF records of a folder
func (r *SQLitePdfRepository) DeleteByFolder(ctx context.Context, folderID int64) (int64, error) {
	result := r.table(ctx).Where("folder_id = ?", folderID).Delete(&models.PdfRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete folder pdfs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SQLitePdfRepository) take(query *gorm.DB, id int64) (*models.PdfRecord, error) {
	var pdf models.PdfRecord
	if err := query.Take(&pdf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pdf %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pdf: %w", err)
	}
	return &pdf, nil
}
