package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/domain/repositories"
	"pdfshelf/internal/repository"
)

// PostgresPdfRepository implements the PdfRepository interface
type PostgresPdfRepository struct {
	pool   *pgxpool.Pool
	tables *repository.TableNames
}

// NewPdfRepository creates a new PDF repository
func NewPdfRepository(config *RepositoryConfig) repositories.PdfRepository {
	return &PostgresPdfRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const pdfColumns = "id, folder_id, filename, tags, upload_date"

// Create creates a new PDF record
func (r *PostgresPdfRepository) Create(ctx context.Context, pdf *models.PdfRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, filename, tags, upload_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, r.tables.Pdfs)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		pdf.FolderID,
		pdf.Filename,
		pdf.Tags,
		pdf.UploadDate,
	).Scan(&pdf.ID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %d: %w", pdf.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create pdf: %w", err)
	}

	return nil
}

// GetByID retrieves a PDF record by ID
func (r *PostgresPdfRepository) GetByID(ctx context.Context, id int64) (*models.PdfRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, pdfColumns, r.tables.Pdfs)

	return r.getOne(ctx, query, id)
}

// GetInFolder retrieves a PDF record by ID scoped to a folder
func (r *PostgresPdfRepository) GetInFolder(ctx context.Context, id, folderID int64) (*models.PdfRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND folder_id = $2
	`, pdfColumns, r.tables.Pdfs)

	return r.getOne(ctx, query, id, folderID)
}

// ListByFolder lists a folder's PDF records ordered by ID
func (r *PostgresPdfRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.PdfRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1
		ORDER BY id
	`, pdfColumns, r.tables.Pdfs)

	return r.getMany(ctx, query, folderID)
}

// Search matches filename or tags by case-insensitive substring within one folder
func (r *PostgresPdfRepository) Search(ctx context.Context, folderID int64, q string) ([]models.PdfRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1
		  AND (filename ILIKE $2 ESCAPE '\' OR tags ILIKE $2 ESCAPE '\')
		ORDER BY id
	`, pdfColumns, r.tables.Pdfs)

	return r.getMany(ctx, query, folderID, repository.ContainsPattern(q))
}

// Update writes filename and tags
func (r *PostgresPdfRepository) Update(ctx context.Context, pdf *models.PdfRecord) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET filename = $1, tags = $2
		WHERE id = $3
	`, r.tables.Pdfs)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, pdf.Filename, pdf.Tags, pdf.ID)
	if err != nil {
		return fmt.Errorf("update pdf: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("pdf %d: %w", pdf.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a PDF record
func (r *PostgresPdfRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Pdfs)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete pdf: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("pdf %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolder deletes all PDF records of a folder
func (r *PostgresPdfRepository) DeleteByFolder(ctx context.Context, folderID int64) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1
	`, r.tables.Pdfs)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("delete folder pdfs: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *PostgresPdfRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.PdfRecord, error) {
	executor := GetExecutor(ctx, r.pool)

	var pdf models.PdfRecord
	err := executor.QueryRow(ctx, query, args...).Scan(
		&pdf.ID,
		&pdf.FolderID,
		&pdf.Filename,
		&pdf.Tags,
		&pdf.UploadDate,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("pdf %v: %w", args[0], domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get pdf: %w", err)
	}

	return &pdf, nil
}

func (r *PostgresPdfRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]models.PdfRecord, error) {
	executor := GetExecutor(ctx, r.pool)

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pdfs: %w", err)
	}

	pdfs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.PdfRecord])
	if err != nil {
		return nil, fmt.Errorf("scan pdfs: %w", err)
	}
	if pdfs == nil {
		pdfs = []models.PdfRecord{}
	}

	return pdfs, nil
}
