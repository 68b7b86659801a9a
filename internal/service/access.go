package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/domain/repositories"
)

// AccessGuard confirms a folder exists before any folder-scoped operation
// runs. Every operation taking a folder ID calls Check first.
type AccessGuard struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewAccessGuard creates a new access guard
func NewAccessGuard(folderRepo repositories.FolderRepository, logger *slog.Logger) *AccessGuard {
	return &AccessGuard{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// Check returns the folder or the uniform not-found error. Store failures
// other than a missing row are returned wrapped and must surface as 500.
func (g *AccessGuard) Check(ctx context.Context, folderID int64) (*models.Folder, error) {
	if folderID <= 0 {
		return nil, domain.NewNotFound("folder %d: non-positive id", folderID)
	}

	folder, err := g.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			g.logger.Debug("folder access denied", "folder_id", folderID)
			return nil, domain.NewNotFound("folder %d", folderID)
		}
		return nil, fmt.Errorf("check folder %d: %w", folderID, err)
	}

	return folder, nil
}
