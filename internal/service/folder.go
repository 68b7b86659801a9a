package service

import (
	"context"
	"fmt"
	"log/slog"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/domain/repositories"
	"pdfshelf/internal/domain/services"
	"pdfshelf/internal/validation"
)

// folderService implements the FolderService interface
type folderService struct {
	folderRepo repositories.FolderRepository
	pdfRepo    repositories.PdfRepository
	files      repositories.FileStore
	txManager  repositories.TransactionManager
	guard      *AccessGuard
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	pdfRepo repositories.PdfRepository,
	files repositories.FileStore,
	txManager repositories.TransactionManager,
	guard *AccessGuard,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		pdfRepo:    pdfRepo,
		files:      files,
		txManager:  txManager,
		guard:      guard,
		logger:     logger,
	}
}

// ListFolders returns all folders ordered by ID
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return s.folderRepo.List(ctx)
}

// OpenFolder returns a folder together with its PDF records
func (s *folderService) OpenFolder(ctx context.Context, folderID int64) (*services.FolderContents, error) {
	folder, err := s.guard.Check(ctx, folderID)
	if err != nil {
		return nil, err
	}

	pdfs, err := s.pdfRepo.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	return &services.FolderContents{Folder: folder, Pdfs: pdfs}, nil
}

// AddFolder creates the folder row and its directory. The row is only
// committed once the directory exists, and a failed commit removes the
// directory again.
func (s *folderService) AddFolder(ctx context.Context, req *services.AddFolderRequest) (*models.Folder, error) {
	name, err := validation.CleanFolderName(req.Name)
	if err != nil {
		return nil, domain.NewValidation("invalid folder name: %v", err)
	}

	folder := &models.Folder{Name: name}
	dirCreated := false
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}
		if err := s.files.CreateFolderDir(folder.ID); err != nil {
			return err
		}
		dirCreated = true
		return nil
	})
	if err != nil {
		// The row was rolled back, so its directory must not outlive it
		if dirCreated {
			if rmErr := s.files.RemoveFolderDir(folder.ID); rmErr != nil {
				s.logger.Warn("failed to remove directory of uncommitted folder",
					"id", folder.ID,
					"error", rmErr,
				)
			}
		}
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
	)

	return folder, nil
}

// DeleteFolder removes the folder directory, then the PDF rows and the
// folder row in one transaction. A directory that cannot be removed is
// reported in the result and does not stop the metadata deletion.
func (s *folderService) DeleteFolder(ctx context.Context, folderID int64) (*services.DeleteFolderResult, error) {
	folder, err := s.guard.Check(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &services.DeleteFolderResult{Folder: folder, DirectoryRemoved: true}
	if err := s.files.RemoveFolderDir(folder.ID); err != nil {
		s.logger.Warn("failed to remove folder directory",
			"folder_id", folder.ID,
			"error", err,
		)
		result.DirectoryRemoved = false
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		n, err := s.pdfRepo.DeleteByFolder(ctx, folder.ID)
		if err != nil {
			return err
		}
		result.PdfsDeleted = n
		return s.folderRepo.Delete(ctx, folder.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("delete folder %d: %w", folder.ID, err)
	}

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"pdfs_deleted", result.PdfsDeleted,
		"directory_removed", result.DirectoryRemoved,
	)

	return result, nil
}
