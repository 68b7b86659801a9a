package services

import (
	"context"

	"pdfshelf/internal/domain/models"
)

// FolderService handles folder business logic
type FolderService interface {
	// ListFolders returns all folders ordered by ID
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// OpenFolder returns a folder with its PDF records
	OpenFolder(ctx context.Context, folderID int64) (*FolderContents, error)

	// AddFolder validates the name, stores the folder and creates its directory
	AddFolder(ctx context.Context, req *AddFolderRequest) (*models.Folder, error)

	// DeleteFolder removes the folder directory (best-effort) and then its rows
	DeleteFolder(ctx context.Context, folderID int64) (*DeleteFolderResult, error)
}

// AddFolderRequest represents a folder creation request
type AddFolderRequest struct {
	Name string `json:"name"`
}

// FolderContents represents a folder with its PDFs
type FolderContents struct {
	Folder *models.Folder     `json:"folder"`
	Pdfs   []models.PdfRecord `json:"pdfs"`
}

// DeleteFolderResult reports a folder deletion. The metadata is always gone
// when err is nil; DirectoryRemoved tells whether the bytes went with it.
type DeleteFolderResult struct {
	Folder           *models.Folder `json:"folder"`
	PdfsDeleted      int64          `json:"pdfs_deleted"`
	DirectoryRemoved bool           `json:"directory_removed"`
}
