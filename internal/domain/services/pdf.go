package services

import (
	"context"
	"io"
	"time"

	"pdfshelf/internal/domain/models"
)

// PdfService handles PDF business logic
type PdfService interface {
	// UploadPdf writes the bytes into the folder directory, then records them
	UploadPdf(ctx context.Context, req *UploadPdfRequest) (*models.PdfRecord, error)

	// DeletePdf removes the file (tolerating a missing one) and then the record
	DeletePdf(ctx context.Context, pdfID, folderID int64) (*DeletePdfResult, error)

	// RenamePdf renames the file and then updates the record filename
	RenamePdf(ctx context.Context, req *RenamePdfRequest) (*models.PdfRecord, error)

	// UpdatePdf renames the file if needed and updates filename and tags
	UpdatePdf(ctx context.Context, req *UpdatePdfRequest) (*models.PdfRecord, error)

	// ViewPdf opens a stored PDF for streaming; the caller closes it
	ViewPdf(ctx context.Context, folderID int64, filename string) (*PdfFile, error)

	// Search lists the folder's records whose filename or tags contain query
	Search(ctx context.Context, folderID int64, query string) (*SearchResult, error)
}

// UploadPdfRequest represents an upload. Content nil means no file was sent.
type UploadPdfRequest struct {
	FolderID int64
	Filename string
	Tags     string
	Content  io.Reader
}

// RenamePdfRequest represents a folder-scoped rename
type RenamePdfRequest struct {
	PdfID    int64  `json:"-"`
	FolderID int64  `json:"-"`
	NewName  string `json:"new_name"`
}

// UpdatePdfRequest replaces filename and tags of a record
type UpdatePdfRequest struct {
	PdfID    int64  `json:"-"`
	Filename string `json:"filename"`
	Tags     string `json:"tags"`
}

// DeletePdfResult reports a PDF deletion. FileRemoved is false when the
// backing file was already missing.
type DeletePdfResult struct {
	Pdf         *models.PdfRecord `json:"pdf"`
	FileRemoved bool              `json:"file_removed"`
}

// PdfFile is an opened PDF ready to be streamed
type PdfFile struct {
	Name    string
	Size    int64
	ModTime time.Time
	Content io.ReadSeekCloser
}

// SearchResult carries the matches plus the escaped query for display
type SearchResult struct {
	Query string             `json:"query"`
	Pdfs  []models.PdfRecord `json:"pdfs"`
}
