package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pdfshelf/internal/config"
	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/domain/repositories"
	"pdfshelf/internal/domain/services"
	"pdfshelf/internal/validation"
)

// pdfService implements the PdfService interface
type pdfService struct {
	pdfRepo repositories.PdfRepository
	files   repositories.FileStore
	guard   *AccessGuard
	now     func() time.Time
	logger  *slog.Logger
}

// NewPdfService creates a new PDF service
func NewPdfService(
	pdfRepo repositories.PdfRepository,
	files repositories.FileStore,
	guard *AccessGuard,
	logger *slog.Logger,
) services.PdfService {
	return &pdfService{
		pdfRepo: pdfRepo,
		files:   files,
		guard:   guard,
		now:     time.Now,
		logger:  logger,
	}
}

// UploadPdf writes the bytes first and records them second, so a stored
// row always has a file behind it when both steps succeed.
func (s *pdfService) UploadPdf(ctx context.Context, req *services.UploadPdfRequest) (*models.PdfRecord, error) {
	folder, err := s.guard.Check(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	if req.Content == nil {
		return nil, domain.NewValidation("no file selected")
	}
	if err := validation.ValidateUploadFilename(req.Filename); err != nil {
		if errors.Is(err, validation.ErrNotPDF) {
			return nil, domain.NewValidation("only PDF files are allowed")
		}
		return nil, domain.NewValidation("invalid filename: %v", err)
	}
	if err := validation.ValidateTags(req.Tags); err != nil {
		return nil, domain.NewValidation("invalid tags: %v", err)
	}

	size, err := s.files.Write(folder.ID, req.Filename, req.Content)
	if err != nil {
		return nil, err
	}

	pdf := &models.PdfRecord{
		FolderID:   folder.ID,
		Filename:   req.Filename,
		Tags:       validation.Escape(req.Tags),
		UploadDate: s.now().Format(config.UploadDateLayout),
	}
	if err := s.pdfRepo.Create(ctx, pdf); err != nil {
		// The file may back an earlier record with the same name, so it stays
		s.logger.Error("pdf stored but not recorded",
			"folder_id", folder.ID,
			"filename", req.Filename,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("pdf uploaded",
		"id", pdf.ID,
		"folder_id", pdf.FolderID,
		"filename", pdf.Filename,
		"size", size,
	)

	return pdf, nil
}

// DeletePdf removes the file and then the record. A file that is already
// gone does not block the record deletion; any other filesystem failure
// leaves the record in place.
func (s *pdfService) DeletePdf(ctx context.Context, pdfID, folderID int64) (*services.DeletePdfResult, error) {
	folder, err := s.guard.Check(ctx, folderID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.getInFolder(ctx, pdfID, folder.ID)
	if err != nil {
		return nil, err
	}

	result := &services.DeletePdfResult{Pdf: pdf, FileRemoved: true}
	if err := s.files.Remove(folder.ID, pdf.Filename); err != nil {
		var fsErr *domain.FilesystemError
		if !errors.As(err, &fsErr) || fsErr.Kind != domain.FileMissing {
			return nil, err
		}
		s.logger.Warn("pdf file already missing",
			"id", pdf.ID,
			"folder_id", folder.ID,
			"filename", pdf.Filename,
		)
		result.FileRemoved = false
	}

	if err := s.pdfRepo.Delete(ctx, pdf.ID); err != nil {
		return nil, err
	}

	s.logger.Info("pdf deleted",
		"id", pdf.ID,
		"folder_id", folder.ID,
		"filename", pdf.Filename,
		"file_removed", result.FileRemoved,
	)

	return result, nil
}

// RenamePdf renames the file and then the record, within one folder.
func (s *pdfService) RenamePdf(ctx context.Context, req *services.RenamePdfRequest) (*models.PdfRecord, error) {
	folder, err := s.guard.Check(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateFilename(req.NewName); err != nil {
		return nil, domain.NewValidation("invalid filename: %v", err)
	}

	pdf, err := s.getInFolder(ctx, req.PdfID, folder.ID)
	if err != nil {
		return nil, err
	}

	if err := s.moveFile(ctx, pdf, req.NewName, pdf.Tags); err != nil {
		return nil, err
	}

	s.logger.Info("pdf renamed",
		"id", pdf.ID,
		"folder_id", folder.ID,
		"filename", pdf.Filename,
	)

	return pdf, nil
}

// UpdatePdf replaces filename and tags. The record's own folder is checked
// before anything else happens to it.
func (s *pdfService) UpdatePdf(ctx context.Context, req *services.UpdatePdfRequest) (*models.PdfRecord, error) {
	if err := validation.ValidateFilename(req.Filename); err != nil {
		return nil, domain.NewValidation("invalid filename: %v", err)
	}
	if err := validation.ValidateTags(req.Tags); err != nil {
		return nil, domain.NewValidation("invalid tags: %v", err)
	}

	pdf, err := s.pdfRepo.GetByID(ctx, req.PdfID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFound("pdf %d", req.PdfID)
		}
		return nil, err
	}
	if _, err := s.guard.Check(ctx, pdf.FolderID); err != nil {
		return nil, err
	}

	if err := s.moveFile(ctx, pdf, req.Filename, validation.Escape(req.Tags)); err != nil {
		return nil, err
	}

	s.logger.Info("pdf updated",
		"id", pdf.ID,
		"folder_id", pdf.FolderID,
		"filename", pdf.Filename,
	)

	return pdf, nil
}

// ViewPdf opens a stored PDF. Every failure, including a rejected path,
// reads as not found.
func (s *pdfService) ViewPdf(ctx context.Context, folderID int64, filename string) (*services.PdfFile, error) {
	folder, err := s.guard.Check(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if !validation.IsValidFilename(filename) {
		return nil, domain.NewNotFound("view %d/%q: invalid filename", folder.ID, filename)
	}

	f, info, err := s.files.Open(folder.ID, filename)
	if err != nil {
		s.logger.Debug("pdf not viewable",
			"folder_id", folder.ID,
			"filename", filename,
			"error", err,
		)
		return nil, domain.NewNotFound("view %d/%q: %v", folder.ID, filename, err)
	}

	return &services.PdfFile{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Content: f,
	}, nil
}

// Search escapes the query the same way tags are escaped on write, so
// stored and searched text compare like for like.
func (s *pdfService) Search(ctx context.Context, folderID int64, query string) (*services.SearchResult, error) {
	folder, err := s.guard.Check(ctx, folderID)
	if err != nil {
		return nil, err
	}

	safeQuery := validation.Escape(query)
	pdfs, err := s.pdfRepo.Search(ctx, folder.ID, safeQuery)
	if err != nil {
		return nil, err
	}

	return &services.SearchResult{Query: safeQuery, Pdfs: pdfs}, nil
}

// getInFolder fetches a record only if it belongs to folderID
func (s *pdfService) getInFolder(ctx context.Context, pdfID, folderID int64) (*models.PdfRecord, error) {
	pdf, err := s.pdfRepo.GetInFolder(ctx, pdfID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFound("pdf %d in folder %d", pdfID, folderID)
		}
		return nil, err
	}
	return pdf, nil
}

// moveFile renames the file when the name changes and then writes filename
// and tags to the record. If the file rename fails the record is untouched.
// If the record update fails the file is moved back.
func (s *pdfService) moveFile(ctx context.Context, pdf *models.PdfRecord, newName, tags string) error {
	oldName := pdf.Filename
	if newName != oldName {
		if err := s.files.Rename(pdf.FolderID, oldName, newName); err != nil {
			return err
		}
	}

	updated := *pdf
	updated.Filename = newName
	updated.Tags = tags
	if err := s.pdfRepo.Update(ctx, &updated); err != nil {
		if newName != oldName {
			if rbErr := s.files.Rename(pdf.FolderID, newName, oldName); rbErr != nil {
				s.logger.Error("failed to restore file after update error",
					"id", pdf.ID,
					"folder_id", pdf.FolderID,
					"filename", newName,
					"error", rbErr,
				)
			}
		}
		return fmt.Errorf("update pdf %d: %w", pdf.ID, err)
	}

	*pdf = updated
	return nil
}
