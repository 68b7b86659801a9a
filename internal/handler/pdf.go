package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/services"
	"pdfshelf/internal/httputil"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

// PdfHandler handles PDF HTTP requests
type PdfHandler struct {
	pdfService     services.PdfService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewPdfHandler creates a new PDF handler
func NewPdfHandler(pdfService services.PdfService, maxUploadBytes int64, logger *slog.Logger) *PdfHandler {
	return &PdfHandler{
		pdfService:     pdfService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadPdf stores an uploaded PDF
// POST /api/folders/{folderID}/pdfs (multipart: pdf_file, tags)
func (h *PdfHandler) UploadPdf(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, r, h.logger, err)
			return
		}
		handleError(w, r, h.logger, domain.NewValidation("invalid upload form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := &services.UploadPdfRequest{
		FolderID: folderID,
		Tags:     r.FormValue("tags"),
	}

	file, header, err := r.FormFile("pdf_file")
	switch {
	case err == nil:
		defer file.Close()
		req.Filename = rawFilename(header)
		req.Content = file
	case errors.Is(err, http.ErrMissingFile):
		// the service answers with "no file selected"
	default:
		handleError(w, r, h.logger, domain.NewValidation("invalid upload form"))
		return
	}

	pdf, err := h.pdfService.UploadPdf(r.Context(), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusCreated, fmt.Sprintf("pdf %q uploaded", pdf.Filename), pdf)
}

// rawFilename returns the filename exactly as the client sent it.
// FileHeader.Filename keeps only the last path element, which would let
// "../x.pdf" pass validation as "x.pdf".
func rawFilename(header *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(header.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}

// DeletePdf deletes a PDF of a folder
// DELETE /api/folders/{folderID}/pdfs/{pdfID}
func (h *PdfHandler) DeletePdf(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}
	pdfID, ok := httputil.PathID(r, "pdfID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	result, err := h.pdfService.DeletePdf(r.Context(), pdfID, folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, fmt.Sprintf("pdf %q deleted", result.Pdf.Filename), result)
}

// RenamePdf renames a PDF of a folder
// PATCH /api/folders/{folderID}/pdfs/{pdfID}
func (h *PdfHandler) RenamePdf(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}
	pdfID, ok := httputil.PathID(r, "pdfID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	var req services.RenamePdfRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, domain.NewValidation("invalid request body"))
		return
	}
	req.PdfID = pdfID
	req.FolderID = folderID

	pdf, err := h.pdfService.RenamePdf(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, fmt.Sprintf("pdf renamed to %q", pdf.Filename), pdf)
}

// UpdatePdf replaces filename and tags of a PDF
// PATCH /api/pdfs/{pdfID}
func (h *PdfHandler) UpdatePdf(w http.ResponseWriter, r *http.Request) {
	pdfID, ok := httputil.PathID(r, "pdfID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	var req services.UpdatePdfRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, domain.NewValidation("invalid request body"))
		return
	}
	req.PdfID = pdfID

	pdf, err := h.pdfService.UpdatePdf(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "pdf updated", pdf)
}

// Search lists PDFs of a folder matching the query
// GET /api/folders/{folderID}/search?query=
func (h *PdfHandler) Search(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	result, err := h.pdfService.Search(r.Context(), folderID, r.URL.Query().Get("query"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "", result)
}

// ViewPdf streams a stored PDF inline
// GET /api/folders/{folderID}/files/{filename}
func (h *PdfHandler) ViewPdf(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	file, err := h.pdfService.ViewPdf(r.Context(), folderID, r.PathValue("filename"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	defer file.Content.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, file.Name, file.ModTime, file.Content)
}
