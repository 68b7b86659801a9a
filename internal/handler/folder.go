package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/services"
	"pdfshelf/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// ListFolders returns all folders
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folderService.ListFolders(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "", folders)
}

// AddFolder creates a folder
// POST /api/folders
func (h *FolderHandler) AddFolder(w http.ResponseWriter, r *http.Request) {
	var req services.AddFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, domain.NewValidation("invalid request body"))
		return
	}

	folder, err := h.folderService.AddFolder(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusCreated, fmt.Sprintf("folder %q created", folder.Name), folder)
}

// OpenFolder returns a folder with its PDFs
// GET /api/folders/{folderID}
func (h *FolderHandler) OpenFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	contents, err := h.folderService.OpenFolder(r.Context(), folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusOK, "", contents)
}

// DeleteFolder deletes a folder, its PDFs and its directory
// DELETE /api/folders/{folderID}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := httputil.PathID(r, "folderID")
	if !ok {
		respondNotFound(w, r)
		return
	}

	result, err := h.folderService.DeleteFolder(r.Context(), folderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	message := fmt.Sprintf("folder %q deleted", result.Folder.Name)
	if !result.DirectoryRemoved {
		message = fmt.Sprintf("folder %q deleted, but its directory could not be removed; check permissions", result.Folder.Name)
	}
	httputil.RespondSuccess(w, http.StatusOK, message, result)
}
