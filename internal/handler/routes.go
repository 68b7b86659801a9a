package handler

import (
	"net/http"

	"pdfshelf/internal/httputil"
)

// HealthCheck reports that the process is serving
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes mounts every endpoint on mux
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, pdfs *PdfHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	// Folders
	mux.HandleFunc("GET /api/folders", folders.ListFolders)
	mux.HandleFunc("POST /api/folders", folders.AddFolder)
	mux.HandleFunc("GET /api/folders/{folderID}", folders.OpenFolder)
	mux.HandleFunc("DELETE /api/folders/{folderID}", folders.DeleteFolder)

	// PDFs, scoped by folder
	mux.HandleFunc("POST /api/folders/{folderID}/pdfs", pdfs.UploadPdf)
	mux.HandleFunc("GET /api/folders/{folderID}/search", pdfs.Search)
	mux.HandleFunc("DELETE /api/folders/{folderID}/pdfs/{pdfID}", pdfs.DeletePdf)
	mux.HandleFunc("PATCH /api/folders/{folderID}/pdfs/{pdfID}", pdfs.RenamePdf)
	mux.HandleFunc("GET /api/folders/{folderID}/files/{filename}", pdfs.ViewPdf)

	mux.HandleFunc("PATCH /api/pdfs/{pdfID}", pdfs.UpdatePdf)
}
