package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/middleware"
	"pdfshelf/internal/repository"
	"pdfshelf/internal/repository/sqlite"
	"pdfshelf/internal/service"
	"pdfshelf/internal/storage"
)

type testServer struct {
	handler http.Handler
	root    string
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(dir, "pdfshelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	tables := repository.NewTableNames("test_")
	require.NoError(t, sqlite.RunSchema(context.Background(), db, tables))
	repoCfg := &sqlite.RepositoryConfig{DB: db, Tables: tables, Logger: logger}

	folderRepo := sqlite.NewFolderRepository(repoCfg)
	pdfRepo := sqlite.NewPdfRepository(repoCfg)
	blobs, err := storage.NewBlobStore(filepath.Join(dir, "uploads"), logger)
	require.NoError(t, err)

	guard := service.NewAccessGuard(folderRepo, logger)
	folderService := service.NewFolderService(folderRepo, pdfRepo, blobs, sqlite.NewTransactionManager(repoCfg), guard, logger)
	pdfService := service.NewPdfService(pdfRepo, blobs, guard, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewFolderHandler(folderService, logger), NewPdfHandler(pdfService, maxUpload, logger))

	return &testServer{
		handler: middleware.RequestLogger(logger)(mux),
		root:    blobs.Root(),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, strings.NewReader(body), "application/json")
}

func (s *testServer) upload(t *testing.T, folderID int64, filename, tags string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tags", tags))
	if filename != "" {
		part, err := mw.CreateFormFile("pdf_file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return s.do(t, http.MethodPost, fmt.Sprintf("/api/folders/%d/pdfs", folderID), &buf, mw.FormDataContentType())
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type problem struct {
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id"`
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

func (s *testServer) addFolder(t *testing.T, name string) models.Folder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)
	rec := s.doJSON(t, http.MethodPost, "/api/folders", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Folder](t, rec).Data
}

func TestEndToEnd(t *testing.T) {
	srv := newTestServer(t, 1<<20)

	folder := srv.addFolder(t, "Invoices")

	rec := srv.upload(t, folder.ID, "jan.pdf", "finance,2024", []byte("%PDF-1.4 jan"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pdf := decode[models.PdfRecord](t, rec).Data
	assert.Equal(t, "jan.pdf", pdf.Filename)
	assert.Equal(t, "finance,2024", pdf.Tags)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d/search?query=jan", folder.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[struct {
		Query string             `json:"query"`
		Pdfs  []models.PdfRecord `json:"pdfs"`
	}](t, rec).Data
	require.Len(t, found.Pdfs, 1)
	assert.Equal(t, pdf.ID, found.Pdfs[0].ID)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d/files/jan.pdf", folder.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=jan.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 jan", rec.Body.String())

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/folders/%d/pdfs/%d", folder.ID, pdf.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d/search?query=jan", folder.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pdfs":[]`)
}

func TestListAndOpenFolders(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	a := srv.addFolder(t, "A")
	b := srv.addFolder(t, "B")

	rec := srv.do(t, http.MethodGet, "/api/folders", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Folder{a, b}, decode[[]models.Folder](t, rec).Data)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d", a.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pdfs":[]`)
}

func TestNotFoundIsUniform(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	folder := srv.addFolder(t, "A")
	other := srv.addFolder(t, "B")
	rec := srv.upload(t, folder.ID, "a.pdf", "", []byte("x"))
	require.Equal(t, http.StatusCreated, rec.Code)
	pdf := decode[models.PdfRecord](t, rec).Data

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/folders/999"},
		{http.MethodGet, "/api/folders/abc"},
		{http.MethodGet, "/api/folders/-1"},
		{http.MethodDelete, "/api/folders/999"},
		{http.MethodGet, "/api/folders/999/search?query=a"},
		{http.MethodGet, fmt.Sprintf("/api/folders/%d/files/missing.pdf", folder.ID)},
		{http.MethodGet, fmt.Sprintf("/api/folders/%d/files/..%%2F..%%2Fpdfshelf.db", folder.ID)},
		{http.MethodGet, fmt.Sprintf("/api/folders/%d/files/a.pdf", other.ID)},
		{http.MethodDelete, fmt.Sprintf("/api/folders/%d/pdfs/%d", other.ID, pdf.ID)},
	}

	for _, tt := range requests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, nil, "")
			require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
			p := decodeProblem(t, rec)
			assert.Equal(t, domain.NotFoundMessage, p.Detail)
			assert.NotEmpty(t, p.RequestID)
		})
	}

	_, err := os.Stat(filepath.Join(srv.root, strconv.FormatInt(folder.ID, 10), "a.pdf"))
	assert.NoError(t, err)
}

func TestAddFolder_Validation(t *testing.T) {
	srv := newTestServer(t, 1<<20)

	for _, body := range []string{`{"name":""}`, `{"name":"a/b"}`, `{"name":"<script>"}`, `not json`, `{"name":"a","extra":1}`} {
		rec := srv.doJSON(t, http.MethodPost, "/api/folders", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestUpload_Rejections(t *testing.T) {
	srv := newTestServer(t, 1024)
	folder := srv.addFolder(t, "A")

	rec := srv.upload(t, folder.ID, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file selected", decodeProblem(t, rec).Detail)

	rec = srv.upload(t, folder.ID, "notes.txt", "", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "only PDF files are allowed", decodeProblem(t, rec).Detail)

	rec = srv.upload(t, folder.ID, "big.pdf", "", bytes.Repeat([]byte("x"), 8<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/folders/%d/pdfs", folder.ID), strings.NewReader("x"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.upload(t, 999, "a.pdf", "", []byte("x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_PathInFilenameIsRejected(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	folder := srv.addFolder(t, "A")

	for _, name := range []string{"../../evil.pdf", "a/b.pdf", "sub/dir/x.pdf", `..\evil.pdf`} {
		rec := srv.upload(t, folder.ID, name, "", []byte("%PDF-1.4"))
		require.Equal(t, http.StatusBadRequest, rec.Code, "%s: %s", name, rec.Body.String())
		assert.True(t, strings.HasPrefix(decodeProblem(t, rec).Detail, "invalid filename"), name)
	}

	entries, err := os.ReadDir(filepath.Join(srv.root, strconv.FormatInt(folder.ID, 10)))
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = os.Stat(filepath.Join(filepath.Dir(srv.root), "evil.pdf"))
	assert.True(t, os.IsNotExist(err))

	rec := srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d", folder.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pdfs":[]`)
}

func TestRenameAndUpdate(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	folder := srv.addFolder(t, "A")
	rec := srv.upload(t, folder.ID, "a.pdf", "<i>x</i>", []byte("a"))
	require.Equal(t, http.StatusCreated, rec.Code)
	pdf := decode[models.PdfRecord](t, rec).Data
	assert.Equal(t, "&lt;i&gt;x&lt;/i&gt;", pdf.Tags)

	path := fmt.Sprintf("/api/folders/%d/pdfs/%d", folder.ID, pdf.ID)

	rec = srv.doJSON(t, http.MethodPatch, path, `{"new_name":"../../evil"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.doJSON(t, http.MethodPatch, path, `{"new_name":"b.pdf"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "b.pdf", decode[models.PdfRecord](t, rec).Data.Filename)

	rec = srv.upload(t, folder.ID, "c.pdf", "", []byte("c"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = srv.doJSON(t, http.MethodPatch, path, `{"new_name":"c.pdf"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.doJSON(t, http.MethodPatch, fmt.Sprintf("/api/pdfs/%d", pdf.ID), `{"filename":"d.pdf","tags":"q1 & q2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.PdfRecord](t, rec).Data
	assert.Equal(t, "d.pdf", updated.Filename)
	assert.Equal(t, "q1 &amp; q2", updated.Tags)

	data, err := os.ReadFile(filepath.Join(srv.root, strconv.FormatInt(folder.ID, 10), "d.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	rec = srv.doJSON(t, http.MethodPatch, "/api/pdfs/999", `{"filename":"e.pdf","tags":""}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFolder(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	folder := srv.addFolder(t, "A")
	require.Equal(t, http.StatusCreated, srv.upload(t, folder.ID, "a.pdf", "", []byte("a")).Code)

	rec := srv.do(t, http.MethodDelete, fmt.Sprintf("/api/folders/%d", folder.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[struct {
		PdfsDeleted      int64 `json:"pdfs_deleted"`
		DirectoryRemoved bool  `json:"directory_removed"`
	}](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, int64(1), env.Data.PdfsDeleted)
	assert.True(t, env.Data.DirectoryRemoved)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/folders/%d", folder.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, 1<<20)

	rec := srv.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
