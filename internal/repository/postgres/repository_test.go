package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/models"
	"pdfshelf/internal/repository"
)

// These tests need a disposable database in PDFSHELF_TEST_DATABASE_URL.
func setupRepos(t *testing.T) *RepositoryConfig {
	t.Helper()
	url := os.Getenv("PDFSHELF_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PDFSHELF_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := CreateConnectionPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tables := repository.NewTableNames("test_")
	require.NoError(t, DropTables(ctx, pool, tables))
	require.NoError(t, RunSchema(ctx, pool, tables))

	return &RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRepositories_SearchIsScopedAndCaseInsensitive(t *testing.T) {
	cfg := setupRepos(t)
	ctx := context.Background()
	folders := NewFolderRepository(cfg)
	pdfs := NewPdfRepository(cfg)

	a := &models.Folder{Name: "A"}
	b := &models.Folder{Name: "B"}
	require.NoError(t, folders.Create(ctx, a))
	require.NoError(t, folders.Create(ctx, b))

	require.NoError(t, pdfs.Create(ctx, &models.PdfRecord{FolderID: a.ID, Filename: "Jan.pdf", UploadDate: "2024-01-01 00:00:00"}))
	require.NoError(t, pdfs.Create(ctx, &models.PdfRecord{FolderID: b.ID, Filename: "jan.pdf", UploadDate: "2024-01-01 00:00:00"}))
	require.NoError(t, pdfs.Create(ctx, &models.PdfRecord{FolderID: a.ID, Filename: "x.pdf", Tags: "JANUARY", UploadDate: "2024-01-01 00:00:00"}))
	require.NoError(t, pdfs.Create(ctx, &models.PdfRecord{FolderID: a.ID, Filename: "100 percent.pdf", UploadDate: "2024-01-01 00:00:00"}))

	got, err := pdfs.Search(ctx, a.ID, "jan")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, a.ID, p.FolderID)
	}

	got, err = pdfs.Search(ctx, a.ID, "%")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRepositories_FolderDeleteNeedsPdfsGone(t *testing.T) {
	cfg := setupRepos(t)
	ctx := context.Background()
	folders := NewFolderRepository(cfg)
	pdfs := NewPdfRepository(cfg)
	txm := NewTransactionManager(cfg)

	f := &models.Folder{Name: "Invoices"}
	require.NoError(t, folders.Create(ctx, f))
	require.NoError(t, pdfs.Create(ctx, &models.PdfRecord{FolderID: f.ID, Filename: "a.pdf", UploadDate: "2024-01-01 00:00:00"}))

	assert.ErrorIs(t, folders.Delete(ctx, f.ID), domain.ErrConflict)

	err := txm.ExecTx(ctx, func(ctx context.Context) error {
		n, err := pdfs.DeleteByFolder(ctx, f.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return folders.Delete(ctx, f.ID)
	})
	require.NoError(t, err)

	_, err = folders.GetByID(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
