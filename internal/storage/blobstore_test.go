package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfshelf/internal/domain"
)

func newStore(t *testing.T) *BlobStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewBlobStore(filepath.Join(t.TempDir(), "uploads"), logger)
	require.NoError(t, err)
	return s
}

func readFile(t *testing.T, s *BlobStore, folderID int64, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Root(), strconv.FormatInt(folderID, 10), name))
	require.NoError(t, err)
	return string(data)
}

func TestBlobStore_WriteAndOpen(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateFolderDir(1))

	n, err := s.Write(1, "jan.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "%PDF-1.4", readFile(t, s, 1, "jan.pdf"))

	f, info, err := s.Open(1, "jan.pdf")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, int64(8), info.Size())
	assert.Equal(t, "jan.pdf", info.Name())

	entries, err := os.ReadDir(filepath.Join(s.Root(), "1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestBlobStore_WriteLastWriterWins(t *testing.T) {
	s := newStore(t)

	_, err := s.Write(2, "a.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	_, err = s.Write(2, "a.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	assert.Equal(t, "second", readFile(t, s, 2, "a.pdf"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestBlobStore_WriteFailureLeavesNothing(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateFolderDir(3))

	_, err := s.Write(3, "a.pdf", failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFilesystem)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "3"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBlobStore_RejectsTraversal(t *testing.T) {
	s := newStore(t)

	_, err := s.Write(1, "../../evil.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrPathRejected)

	_, err = s.Write(1, "../2/evil.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrPathRejected)

	err = s.Remove(1, "../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrPathRejected)

	_, _, err = s.Open(1, "..")
	assert.ErrorIs(t, err, domain.ErrPathRejected)
}

func TestBlobStore_RemoveMissingIsClassified(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateFolderDir(1))

	err := s.Remove(1, "gone.pdf")
	var fsErr *domain.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, domain.FileMissing, fsErr.Kind)
}

func TestBlobStore_Rename(t *testing.T) {
	s := newStore(t)
	_, err := s.Write(1, "old.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, s.Rename(1, "old.pdf", "new.pdf"))
	assert.Equal(t, "data", readFile(t, s, 1, "new.pdf"))
	_, err = os.Stat(filepath.Join(s.Root(), "1", "old.pdf"))
	assert.True(t, os.IsNotExist(err))

	// same name is a no-op
	require.NoError(t, s.Rename(1, "new.pdf", "new.pdf"))
}

func TestBlobStore_RenameRefusesOverwrite(t *testing.T) {
	s := newStore(t)
	_, err := s.Write(1, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = s.Write(1, "b.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	err = s.Rename(1, "a.pdf", "b.pdf")
	var fsErr *domain.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, domain.FileExists, fsErr.Kind)
	assert.Equal(t, "b", readFile(t, s, 1, "b.pdf"))
	assert.Equal(t, "a", readFile(t, s, 1, "a.pdf"))
}

func TestBlobStore_RenameMissingSource(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateFolderDir(1))

	err := s.Rename(1, "missing.pdf", "new.pdf")
	var fsErr *domain.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, domain.FileMissing, fsErr.Kind)
}

func TestBlobStore_RenameRejectsEitherPath(t *testing.T) {
	s := newStore(t)
	_, err := s.Write(1, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Rename(1, "a.pdf", "../../evil"), domain.ErrPathRejected)
	assert.ErrorIs(t, s.Rename(1, "../../x", "b.pdf"), domain.ErrPathRejected)
	assert.Equal(t, "a", readFile(t, s, 1, "a.pdf"))
}

func TestBlobStore_RenameAndRemoveActOnLinkItself(t *testing.T) {
	s := newStore(t)
	_, err := s.Write(1, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	dir := filepath.Join(s.Root(), "1")
	require.NoError(t, os.Symlink(filepath.Join(dir, "a.pdf"), filepath.Join(dir, "link.pdf")))

	require.NoError(t, s.Rename(1, "link.pdf", "moved.pdf"))
	info, err := os.Lstat(filepath.Join(dir, "moved.pdf"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "the link was moved, not its target")
	assert.Equal(t, "a", readFile(t, s, 1, "a.pdf"))

	require.NoError(t, s.Remove(1, "moved.pdf"))
	_, err = os.Lstat(filepath.Join(dir, "moved.pdf"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "a", readFile(t, s, 1, "a.pdf"))
}

func TestBlobStore_OpenDirectoryIsMissing(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "1", "sub.pdf"), 0o750))

	_, _, err := s.Open(1, "sub.pdf")
	var fsErr *domain.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, domain.FileMissing, fsErr.Kind)
}

func TestBlobStore_RemoveFolderDir(t *testing.T) {
	s := newStore(t)
	_, err := s.Write(4, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveFolderDir(4))
	_, err = os.Stat(filepath.Join(s.Root(), "4"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	require.NoError(t, s.RemoveFolderDir(4))
}
