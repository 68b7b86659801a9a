package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"pdfshelf/internal/domain"
	"pdfshelf/internal/domain/repositories"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// BlobStore keeps PDF bytes in {root}/{folderID}/{filename}. It implements
// repositories.FileStore.
type BlobStore struct {
	root   *PathGuard
	logger *slog.Logger
}

// NewBlobStore creates the upload root if needed and guards it.
func NewBlobStore(root string, logger *slog.Logger) (*BlobStore, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	guard, err := NewPathGuard(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	return &BlobStore{root: guard, logger: logger}, nil
}

// Root returns the normalized upload root.
func (s *BlobStore) Root() string {
	return s.root.Base()
}

// folderGuard resolves the folder directory and returns a guard rooted there.
func (s *BlobStore) folderGuard(folderID int64) (*PathGuard, error) {
	dir, err := s.root.Resolve(strconv.FormatInt(folderID, 10))
	if err != nil {
		return nil, err
	}
	return s.root.sub(dir), nil
}

// ResolveFile maps a filename to its absolute path inside the folder directory.
func (s *BlobStore) ResolveFile(folderID int64, filename string) (string, error) {
	guard, err := s.folderGuard(folderID)
	if err != nil {
		return "", err
	}
	return guard.Resolve(filename)
}

// CreateFolderDir creates the folder directory; an existing one is kept.
func (s *BlobStore) CreateFolderDir(folderID int64) error {
	guard, err := s.folderGuard(folderID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(guard.Base(), dirPerm); err != nil {
		return classify("create folder directory", err)
	}
	return nil
}

// RemoveFolderDir removes the folder directory and everything in it.
// A directory that is already gone is not an error.
func (s *BlobStore) RemoveFolderDir(folderID int64) error {
	guard, err := s.folderGuard(folderID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(guard.Base()); err != nil {
		return classify("remove folder directory", err)
	}
	return nil
}

// Write stores r as filename in the folder directory and returns the number
// of bytes written. The bytes land in a temp file that is renamed into place,
// so readers never see a partial file and the last writer wins.
func (s *BlobStore) Write(folderID int64, filename string, r io.Reader) (int64, error) {
	path, err := s.ResolveFile(folderID, filename)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return 0, classify("create folder directory", err)
	}

	tmp := filepath.Join(dir, ".upload-"+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return 0, classify("write", err)
	}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Warn("failed to remove temp upload", "path", tmp, "error", rmErr)
		}
		return 0, classify("write", err)
	}

	return n, nil
}

// Remove deletes one file. A missing file yields a FilesystemError of kind
// FileMissing so callers can decide to tolerate it.
func (s *BlobStore) Remove(folderID int64, filename string) error {
	guard, err := s.folderGuard(folderID)
	if err != nil {
		return err
	}
	path, err := entryPath(guard, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return classify("remove", err)
	}
	return nil
}

// Rename moves oldName to newName inside one folder directory. Both names
// are resolved before anything is touched. An existing, different file at
// newName is never overwritten.
func (s *BlobStore) Rename(folderID int64, oldName, newName string) error {
	guard, err := s.folderGuard(folderID)
	if err != nil {
		return err
	}
	oldPath, err := entryPath(guard, oldName)
	if err != nil {
		return err
	}
	newPath, err := entryPath(guard, newName)
	if err != nil {
		return err
	}
	if oldPath == newPath {
		return nil
	}

	oldInfo, err := os.Lstat(oldPath)
	if err != nil {
		return classify("rename", err)
	}
	if newInfo, err := os.Lstat(newPath); err == nil {
		// Case-only renames on case-insensitive filesystems point at the same file
		if !os.SameFile(oldInfo, newInfo) {
			return &domain.FilesystemError{Op: "rename", Kind: domain.FileExists, Err: fs.ErrExist}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return classify("rename", err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return classify("rename", err)
	}
	return nil
}

// Open opens a stored regular file for reading. The caller closes it.
func (s *BlobStore) Open(folderID int64, filename string) (*os.File, fs.FileInfo, error) {
	path, err := s.ResolveFile(folderID, filename)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, classify("open", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, classify("open", err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, &domain.FilesystemError{Op: "open", Kind: domain.FileMissing, Err: fs.ErrNotExist}
	}
	return f, info, nil
}

// entryPath returns the path of the directory entry for name itself. The
// full path must pass the guard, but a symlink in the last element is not
// followed, so removing or renaming acts on the link and not on its target.
func entryPath(guard *PathGuard, name string) (string, error) {
	if _, err := guard.Resolve(name); err != nil {
		return "", err
	}
	cleaned := filepath.Clean(name)
	dir := guard.Base()
	if parent := filepath.Dir(cleaned); parent != "." {
		resolved, err := guard.Resolve(parent)
		if err != nil {
			return "", err
		}
		dir = resolved
	}
	return filepath.Join(dir, filepath.Base(cleaned)), nil
}

// classify wraps an os error in a FilesystemError with a caller-facing kind.
func classify(op string, err error) error {
	kind := domain.FileOtherFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = domain.FileMissing
	case errors.Is(err, fs.ErrPermission):
		kind = domain.FilePermission
	case errors.Is(err, fs.ErrExist):
		kind = domain.FileExists
	}
	return &domain.FilesystemError{Op: op, Kind: kind, Err: err}
}

var _ repositories.FileStore = (*BlobStore)(nil)
