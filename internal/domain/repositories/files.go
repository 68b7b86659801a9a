package repositories

import (
	"io"
	"io/fs"
	"os"
)

// FileStore owns the per-folder directories holding PDF bytes. Every name
// is resolved inside the folder directory before the filesystem is touched;
// escapes fail with domain.ErrPathRejected and OS failures with a
// *domain.FilesystemError.
type FileStore interface {
	CreateFolderDir(folderID int64) error
	RemoveFolderDir(folderID int64) error
	Write(folderID int64, filename string, r io.Reader) (int64, error)
	Remove(folderID int64, filename string) error
	Rename(folderID int64, oldName, newName string) error
	Open(folderID int64, filename string) (*os.File, fs.FileInfo, error)
}
