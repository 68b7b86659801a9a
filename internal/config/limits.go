package config

const (
	// MaxFolderNameLength is the maximum length for folder names, counted in
	// characters before trimming.
	MaxFolderNameLength = 100

	// MaxFilenameLength is the maximum length for stored PDF filenames.
	// Most filesystems cap a single path segment at 255 bytes.
	MaxFilenameLength = 255

	// MaxTagsLength is the maximum length for the raw tags field.
	MaxTagsLength = 1000

	// UploadDateLayout is the layout used for PdfRecord.UploadDate.
	UploadDateLayout = "2006-01-02 15:04:05"
)
