package models

// PdfRecord is the metadata row for one uploaded PDF.
type PdfRecord struct {
	ID       int64  `json:"id" db:"id"`
	FolderID int64  `json:"folder_id" db:"folder_id"`
	Filename string `json:"filename" db:"filename"` // Also the on-disk file name inside the folder directory
	// Tags are stored HTML-escaped; never escape them again on output.
	Tags       string `json:"tags" db:"tags"`
	UploadDate string `json:"upload_date" db:"upload_date"`
}
