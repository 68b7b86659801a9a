package models

// Folder is a named container of PDFs. Its bytes live under
// {upload root}/{ID} on disk.
type Folder struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
