// Package repository holds what the store implementations share: prefixed
// table names and LIKE pattern escaping.
package repository

import (
	"fmt"
	"strings"
)

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders string
	Pdfs    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders: fmt.Sprintf("%sfolders", prefix),
		Pdfs:    fmt.Sprintf("%spdfs", prefix),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE pattern matching q as a literal substring.
// Queries using it must declare ESCAPE '\'.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
