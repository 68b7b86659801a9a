// Package validation holds the allow-list rules applied to every
// client-supplied folder name, filename and free-text field.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	v "github.com/go-ozzo/ozzo-validation/v4"

	"pdfshelf/internal/config"
)

var (
	// Letters, digits, underscore, hyphen, period and space. No separators.
	safeFilenamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-. ]+$`)

	// ErrNotPDF is returned by ValidateUploadFilename for a valid name without a .pdf suffix.
	ErrNotPDF = errors.New("only PDF files are allowed")
)

// forbiddenFolderChars may never appear in a folder name.
const forbiddenFolderChars = `<>:"/\|?*`

var notBlank = v.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

var notDotSegment = v.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "." || s == ".." {
		return errors.New("is not a file name")
	}
	return nil
})

var noForbiddenFolderChars = v.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, forbiddenFolderChars) {
		return errors.New(`cannot contain any of < > : " / \ | ? *`)
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return errors.New("cannot contain control characters")
	}
	return nil
})

// ValidateFilename checks name against the safe-filename grammar.
func ValidateFilename(name string) error {
	return v.Validate(name,
		v.Required,
		notBlank,
		v.RuneLength(1, config.MaxFilenameLength),
		v.Match(safeFilenamePattern).Error("must contain only letters, digits, spaces, '_', '-' and '.'"),
		notDotSegment,
	)
}

// IsValidFilename reports whether name passes ValidateFilename.
func IsValidFilename(name string) bool {
	return ValidateFilename(name) == nil
}

// HasPDFExtension reports whether name ends in .pdf, ignoring case.
func HasPDFExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// ValidateUploadFilename applies the grammar check and then the .pdf suffix
// check. Both must pass; a grammar failure is reported first.
func ValidateUploadFilename(name string) error {
	if err := ValidateFilename(name); err != nil {
		return err
	}
	if !HasPDFExtension(name) {
		return ErrNotPDF
	}
	return nil
}

// CleanFolderName validates a raw folder name and returns it trimmed.
// Names with forbidden characters are rejected rather than rewritten.
func CleanFolderName(name string) (string, error) {
	err := v.Validate(name,
		v.Required,
		v.RuneLength(1, config.MaxFolderNameLength),
		notBlank,
		noForbiddenFolderChars,
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// ValidateTags bounds the raw tags field before it is escaped.
func ValidateTags(tags string) error {
	return v.Validate(tags, v.RuneLength(0, config.MaxTagsLength))
}
