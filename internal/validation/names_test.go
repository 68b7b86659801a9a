package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple pdf", "report.pdf", true},
		{"mixed case with hyphen and underscore", "my_file-2024.PDF", true},
		{"spaces allowed", "annual report 2024.pdf", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"forward slash", "a/b.pdf", false},
		{"backslash", `a\b.pdf`, false},
		{"traversal", "../../etc/passwd", false},
		{"null byte", "a\x00.pdf", false},
		{"newline", "a\n.pdf", false},
		{"tab", "a\t.pdf", false},
		{"markup", "<script>.pdf", false},
		{"unicode letter", "résumé.pdf", false},
		{"dot", ".", false},
		{"dot dot", "..", false},
		{"too long", strings.Repeat("a", 252) + ".pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidFilename(tt.input))
		})
	}
}

func TestValidateUploadFilename(t *testing.T) {
	assert.NoError(t, ValidateUploadFilename("x.PDF"))
	assert.NoError(t, ValidateUploadFilename("x.pdf"))
	assert.ErrorIs(t, ValidateUploadFilename("x.pdf.exe"), ErrNotPDF)
	assert.ErrorIs(t, ValidateUploadFilename("x"), ErrNotPDF)

	// Grammar failures are not reported as not-pdf
	err := ValidateUploadFilename("../x.pdf")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotPDF)
}

func TestCleanFolderName(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		got, err := CleanFolderName("  Invoices  ")
		require.NoError(t, err)
		assert.Equal(t, "Invoices", got)
	})

	t.Run("accepts 100 characters", func(t *testing.T) {
		got, err := CleanFolderName(strings.Repeat("a", 100))
		require.NoError(t, err)
		assert.Len(t, got, 100)
	})

	rejected := map[string]string{
		"empty":          "",
		"whitespace":     "   ",
		"too long":       strings.Repeat("a", 101),
		"less than":      "a<b",
		"greater than":   "a>b",
		"colon":          "C:",
		"double quote":   `say "hi"`,
		"slash":          "a/b",
		"backslash":      `a\b`,
		"pipe":           "a|b",
		"question mark":  "why?",
		"asterisk":       "all*",
		"control":        "a\x07b",
		"only forbidden": "<>",
	}
	for name, input := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := CleanFolderName(input)
			assert.Error(t, err)
		})
	}
}

func TestValidateTags(t *testing.T) {
	assert.NoError(t, ValidateTags(""))
	assert.NoError(t, ValidateTags("finance,2024"))
	assert.Error(t, ValidateTags(strings.Repeat("t", 1001)))
}
