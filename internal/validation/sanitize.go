package validation

import "html"

// Escape converts free text to its markup-safe form by escaping
// & < > " and '. It is not idempotent: apply it exactly once per field,
// at write time. The zero value maps to "".
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return html.EscapeString(text)
}
