package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds cell and page identifiers.
const maxIDLength = 256

// ValidateCellID validates an identifier used for a cell or page.
//
// The rules are deliberately loose because drawio ids are arbitrary strings:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateCellID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCell, "cell id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidCell, "cell id too long (max %d characters)", maxIDLength).WithCell(id[:32] + "...")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCell, "cell id contains invalid control characters").WithCell(id)
		}
	}

	return nil
}

// ValidateStyleKey validates a style key for encoding.
// Keys must be non-empty and must not contain the ';' or '=' delimiters,
// since the style grammar has no escape mechanism.
func ValidateStyleKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidStyleValue, "style key cannot be empty")
	}
	if strings.ContainsAny(key, ";=") {
		return New(ErrCodeInvalidStyleValue, "style key %q contains a delimiter", key).WithAttr(key)
	}
	return nil
}

// ValidateStyleValue validates a style value for encoding under key.
//
// A ';' always terminates a token, so values containing it cannot be
// represented. An '=' inside a value is unambiguous because tokens split at
// the first '=' only (data URIs with base64 padding rely on this).
func ValidateStyleValue(key, value string) error {
	if strings.ContainsRune(value, ';') {
		return New(ErrCodeInvalidStyleValue, "style value for %q contains ';'", key).WithAttr(key)
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in config.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
