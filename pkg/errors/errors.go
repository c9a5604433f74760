// Package errors provides structured error types for drawkit.
//
// Every failure raised by the codec, graph, parser and serializer packages is
// an [*Error] carrying a machine-readable [Code] plus enough context (cell id,
// page id, offending attribute) to diagnose the problem without re-parsing
// the input.
//
// # Error Codes
//
// Codes are grouped into categories that mirror the layers of the transcoder:
//   - codec: base64, deflate and style-string failures
//   - graph: mutations that would break the cell tree
//   - validation: integrity violations found by the validator
//   - format: malformed or incomplete drawio XML
//   - serialize: failures while writing a document back out
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateID, "cell %q already exists", id).WithCell(id)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // Handle duplicate
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUnparseableXML, origErr, "page %q content", name)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Codec errors
	ErrCodeInvalidBase64          Code = "INVALID_BASE64"
	ErrCodeInflateFailure         Code = "INFLATE_FAILURE"
	ErrCodeDeflateFailure         Code = "DEFLATE_FAILURE"
	ErrCodeExpansionLimitExceeded Code = "EXPANSION_LIMIT_EXCEEDED"
	ErrCodeInvalidStyleValue      Code = "INVALID_STYLE_VALUE"

	// Graph errors
	ErrCodeDuplicateID   Code = "DUPLICATE_ID"
	ErrCodeUnknownParent Code = "UNKNOWN_PARENT"
	ErrCodeCycleDetected Code = "CYCLE_DETECTED"
	ErrCodeUnknownCell   Code = "UNKNOWN_CELL"
	ErrCodeInvalidCell   Code = "INVALID_CELL"

	// Validation errors
	ErrCodeValidationFailed Code = "VALIDATION_FAILED"

	// Format errors
	ErrCodeUnparseableXML      Code = "UNPARSEABLE_XML"
	ErrCodeMissingAttribute    Code = "MISSING_ATTRIBUTE"
	ErrCodeUnrecognizedElement Code = "UNRECOGNIZED_ELEMENT"
	ErrCodeInvalidAttribute    Code = "INVALID_ATTRIBUTE"

	// Serialize errors
	ErrCodeSerializeValidationFailed Code = "SERIALIZE_VALIDATION_FAILED"
	ErrCodeSerializeFailure          Code = "SERIALIZE_FAILURE"

	// Generic errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
)

// Category groups related codes.
type Category string

// Error categories.
const (
	CategoryCodec      Category = "codec"
	CategoryGraph      Category = "graph"
	CategoryValidation Category = "validation"
	CategoryFormat     Category = "format"
	CategorySerialize  Category = "serialize"
	CategoryGeneric    Category = "generic"
)

var categories = map[Code]Category{
	ErrCodeInvalidBase64:             CategoryCodec,
	ErrCodeInflateFailure:            CategoryCodec,
	ErrCodeDeflateFailure:            CategoryCodec,
	ErrCodeExpansionLimitExceeded:    CategoryCodec,
	ErrCodeInvalidStyleValue:         CategoryCodec,
	ErrCodeDuplicateID:               CategoryGraph,
	ErrCodeUnknownParent:             CategoryGraph,
	ErrCodeCycleDetected:             CategoryGraph,
	ErrCodeUnknownCell:               CategoryGraph,
	ErrCodeInvalidCell:               CategoryGraph,
	ErrCodeValidationFailed:          CategoryValidation,
	ErrCodeUnparseableXML:            CategoryFormat,
	ErrCodeMissingAttribute:          CategoryFormat,
	ErrCodeUnrecognizedElement:       CategoryFormat,
	ErrCodeInvalidAttribute:          CategoryFormat,
	ErrCodeSerializeValidationFailed: CategorySerialize,
	ErrCodeSerializeFailure:          CategorySerialize,
}

// Category returns the category the code belongs to.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryGeneric
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	PageID string // Page the failure belongs to (optional)
	CellID string // Offending cell (optional)
	Attr   string // Offending attribute or style key (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if ctx := e.context(); ctx != "" {
		b.WriteString(" (")
		b.WriteString(ctx)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) context() string {
	var parts []string
	if e.PageID != "" {
		parts = append(parts, "page="+e.PageID)
	}
	if e.CellID != "" {
		parts = append(parts, "cell="+e.CellID)
	}
	if e.Attr != "" {
		parts = append(parts, "attr="+e.Attr)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCell records the offending cell id and returns e.
func (e *Error) WithCell(id string) *Error {
	e.CellID = id
	return e
}

// WithPage records the page id and returns e.
func (e *Error) WithPage(id string) *Error {
	e.PageID = id
	return e
}

// WithAttr records the offending attribute name and returns e.
func (e *Error) WithAttr(name string) *Error {
	e.Attr = name
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
// Cell, page and attribute context is inherited from cause when it is an *Error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
	var inner *Error
	if errors.As(cause, &inner) {
		e.PageID = inner.PageID
		e.CellID = inner.CellID
		e.Attr = inner.Attr
	}
	return e
}

// Is reports whether err has the given error code.
// It walks the whole error chain, so a wrapped code is found even when
// an outer *Error carries a different one.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// CategoryOf returns the category of the outermost *Error in err's chain.
func CategoryOf(err error) Category {
	if code := GetCode(err); code != "" {
		return code.Category()
	}
	return CategoryGeneric
}

// CellOf returns the first cell id recorded in err's chain.
func CellOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.CellID != "" {
			return e.CellID
		}
		err = e.Cause
	}
	return ""
}

// PageOf returns the first page id recorded in err's chain.
func PageOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.PageID != "" {
			return e.PageID
		}
		err = e.Cause
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if ctx := e.context(); ctx != "" {
			return e.Message + " (" + ctx + ")"
		}
		return e.Message
	}
	return err.Error()
}
