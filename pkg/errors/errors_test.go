package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestErrorContext(t *testing.T) {
	err := New(ErrCodeDuplicateID, "cell already exists").WithPage("p1").WithCell("7").WithAttr("id")

	expected := "DUPLICATE_ID: cell already exists (page=p1 cell=7 attr=id)"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if got := UserMessage(err); got != "cell already exists (page=p1 cell=7 attr=id)" {
		t.Errorf("UserMessage() = %v", got)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeUnparseableXML, cause, "failed to parse")

	if err.Code != ErrCodeUnparseableXML {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnparseableXML)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeUnknownParent, "parent missing").WithCell("5").WithAttr("parent")
	outer := Wrap(ErrCodeValidationFailed, inner, "page invalid").WithPage("p1")

	if outer.CellID != "5" || outer.Attr != "parent" || outer.PageID != "p1" {
		t.Errorf("context = %q/%q/%q", outer.CellID, outer.Attr, outer.PageID)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeCycleDetected,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeSerializeValidationFailed, New(ErrCodeValidationFailed, "inner"), "outer"),
			code:     ErrCodeSerializeValidationFailed,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeSerializeValidationFailed, New(ErrCodeValidationFailed, "inner"), "outer"),
			code:     ErrCodeValidationFailed,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("read: %w", New(ErrCodeInflateFailure, "bad stream")),
			code:     ErrCodeInflateFailure,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeDuplicateID, "test"),
			expected: ErrCodeDuplicateID,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{ErrCodeInvalidBase64, CategoryCodec},
		{ErrCodeExpansionLimitExceeded, CategoryCodec},
		{ErrCodeInvalidStyleValue, CategoryCodec},
		{ErrCodeCycleDetected, CategoryGraph},
		{ErrCodeValidationFailed, CategoryValidation},
		{ErrCodeUnparseableXML, CategoryFormat},
		{ErrCodeSerializeValidationFailed, CategorySerialize},
		{ErrCodeInvalidInput, CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.want {
				t.Errorf("Category() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := CategoryOf(errors.New("plain")); got != CategoryGeneric {
		t.Errorf("CategoryOf(plain) = %v", got)
	}
}

func TestCellOf(t *testing.T) {
	err := fmt.Errorf("parse: %w", Wrap(ErrCodeValidationFailed, New(ErrCodeUnknownParent, "x").WithCell("9"), "page"))
	if got := CellOf(err); got != "9" {
		t.Errorf("CellOf() = %q, want 9", got)
	}
	if got := CellOf(errors.New("plain")); got != "" {
		t.Errorf("CellOf(plain) = %q", got)
	}
}

func TestPageOf(t *testing.T) {
	err := fmt.Errorf("read: %w", Wrap(ErrCodeInvalidBase64, New(ErrCodeInvalidBase64, "bad").WithPage("p2"), "content"))
	if got := PageOf(err); got != "p2" {
		t.Errorf("PageOf() = %q, want p2", got)
	}
	if got := PageOf(New(ErrCodeInternal, "x")); got != "" {
		t.Errorf("PageOf(no page) = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
