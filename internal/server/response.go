package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/observability"
)

// errorBody is the JSON form of a failed request.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	CellID  string      `json:"cell_id,omitempty"`
	PageID  string      `json:"page_id,omitempty"`
}

// statusFor maps an error to an HTTP status by its category.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	code := errors.GetCode(err)
	switch code.Category() {
	case errors.CategoryFormat, errors.CategoryCodec, errors.CategoryValidation,
		errors.CategoryGraph, errors.CategorySerialize:
		return http.StatusUnprocessableEntity
	}
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	body := errorBody{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
		CellID:  errors.CellOf(err),
		PageID:  errors.PageOf(err),
	}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	if status == http.StatusRequestEntityTooLarge {
		body.Code = errors.ErrCodeInvalidInput
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
