package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/normalize"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr    *ErrValidation
		saveErr   *types.ValidationError
		flagErr   *visibility.UnknownFlagError
		normErr   *normalize.NormalizationError
		exportErr *export.Error
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, builder.ErrSaveInProgress), errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &reqErr), errors.As(err, &saveErr), errors.As(err, &flagErr):
		return http.StatusBadRequest
	case errors.As(err, &normErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &exportErr):
		if exportErr.Cause == nil {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the JSON error payload. Section failures carry the section
// name and whether retrying can help.
func errorBody(err error) map[string]any {
	body := map[string]any{"error": err.Error()}

	var secErr *builder.SectionError
	if errors.As(err, &secErr) {
		body["section"] = secErr.Section
		body["retryable"] = secErr.Retryable()
	}
	var exportErr *export.Error
	if errors.As(err, &exportErr) {
		body["retryable"] = exportErr.Retryable()
	}
	var saveErr *types.ValidationError
	if errors.As(err, &saveErr) {
		body["fields"] = saveErr.Errors
	}
	return body
}

// writeError maps err to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	}
	s.jsonResponse(w, status, errorBody(err))
}

// sectionErrors renders load failures for inclusion in a response.
func sectionErrors(errs []*builder.SectionError) []map[string]any {
	out := make([]map[string]any, 0, len(errs))
	for _, e := range errs {
		out = append(out, errorBody(e))
	}
	return out
}
