package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/normalize"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "section", Message: "unknown section hobbies"}
	assert.Equal(t, "validation error: section - unknown section hobbies", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	saveErr := &types.ValidationError{Errors: []types.FieldError{{Field: "title", Rule: "required"}}}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", fmt.Errorf("failed to load cv: %w", db.ErrNotFound), http.StatusNotFound},
		{"name conflict", fmt.Errorf("company \"Acme\": %w", db.ErrConflict), http.StatusConflict},
		{"save in progress", &builder.SectionError{Section: types.SectionAwards, Op: builder.OpSave, Err: builder.ErrSaveInProgress}, http.StatusConflict},
		{"save validation", &builder.SectionError{Section: types.SectionAwards, Op: builder.OpSave, Err: saveErr}, http.StatusBadRequest},
		{"request validation", &ErrValidation{Field: "id"}, http.StatusBadRequest},
		{"unknown flag", &visibility.UnknownFlagError{Name: "showShoeSize"}, http.StatusBadRequest},
		{"malformed root", &normalize.NormalizationError{Field: "cv.id", Reason: "is not a UUID"}, http.StatusUnprocessableEntity},
		{"export failure", &export.Error{Op: "pdf", Message: "export failed", Cause: errors.New("crash")}, http.StatusBadGateway},
		{"no exporter", &export.Error{Op: "pdf", Message: "no exporter configured"}, http.StatusServiceUnavailable},
		{"store failure", &builder.SectionError{Section: types.SectionAwards, Op: builder.OpSave, Err: errors.New("deadlock")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	body := errorBody(&builder.SectionError{Section: types.SectionEducation, Op: builder.OpLoad, Err: context.Canceled})
	assert.Equal(t, types.SectionEducation, body["section"])
	assert.Equal(t, false, body["retryable"])
	assert.Contains(t, body["error"], "education")

	body = errorBody(errors.New("plain"))
	assert.Equal(t, map[string]any{"error": "plain"}, body)
}
