package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

const maxSectionBody = 1 << 20

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parseID reads a UUID path value.
func parseID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: key, Message: "invalid ID"}
	}
	return id, nil
}

// handleListCVs lists stored CVs, most recently edited first
func (s *Server) handleListCVs(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)

	cvs, err := s.library.ListCVs(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"cvs":   cvs,
		"count": len(cvs),
		"limit": limit,
	})
}

// CreateCVRequest is the body of POST /cvs.
type CreateCVRequest struct {
	Title string `json:"title"`
}

// handleCreateCV creates an empty CV
func (s *Server) handleCreateCV(w http.ResponseWriter, r *http.Request) {
	var req CreateCVRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
	}

	id, err := s.library.CreateCV(r.Context(), strings.TrimSpace(req.Title))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{"id": id})
}

// handleGetCV returns the normalized document. Sections that failed to load
// are listed under "errors" and are empty in "cv".
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	cvID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.cvs.Load(r.Context(), cvID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"cv":     res.CV,
		"errors": sectionErrors(res.Errors),
	})
}

// handleDeleteCV deletes a CV and everything it owns
func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	cvID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.library.DeleteCV(r.Context(), cvID); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListSections reports which sections have entries
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	cvID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	statuses, failures, err := s.cvs.Completion(r.Context(), cvID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sections": statuses,
		"errors":   sectionErrors(failures),
	})
}

// handleSaveSection replaces one section of a CV with the request body.
// The body is the section's JSON value: an object for personal_info and an
// array of entries for every other section.
func (s *Server) handleSaveSection(w http.ResponseWriter, r *http.Request) {
	cvID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	section, err := types.ParseSection(r.PathValue("section"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "section", Message: err.Error()})
		return
	}

	doc, err := decodeSection(http.MaxBytesReader(w, r.Body, maxSectionBody), section)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc.ID = cvID

	if err := s.cvs.SaveSection(r.Context(), cvID, section, doc); err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"section": section,
		"entries": doc.Len(section),
	})
}

// decodeSection reads one section's JSON value into an otherwise empty document.
func decodeSection(body io.Reader, section types.Section) (*types.CV, error) {
	doc := &types.CV{}
	var target any
	switch section {
	case types.SectionPersonalInfo:
		target = &doc.PersonalInfo
	case types.SectionPersonality:
		target = &doc.Personality
	case types.SectionWorkExperience:
		target = &doc.WorkExperience
	case types.SectionEducation:
		target = &doc.Education
	case types.SectionCertifications:
		target = &doc.Certifications
	case types.SectionTrainings:
		target = &doc.Trainings
	case types.SectionLanguages:
		target = &doc.Languages
	case types.SectionAwards:
		target = &doc.Awards
	case types.SectionTestimonials:
		target = &doc.Testimonials
	case types.SectionProjects:
		target = &doc.Projects
	default:
		return nil, &ErrValidation{Field: "section", Message: "unknown section " + string(section)}
	}

	if err := json.NewDecoder(body).Decode(target); err != nil {
		return nil, &ErrValidation{Field: string(section), Message: "invalid JSON: " + err.Error()}
	}
	doc.EnsureCollections()
	return doc, nil
}

// handlePreview renders a CV as a standalone HTML page. Flags are read from
// query parameters named after them, e.g. ?showEmail=false.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	cvID, overrides, opts, ok := s.renderRequest(w, r)
	if !ok {
		return
	}

	renderOpts := rendering.DefaultOptions()
	renderOpts.PageSize = opts.PageSize
	renderOpts.Landscape = opts.Landscape
	renderOpts.MarginMM = opts.MarginMM

	p, err := s.cvs.Preview(r.Context(), cvID, overrides, renderOpts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	html, err := p.Document.HTML()
	if err != nil {
		s.writeError(w, err)
		return
	}

	if len(p.Errors) > 0 {
		failed := make([]string, 0, len(p.Errors))
		for _, e := range p.Errors {
			failed = append(failed, string(e.Section))
		}
		w.Header().Set("X-Section-Errors", strings.Join(failed, ","))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}

// handlePreviewImage renders the first page of a CV to JPEG
func (s *Server) handlePreviewImage(w http.ResponseWriter, r *http.Request) {
	cvID, overrides, opts, ok := s.renderRequest(w, r)
	if !ok {
		return
	}

	out, err := s.cvs.Snapshot(r.Context(), cvID, overrides, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.fileResponse(w, out.Data, out.ContentType, out.Filename, "inline")
}

// handleExport prints a CV to PDF and serves it as a download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	cvID, overrides, opts, ok := s.renderRequest(w, r)
	if !ok {
		return
	}

	out, err := s.cvs.Export(r.Context(), cvID, overrides, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.fileResponse(w, out.Data, out.ContentType, out.Filename, "attachment")
}

// renderRequest parses the CV id, visibility overrides and page options shared
// by the preview and export endpoints. It writes the error response itself.
func (s *Server) renderRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, visibility.Overrides, export.Options, bool) {
	cvID, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return uuid.Nil, visibility.Overrides{}, export.Options{}, false
	}

	q := r.URL.Query()
	overrides, err := visibility.ParseQuery(q)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "flags", Message: err.Error()})
		return uuid.Nil, visibility.Overrides{}, export.Options{}, false
	}

	opts, err := s.exportOptions(q)
	if err != nil {
		s.writeError(w, err)
		return uuid.Nil, visibility.Overrides{}, export.Options{}, false
	}
	return cvID, overrides, opts, true
}

// exportOptions overlays page query parameters on the configured defaults.
func (s *Server) exportOptions(q url.Values) (export.Options, error) {
	opts := s.exportOpts
	get := q.Get

	if v := get("page"); v != "" {
		opts.PageSize = strings.ToUpper(v)
	}
	if v := get("landscape"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &ErrValidation{Field: "landscape", Message: "must be a boolean"}
		}
		opts.Landscape = b
	}
	for key, dst := range map[string]*float64{"margin": &opts.MarginMM, "quality": &opts.ImageQuality, "scale": &opts.Scale} {
		v := get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, &ErrValidation{Field: key, Message: "must be a number"}
		}
		*dst = f
	}
	if v := get("filename"); v != "" {
		opts.Filename = v
	}

	if err := opts.Validate(); err != nil {
		return opts, &ErrValidation{Field: "options", Message: err.Error()}
	}
	return opts, nil
}

// fileResponse writes binary content with a Content-Disposition header.
func (s *Server) fileResponse(w http.ResponseWriter, data []byte, contentType, filename, disposition string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Warn("failed to write file response", "filename", filename, "error", err)
	}
}
