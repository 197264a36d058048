package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// handleListCountries lists the country reference data
func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.library.ListCountries(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"countries": countries,
		"count":     len(countries),
	})
}

// handleListSkills lists the skill library
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.library.ListSkills(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"skills": skills,
		"count":  len(skills),
	})
}

// handleCreateSkill adds a skill to the library, or returns the existing one
// with the same normalized name
func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var skill types.Skill
	if err := json.NewDecoder(r.Body).Decode(&skill); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	skill.Name = strings.TrimSpace(skill.Name)
	if err := types.Validate(skill); err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.library.CreateSkill(r.Context(), skill)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleUpdateSkill overwrites a skill in the library
func (s *Server) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var skill types.Skill
	if err := json.NewDecoder(r.Body).Decode(&skill); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	skill.ID = id
	skill.Name = strings.TrimSpace(skill.Name)
	if err := types.Validate(skill); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.library.UpdateSkill(r.Context(), skill)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteSkill removes a skill from the library
func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.library.DeleteSkill(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListCompanies lists the company library
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.library.ListCompanies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
	})
}

// decodeCompany reads a company body and requires a name.
func decodeCompany(r *http.Request) (types.Company, error) {
	var company types.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		return company, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return company, &ErrValidation{Field: "name", Message: "company name is required"}
	}
	return company, nil
}

// handleCreateCompany adds a company to the library
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	company, err := decodeCompany(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.library.CreateCompany(r.Context(), company)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, created)
}

// handleUpdateCompany overwrites a company in the library
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	company, err := decodeCompany(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	company.ID = id

	updated, err := s.library.UpdateCompany(r.Context(), company)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

// handleDeleteCompany removes a company from the library
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.library.DeleteCompany(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
