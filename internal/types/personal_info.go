package types

import (
	"strings"

	"github.com/google/uuid"
)

// PersonalInfo holds the header block of a CV.
// Country and Nationality hold reference-data codes (or free text for legacy rows).
type PersonalInfo struct {
	FirstName          string           `json:"firstName"`
	MiddleName         string           `json:"middleName"`
	LastName           string           `json:"lastName"`
	Title              string           `json:"title"`
	Email              string           `json:"email" validate:"omitempty,email"`
	Phone              string           `json:"phone"`
	Street             string           `json:"street"`
	StreetNumber       string           `json:"streetNumber"`
	PostalCode         string           `json:"postalCode"`
	City               string           `json:"city"`
	State              string           `json:"state"`
	Country            string           `json:"country"`
	Website            string           `json:"website" validate:"omitempty,url"`
	LinkedIn           string           `json:"linkedin" validate:"omitempty,url"`
	GitHub             string           `json:"github" validate:"omitempty,url"`
	Birthdate          Date             `json:"birthdate"`
	Nationality        string           `json:"nationality"`
	RelationshipStatus string           `json:"relationshipStatus"`
	ProfileSummaries   []ProfileSummary `json:"profileSummaries"`
}

// ProfileSummary is one paragraph of the CV's introduction.
type ProfileSummary struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

// HasName reports whether a first or last name is present.
func (p PersonalInfo) HasName() bool {
	return strings.TrimSpace(p.FirstName) != "" || strings.TrimSpace(p.LastName) != ""
}
