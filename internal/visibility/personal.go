package visibility

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// FullName joins first, middle (when shown) and last name with single spaces,
// skipping empty parts.
func FullName(pi types.PersonalInfo, f Flags) string {
	parts := []string{pi.FirstName}
	if f.ShowMiddleName {
		parts = append(parts, pi.MiddleName)
	}
	parts = append(parts, pi.LastName)
	return joinNonEmpty(" ", parts...)
}

// Address composes the postal address line. With the street address hidden
// only city and country remain. A full address needs street, number, postal
// code and city; anything less renders nothing. country is the display name
// resolved by the caller.
func Address(pi types.PersonalInfo, f Flags, country string) string {
	if !f.ShowStreetAddress {
		return joinNonEmpty(", ", pi.City, country)
	}
	if blank(pi.Street) || blank(pi.StreetNumber) || blank(pi.PostalCode) || blank(pi.City) {
		return ""
	}
	return joinNonEmpty(", ",
		joinNonEmpty(" ", pi.Street, pi.StreetNumber),
		joinNonEmpty(" ", pi.PostalCode, pi.City),
		country,
	)
}

// Email returns the address when shown.
func (f Flags) Email(pi types.PersonalInfo) string {
	return gate(f.ShowEmail, pi.Email)
}

// Phone returns the phone number when shown.
func (f Flags) Phone(pi types.PersonalInfo) string {
	return gate(f.ShowPhone, pi.Phone)
}

// Birthdate returns the birthdate when shown, otherwise the absent date.
func (f Flags) Birthdate(pi types.PersonalInfo) types.Date {
	if !f.ShowBirthdate {
		return types.Date{}
	}
	return pi.Birthdate
}

// Nationality returns the nationality code or label when shown.
func (f Flags) Nationality(pi types.PersonalInfo) string {
	return gate(f.ShowNationality, pi.Nationality)
}

// RelationshipStatus returns the status when shown.
func (f Flags) RelationshipStatus(pi types.PersonalInfo) string {
	return gate(f.ShowRelationshipStatus, pi.RelationshipStatus)
}

// CompanyDescription returns the employer description when shown.
func (f Flags) CompanyDescription(we types.WorkExperience) string {
	return gate(f.ShowCompanyDescription, we.CompanyDescription)
}

// WorkDescription gates work experience and position descriptions.
func (f Flags) WorkDescription(s string) string {
	return gate(f.ShowWorkDescription, s)
}

// ProjectDescription gates position project and project descriptions.
func (f Flags) ProjectDescription(s string) string {
	return gate(f.ShowProjectDescription, s)
}

// EducationDescription gates education descriptions.
func (f Flags) EducationDescription(s string) string {
	return gate(f.ShowEducationDescription, s)
}

// TrainingDescription gates training descriptions.
func (f Flags) TrainingDescription(s string) string {
	return gate(f.ShowTrainingDescription, s)
}

func gate(show bool, s string) string {
	if !show {
		return ""
	}
	return strings.TrimSpace(s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
