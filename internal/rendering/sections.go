package rendering

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

type renderer struct {
	cv        *types.CV
	flags     visibility.Flags
	countries CountryLookup
}

type renderedSection struct {
	section types.Section
	node    *html.Node
}

// sections renders every section in the fixed document order. Sections with
// nothing to show come back with a nil node.
func (r *renderer) sections() []renderedSection {
	return []renderedSection{
		{types.SectionPersonalInfo, r.personalInfo()},
		{types.SectionPersonality, r.personality()},
		{SectionIndustries, r.industries()},
		{types.SectionWorkExperience, r.workExperience()},
		{types.SectionEducation, r.education()},
		{types.SectionCertifications, r.certifications()},
		{types.SectionTrainings, r.trainings()},
		{types.SectionLanguages, r.languages()},
		{types.SectionAwards, r.awards()},
		{types.SectionTestimonials, r.testimonials()},
		{types.SectionProjects, r.projects()},
	}
}

// Heading returns the rendered heading of a section.
func Heading(s types.Section) string {
	switch s {
	case SectionIndustries:
		return "Industries"
	case types.SectionTrainings:
		return "Training & Courses"
	case types.SectionAwards:
		return "Awards & Recognition"
	default:
		return s.Title()
	}
}

// section wraps entries in a titled block that is an eligible page break point.
func section(s types.Section, entries ...*html.Node) *html.Node {
	body := el(atom.Div, "section-body", entries...)
	n := el(atom.Section, "cv-section section-"+string(s)+" "+ClassPageBreak,
		el(atom.H2, "section-title", text(Heading(s))),
		body,
	)
	setAttr(n, "id", "section-"+string(s))
	setAttr(n, "data-section", string(s))
	return n
}

func (r *renderer) personalInfo() *html.Node {
	pi := r.cv.PersonalInfo
	f := r.flags

	contact := el(atom.Div, "contact")
	addContact := func(kind string, n *html.Node) {
		if n == nil {
			return
		}
		item := el(atom.Span, "contact-item", n)
		setAttr(item, "data-field", kind)
		contact.AppendChild(item)
	}
	addContact("email", textEl(atom.Span, "", f.Email(pi)))
	addContact("phone", textEl(atom.Span, "", f.Phone(pi)))
	addContact("address", textEl(atom.Span, "", visibility.Address(pi, f, countryName(r.countries, pi.Country))))
	addContact("website", link(pi.Website, displayURL(pi.Website)))
	addContact("linkedin", link(pi.LinkedIn, "LinkedIn"))
	addContact("github", link(pi.GitHub, "GitHub"))
	addContact("birthdate", field("", "Born:", FormatDay(f.Birthdate(pi))))
	addContact("nationality", field("", "Nationality:", nationalityLabel(r.countries, f.Nationality(pi))))
	addContact("relationship", field("", "Status:", f.RelationshipStatus(pi)))
	if contact.FirstChild == nil {
		contact = nil
	}

	var summary *html.Node
	for _, s := range pi.ProfileSummaries {
		p := textEl(atom.P, "", s.Content)
		if p == nil {
			continue
		}
		if summary == nil {
			summary = el(atom.Div, "summary")
		}
		summary.AppendChild(p)
	}

	n := el(atom.Header, "cv-section personal-info "+ClassAvoidBreak,
		textEl(atom.H1, "name", visibility.FullName(pi, f)),
		textEl(atom.H2, "headline", pi.Title),
		contact,
		summary,
	)
	if n.FirstChild == nil {
		return nil
	}
	setAttr(n, "id", "section-"+string(types.SectionPersonalInfo))
	setAttr(n, "data-section", string(types.SectionPersonalInfo))
	return n
}

func (r *renderer) personality() *html.Node {
	if len(r.cv.Personality) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Personality))
	for _, t := range r.cv.Personality {
		var results *html.Node
		for _, res := range t.Results {
			if strings.TrimSpace(res.Trait) == "" && strings.TrimSpace(res.Score) == "" {
				continue
			}
			if results == nil {
				results = el(atom.Ul, "results")
			}
			results.AppendChild(el(atom.Li, "result",
				textEl(atom.Span, "trait", res.Trait),
				textEl(atom.Span, "score", res.Score),
				textEl(atom.Span, "trait-description", res.Description),
			))
		}
		entries = append(entries, card("personality-test",
			textEl(atom.H3, "entry-title", t.Type),
			field("meta", "Provider:", t.Provider),
			field("meta", "Completed:", FormatDate(t.CompletionDate)),
			textEl(atom.P, "description", t.Description),
			results,
			link(t.ReportURL, "View Full Report"),
		))
	}
	return section(types.SectionPersonality, entries...)
}

func (r *renderer) industries() *html.Node {
	tags := pills("industry", Industries(r.cv.WorkExperience)...)
	if tags == nil {
		return nil
	}
	return section(SectionIndustries, tags)
}

func (r *renderer) workExperience() *html.Node {
	if len(r.cv.WorkExperience) == 0 {
		return nil
	}
	f := r.flags
	entries := make([]*html.Node, 0, len(r.cv.WorkExperience))
	for _, we := range r.cv.WorkExperience {
		positions := el(atom.Div, "positions")
		for _, p := range we.Positions {
			positions.AppendChild(r.position(p))
		}
		if positions.FirstChild == nil {
			positions = nil
		}

		entries = append(entries, card("job",
			el(atom.H3, "entry-title", text(we.Company), link(we.URL, "Website")),
			textEl(atom.Div, "meta", joinMeta(we.Sector, we.Location)),
			textEl(atom.P, "company-description", f.CompanyDescription(we)),
			textEl(atom.P, "description", f.WorkDescription(we.Description)),
			positions,
		))
	}
	return section(types.SectionWorkExperience, entries...)
}

func (r *renderer) position(p types.Position) *html.Node {
	var projects *html.Node
	if len(p.Projects) > 0 {
		projects = el(atom.Div, "projects", el(atom.H5, "", text("Projects:")))
		for _, proj := range p.Projects {
			projects.AppendChild(card("position-project",
				textEl(atom.H6, "entry-title", proj.Name),
				textEl(atom.P, "role", proj.Role),
				textEl(atom.Div, "company", proj.Company.Name),
				textEl(atom.Div, "date-range", DateRange(proj.Period)),
				textEl(atom.P, "description", r.flags.ProjectDescription(proj.Description)),
				pills("technical", scoreNames(proj.TechnicalSkills)...),
				pills("soft", scoreNames(proj.NonTechnicalSkills)...),
				link(proj.Link, "View Project"),
			))
		}
	}

	return card("position",
		textEl(atom.H4, "entry-title", p.Title),
		textEl(atom.Div, "date-range", DateRange(p.Period)),
		textEl(atom.P, "description", r.flags.WorkDescription(p.Description)),
		itemList("responsibilities", "Key Responsibilities:", p.Responsibilities),
		itemList("achievements", "Key Achievements:", p.Achievements),
		projects,
	)
}

// itemList renders a titled bullet list, or nil unless the list is populated.
func itemList(class, title string, list types.ItemList) *html.Node {
	if !list.HasItems() {
		return nil
	}
	ul := el(atom.Ul, "")
	for _, item := range list.Values() {
		ul.AppendChild(el(atom.Li, "", text(item)))
	}
	return el(atom.Div, "list-block "+class, el(atom.H5, "", text(title)), ul)
}

func (r *renderer) education() *html.Node {
	if len(r.cv.Education) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Education))
	for _, e := range r.cv.Education {
		title := e.Degree
		if strings.TrimSpace(e.FieldOfStudy) != "" {
			title += " in " + e.FieldOfStudy
		}
		entries = append(entries, card("education",
			textEl(atom.H3, "entry-title", title),
			textEl(atom.Div, "date-range", DateRange(e.Period)),
			textEl(atom.Div, "meta", joinMeta(e.Institution.Name, e.Institution.City)),
			textEl(atom.P, "description", r.flags.EducationDescription(e.Description)),
			pills("skill", skillNames(e.Skills)...),
		))
	}
	return section(types.SectionEducation, entries...)
}

func (r *renderer) certifications() *html.Node {
	if len(r.cv.Certifications) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Certifications))
	for _, c := range r.cv.Certifications {
		dates := ""
		if issued := FormatDate(c.IssueDate); issued != "" {
			dates = "Issued: " + issued
		}
		if expires := FormatDate(c.ExpirationDate); expires != "" {
			dates = joinMeta(dates, "Expires: "+expires)
		}
		entries = append(entries, card("certification",
			textEl(atom.H3, "entry-title", c.Name),
			textEl(atom.Div, "issuer", c.Issuer.Name),
			textEl(atom.Div, "meta", dates),
			field("meta", "Credential ID:", c.CredentialID),
			link(c.CredentialURL, "View Credential"),
			pills("skill", skillNames(c.Skills)...),
		))
	}
	return section(types.SectionCertifications, entries...)
}

func (r *renderer) trainings() *html.Node {
	if len(r.cv.Trainings) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Trainings))
	for _, t := range r.cv.Trainings {
		entries = append(entries, card("training",
			textEl(atom.H3, "entry-title", t.Title),
			textEl(atom.Div, "issuer", t.Provider.Name),
			textEl(atom.Div, "meta", t.Provider.City),
			field("meta", "Completed:", FormatDate(t.CompletionDate)),
			textEl(atom.P, "description", r.flags.TrainingDescription(t.Description)),
			pills("skill", skillNames(t.Skills)...),
		))
	}
	return section(types.SectionTrainings, entries...)
}

func (r *renderer) languages() *html.Node {
	if len(r.cv.Languages) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Languages))
	for _, l := range r.cv.Languages {
		var cert *html.Node
		if strings.TrimSpace(l.Certificate) != "" {
			cert = el(atom.Div, "certificate",
				textEl(atom.Div, "certificate-name", l.Certificate),
				textEl(atom.Div, "meta", FormatDate(l.CertificateDate)),
			)
		}
		entries = append(entries, card("language",
			textEl(atom.H3, "entry-title", l.Name),
			textEl(atom.Div, "proficiency", string(l.Proficiency)),
			cert,
			textEl(atom.P, "notes", l.Notes),
			link(l.CertificateURL, "View Certificate"),
		))
	}
	return section(types.SectionLanguages, entries...)
}

func (r *renderer) awards() *html.Node {
	if len(r.cv.Awards) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Awards))
	for _, a := range r.cv.Awards {
		var tags *html.Node
		if category, level := pills("category", a.Category), pills("level", a.Level); category != nil || level != nil {
			tags = el(atom.Div, "tags", category, level)
		}
		entries = append(entries, card("award",
			textEl(atom.H3, "entry-title", a.Title),
			textEl(atom.Div, "issuer", a.Issuer),
			textEl(atom.Div, "meta", FormatDate(a.Date)),
			tags,
			textEl(atom.P, "description", a.Description),
			link(a.URL, "View Award"),
		))
	}
	return section(types.SectionAwards, entries...)
}

func (r *renderer) testimonials() *html.Node {
	if len(r.cv.Testimonials) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Testimonials))
	for _, t := range r.cv.Testimonials {
		role := t.Role
		if strings.TrimSpace(t.Company) != "" {
			if strings.TrimSpace(role) != "" {
				role += " at " + t.Company
			} else {
				role = t.Company
			}
		}
		var quote *html.Node
		if content := strings.TrimSpace(t.Content); content != "" {
			quote = el(atom.Blockquote, "quote", text("“"+content+"”"))
		}
		entries = append(entries, card("testimonial",
			textEl(atom.H3, "entry-title", t.Author),
			textEl(atom.Div, "role", role),
			textEl(atom.Div, "meta", joinMeta(t.Relationship, FormatDate(t.Date))),
			quote,
			textEl(atom.Div, "contact-info", t.ContactInfo),
			link(t.LinkedInURL, "LinkedIn"),
		))
	}
	return section(types.SectionTestimonials, entries...)
}

func (r *renderer) projects() *html.Node {
	if len(r.cv.Projects) == 0 {
		return nil
	}
	entries := make([]*html.Node, 0, len(r.cv.Projects))
	for _, p := range r.cv.Projects {
		entries = append(entries, card("project",
			textEl(atom.H3, "entry-title", p.Title),
			textEl(atom.Div, "meta", joinMeta(p.Company, p.Location)),
			textEl(atom.Div, "date-range", DateRange(p.Period)),
			textEl(atom.P, "description", r.flags.ProjectDescription(p.Description)),
			pills("technical", scoreNames(p.TechnicalSkills)...),
			pills("soft", scoreNames(p.NonTechnicalSkills)...),
			link(p.Link, "View Project"),
		))
	}
	return section(types.SectionProjects, entries...)
}

func skillNames(skills []types.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

func scoreNames(scores []types.SkillScore) []string {
	out := make([]string, 0, len(scores))
	for _, s := range scores {
		out = append(out, s.Name)
	}
	return out
}
