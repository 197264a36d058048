package rendering

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

// SectionIndustries is the derived industry tag section. It has no stored
// collection of its own.
const SectionIndustries types.Section = "industries"

// Empty state copy.
const (
	EmptyTitle   = "Your CV is empty"
	EmptyMessage = "Fill out the various sections to start building your CV. Once you've added some information, you'll see a preview here."
)

// Options controls the page setup embedded in the document.
type Options struct {
	Countries CountryLookup
	Title     string
	PageSize  string
	Landscape bool
	MarginMM  float64
}

// DefaultOptions returns A4 portrait with 10mm margins and no country data.
func DefaultOptions() Options {
	return Options{PageSize: "A4", MarginMM: 10}
}

// Document is a rendered CV.
type Document struct {
	// Root is the html.DocumentNode of the complete page.
	Root *html.Node
	// Sections lists the rendered sections in document order.
	Sections []types.Section
	// Empty is set when the empty-state message was rendered instead of the CV.
	Empty bool
}

// HasSection reports whether s was rendered.
func (d *Document) HasSection(s types.Section) bool {
	for _, r := range d.Sections {
		if r == s {
			return true
		}
	}
	return false
}

// WriteHTML serializes the document.
func (d *Document) WriteHTML(w io.Writer) error {
	if err := html.Render(w, d.Root); err != nil {
		return &RenderError{Message: "failed to serialize document", Cause: err}
	}
	return nil
}

// HTML serializes the document to a string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render builds the print-ready document for cv, showing only what flags allow.
// Rendering never fails on missing optional data.
func Render(cv *types.CV, flags visibility.Flags, opts Options) (*Document, error) {
	if cv == nil {
		return nil, &RenderError{Message: "no CV document to render"}
	}
	if opts.PageSize == "" {
		opts.PageSize = DefaultOptions().PageSize
	}

	css, err := Stylesheet(opts)
	if err != nil {
		return nil, err
	}

	r := &renderer{cv: cv, flags: flags, countries: opts.Countries}
	doc := &Document{Sections: []types.Section{}}

	content := el(atom.Main, "cv")
	if cv.IsEmpty() {
		doc.Empty = true
		content.AppendChild(emptyState())
	} else {
		for _, s := range r.sections() {
			if s.node == nil {
				continue
			}
			content.AppendChild(s.node)
			doc.Sections = append(doc.Sections, s.section)
		}
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = strings.TrimSpace(visibility.FullName(cv.PersonalInfo, flags) + " CV")
	}
	doc.Root = page(title, css, content)
	return doc, nil
}

func page(title, css string, content *html.Node) *html.Node {
	meta := el(atom.Meta, "")
	setAttr(meta, "charset", "utf-8")

	head := el(atom.Head, "",
		meta,
		el(atom.Title, "", text(title)),
		el(atom.Style, "", text(css)),
	)
	body := el(atom.Body, "", content)

	root := el(atom.Html, "", head, body)
	setAttr(root, "lang", "en")

	docNode := &html.Node{Type: html.DocumentNode}
	docNode.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	docNode.AppendChild(root)
	return docNode
}

func emptyState() *html.Node {
	return el(atom.Div, "empty-state",
		el(atom.H3, "", text(EmptyTitle)),
		el(atom.P, "", text(EmptyMessage)),
	)
}
