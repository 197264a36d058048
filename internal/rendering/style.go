package rendering

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// printStylesheet maps the pagination classes to CSS fragmentation rules and
// declares the printed page box.
const printStylesheet = `@page { size: {{.PageSize}} {{.Orientation}}; margin: {{.Margin}}mm; }
* { box-sizing: border-box; }
body { margin: 0; font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2937; font-size: 11pt; line-height: 1.4; }
.cv { max-width: 210mm; margin: 0 auto; padding: 8mm; background: #fff; }
.name { font-size: 24pt; margin: 0; }
.headline { font-size: 14pt; color: #2563eb; margin: 2pt 0 0; font-weight: 500; }
.contact { display: flex; flex-wrap: wrap; gap: 4pt 16pt; margin-top: 10pt; }
.summary p { margin: 6pt 0; }
.cv-section { margin-top: 16pt; }
.section-title { font-size: 14pt; border-bottom: 1px solid #e5e7eb; padding-bottom: 2pt; }
.entry { margin: 8pt 0; padding-left: 8pt; border-left: 2px solid #e5e7eb; }
.entry-title { font-size: 12pt; margin: 0; }
.meta, .date-range { color: #4b5563; font-size: 10pt; }
.list-block h5, .projects h5 { margin: 6pt 0 2pt; font-size: 10pt; }
.pills { display: flex; flex-wrap: wrap; gap: 3pt; margin-top: 4pt; }
.pill { border-radius: 9999px; padding: 1pt 6pt; font-size: 9pt; background: #dbeafe; color: #1e40af; }
.pill-soft, .pill-level { background: #dcfce7; color: #166534; }
.link { color: #2563eb; text-decoration: none; margin-right: 8pt; }
.quote { font-style: italic; margin: 6pt 0; }
.empty-state { text-align: center; padding: 60pt 0; }
.{{.PageBreak}} { break-before: auto; page-break-before: auto; break-after: auto; }
.{{.AvoidBreak}} { break-inside: avoid; page-break-inside: avoid; }
@media print {
  .cv { padding: 0; max-width: none; }
  a.link { color: inherit; }
}
`

type styleData struct {
	PageSize    string
	Orientation string
	Margin      string
	PageBreak   string
	AvoidBreak  string
}

var (
	styleOnce sync.Once
	styleTmpl *template.Template
	styleErr  error
)

func parseStylesheet() (*template.Template, error) {
	styleOnce.Do(func() {
		styleTmpl, styleErr = template.New("print.css").Parse(printStylesheet)
	})
	if styleErr != nil {
		return nil, &TemplateError{
			Message: "failed to parse print stylesheet",
			Cause:   styleErr,
		}
	}
	return styleTmpl, nil
}

// Stylesheet returns the print stylesheet for the page setup in opts.
func Stylesheet(opts Options) (string, error) {
	tmpl, err := parseStylesheet()
	if err != nil {
		return "", err
	}

	orientation := "portrait"
	if opts.Landscape {
		orientation = "landscape"
	}
	data := styleData{
		PageSize:    opts.PageSize,
		Orientation: orientation,
		Margin:      strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", opts.MarginMM), "0"), "."),
		PageBreak:   ClassPageBreak,
		AvoidBreak:  ClassAvoidBreak,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute print stylesheet",
			Cause:   err,
		}
	}
	return sb.String(), nil
}
