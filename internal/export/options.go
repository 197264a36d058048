// Package export rasterizes rendered CV documents into PDF and JPEG.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// Options configures one export.
type Options struct {
	PageSize     string  `json:"pageSize"`
	Landscape    bool    `json:"landscape"`
	MarginMM     float64 `json:"marginMm"`
	ImageQuality float64 `json:"imageQuality"`
	Scale        float64 `json:"scale"`
	Filename     string  `json:"filename"`
}

// DefaultOptions returns A4 portrait, 10mm margins, JPEG quality 0.98 at 2x scale.
func DefaultOptions() Options {
	return Options{
		PageSize:     "A4",
		MarginMM:     10,
		ImageQuality: 0.98,
		Scale:        2,
		Filename:     "CV.pdf",
	}
}

// paperSize is a page box in inches.
type paperSize struct {
	Width, Height float64
}

var paperSizes = map[string]paperSize{
	"A3":     {11.69, 16.54},
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

const mmPerInch = 25.4

// Validate checks that the options describe a printable page.
func (o Options) Validate() error {
	if _, ok := paperSizes[strings.ToUpper(o.PageSize)]; !ok {
		return fmt.Errorf("unsupported page size %q", o.PageSize)
	}
	if o.MarginMM < 0 || o.MarginMM > 50 {
		return fmt.Errorf("margin must be between 0 and 50mm, got %g", o.MarginMM)
	}
	if o.ImageQuality <= 0 || o.ImageQuality > 1 {
		return fmt.Errorf("image quality must be in (0, 1], got %g", o.ImageQuality)
	}
	if o.Scale <= 0 || o.Scale > 4 {
		return fmt.Errorf("scale must be in (0, 4], got %g", o.Scale)
	}
	return nil
}

// Paper returns the page width and height in inches, honoring orientation.
func (o Options) Paper() (width, height float64) {
	p, ok := paperSizes[strings.ToUpper(o.PageSize)]
	if !ok {
		p = paperSizes["A4"]
	}
	if o.Landscape {
		return p.Height, p.Width
	}
	return p.Width, p.Height
}

// MarginInches returns the margin converted to inches.
func (o Options) MarginInches() float64 {
	return o.MarginMM / mmPerInch
}

// ViewportPixels returns the CSS pixel size of the page at 96dpi.
func (o Options) ViewportPixels() (width, height int64) {
	w, h := o.Paper()
	return int64(w*96 + 0.5), int64(h*96 + 0.5)
}

// JPEGQuality maps ImageQuality onto the 0-100 scale.
func (o Options) JPEGQuality() int {
	q := int(o.ImageQuality*100 + 0.5)
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// FilenameFor builds "First_Last_CV.pdf". Missing name parts are skipped.
func FilenameFor(pi types.PersonalInfo) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{pi.FirstName, pi.LastName} {
		p = strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(p), "_"), "_")
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "CV")
	return strings.Join(parts, "_") + ".pdf"
}
