package rendering

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

const (
	monthYearLayout = "January 2006"
	fullDateLayout  = "2 January 2006"

	// Present is the end bound of an ongoing entry.
	Present = "Present"
)

// FormatDate formats a date as "May 2020". Absent dates format as "".
func FormatDate(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(monthYearLayout)
}

// FormatDay formats a date with its day, as used for birthdates.
func FormatDay(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(fullDateLayout)
}

// DateRange renders "start – end". Ongoing periods end in "Present" whatever
// end date is stored; a missing end bound renders as nothing.
func DateRange(p types.Period) string {
	start := FormatDate(p.StartDate)
	end := FormatDate(p.EndDate)
	if p.Current {
		end = Present
	}
	if start == "" && end == "" {
		return ""
	}
	return strings.TrimSpace(start + " – " + end)
}

// Industries collects the distinct, non-blank sectors of the work history in
// first-seen order.
func Industries(work []types.WorkExperience) []string {
	seen := make(map[string]struct{}, len(work))
	out := make([]string, 0, len(work))
	for _, we := range work {
		sector := strings.TrimSpace(we.Sector)
		if sector == "" {
			continue
		}
		if _, ok := seen[sector]; ok {
			continue
		}
		seen[sector] = struct{}{}
		out = append(out, sector)
	}
	return out
}

func displayURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimSuffix(u, "/")
}
