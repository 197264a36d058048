package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format of a Date.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01",
}

// Date is a calendar date. The zero value means the date is absent.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses the date formats found in stored records.
// Blank or unparseable input yields the absent date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the date as midnight UTC, or the zero time when absent.
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is strictly before other. Absent dates never compare before.
func (d Date) Before(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return false
	}
	return d.t.Before(other.t)
}

// String returns the date in DateLayout, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes an absent date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, "" or any of the supported date formats.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}

// Period is the date span of an entry that may still be ongoing.
// Current and EndDate are mutually exclusive.
type Period struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
	Current   bool `json:"current"`
}

// SetCurrent marks the entry as ongoing or finished. Marking it ongoing clears EndDate.
func (p *Period) SetCurrent(current bool) {
	p.Current = current
	if current {
		p.EndDate = Date{}
	}
}

// Clean drops a stale end date from an ongoing entry.
func (p *Period) Clean() {
	if p.Current {
		p.EndDate = Date{}
	}
}
