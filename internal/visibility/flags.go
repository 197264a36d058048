// Package visibility holds the named display flags of a CV preview and the
// pure functions that apply them to personal information and descriptions.
//
// Flags only gate what is rendered. Nothing here mutates the document.
package visibility

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Flag names, as used in query strings, CLI flags and JSON.
const (
	ShowMiddleName           = "showMiddleName"
	ShowEmail                = "showEmail"
	ShowPhone                = "showPhone"
	ShowStreetAddress        = "showStreetAddress"
	ShowBirthdate            = "showBirthdate"
	ShowNationality          = "showNationality"
	ShowRelationshipStatus   = "showRelationshipStatus"
	ShowCompanyDescription   = "showCompanyDescription"
	ShowWorkDescription      = "showWorkDescription"
	ShowProjectDescription   = "showProjectDescription"
	ShowEducationDescription = "showEducationDescription"
	ShowTrainingDescription  = "showTrainingDescription"
)

// Flags is a complete set of display options.
type Flags struct {
	ShowMiddleName           bool `json:"showMiddleName"`
	ShowEmail                bool `json:"showEmail"`
	ShowPhone                bool `json:"showPhone"`
	ShowStreetAddress        bool `json:"showStreetAddress"`
	ShowBirthdate            bool `json:"showBirthdate"`
	ShowNationality          bool `json:"showNationality"`
	ShowRelationshipStatus   bool `json:"showRelationshipStatus"`
	ShowCompanyDescription   bool `json:"showCompanyDescription"`
	ShowWorkDescription      bool `json:"showWorkDescription"`
	ShowProjectDescription   bool `json:"showProjectDescription"`
	ShowEducationDescription bool `json:"showEducationDescription"`
	ShowTrainingDescription  bool `json:"showTrainingDescription"`
}

// Overrides is a partial flag set. Nil fields keep the base value.
type Overrides struct {
	ShowMiddleName           *bool `json:"showMiddleName,omitempty"`
	ShowEmail                *bool `json:"showEmail,omitempty"`
	ShowPhone                *bool `json:"showPhone,omitempty"`
	ShowStreetAddress        *bool `json:"showStreetAddress,omitempty"`
	ShowBirthdate            *bool `json:"showBirthdate,omitempty"`
	ShowNationality          *bool `json:"showNationality,omitempty"`
	ShowRelationshipStatus   *bool `json:"showRelationshipStatus,omitempty"`
	ShowCompanyDescription   *bool `json:"showCompanyDescription,omitempty"`
	ShowWorkDescription      *bool `json:"showWorkDescription,omitempty"`
	ShowProjectDescription   *bool `json:"showProjectDescription,omitempty"`
	ShowEducationDescription *bool `json:"showEducationDescription,omitempty"`
	ShowTrainingDescription  *bool `json:"showTrainingDescription,omitempty"`
}

// Defaults returns the documented defaults: everything shown except the middle name.
func Defaults() Flags {
	return Flags{
		ShowMiddleName:           false,
		ShowEmail:                true,
		ShowPhone:                true,
		ShowStreetAddress:        true,
		ShowBirthdate:            true,
		ShowNationality:          true,
		ShowRelationshipStatus:   true,
		ShowCompanyDescription:   true,
		ShowWorkDescription:      true,
		ShowProjectDescription:   true,
		ShowEducationDescription: true,
		ShowTrainingDescription:  true,
	}
}

// field pairs a flag name with its slot in Flags and Overrides.
type field struct {
	flag     func(*Flags) *bool
	override func(*Overrides) **bool
}

var fields = map[string]field{
	ShowMiddleName: {
		func(f *Flags) *bool { return &f.ShowMiddleName },
		func(o *Overrides) **bool { return &o.ShowMiddleName },
	},
	ShowEmail: {
		func(f *Flags) *bool { return &f.ShowEmail },
		func(o *Overrides) **bool { return &o.ShowEmail },
	},
	ShowPhone: {
		func(f *Flags) *bool { return &f.ShowPhone },
		func(o *Overrides) **bool { return &o.ShowPhone },
	},
	ShowStreetAddress: {
		func(f *Flags) *bool { return &f.ShowStreetAddress },
		func(o *Overrides) **bool { return &o.ShowStreetAddress },
	},
	ShowBirthdate: {
		func(f *Flags) *bool { return &f.ShowBirthdate },
		func(o *Overrides) **bool { return &o.ShowBirthdate },
	},
	ShowNationality: {
		func(f *Flags) *bool { return &f.ShowNationality },
		func(o *Overrides) **bool { return &o.ShowNationality },
	},
	ShowRelationshipStatus: {
		func(f *Flags) *bool { return &f.ShowRelationshipStatus },
		func(o *Overrides) **bool { return &o.ShowRelationshipStatus },
	},
	ShowCompanyDescription: {
		func(f *Flags) *bool { return &f.ShowCompanyDescription },
		func(o *Overrides) **bool { return &o.ShowCompanyDescription },
	},
	ShowWorkDescription: {
		func(f *Flags) *bool { return &f.ShowWorkDescription },
		func(o *Overrides) **bool { return &o.ShowWorkDescription },
	},
	ShowProjectDescription: {
		func(f *Flags) *bool { return &f.ShowProjectDescription },
		func(o *Overrides) **bool { return &o.ShowProjectDescription },
	},
	ShowEducationDescription: {
		func(f *Flags) *bool { return &f.ShowEducationDescription },
		func(o *Overrides) **bool { return &o.ShowEducationDescription },
	},
	ShowTrainingDescription: {
		func(f *Flags) *bool { return &f.ShowTrainingDescription },
		func(o *Overrides) **bool { return &o.ShowTrainingDescription },
	},
}

// Names returns every flag name in sorted order.
func Names() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownFlagError is returned for a flag name that does not exist.
type UnknownFlagError struct {
	Name string
}

func (e *UnknownFlagError) Error() string {
	return fmt.Sprintf("unknown display flag %q", e.Name)
}

// Merge returns f with every set override applied. f is not modified.
func (f Flags) Merge(o Overrides) Flags {
	out := f
	for _, fd := range fields {
		if v := *fd.override(&o); v != nil {
			*fd.flag(&out) = *v
		}
	}
	return out
}

// Get returns the value of a flag by name.
func (f Flags) Get(name string) (bool, error) {
	fd, ok := fields[name]
	if !ok {
		return false, &UnknownFlagError{Name: name}
	}
	return *fd.flag(&f), nil
}

// Map returns the flags keyed by name.
func (f Flags) Map() map[string]bool {
	out := make(map[string]bool, len(fields))
	for name, fd := range fields {
		out[name] = *fd.flag(&f)
	}
	return out
}

// Set records an override for the named flag.
func (o *Overrides) Set(name string, value bool) error {
	fd, ok := fields[name]
	if !ok {
		return &UnknownFlagError{Name: name}
	}
	v := value
	*fd.override(o) = &v
	return nil
}

// IsEmpty reports whether no override is set.
func (o Overrides) IsEmpty() bool {
	for _, fd := range fields {
		if *fd.override(&o) != nil {
			return false
		}
	}
	return true
}

// ParseQuery reads overrides from query parameters named after the flags.
// Parameters that are not flag names are ignored; bad boolean values are errors.
func ParseQuery(q url.Values) (Overrides, error) {
	var o Overrides
	for _, name := range Names() {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Overrides{}, fmt.Errorf("invalid value %q for %s: %w", raw, name, err)
		}
		if err := o.Set(name, v); err != nil {
			return Overrides{}, err
		}
	}
	return o, nil
}

// ParseAssignments reads overrides from "name=bool" pairs, as given on the command line.
// A bare name means true.
func ParseAssignments(pairs []string) (Overrides, error) {
	var o Overrides
	for _, pair := range pairs {
		name, raw, found := strings.Cut(strings.TrimSpace(pair), "=")
		v := true
		if found {
			var err error
			if v, err = strconv.ParseBool(raw); err != nil {
				return Overrides{}, fmt.Errorf("invalid value %q for %s: %w", raw, name, err)
			}
		}
		if err := o.Set(name, v); err != nil {
			return Overrides{}, err
		}
	}
	return o, nil
}
