package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(Date); ok {
				return d.Time()
			}
			return nil
		}, Date{})
		v.RegisterStructValidation(validatePeriod, Period{})
		_ = v.RegisterValidation("proficiency", func(fl validator.FieldLevel) bool {
			return Proficiency(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// validatePeriod enforces the current/end-date invariant at save time:
// an ongoing entry has no end date and a finished one needs one.
func validatePeriod(sl validator.StructLevel) {
	p := sl.Current().Interface().(Period)
	if p.StartDate.IsZero() {
		sl.ReportError(p.StartDate, "startDate", "StartDate", "required", "")
	}
	switch {
	case p.Current && !p.EndDate.IsZero():
		sl.ReportError(p.EndDate, "endDate", "EndDate", "excluded_if_current", "")
	case !p.Current && p.EndDate.IsZero():
		sl.ReportError(p.EndDate, "endDate", "EndDate", "required_unless_current", "")
	case p.EndDate.Before(p.StartDate):
		sl.ReportError(p.EndDate, "endDate", "EndDate", "gtefield", "startDate")
	}
}

// FieldError is one failed save-validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every rule a payload failed.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Rule))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a CV entry (or a whole CV) against the save rules.
// It returns a *ValidationError when any rule fails.
func Validate(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	out := &ValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field: trimNamespace(fe.Namespace()),
			Rule:  fe.Tag(),
		})
	}
	return out
}

// trimNamespace drops the root type name ("CV.education[0].degree" -> "education[0].degree").
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
