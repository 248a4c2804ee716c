package validate

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a form field to its validation message. It satisfies
// error so services can return it directly and handlers can render it inline
// next to the offending fields.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) Add(field, message string) {
	e[field] = message
}

func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Required adds a "<label> is required" message when value is blank.
func (e FieldErrors) Required(field, label, value string) {
	if strings.TrimSpace(value) == "" {
		e[field] = label + " is required"
	}
}
