package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error is a field-keyed validation failure. The map carries one message per
// offending field so callers can surface the rejected value next to its input.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range e.sortedFields() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// FirstField returns the alphabetically first offending field, or the empty
// string when there is none. Used when an error must be pinned to a single
// field, as in row-scoped import errors.
func (e *Error) FirstField() string {
	fields := e.sortedFields()
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (e *Error) sortedFields() []string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
