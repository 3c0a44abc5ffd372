package ledger

import (
	"fmt"
	"strings"
)

// ValidationError is returned by AppendOne when the entry is incomplete,
// e.g. a selection field was left at its placeholder value.
type ValidationError struct {
	// Field is the entry field that failed validation.
	Field string

	// Value is the rejected value.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (value: '%s')", e.Field, e.Message, e.Value)
}

// SchemaError is returned by AppendMany when imported rows cannot become
// records. Either Missing is set (the header does not cover the canonical
// columns) or Row/Column locate the offending cell.
type SchemaError struct {
	// Missing lists canonical columns absent from the import header.
	Missing []string

	// Row is the 1-based data row number (header excluded).
	Row int

	// Column is the column holding the rejected value.
	Column string

	// Value is the rejected raw value.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid header: missing columns %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("row %d, column '%s': %s (value: '%s')", e.Row, e.Column, e.Message, e.Value)
}
