package storage

import "fmt"

// ColumnError reports a stored value that does not decode into a record field.
type ColumnError struct {
	Column string
	Value  string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Column, e.Value)
}
