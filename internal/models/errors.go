package models

import "fmt"

// ParseError reports a value that could not be parsed while loading or
// deriving the dataset. Row is zero-based over data rows (header excluded).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
