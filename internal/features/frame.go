// Package features turns raw posts into the numeric feature matrix the
// engagement model consumes: metric derivation, categorical encoding and
// feature selection, all driven by one shared FeatureSchema.
package features

import (
	"errors"
	"fmt"
)

// Kind is the storage type of a Frame column.
type Kind int

const (
	KindNumeric Kind = iota
	KindString
)

// ErrColumnNotFound is returned when a named column is absent from a Frame.
var ErrColumnNotFound = errors.New("column not found")

// Column is a named, typed column. Exactly one of Floats or Strings is set,
// according to Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// Frame is an ordered set of equal-length columns. Frames are treated as
// immutable: operations return new Frames that may share column storage.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewFrame creates an empty Frame holding the given number of rows.
func NewFrame(rows int) *Frame {
	return &Frame{index: make(map[string]int), rows: rows}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Floats returns the values of a numeric column.
func (f *Frame) Floats(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if c.Kind != KindNumeric {
		return nil, fmt.Errorf("column %s is not numeric", name)
	}
	return c.Floats, nil
}

// Strings returns the values of a string column.
func (f *Frame) Strings(name string) ([]string, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if c.Kind != KindString {
		return nil, fmt.Errorf("column %s is not a string column", name)
	}
	return c.Strings, nil
}

// AddFloats appends a numeric column.
func (f *Frame) AddFloats(name string, values []float64) error {
	return f.add(&Column{Name: name, Kind: KindNumeric, Floats: values}, len(values))
}

// AddStrings appends a string column.
func (f *Frame) AddStrings(name string, values []string) error {
	return f.add(&Column{Name: name, Kind: KindString, Strings: values}, len(values))
}

func (f *Frame) add(c *Column, n int) error {
	if n != f.rows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name, n, f.rows)
	}
	if f.Has(c.Name) {
		return fmt.Errorf("duplicate column %s", c.Name)
	}
	f.index[c.Name] = len(f.columns)
	f.columns = append(f.columns, c)
	return nil
}

// Clone returns a shallow copy whose column list can be changed without
// affecting f.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.rows)
	for _, c := range f.columns {
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}

// Drop returns a copy of f without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := NewFrame(f.rows)
	for _, c := range f.columns {
		if skip[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, c)
	}
	return out
}

// Matrix is a dense row-major feature matrix with named columns.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// Width returns the number of columns.
func (m Matrix) Width() int {
	return len(m.Columns)
}

// Len returns the number of rows.
func (m Matrix) Len() int {
	return len(m.Rows)
}

// SameColumns reports whether two column lists match by name and order.
func SameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
