package features

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a value is not among a column's frozen levels.
var ErrUnknownCategory = errors.New("unknown category")

// FitLevels collects the sorted distinct values of each categorical column
// present in the frame. Columns absent from the frame are skipped.
func FitLevels(f *Frame, columns []string) (map[string][]string, error) {
	levels := make(map[string][]string, len(columns))
	for _, col := range columns {
		if !f.Has(col) {
			continue
		}
		values, err := f.Strings(col)
		if err != nil {
			return nil, err
		}
		distinct := make([]string, len(values))
		copy(distinct, values)
		levels[col] = SortLevels(distinct)
	}
	return levels, nil
}

// Encoder one-hot encodes categorical columns, dropping the reference level.
// Levels holds the frozen levels per column; a column without frozen levels
// is fitted from the frame being encoded.
type Encoder struct {
	Levels map[string][]string
}

// NewEncoder returns an encoder bound to the schema's frozen levels.
func NewEncoder(schema *FeatureSchema) *Encoder {
	if schema == nil {
		return &Encoder{}
	}
	return &Encoder{Levels: schema.Levels()}
}

// Encode replaces each listed categorical column with its indicator columns,
// appended in column order then level order. It returns the encoded frame and
// the indicator names produced. Columns that are already gone are skipped,
// so encoding an encoded frame is a no-op.
func (e *Encoder) Encode(f *Frame, columns []string) (*Frame, []string, error) {
	out := f.Clone()
	var produced []string

	for _, col := range columns {
		if !f.Has(col) {
			continue
		}
		values, err := f.Strings(col)
		if err != nil {
			return nil, nil, err
		}

		levels, ok := e.Levels[col]
		if !ok {
			fitted, err := FitLevels(f, []string{col})
			if err != nil {
				return nil, nil, err
			}
			levels = fitted[col]
		}

		known := make(map[string]bool, len(levels))
		for _, l := range levels {
			known[l] = true
		}
		for row, v := range values {
			if !known[v] {
				return nil, nil, fmt.Errorf("%w: %s=%q at row %d", ErrUnknownCategory, col, v, row)
			}
		}

		out = out.Drop(col)
		if len(levels) < 2 {
			continue
		}
		for _, level := range levels[1:] {
			name := IndicatorName(col, level)
			if out.Has(name) {
				continue
			}
			indicator := make([]float64, len(values))
			for row, v := range values {
				if v == level {
					indicator[row] = 1
				}
			}
			if err := out.AddFloats(name, indicator); err != nil {
				return nil, nil, err
			}
			produced = append(produced, name)
		}
	}
	return out, produced, nil
}
