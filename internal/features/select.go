package features

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Dataset is the model-ready view of a frame.
type Dataset struct {
	X       Matrix
	Y       []float64
	PostIDs []string
	// Excluded holds the ids of rows dropped because a feature or the target
	// was not finite (zero followers or impressions).
	Excluded []string
}

// Selector picks the model input columns out of an encoded frame.
type Selector struct {
	Exclude []string
	Target  string
	// Schema, when set, fixes the expected column set and order.
	Schema *FeatureSchema
}

// FeatureColumns returns the selected column names in frame order, or in
// schema order when a schema is set.
func (s Selector) FeatureColumns(f *Frame) ([]string, error) {
	skip := make(map[string]bool, len(s.Exclude)+1)
	for _, e := range s.Exclude {
		skip[e] = true
	}
	skip[s.Target] = true

	var cols []string
	for _, c := range f.columns {
		if skip[c.Name] {
			continue
		}
		if c.Kind != KindNumeric {
			return nil, fmt.Errorf("%w: column %s is not numeric and not excluded", ErrSchemaMismatch, c.Name)
		}
		cols = append(cols, c.Name)
	}

	if s.Schema == nil {
		return cols, nil
	}

	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	for _, want := range s.Schema.FeatureColumns {
		if !have[want] {
			return nil, fmt.Errorf("%w: frame lacks feature column %s", ErrSchemaMismatch, want)
		}
		delete(have, want)
	}
	if len(have) > 0 {
		extra := make([]string, 0, len(have))
		for c := range have {
			extra = append(extra, c)
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: frame has unexpected columns %v", ErrSchemaMismatch, extra)
	}
	return append([]string(nil), s.Schema.FeatureColumns...), nil
}

// Select builds X and y. Rows with any non-finite feature or target value are
// excluded and reported in Dataset.Excluded.
func (s Selector) Select(f *Frame) (*Dataset, error) {
	cols, err := s.FeatureColumns(f)
	if err != nil {
		return nil, err
	}
	target, err := f.Floats(s.Target)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, len(cols))
	for i, c := range cols {
		if values[i], err = f.Floats(c); err != nil {
			return nil, err
		}
	}

	var ids []string
	if f.Has(ColPostID) {
		if ids, err = f.Strings(ColPostID); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{X: Matrix{Columns: cols}}
	for row := 0; row < f.Len(); row++ {
		id := strconv.Itoa(row)
		if ids != nil {
			id = ids[row]
		}

		vec := make([]float64, len(cols))
		finite := isFinite(target[row])
		for i := range cols {
			vec[i] = values[i][row]
			finite = finite && isFinite(vec[i])
		}
		if !finite {
			ds.Excluded = append(ds.Excluded, id)
			continue
		}
		ds.X.Rows = append(ds.X.Rows, vec)
		ds.Y = append(ds.Y, target[row])
		ds.PostIDs = append(ds.PostIDs, id)
	}
	return ds, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
