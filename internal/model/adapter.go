package model

import (
	"fmt"
	"math"

	"engagedash/internal/features"
)

// Adapter is the only way predictions are made: it holds the model together
// with the schema it was trained on, so both prediction paths share one
// column contract.
type Adapter struct {
	schema *features.FeatureSchema
	model  Regressor
}

// NewAdapter binds a model to its schema.
func NewAdapter(schema *features.FeatureSchema, model Regressor) (*Adapter, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if model.NumFeatures() != schema.Width() {
		return nil, fmt.Errorf("%w: model expects %d features, schema has %d", ErrSchemaMismatch, model.NumFeatures(), schema.Width())
	}
	return &Adapter{schema: schema, model: model}, nil
}

// Schema returns the authoritative feature schema.
func (a *Adapter) Schema() *features.FeatureSchema {
	return a.schema
}

// Model returns the underlying regressor.
func (a *Adapter) Model() Regressor {
	return a.model
}

// BatchPredict predicts every row of x. The columns must already match the
// schema by name and order; nothing is padded or truncated here.
func (a *Adapter) BatchPredict(x features.Matrix) ([]float64, error) {
	if !features.SameColumns(x.Columns, a.schema.FeatureColumns) {
		return nil, fmt.Errorf("%w: matrix columns %v, schema columns %v", ErrSchemaMismatch, x.Columns, a.schema.FeatureColumns)
	}
	return a.model.Predict(x)
}

// Reconcile turns a flat name->value mapping into a single row laid out
// exactly like the schema: schema columns missing from the input become 0,
// input keys outside the schema are dropped, and order follows the schema.
func (a *Adapter) Reconcile(input map[string]float64) features.Matrix {
	row := make([]float64, a.schema.Width())
	for i, col := range a.schema.FeatureColumns {
		row[i] = input[col]
	}
	return features.Matrix{
		Columns: append([]string(nil), a.schema.FeatureColumns...),
		Rows:    [][]float64{row},
	}
}

// Dropped returns the input keys Reconcile discards.
func (a *Adapter) Dropped(input map[string]float64) []string {
	var dropped []string
	for k := range input {
		if a.schema.Index(k) < 0 {
			dropped = append(dropped, k)
		}
	}
	return dropped
}

// PredictOne reconciles a single input and predicts it. Only values that
// survive reconciliation must be finite.
func (a *Adapter) PredictOne(input map[string]float64) (float64, error) {
	x := a.Reconcile(input)
	for i, v := range x.Rows[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("feature %s is not finite", x.Columns[i])
		}
	}
	out, err := a.model.Predict(x)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}
