// Package model loads the trained engagement-rate regressor and adapts
// feature matrices and single form submissions to it.
package model

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"engagedash/internal/features"
)

var (
	// ErrUnknownKind is returned for an artifact kind with no registered deserializer.
	ErrUnknownKind = errors.New("unknown model kind")

	// ErrInvalidModel is returned when an artifact fails load-time validation.
	ErrInvalidModel = errors.New("invalid model artifact")

	// ErrSchemaMismatch is features.ErrSchemaMismatch, re-exported for callers
	// that only deal with the model.
	ErrSchemaMismatch = features.ErrSchemaMismatch
)

// Regressor is a trained model mapping a feature matrix to predicted
// engagement rates.
type Regressor interface {
	Predict(x features.Matrix) ([]float64, error)
	// FeatureImportances is aligned index for index with the feature columns.
	FeatureImportances() []float64
	NumFeatures() int
}

// Artifact is the serialized model file: a kind-tagged parameter blob plus the
// feature schema it was trained with.
type Artifact struct {
	Kind      string                  `json:"kind"`
	Version   string                  `json:"version"`
	TrainedAt string                  `json:"trained_at,omitempty"`
	Schema    *features.FeatureSchema `json:"schema,omitempty"`
	Params    json.RawMessage         `json:"params"`
}

// Deserializer builds a Regressor of a given width from its parameters.
type Deserializer func(width int, params []byte) (Regressor, error)

// Deserializers maps artifact kinds to their decoders.
var Deserializers = map[string]Deserializer{
	KindGradientBoosting: func(width int, params []byte) (Regressor, error) {
		return DecodeGradientBoosting(width, params)
	},
	KindLinear: func(width int, params []byte) (Regressor, error) {
		return DecodeLinear(width, params)
	},
}

// LoadFile reads an artifact from disk.
func LoadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return Parse(data)
}

// Parse decodes an artifact. The parameters are decoded later by Build, once
// the schema width is known.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if a.Kind == "" {
		return nil, fmt.Errorf("%w: missing kind", ErrInvalidModel)
	}
	if _, ok := Deserializers[a.Kind]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, a.Kind)
	}
	if a.Schema != nil {
		if err := a.Schema.Validate(); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// Build decodes the parameters against the schema and checks that the model
// and schema agree on width.
func (a *Artifact) Build(schema *features.FeatureSchema) (Regressor, error) {
	decode, ok := Deserializers[a.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, a.Kind)
	}
	r, err := decode(schema.Width(), a.Params)
	if err != nil {
		return nil, err
	}
	if r.NumFeatures() != schema.Width() {
		return nil, fmt.Errorf("%w: model expects %d features, schema has %d", ErrSchemaMismatch, r.NumFeatures(), schema.Width())
	}
	if n := len(r.FeatureImportances()); n != schema.Width() {
		return nil, fmt.Errorf("%w: %d importances for %d features", ErrSchemaMismatch, n, schema.Width())
	}
	return r, nil
}

func checkWidth(x features.Matrix, width int) error {
	if x.Width() != width {
		return fmt.Errorf("%w: matrix has %d columns, model expects %d", ErrSchemaMismatch, x.Width(), width)
	}
	for i, row := range x.Rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d values, model expects %d", ErrSchemaMismatch, i, len(row), width)
		}
	}
	return nil
}
