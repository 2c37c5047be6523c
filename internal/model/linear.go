package model

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"engagedash/internal/features"
)

// KindLinear is an ordinary linear regression.
const KindLinear = "linear"

// Linear predicts Intercept + Coefficients . x.
type Linear struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	// Importances defaults to normalized absolute coefficients.
	Importances []float64 `json:"feature_importances,omitempty"`
}

// DecodeLinear decodes linear model parameters.
func DecodeLinear(width int, params []byte) (*Linear, error) {
	var l Linear
	if err := json.Unmarshal(params, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if len(l.Coefficients) == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidModel)
	}
	if l.Importances == nil {
		total := 0.0
		for _, c := range l.Coefficients {
			total += math.Abs(c)
		}
		l.Importances = make([]float64, len(l.Coefficients))
		for i, c := range l.Coefficients {
			if total > 0 {
				l.Importances[i] = math.Abs(c) / total
			}
		}
	}
	return &l, nil
}

// Predict implements Regressor.
func (l *Linear) Predict(x features.Matrix) ([]float64, error) {
	if err := checkWidth(x, len(l.Coefficients)); err != nil {
		return nil, err
	}
	out := make([]float64, len(x.Rows))
	for i, row := range x.Rows {
		y := l.Intercept
		for j, v := range row {
			y += l.Coefficients[j] * v
		}
		out[i] = y
	}
	return out, nil
}

// FeatureImportances implements Regressor.
func (l *Linear) FeatureImportances() []float64 {
	return l.Importances
}

// NumFeatures implements Regressor.
func (l *Linear) NumFeatures() int {
	return len(l.Coefficients)
}
