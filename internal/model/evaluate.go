package model

import (
	"errors"
	"math"
	"sort"

	"engagedash/internal/features"
	"engagedash/internal/models"
)

// ErrNoSamples is returned when there is nothing to evaluate.
var ErrNoSamples = errors.New("no samples to evaluate")

// Evaluate computes RMSE and R² of predictions against observed values. When
// the observations are constant R² is 1 for a perfect fit and 0 otherwise.
func Evaluate(actual, predicted []float64) (models.Performance, error) {
	if len(actual) == 0 {
		return models.Performance{}, ErrNoSamples
	}
	if len(actual) != len(predicted) {
		return models.Performance{}, errors.New("actual and predicted lengths differ")
	}

	mean := 0.0
	for _, y := range actual {
		mean += y
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	points := make([]models.ScatterPair, len(actual))
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		m := actual[i] - mean
		ssTot += m * m
		points[i] = models.ScatterPair{Actual: actual[i], Predicted: predicted[i]}
	}

	r2 := 0.0
	switch {
	case ssTot > 0:
		r2 = 1 - ssRes/ssTot
	case ssRes == 0:
		r2 = 1
	}

	return models.Performance{
		RMSE:    math.Sqrt(ssRes / float64(len(actual))),
		R2:      r2,
		Samples: len(actual),
		Points:  points,
	}, nil
}

// RankImportances pairs importances with schema columns and returns the top n
// by importance, ties broken by name. n <= 0 returns all.
func RankImportances(schema *features.FeatureSchema, r Regressor, n int) []models.FeatureImportance {
	imp := r.FeatureImportances()
	ranked := make([]models.FeatureImportance, 0, len(imp))
	for i, col := range schema.FeatureColumns {
		if i >= len(imp) {
			break
		}
		ranked = append(ranked, models.FeatureImportance{Feature: col, Importance: imp[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
