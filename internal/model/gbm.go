package model

import (
	"fmt"

	"github.com/goccy/go-json"

	"engagedash/internal/features"
)

// KindGradientBoosting is a gradient-boosted ensemble of regression trees.
const KindGradientBoosting = "gradient_boosting"

// Node is one node of a regression tree. Leaves have Feature < 0. Samples with
// x[Feature] <= Threshold go left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flat array of nodes rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// GradientBoosting predicts Init + LearningRate * sum of tree outputs.
type GradientBoosting struct {
	Init         float64   `json:"init"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []Tree    `json:"trees"`
	Importances  []float64 `json:"feature_importances"`
	NFeatures    int       `json:"n_features"`
}

// DecodeGradientBoosting decodes and validates ensemble parameters.
func DecodeGradientBoosting(width int, params []byte) (*GradientBoosting, error) {
	var g GradientBoosting
	if err := json.Unmarshal(params, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if g.NFeatures == 0 {
		g.NFeatures = width
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (g *GradientBoosting) validate() error {
	if len(g.Trees) == 0 {
		return fmt.Errorf("%w: ensemble has no trees", ErrInvalidModel)
	}
	for t, tree := range g.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, t)
		}
		for i, n := range tree.Nodes {
			if n.Feature < 0 {
				continue
			}
			if n.Feature >= g.NFeatures {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d of %d", ErrInvalidModel, t, i, n.Feature, g.NFeatures)
			}
			// children after parents guarantees termination
			if n.Left <= i || n.Right <= i || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has invalid children", ErrInvalidModel, t, i)
			}
		}
	}
	return nil
}

// Predict implements Regressor.
func (g *GradientBoosting) Predict(x features.Matrix) ([]float64, error) {
	if err := checkWidth(x, g.NFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(x.Rows))
	for i, row := range x.Rows {
		sum := 0.0
		for _, tree := range g.Trees {
			sum += tree.eval(row)
		}
		out[i] = g.Init + g.LearningRate*sum
	}
	return out, nil
}

func (t Tree) eval(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// FeatureImportances implements Regressor.
func (g *GradientBoosting) FeatureImportances() []float64 {
	return g.Importances
}

// NumFeatures implements Regressor.
func (g *GradientBoosting) NumFeatures() int {
	return g.NFeatures
}
