// Package engine loads the dataset and model once at startup and exposes the
// read-only state every request and command works from.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"engagedash/internal/analytics"
	"engagedash/internal/dataset"
	"engagedash/internal/features"
	"engagedash/internal/logging"
	"engagedash/internal/model"
	"engagedash/internal/models"
)

// Options says where to load from and how to build features.
type Options struct {
	DatasetPath string
	ModelPath   string
	Pipeline    features.Pipeline
}

// Engine is immutable after Load returns and safe for concurrent use.
type Engine struct {
	Posts    []models.Post
	Features *features.Result
	Adapter  *model.Adapter
	Artifact *model.Artifact

	// SchemaInferred is set when the artifact carried no schema and the
	// dataset's observed levels were used instead.
	SchemaInferred bool

	Analytics   *analytics.Store
	Predictions []float64
	Performance models.Performance
	LoadedAt    time.Time
}

// Load reads the dataset and model artifact from disk and builds an Engine.
// Any error here means the process cannot serve predictions.
func Load(ctx context.Context, opts Options) (*Engine, error) {
	posts, err := dataset.LoadFile(opts.DatasetPath)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("path", opts.DatasetPath).Int("rows", len(posts)).Msg("dataset loaded")

	artifact, err := model.LoadFile(opts.ModelPath)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("path", opts.ModelPath).Str("kind", artifact.Kind).Str("version", artifact.Version).Msg("model loaded")

	return New(ctx, posts, artifact, opts.Pipeline)
}

// New builds an Engine from already-loaded posts and artifact.
func New(ctx context.Context, posts []models.Post, artifact *model.Artifact, pipeline features.Pipeline) (*Engine, error) {
	e := &Engine{Posts: posts, Artifact: artifact}

	pipeline.Schema = artifact.Schema
	if pipeline.Schema == nil {
		e.SchemaInferred = true
		logging.Warn().Msg("model artifact has no feature schema, inferring levels from the dataset")
	}

	res, err := pipeline.Run(posts)
	if err != nil {
		return nil, fmt.Errorf("failed to build features: %w", err)
	}
	e.Features = res
	if n := len(res.Dataset.Excluded); n > 0 {
		logging.Warn().Int("rows", n).Strs("post_ids", res.Dataset.Excluded).Msg("rows excluded for zero followers or impressions")
	}

	reg, err := artifact.Build(res.Schema)
	if err != nil {
		return nil, err
	}
	if e.Adapter, err = model.NewAdapter(res.Schema, reg); err != nil {
		return nil, err
	}

	if e.Predictions, err = e.Adapter.BatchPredict(res.Dataset.X); err != nil {
		return nil, err
	}
	e.Performance, err = model.Evaluate(res.Dataset.Y, e.Predictions)
	if err != nil && !errors.Is(err, model.ErrNoSamples) {
		return nil, err
	}

	records, err := analytics.RecordsFromFrame(res.Derived)
	if err != nil {
		return nil, err
	}
	if e.Analytics, err = analytics.Open(ctx); err != nil {
		return nil, err
	}
	if err := e.Analytics.Load(ctx, records); err != nil {
		e.Analytics.Close()
		return nil, err
	}

	e.LoadedAt = time.Now()
	logging.Info().
		Int("features", res.Schema.Width()).
		Int("samples", e.Performance.Samples).
		Float64("rmse", e.Performance.RMSE).
		Float64("r2", e.Performance.R2).
		Msg("engine ready")
	return e, nil
}

// Close releases the analytics database.
func (e *Engine) Close() error {
	if e.Analytics == nil {
		return nil
	}
	return e.Analytics.Close()
}

// Schema returns the feature schema shared by both prediction paths.
func (e *Engine) Schema() *features.FeatureSchema {
	return e.Adapter.Schema()
}

// Predict runs the single-row path for a validated form.
func (e *Engine) Predict(form models.PredictionForm) (models.Prediction, error) {
	input := model.FormFeatures(form)
	if dropped := e.Adapter.Dropped(input); len(dropped) > 0 {
		logging.Debug().Strs("features", dropped).Msg("prediction input keys outside the schema dropped")
	}
	rate, err := e.Adapter.PredictOne(input)
	if err != nil {
		return models.Prediction{}, err
	}
	return models.Prediction{
		ID:                   uuid.New(),
		EngagementRate:       rate,
		PerThousandFollowers: models.PerThousand(rate),
		ModelVersion:         e.Artifact.Version,
		SchemaVersion:        e.Schema().Version,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// Importances returns the top n ranked feature importances; n <= 0 means all.
func (e *Engine) Importances(n int) []models.FeatureImportance {
	return model.RankImportances(e.Schema(), e.Adapter.Model(), n)
}

// Preview returns up to n posts in dataset order.
func (e *Engine) Preview(n int) []models.Post {
	if n < 0 || n > len(e.Posts) {
		n = len(e.Posts)
	}
	return e.Posts[:n]
}

// Excluded returns the post ids left out of the model input.
func (e *Engine) Excluded() []string {
	return e.Features.Dataset.Excluded
}

// Rows, ExcludedRows, FeatureCount and ModelVersion feed the metrics collector.

func (e *Engine) Rows() int         { return len(e.Posts) }
func (e *Engine) ExcludedRows() int { return len(e.Features.Dataset.Excluded) }
func (e *Engine) FeatureCount() int { return e.Schema().Width() }
func (e *Engine) ModelVersion() string {
	return e.Artifact.Kind + "/" + e.Artifact.Version
}
