package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"engagedash/internal/dataset"
	"engagedash/internal/features"
	"engagedash/internal/model"
	"engagedash/internal/models"
)

func loadTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Load(context.Background(), Options{
		DatasetPath: "testdata/posts.csv",
		ModelPath:   "testdata/model.json",
		Pipeline:    features.DefaultPipeline(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

// formFromPost fills a prediction form with the metrics Derive computes for p.
func formFromPost(t *testing.T, p models.Post) models.PredictionForm {
	t.Helper()
	ts, err := features.ParseTimestamp(p.PostDate)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) error = %v", p.PostDate, err)
	}
	imp := float64(p.Impressions)
	return models.PredictionForm{
		Followers:     p.Followers,
		HashtagCount:  len(strings.Fields(p.Hashtags)),
		LikeRate:      float64(p.Likes) / imp,
		CommentRate:   float64(p.Comments) / imp,
		ShareRate:     float64(p.Shares) / imp,
		LinkClickRate: float64(p.LinkClicks) / float64(p.Followers),
		CaptionLength: len(strings.Fields(p.CaptionText)),
		Hour:          ts.Hour(),
		Platforms:     []string{p.Platform},
		ContentTypes:  []string{p.ContentType},
		DayOfWeek:     ts.Weekday().String(),
	}
}

func TestLoad(t *testing.T) {
	e := loadTestEngine(t)

	if e.Rows() != 6 {
		t.Errorf("Rows() = %d, want 6", e.Rows())
	}
	if got := e.Excluded(); len(got) != 1 || got[0] != "p5" {
		t.Errorf("Excluded() = %v, want [p5]", got)
	}
	if e.FeatureCount() != 19 {
		t.Errorf("FeatureCount() = %d, want 19", e.FeatureCount())
	}
	if e.SchemaInferred {
		t.Error("SchemaInferred = true for an artifact with a schema")
	}
	if e.ModelVersion() != "linear/test-1" {
		t.Errorf("ModelVersion() = %q, want linear/test-1", e.ModelVersion())
	}
	if e.Performance.Samples != 5 || len(e.Predictions) != 5 {
		t.Errorf("Samples = %d, predictions = %d, want 5", e.Performance.Samples, len(e.Predictions))
	}
	if e.Analytics.Rows() != 6 {
		t.Errorf("Analytics.Rows() = %d, want 6", e.Analytics.Rows())
	}
	if e.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing dataset", Options{DatasetPath: "testdata/nope.csv", ModelPath: "testdata/model.json"}},
		{"missing model", Options{DatasetPath: "testdata/posts.csv", ModelPath: "testdata/nope.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Pipeline = features.DefaultPipeline()
			if _, err := Load(context.Background(), tt.opts); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestSinglePathMatchesBatchPath(t *testing.T) {
	e := loadTestEngine(t)

	byID := make(map[string]models.Post, len(e.Posts))
	for _, p := range e.Posts {
		byID[p.PostID] = p
	}

	for i, id := range e.Features.Dataset.PostIDs {
		t.Run(id, func(t *testing.T) {
			got, err := e.Predict(formFromPost(t, byID[id]))
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if math.Abs(got.EngagementRate-e.Predictions[i]) > 1e-12 {
				t.Errorf("Predict() = %v, batch prediction = %v", got.EngagementRate, e.Predictions[i])
			}
			if math.Abs(got.PerThousandFollowers-got.EngagementRate*1000) > 1e-9 {
				t.Errorf("PerThousandFollowers = %v, want %v", got.PerThousandFollowers, got.EngagementRate*1000)
			}
		})
	}
}

func TestPredictReferenceAndUnknownLevels(t *testing.T) {
	e := loadTestEngine(t)

	base := models.DefaultPredictionForm()
	base.DayOfWeek = "Friday"
	want, err := e.Predict(base)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	// Facebook is the reference platform and Mastodon is unknown: neither
	// sets an indicator, so the prediction is unchanged.
	withFlags := base
	withFlags.Platforms = []string{"Facebook", "Mastodon"}
	withFlags.ContentTypes = []string{"image"}
	got, err := e.Predict(withFlags)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got.EngagementRate != want.EngagementRate {
		t.Errorf("Predict() with reference/unknown flags = %v, want %v", got.EngagementRate, want.EngagementRate)
	}
	if got.ID == want.ID {
		t.Error("predictions share an ID")
	}
	if got.ModelVersion != "test-1" || got.SchemaVersion != "1" {
		t.Errorf("versions = %s/%s, want test-1/1", got.ModelVersion, got.SchemaVersion)
	}
}

func TestPredictConcurrent(t *testing.T) {
	e := loadTestEngine(t)
	form := models.DefaultPredictionForm()
	want, err := e.Predict(form)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Predict(form)
			if err == nil && got.EngagementRate != want.EngagementRate {
				err = fmt.Errorf("got %v, want %v", got.EngagementRate, want.EngagementRate)
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewInfersSchema(t *testing.T) {
	posts, err := dataset.LoadFile("testdata/posts.csv")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	// 9 numeric + 2 platform + 2 content type + 5 observed weekdays
	params, _ := json.Marshal(model.Linear{Intercept: 0.05, Coefficients: make([]float64, 18)})
	artifact := &model.Artifact{Kind: model.KindLinear, Version: "bare", Params: params}

	e, err := New(context.Background(), posts, artifact, features.DefaultPipeline())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if !e.SchemaInferred {
		t.Error("SchemaInferred = false, want true")
	}
	if e.Schema().Index("day_of_week_Wednesday") >= 0 {
		t.Error("inferred schema has an indicator for an unobserved weekday")
	}
	if ref, _ := e.Schema().Reference(features.ColDayOfWeek); ref != "Friday" {
		t.Errorf("day_of_week reference = %q, want Friday", ref)
	}
}

func TestNewRejectsWidthMismatch(t *testing.T) {
	posts, err := dataset.LoadFile("testdata/posts.csv")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	artifact, err := model.LoadFile("testdata/model.json")
	if err != nil {
		t.Fatalf("model.LoadFile() error = %v", err)
	}
	artifact.Params, _ = json.Marshal(model.Linear{Coefficients: make([]float64, 12)})

	if _, err := New(context.Background(), posts, artifact, features.DefaultPipeline()); !errors.Is(err, model.ErrSchemaMismatch) {
		t.Errorf("New() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestImportancesAndPreview(t *testing.T) {
	e := loadTestEngine(t)

	top := e.Importances(3)
	if len(top) != 3 || top[0].Feature != features.ColLikeRate {
		t.Errorf("Importances(3) = %+v, want like_rate first", top)
	}
	if got := len(e.Preview(4)); got != 4 {
		t.Errorf("Preview(4) returned %d posts", got)
	}
	if got := len(e.Preview(100)); got != 6 {
		t.Errorf("Preview(100) returned %d posts, want 6", got)
	}
}

func TestSinglePathMatchesBatchPathOnLinkClicks(t *testing.T) {
	posts, err := dataset.LoadFile("testdata/posts.csv")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	artifact, err := model.LoadFile("testdata/model.json")
	if err != nil {
		t.Fatalf("model.LoadFile() error = %v", err)
	}

	// one stump on link_clicks (feature 0): the prediction depends on nothing else
	width := artifact.Schema.Width()
	importances := make([]float64, width)
	importances[0] = 1
	artifact.Kind = model.KindGradientBoosting
	artifact.Params, _ = json.Marshal(model.GradientBoosting{
		Init:         0.02,
		LearningRate: 1,
		Trees: []model.Tree{{Nodes: []model.Node{
			{Feature: 0, Threshold: 10, Left: 1, Right: 2},
			{Feature: -1, Value: 0.01},
			{Feature: -1, Value: 0.05},
		}}},
		Importances: importances,
	})

	e, err := New(context.Background(), posts, artifact, features.DefaultPipeline())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.PostID] = p
	}

	tests := []struct {
		id   string
		want float64
	}{
		{"p1", 0.07}, // 12 clicks
		{"p2", 0.03}, // 0 clicks
		{"p3", 0.07}, // 30 clicks
		{"p4", 0.03}, // 8 clicks
		{"p6", 0.03}, // 9 clicks
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			i := -1
			for j, id := range e.Features.Dataset.PostIDs {
				if id == tt.id {
					i = j
				}
			}
			if i < 0 {
				t.Fatalf("%s not in the model input", tt.id)
			}
			if math.Abs(e.Predictions[i]-tt.want) > 1e-12 {
				t.Errorf("batch prediction = %v, want %v", e.Predictions[i], tt.want)
			}

			got, err := e.Predict(formFromPost(t, byID[tt.id]))
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if math.Abs(got.EngagementRate-e.Predictions[i]) > 1e-12 {
				t.Errorf("Predict() = %v, batch prediction = %v", got.EngagementRate, e.Predictions[i])
			}
		})
	}
}
