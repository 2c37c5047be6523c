package models

import (
	"time"

	"github.com/google/uuid"
)

// Weekdays lists day names in calendar order, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// PredictionForm holds the attributes of a hypothetical new post.
type PredictionForm struct {
	Followers     int64    `json:"followers" validate:"min=1"`
	HashtagCount  int      `json:"hashtag_count" validate:"min=0"`
	LikeRate      float64  `json:"like_rate" validate:"finite,min=0,max=1"`
	CommentRate   float64  `json:"comment_rate" validate:"finite,min=0,max=1"`
	ShareRate     float64  `json:"share_rate" validate:"finite,min=0,max=1"`
	LinkClickRate float64  `json:"link_click_rate" validate:"finite,min=0,max=1"`
	CaptionLength int      `json:"caption_length" validate:"min=0"`
	Hour          int      `json:"hour" validate:"min=0,max=23"`
	Platforms     []string `json:"platforms"`
	ContentTypes  []string `json:"content_types"`
	DayOfWeek     string   `json:"day_of_week" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
}

// DefaultPredictionForm returns the values the dashboard form starts with.
func DefaultPredictionForm() PredictionForm {
	return PredictionForm{
		Followers:     1000,
		HashtagCount:  2,
		LikeRate:      0.1,
		CommentRate:   0.05,
		ShareRate:     0.02,
		LinkClickRate: 0.01,
		CaptionLength: 15,
		Hour:          12,
		DayOfWeek:     "Monday",
	}
}

// Prediction is the result of a single-row prediction.
type Prediction struct {
	ID                   uuid.UUID `json:"id"`
	EngagementRate       float64   `json:"engagement_rate"`
	PerThousandFollowers float64   `json:"engagements_per_1000_followers"`
	ModelVersion         string    `json:"model_version"`
	SchemaVersion        string    `json:"schema_version"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// PerThousand converts a per-follower engagement rate into engagements per
// 1,000 followers.
func PerThousand(rate float64) float64 {
	return rate * 1000
}

// FeatureImportance is one ranked entry of the model's importance array.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Performance summarizes batch predictions against the observed target.
type Performance struct {
	RMSE    float64       `json:"rmse"`
	R2      float64       `json:"r2"`
	Samples int           `json:"samples"`
	Points  []ScatterPair `json:"points,omitempty"`
}

// ScatterPair is one actual/predicted point.
type ScatterPair struct {
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}
