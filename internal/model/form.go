package model

import (
	"math"

	"engagedash/internal/features"
	"engagedash/internal/models"
)

// FormFeatures flattens a prediction form into feature name -> value. The raw
// link_clicks count is recovered as link_click_rate * followers, rounded to a
// whole count. Indicator names come from the schema's naming rule, so a
// selected reference level (or any level the schema does not know) simply
// yields a key that Reconcile drops.
func FormFeatures(form models.PredictionForm) map[string]float64 {
	input := map[string]float64{
		features.ColFollowers:     float64(form.Followers),
		features.ColLinkClicks:    math.Round(form.LinkClickRate * float64(form.Followers)),
		features.ColHashtagCount:  float64(form.HashtagCount),
		features.ColLikeRate:      form.LikeRate,
		features.ColCommentRate:   form.CommentRate,
		features.ColShareRate:     form.ShareRate,
		features.ColLinkClickRate: form.LinkClickRate,
		features.ColCaptionLength: float64(form.CaptionLength),
		features.ColHour:          float64(form.Hour),
	}
	for _, p := range form.Platforms {
		input[features.IndicatorName(features.ColPlatform, p)] = 1
	}
	for _, ct := range form.ContentTypes {
		input[features.IndicatorName(features.ColContentType, ct)] = 1
	}
	if form.DayOfWeek != "" {
		input[features.IndicatorName(features.ColDayOfWeek, form.DayOfWeek)] = 1
	}
	return input
}

// RowFeatures rebuilds the flat mapping for one row of a dataset matrix.
func RowFeatures(x features.Matrix, row int) map[string]float64 {
	input := make(map[string]float64, x.Width())
	for i, col := range x.Columns {
		input[col] = x.Rows[row][i]
	}
	return input
}
