package features

import (
	"errors"
	"math"
	"strings"
	"time"

	"engagedash/internal/models"
)

// timestampLayouts are tried in order when parsing post_date.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

var errBadTimestamp = errors.New("unrecognized timestamp format")

// ParseTimestamp parses a post_date value.
func ParseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadTimestamp
}

// Ratio divides n by d. A zero denominator yields NaN; the Selector excludes
// such rows before anything reaches the model.
func Ratio(n, d float64) float64 {
	if d == 0 {
		return math.NaN()
	}
	return n / d
}

// TokenCount counts whitespace-separated tokens.
func TokenCount(s string) int {
	return len(strings.Fields(s))
}

// Derive builds a frame from raw posts: the raw columns followed by the
// derived metrics (day_of_week, hour, engagement, engagement_rate,
// hashtag_count, like/comment/share rates, link_click_rate, caption_length).
// A malformed post_date fails the whole dataset with *models.ParseError.
func Derive(posts []models.Post) (*Frame, error) {
	n := len(posts)

	ids := make([]string, n)
	dates := make([]string, n)
	platforms := make([]string, n)
	contentTypes := make([]string, n)
	likes := make([]float64, n)
	comments := make([]float64, n)
	shares := make([]float64, n)
	impressions := make([]float64, n)
	linkClicks := make([]float64, n)
	followers := make([]float64, n)
	captions := make([]string, n)
	hashtags := make([]string, n)

	days := make([]string, n)
	hours := make([]float64, n)
	engagement := make([]float64, n)
	engagementRate := make([]float64, n)
	hashtagCount := make([]float64, n)
	likeRate := make([]float64, n)
	commentRate := make([]float64, n)
	shareRate := make([]float64, n)
	linkClickRate := make([]float64, n)
	captionLength := make([]float64, n)

	for i, p := range posts {
		ts, err := ParseTimestamp(p.PostDate)
		if err != nil {
			return nil, &models.ParseError{Row: i, Column: ColPostDate, Value: p.PostDate, Err: err}
		}

		ids[i] = p.PostID
		dates[i] = p.PostDate
		platforms[i] = p.Platform
		contentTypes[i] = p.ContentType
		likes[i] = float64(p.Likes)
		comments[i] = float64(p.Comments)
		shares[i] = float64(p.Shares)
		impressions[i] = float64(p.Impressions)
		linkClicks[i] = float64(p.LinkClicks)
		followers[i] = float64(p.Followers)
		captions[i] = p.CaptionText
		hashtags[i] = p.Hashtags

		days[i] = ts.Weekday().String()
		hours[i] = float64(ts.Hour())
		engagement[i] = float64(p.Likes + p.Comments + p.Shares)
		engagementRate[i] = Ratio(engagement[i], followers[i])
		hashtagCount[i] = float64(TokenCount(p.Hashtags))
		likeRate[i] = Ratio(likes[i], impressions[i])
		commentRate[i] = Ratio(comments[i], impressions[i])
		shareRate[i] = Ratio(shares[i], impressions[i])
		linkClickRate[i] = Ratio(linkClicks[i], followers[i])
		captionLength[i] = float64(TokenCount(p.CaptionText))
	}

	f := NewFrame(n)
	steps := []error{
		f.AddStrings(ColPostID, ids),
		f.AddStrings(ColPostDate, dates),
		f.AddStrings(ColPlatform, platforms),
		f.AddStrings(ColContentType, contentTypes),
		f.AddFloats(ColLikes, likes),
		f.AddFloats(ColComments, comments),
		f.AddFloats(ColShares, shares),
		f.AddFloats(ColImpressions, impressions),
		f.AddFloats(ColLinkClicks, linkClicks),
		f.AddFloats(ColFollowers, followers),
		f.AddStrings(ColCaptionText, captions),
		f.AddStrings(ColHashtags, hashtags),
		f.AddStrings(ColDayOfWeek, days),
		f.AddFloats(ColHour, hours),
		f.AddFloats(ColEngagement, engagement),
		f.AddFloats(ColEngagementRate, engagementRate),
		f.AddFloats(ColHashtagCount, hashtagCount),
		f.AddFloats(ColLikeRate, likeRate),
		f.AddFloats(ColCommentRate, commentRate),
		f.AddFloats(ColShareRate, shareRate),
		f.AddFloats(ColLinkClickRate, linkClickRate),
		f.AddFloats(ColCaptionLength, captionLength),
	}
	if err := errors.Join(steps...); err != nil {
		return nil, err
	}
	return f, nil
}
