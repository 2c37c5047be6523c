package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"engagedash/internal/models"
)

// PlatformDistribution returns the five-number summary and mean of engagement
// rate per platform, ordered by platform name. Quartiles interpolate linearly.
func (s *Store) PlatformDistribution(ctx context.Context) ([]models.PlatformStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			platform,
			COUNT(*),
			MIN(engagement_rate),
			PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY engagement_rate),
			PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY engagement_rate),
			PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY engagement_rate),
			MAX(engagement_rate),
			AVG(engagement_rate)
		FROM posts
		WHERE engagement_rate IS NOT NULL
		GROUP BY platform
		ORDER BY platform`)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform distribution: %w", err)
	}
	defer rows.Close()

	var out []models.PlatformStats
	for rows.Next() {
		var p models.PlatformStats
		if err := rows.Scan(&p.Platform, &p.Count, &p.Min, &p.Q1, &p.Median, &p.Q3, &p.Max, &p.Mean); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DayOfWeekMeans returns the mean engagement rate for every weekday, Monday
// first. Days without data are present with HasData false.
func (s *Store) DayOfWeekMeans(ctx context.Context) ([]models.DayMean, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_of_week, AVG(engagement_rate), COUNT(engagement_rate)
		FROM posts
		GROUP BY day_of_week`)
	if err != nil {
		return nil, fmt.Errorf("failed to query day of week means: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]models.DayMean)
	for rows.Next() {
		var (
			day   string
			mean  sql.NullFloat64
			count int64
		)
		if err := rows.Scan(&day, &mean, &count); err != nil {
			return nil, err
		}
		byDay[day] = models.DayMean{Day: day, Mean: mean.Float64, Count: count, HasData: mean.Valid}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.DayMean, len(models.Weekdays))
	for i, day := range models.Weekdays {
		if m, ok := byDay[day]; ok {
			out[i] = m
		} else {
			out[i] = models.DayMean{Day: day}
		}
	}
	return out, nil
}

// HourMeans returns the mean engagement rate for each observed hour.
func (s *Store) HourMeans(ctx context.Context) ([]models.HourMean, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hour, AVG(engagement_rate), COUNT(*)
		FROM posts
		WHERE engagement_rate IS NOT NULL
		GROUP BY hour
		ORDER BY hour`)
	if err != nil {
		return nil, fmt.Errorf("failed to query hour means: %w", err)
	}
	defer rows.Close()

	var out []models.HourMean
	for rows.Next() {
		var h models.HourMean
		if err := rows.Scan(&h.Hour, &h.Mean, &h.Count); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// TopHashtags returns the most used hashtag tokens, most frequent first and
// ties in name order.
func (s *Store) TopHashtags(ctx context.Context, limit int) ([]models.HashtagCount, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS n
		FROM post_hashtags
		GROUP BY tag
		ORDER BY n DESC, tag ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query hashtags: %w", err)
	}
	defer rows.Close()

	var out []models.HashtagCount
	for rows.Next() {
		var h models.HashtagCount
		if err := rows.Scan(&h.Hashtag, &h.Count); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
