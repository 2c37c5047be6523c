// Package analytics answers the dashboard's descriptive questions (rate by
// platform, weekday and hour, popular hashtags) from an in-memory DuckDB copy
// of the derived dataset.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"engagedash/internal/features"
	"engagedash/internal/logging"
)

const schemaSQL = `
CREATE TABLE posts (
	post_id         VARCHAR,
	platform        VARCHAR,
	content_type    VARCHAR,
	day_of_week     VARCHAR,
	hour            INTEGER,
	engagement_rate DOUBLE
);
CREATE TABLE post_hashtags (
	post_id VARCHAR,
	tag     VARCHAR
);`

// Record is one post as the analytics tables see it. A non-finite
// EngagementRate is stored as NULL and ignored by every aggregate.
type Record struct {
	PostID         string
	Platform       string
	ContentType    string
	DayOfWeek      string
	Hour           int
	EngagementRate float64
	Hashtags       string
}

// Store is a loaded, read-only analytics database.
type Store struct {
	db   *sql.DB
	rows int
}

// Open creates an empty in-memory store.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analytics tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Rows returns the number of loaded posts.
func (s *Store) Rows() int {
	return s.rows
}

// Load inserts records in a single transaction.
func (s *Store) Load(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	postStmt, err := tx.PrepareContext(ctx, `INSERT INTO posts VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare post insert: %w", err)
	}
	defer postStmt.Close()

	tagStmt, err := tx.PrepareContext(ctx, `INSERT INTO post_hashtags VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare hashtag insert: %w", err)
	}
	defer tagStmt.Close()

	for _, r := range records {
		rate := sql.NullFloat64{Float64: r.EngagementRate, Valid: !math.IsNaN(r.EngagementRate) && !math.IsInf(r.EngagementRate, 0)}
		if _, err := postStmt.ExecContext(ctx, r.PostID, r.Platform, r.ContentType, r.DayOfWeek, r.Hour, rate); err != nil {
			return fmt.Errorf("failed to insert post %s: %w", r.PostID, err)
		}
		for _, tag := range strings.Fields(r.Hashtags) {
			if _, err := tagStmt.ExecContext(ctx, r.PostID, tag); err != nil {
				return fmt.Errorf("failed to insert hashtag for post %s: %w", r.PostID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.rows += len(records)
	logging.Debug().Int("rows", len(records)).Msg("analytics store loaded")
	return nil
}

// RecordsFromFrame extracts analytics records from a derived frame.
func RecordsFromFrame(f *features.Frame) ([]Record, error) {
	strCols := []string{features.ColPostID, features.ColPlatform, features.ColContentType, features.ColDayOfWeek, features.ColHashtags}
	strs := make(map[string][]string, len(strCols))
	for _, name := range strCols {
		v, err := f.Strings(name)
		if err != nil {
			return nil, err
		}
		strs[name] = v
	}
	hours, err := f.Floats(features.ColHour)
	if err != nil {
		return nil, err
	}
	rates, err := f.Floats(features.ColEngagementRate)
	if err != nil {
		return nil, err
	}

	records := make([]Record, f.Len())
	for i := range records {
		records[i] = Record{
			PostID:         strs[features.ColPostID][i],
			Platform:       strs[features.ColPlatform][i],
			ContentType:    strs[features.ColContentType][i],
			DayOfWeek:      strs[features.ColDayOfWeek][i],
			Hour:           int(hours[i]),
			EngagementRate: rates[i],
			Hashtags:       strs[features.ColHashtags][i],
		}
	}
	return records, nil
}
