// Package dataset reads the raw post table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"engagedash/internal/models"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Columns lists the required header names.
var Columns = []string{
	"post_id", "post_date", "platform", "content_type", "likes", "comments",
	"shares", "impressions", "link_clicks", "followers", "caption_text", "hashtags",
}

// LoadFile reads posts from a CSV file.
func LoadFile(path string) ([]models.Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	posts, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return posts, nil
}

// Read parses CSV with a header row. Columns may appear in any order; extra
// columns are ignored. Count columns must be non-negative integers.
func Read(r io.Reader) ([]models.Post, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	var posts []models.Post
	for row := 0; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		p := models.Post{
			PostID:      rec[idx["post_id"]],
			PostDate:    rec[idx["post_date"]],
			Platform:    strings.TrimSpace(rec[idx["platform"]]),
			ContentType: strings.TrimSpace(rec[idx["content_type"]]),
			CaptionText: rec[idx["caption_text"]],
			Hashtags:    rec[idx["hashtags"]],
		}

		counts := []struct {
			column string
			dst    *int64
		}{
			{"likes", &p.Likes},
			{"comments", &p.Comments},
			{"shares", &p.Shares},
			{"impressions", &p.Impressions},
			{"link_clicks", &p.LinkClicks},
			{"followers", &p.Followers},
		}
		for _, c := range counts {
			v, err := parseCount(rec[idx[c.column]])
			if err != nil {
				return nil, &models.ParseError{Row: row, Column: c.column, Value: rec[idx[c.column]], Err: err}
			}
			*c.dst = v
		}

		posts = append(posts, p)
	}
	return posts, nil
}

var errNegative = errors.New("negative count")

// parseCount accepts integers, and floats with no fractional part since
// spreadsheet exports often write counts as "12.0".
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, err
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}
