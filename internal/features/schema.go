package features

import (
	"errors"
	"fmt"
	"sort"
)

// Column names of the raw dataset and of the derived metrics.
const (
	ColPostID      = "post_id"
	ColPostDate    = "post_date"
	ColPlatform    = "platform"
	ColContentType = "content_type"
	ColLikes       = "likes"
	ColComments    = "comments"
	ColShares      = "shares"
	ColImpressions = "impressions"
	ColLinkClicks  = "link_clicks"
	ColFollowers   = "followers"
	ColCaptionText = "caption_text"
	ColHashtags    = "hashtags"

	ColDayOfWeek      = "day_of_week"
	ColHour           = "hour"
	ColEngagement     = "engagement"
	ColEngagementRate = "engagement_rate"
	ColHashtagCount   = "hashtag_count"
	ColLikeRate       = "like_rate"
	ColCommentRate    = "comment_rate"
	ColShareRate      = "share_rate"
	ColLinkClickRate  = "link_click_rate"
	ColCaptionLength  = "caption_length"
)

// DefaultCategoricals are the nominal columns encoded as indicators, in
// encoding order.
var DefaultCategoricals = []string{ColPlatform, ColContentType, ColDayOfWeek}

// DefaultExclude lists the columns never fed to the model: identifiers,
// timestamps, free text, the raw target and raw counts it is built from.
var DefaultExclude = []string{
	ColPostID, ColPostDate, ColCaptionText, ColHashtags, ColEngagementRate,
	ColEngagement, ColLikes, ColComments, ColShares, ColImpressions,
}

// DefaultTarget is the regression target.
const DefaultTarget = ColEngagementRate

// SchemaVersion is written into inferred schemas.
const SchemaVersion = "1"

var (
	// ErrSchemaMismatch signals that a matrix or frame does not line up with
	// the frozen feature schema. It always indicates a bug or a wrong artifact.
	ErrSchemaMismatch = errors.New("feature schema mismatch")

	// ErrInvalidSchema is returned by FeatureSchema.Validate.
	ErrInvalidSchema = errors.New("invalid feature schema")
)

// Categorical records the frozen, sorted levels of one encoded column. The
// first level is the reference level and has no indicator column.
type Categorical struct {
	Column string   `json:"column" yaml:"column"`
	Levels []string `json:"levels" yaml:"levels"`
}

// Reference returns the elided level.
func (c Categorical) Reference() string {
	if len(c.Levels) == 0 {
		return ""
	}
	return c.Levels[0]
}

// FeatureSchema is the contract between training and both prediction paths:
// the ordered feature columns plus the encoding rule that produces them.
type FeatureSchema struct {
	Version        string        `json:"version" yaml:"version"`
	Target         string        `json:"target" yaml:"target"`
	Numeric        []string      `json:"numeric" yaml:"numeric"`
	Categoricals   []Categorical `json:"categoricals" yaml:"categoricals"`
	FeatureColumns []string      `json:"feature_columns" yaml:"feature_columns"`
}

// IndicatorName returns the indicator column name for a categorical level.
func IndicatorName(column, level string) string {
	return column + "_" + level
}

// SortLevels sorts and de-duplicates levels in place using the frozen
// reference-level convention: byte-wise lexicographic order, first is reference.
func SortLevels(levels []string) []string {
	sort.Strings(levels)
	out := levels[:0]
	for i, l := range levels {
		if i > 0 && l == levels[i-1] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Width returns the number of model input columns.
func (s *FeatureSchema) Width() int {
	return len(s.FeatureColumns)
}

// Categorical returns the encoding of the named column.
func (s *FeatureSchema) Categorical(column string) (Categorical, bool) {
	for _, c := range s.Categoricals {
		if c.Column == column {
			return c, true
		}
	}
	return Categorical{}, false
}

// Reference returns the reference level of a categorical column.
func (s *FeatureSchema) Reference(column string) (string, bool) {
	c, ok := s.Categorical(column)
	if !ok || len(c.Levels) == 0 {
		return "", false
	}
	return c.Reference(), true
}

// NonReferenceLevels returns the levels of a column that have indicators.
func (s *FeatureSchema) NonReferenceLevels(column string) []string {
	c, ok := s.Categorical(column)
	if !ok || len(c.Levels) < 2 {
		return nil
	}
	return c.Levels[1:]
}

// Indicators returns the indicator column names of a categorical column.
func (s *FeatureSchema) Indicators(column string) []string {
	levels := s.NonReferenceLevels(column)
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = IndicatorName(column, l)
	}
	return names
}

// Levels returns the frozen levels keyed by column.
func (s *FeatureSchema) Levels() map[string][]string {
	out := make(map[string][]string, len(s.Categoricals))
	for _, c := range s.Categoricals {
		out[c.Column] = c.Levels
	}
	return out
}

// CategoricalColumns returns the encoded column names in encoding order.
func (s *FeatureSchema) CategoricalColumns() []string {
	cols := make([]string, len(s.Categoricals))
	for i, c := range s.Categoricals {
		cols[i] = c.Column
	}
	return cols
}

// Index returns the position of a feature column, or -1.
func (s *FeatureSchema) Index(name string) int {
	for i, c := range s.FeatureColumns {
		if c == name {
			return i
		}
	}
	return -1
}

// Validate checks that the schema is internally consistent: levels sorted and
// unique, and the feature columns exactly the numeric columns plus every
// indicator, each once.
func (s *FeatureSchema) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	if len(s.FeatureColumns) == 0 {
		return fmt.Errorf("%w: no feature columns", ErrInvalidSchema)
	}

	expected := make(map[string]bool)
	for _, n := range s.Numeric {
		expected[n] = true
	}
	for _, c := range s.Categoricals {
		if len(c.Levels) == 0 {
			return fmt.Errorf("%w: categorical %s has no levels", ErrInvalidSchema, c.Column)
		}
		for i := 1; i < len(c.Levels); i++ {
			if c.Levels[i-1] >= c.Levels[i] {
				return fmt.Errorf("%w: levels of %s are not sorted and unique", ErrInvalidSchema, c.Column)
			}
		}
		for _, l := range c.Levels[1:] {
			expected[IndicatorName(c.Column, l)] = true
		}
	}

	seen := make(map[string]bool, len(s.FeatureColumns))
	for _, col := range s.FeatureColumns {
		if seen[col] {
			return fmt.Errorf("%w: duplicate feature column %s", ErrInvalidSchema, col)
		}
		seen[col] = true
		if !expected[col] {
			return fmt.Errorf("%w: feature column %s is neither numeric nor an indicator", ErrInvalidSchema, col)
		}
	}
	for col := range expected {
		if !seen[col] {
			return fmt.Errorf("%w: column %s missing from feature columns", ErrInvalidSchema, col)
		}
	}
	return nil
}

// InferSchema builds a schema from a derived frame, fitting categorical levels
// from the observed data. Used only when the model artifact carries no schema.
func InferSchema(derived *Frame, categoricals, exclude []string, target string) (*FeatureSchema, error) {
	levels, err := FitLevels(derived, categoricals)
	if err != nil {
		return nil, err
	}
	enc := &Encoder{Levels: levels}
	encoded, _, err := enc.Encode(derived, categoricals)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(exclude)+1)
	for _, e := range exclude {
		skip[e] = true
	}
	skip[target] = true

	s := &FeatureSchema{Version: SchemaVersion, Target: target}
	indicators := make(map[string]bool)
	for _, col := range categoricals {
		if l, ok := levels[col]; ok {
			s.Categoricals = append(s.Categoricals, Categorical{Column: col, Levels: l})
			for _, lv := range l[1:] {
				indicators[IndicatorName(col, lv)] = true
			}
		}
	}
	for _, c := range encoded.columns {
		if skip[c.Name] {
			continue
		}
		if c.Kind != KindNumeric {
			return nil, fmt.Errorf("%w: column %s is not numeric and not excluded", ErrSchemaMismatch, c.Name)
		}
		s.FeatureColumns = append(s.FeatureColumns, c.Name)
		if !indicators[c.Name] {
			s.Numeric = append(s.Numeric, c.Name)
		}
	}
	return s, s.Validate()
}
