package features

import (
	"errors"
	"math"
	"testing"

	"engagedash/internal/models"
)

func samplePosts() []models.Post {
	return []models.Post{
		{
			PostID: "p1", PostDate: "2024-03-04 09:15:00", Platform: "Instagram", ContentType: "video",
			Likes: 120, Comments: 30, Shares: 10, Impressions: 2000, LinkClicks: 25, Followers: 1000,
			CaptionText: "new drop is live", Hashtags: "#a #b #c",
		},
		{
			PostID: "p2", PostDate: "2024-03-05T18:40:00", Platform: "Twitter", ContentType: "text",
			Likes: 40, Comments: 5, Shares: 15, Impressions: 800, LinkClicks: 8, Followers: 500,
			CaptionText: "thread below", Hashtags: "#a",
		},
		{
			PostID: "p3", PostDate: "2024-03-08 12:00", Platform: "Instagram", ContentType: "image",
			Likes: 90, Comments: 12, Shares: 3, Impressions: 1500, LinkClicks: 0, Followers: 1500,
			CaptionText: "weekend vibes only here", Hashtags: "",
		},
	}
}

func TestDeriveMetrics(t *testing.T) {
	f, err := Derive(samplePosts())
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	likes, _ := f.Floats(ColLikes)
	comments, _ := f.Floats(ColComments)
	shares, _ := f.Floats(ColShares)
	followers, _ := f.Floats(ColFollowers)
	engagement, _ := f.Floats(ColEngagement)
	rate, _ := f.Floats(ColEngagementRate)

	for i := 0; i < f.Len(); i++ {
		if engagement[i] != likes[i]+comments[i]+shares[i] {
			t.Errorf("row %d: engagement = %v, want %v", i, engagement[i], likes[i]+comments[i]+shares[i])
		}
		if rate[i] != engagement[i]/followers[i] {
			t.Errorf("row %d: engagement_rate = %v, want %v", i, rate[i], engagement[i]/followers[i])
		}
	}

	tests := []struct {
		column string
		row    int
		want   float64
	}{
		{ColHashtagCount, 0, 3},
		{ColHashtagCount, 1, 1},
		{ColHashtagCount, 2, 0},
		{ColCaptionLength, 0, 4},
		{ColCaptionLength, 2, 4},
		{ColHour, 0, 9},
		{ColHour, 1, 18},
		{ColLikeRate, 0, 0.06},
		{ColCommentRate, 1, 5.0 / 800},
		{ColShareRate, 1, 15.0 / 800},
		{ColLinkClickRate, 0, 0.025},
	}
	for _, tt := range tests {
		values, err := f.Floats(tt.column)
		if err != nil {
			t.Fatalf("Floats(%s) error = %v", tt.column, err)
		}
		if math.Abs(values[tt.row]-tt.want) > 1e-12 {
			t.Errorf("%s[%d] = %v, want %v", tt.column, tt.row, values[tt.row], tt.want)
		}
	}

	days, _ := f.Strings(ColDayOfWeek)
	wantDays := []string{"Monday", "Tuesday", "Friday"}
	for i, want := range wantDays {
		if days[i] != want {
			t.Errorf("day_of_week[%d] = %q, want %q", i, days[i], want)
		}
	}
}

func TestDeriveMalformedTimestamp(t *testing.T) {
	posts := samplePosts()
	posts[1].PostDate = "yesterday"

	_, err := Derive(posts)
	var perr *models.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Derive() error = %v, want *models.ParseError", err)
	}
	if perr.Row != 1 || perr.Column != ColPostDate {
		t.Errorf("ParseError = %+v, want row 1 column %s", perr, ColPostDate)
	}
}

func TestDeriveZeroFollowers(t *testing.T) {
	posts := samplePosts()
	posts[0].Followers = 0

	f, err := Derive(posts)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	rate, _ := f.Floats(ColEngagementRate)
	if !math.IsNaN(rate[0]) {
		t.Errorf("engagement_rate[0] = %v, want NaN", rate[0])
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"2024-03-04T09:15:00Z", false},
		{"2024-03-04 09:15:00", false},
		{"2024-03-04T09:15:00", false},
		{"2024-03-04 09:15", false},
		{"2024-03-04", false},
		{"03/04/2024 09:15", false},
		{"03/04/2024", false},
		{" 2024-03-04 ", false},
		{"", true},
		{"04.03.2024", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			_, err := ParseTimestamp(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimestamp(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDropsReferenceLevel(t *testing.T) {
	f, err := Derive(samplePosts()[:3])
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	// platforms are Instagram, Twitter, Instagram
	encoded, names, err := (&Encoder{}).Encode(f, []string{ColPlatform})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(names) != 1 || names[0] != "platform_Twitter" {
		t.Fatalf("indicators = %v, want [platform_Twitter]", names)
	}
	if encoded.Has(ColPlatform) {
		t.Error("encoded frame still has platform column")
	}
	got, _ := encoded.Floats("platform_Twitter")
	want := []float64{0, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("platform_Twitter[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEncodeIdempotent(t *testing.T) {
	f, _ := Derive(samplePosts())
	enc := &Encoder{}
	once, _, err := enc.Encode(f, DefaultCategoricals)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	twice, names, err := enc.Encode(once, DefaultCategoricals)
	if err != nil {
		t.Fatalf("second Encode() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("second Encode() produced %v, want none", names)
	}
	if !SameColumns(once.Names(), twice.Names()) {
		t.Errorf("columns changed: %v -> %v", once.Names(), twice.Names())
	}
}

func TestEncodeFrozenLevels(t *testing.T) {
	f, _ := Derive(samplePosts())
	enc := &Encoder{Levels: map[string][]string{
		ColDayOfWeek: {"Friday", "Monday", "Saturday", "Sunday", "Thursday", "Tuesday", "Wednesday"},
	}}
	encoded, names, err := enc.Encode(f, []string{ColDayOfWeek})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(names) != 6 {
		t.Fatalf("indicators = %v, want 6 columns", names)
	}
	// unobserved days keep their column, filled with zeros
	sunday, err := encoded.Floats("day_of_week_Sunday")
	if err != nil {
		t.Fatalf("Floats() error = %v", err)
	}
	for i, v := range sunday {
		if v != 0 {
			t.Errorf("day_of_week_Sunday[%d] = %v, want 0", i, v)
		}
	}
	// the Friday row is the reference: all indicators zero
	for _, name := range names {
		col, _ := encoded.Floats(name)
		if col[2] != 0 {
			t.Errorf("%s[2] = %v, want 0 for reference level", name, col[2])
		}
	}
}

func TestEncodeUnknownCategory(t *testing.T) {
	f, _ := Derive(samplePosts())
	enc := &Encoder{Levels: map[string][]string{ColPlatform: {"Facebook", "Instagram"}}}
	_, _, err := enc.Encode(f, []string{ColPlatform})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Encode() error = %v, want ErrUnknownCategory", err)
	}
}

func TestSelectExcludesNonFiniteRows(t *testing.T) {
	posts := samplePosts()
	posts[1].Followers = 0

	res, err := DefaultPipeline().Run(posts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	ds := res.Dataset
	if ds.X.Len() != 2 || len(ds.Y) != 2 {
		t.Fatalf("dataset rows = %d/%d, want 2", ds.X.Len(), len(ds.Y))
	}
	if len(ds.Excluded) != 1 || ds.Excluded[0] != "p2" {
		t.Errorf("Excluded = %v, want [p2]", ds.Excluded)
	}
	for _, row := range ds.X.Rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("non-finite %s in model input", ds.X.Columns[j])
			}
		}
	}
}

func TestSelectColumnOrder(t *testing.T) {
	res, err := DefaultPipeline().Run(samplePosts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{
		ColLinkClicks, ColFollowers, ColHour, ColHashtagCount, ColLikeRate,
		ColCommentRate, ColShareRate, ColLinkClickRate, ColCaptionLength,
		"platform_Twitter", "content_type_text", "content_type_video",
		"day_of_week_Monday", "day_of_week_Tuesday",
	}
	if !SameColumns(res.Dataset.X.Columns, want) {
		t.Errorf("columns = %v, want %v", res.Dataset.X.Columns, want)
	}
	if !SameColumns(res.Schema.FeatureColumns, want) {
		t.Errorf("schema columns = %v, want %v", res.Schema.FeatureColumns, want)
	}
}

func TestSelectWithFrozenSchema(t *testing.T) {
	inferred, err := DefaultPipeline().Run(samplePosts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Reverse the authoritative order: selection must follow the schema.
	schema := *inferred.Schema
	cols := append([]string(nil), schema.FeatureColumns...)
	for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
		cols[i], cols[j] = cols[j], cols[i]
	}
	schema.FeatureColumns = cols

	p := DefaultPipeline()
	p.Schema = &schema
	res, err := p.Run(samplePosts())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !SameColumns(res.Dataset.X.Columns, cols) {
		t.Errorf("columns = %v, want %v", res.Dataset.X.Columns, cols)
	}
}

func TestSelectSchemaMismatch(t *testing.T) {
	res, _ := DefaultPipeline().Run(samplePosts())
	schema := *res.Schema
	schema.FeatureColumns = append(append([]string(nil), schema.FeatureColumns...), "platform_Facebook")

	_, err := Selector{Exclude: DefaultExclude, Target: DefaultTarget, Schema: &schema}.Select(res.Encoded)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Select() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	valid := func() *FeatureSchema {
		return &FeatureSchema{
			Version:        "1",
			Target:         DefaultTarget,
			Numeric:        []string{ColFollowers, ColHour},
			Categoricals:   []Categorical{{Column: ColPlatform, Levels: []string{"Facebook", "Instagram", "Twitter"}}},
			FeatureColumns: []string{ColFollowers, ColHour, "platform_Instagram", "platform_Twitter"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *FeatureSchema)
		wantErr bool
	}{
		{"valid", func(s *FeatureSchema) {}, false},
		{"unsorted levels", func(s *FeatureSchema) { s.Categoricals[0].Levels = []string{"Twitter", "Facebook", "Instagram"} }, true},
		{"duplicate column", func(s *FeatureSchema) { s.FeatureColumns = append(s.FeatureColumns, ColHour) }, true},
		{"missing indicator", func(s *FeatureSchema) { s.FeatureColumns = s.FeatureColumns[:3] }, true},
		{"reference indicator", func(s *FeatureSchema) { s.FeatureColumns = append(s.FeatureColumns, "platform_Facebook") }, true},
		{"empty", func(s *FeatureSchema) { s.FeatureColumns = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("Validate() error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestSchemaLookups(t *testing.T) {
	s := &FeatureSchema{
		Categoricals: []Categorical{
			{Column: ColDayOfWeek, Levels: []string{"Friday", "Monday", "Saturday"}},
		},
	}
	if ref, ok := s.Reference(ColDayOfWeek); !ok || ref != "Friday" {
		t.Errorf("Reference() = %q, %v, want Friday, true", ref, ok)
	}
	if _, ok := s.Reference(ColPlatform); ok {
		t.Error("Reference(platform) ok = true, want false")
	}
	got := s.Indicators(ColDayOfWeek)
	want := []string{"day_of_week_Monday", "day_of_week_Saturday"}
	if !SameColumns(got, want) {
		t.Errorf("Indicators() = %v, want %v", got, want)
	}
}

func TestFrameDropAndClone(t *testing.T) {
	f := NewFrame(2)
	if err := f.AddFloats("a", []float64{1, 2}); err != nil {
		t.Fatalf("AddFloats() error = %v", err)
	}
	if err := f.AddStrings("b", []string{"x", "y"}); err != nil {
		t.Fatalf("AddStrings() error = %v", err)
	}
	if err := f.AddFloats("a", []float64{3, 4}); err == nil {
		t.Error("AddFloats() duplicate column: want error")
	}
	if err := f.AddFloats("c", []float64{1}); err == nil {
		t.Error("AddFloats() short column: want error")
	}

	dropped := f.Drop("a")
	if dropped.Has("a") || !f.Has("a") {
		t.Errorf("Drop() mutated source or kept column: source=%v dropped=%v", f.Names(), dropped.Names())
	}
	if _, err := f.Floats("b"); err == nil {
		t.Error("Floats() on string column: want error")
	}
	if _, err := f.Strings("missing"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Strings() error = %v, want ErrColumnNotFound", err)
	}
}
