package analytics

import (
	"context"
	"math"
	"testing"

	"engagedash/internal/features"
	"engagedash/internal/models"
)

func sampleRecords() []Record {
	return []Record{
		{PostID: "1", Platform: "Instagram", DayOfWeek: "Monday", Hour: 9, EngagementRate: 0.1, Hashtags: "#a #b"},
		{PostID: "2", Platform: "Instagram", DayOfWeek: "Monday", Hour: 9, EngagementRate: 0.2, Hashtags: "#a"},
		{PostID: "3", Platform: "Instagram", DayOfWeek: "Tuesday", Hour: 14, EngagementRate: 0.3, Hashtags: "#c #a"},
		{PostID: "4", Platform: "Instagram", DayOfWeek: "Tuesday", Hour: 14, EngagementRate: 0.4},
		{PostID: "5", Platform: "Twitter", DayOfWeek: "Monday", Hour: 9, EngagementRate: 0.05, Hashtags: "#b"},
		{PostID: "6", Platform: "Twitter", DayOfWeek: "Sunday", Hour: 20, EngagementRate: math.NaN(), Hashtags: "#b"},
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Load(ctx, sampleRecords()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPlatformDistribution(t *testing.T) {
	s := openStore(t)
	got, err := s.PlatformDistribution(context.Background())
	if err != nil {
		t.Fatalf("PlatformDistribution() error = %v", err)
	}

	want := []models.PlatformStats{
		{Platform: "Instagram", Count: 4, Min: 0.1, Q1: 0.175, Median: 0.25, Q3: 0.325, Max: 0.4, Mean: 0.25},
		{Platform: "Twitter", Count: 1, Min: 0.05, Q1: 0.05, Median: 0.05, Q3: 0.05, Max: 0.05, Mean: 0.05},
	}
	if len(got) != len(want) {
		t.Fatalf("PlatformDistribution() returned %d platforms, want %d", len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		if g.Platform != w.Platform || g.Count != w.Count {
			t.Errorf("platform %d = %s/%d, want %s/%d", i, g.Platform, g.Count, w.Platform, w.Count)
		}
		if !near(g.Min, w.Min) || !near(g.Q1, w.Q1) || !near(g.Median, w.Median) ||
			!near(g.Q3, w.Q3) || !near(g.Max, w.Max) || !near(g.Mean, w.Mean) {
			t.Errorf("%s stats = %+v, want %+v", w.Platform, g, w)
		}
	}
}

func TestDayOfWeekMeans(t *testing.T) {
	s := openStore(t)
	got, err := s.DayOfWeekMeans(context.Background())
	if err != nil {
		t.Fatalf("DayOfWeekMeans() error = %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("DayOfWeekMeans() returned %d days, want 7", len(got))
	}

	tests := []struct {
		day     string
		mean    float64
		count   int64
		hasData bool
	}{
		{"Monday", 0.35 / 3, 3, true},
		{"Tuesday", 0.35, 2, true},
		{"Wednesday", 0, 0, false},
		{"Sunday", 0, 0, false},
	}
	index := make(map[string]models.DayMean)
	for i, d := range got {
		if d.Day != models.Weekdays[i] {
			t.Errorf("day %d = %s, want %s", i, d.Day, models.Weekdays[i])
		}
		index[d.Day] = d
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d := index[tt.day]
			if d.HasData != tt.hasData || d.Count != tt.count || !near(d.Mean, tt.mean) {
				t.Errorf("%s = %+v, want mean %v count %d hasData %v", tt.day, d, tt.mean, tt.count, tt.hasData)
			}
		})
	}
}

func TestHourMeans(t *testing.T) {
	s := openStore(t)
	got, err := s.HourMeans(context.Background())
	if err != nil {
		t.Fatalf("HourMeans() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("HourMeans() = %+v, want hours 9 and 14", got)
	}
	if got[0].Hour != 9 || got[0].Count != 3 || !near(got[0].Mean, 0.35/3) {
		t.Errorf("hour 9 = %+v", got[0])
	}
	if got[1].Hour != 14 || got[1].Count != 2 || !near(got[1].Mean, 0.35) {
		t.Errorf("hour 14 = %+v", got[1])
	}
}

func TestTopHashtags(t *testing.T) {
	s := openStore(t)
	tests := []struct {
		name  string
		limit int
		want  []models.HashtagCount
	}{
		{"all", 10, []models.HashtagCount{{Hashtag: "#a", Count: 3}, {Hashtag: "#b", Count: 3}, {Hashtag: "#c", Count: 1}}},
		{"limited", 2, []models.HashtagCount{{Hashtag: "#a", Count: 3}, {Hashtag: "#b", Count: 3}}},
		{"zero", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.TopHashtags(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("TopHashtags() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("TopHashtags() = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopHashtags()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRows(t *testing.T) {
	s := openStore(t)
	if s.Rows() != 6 {
		t.Errorf("Rows() = %d, want 6", s.Rows())
	}
}

func TestRecordsFromFrame(t *testing.T) {
	posts := []models.Post{
		{PostID: "a", PostDate: "2024-03-04 09:30:00", Platform: "Instagram", ContentType: "video",
			Likes: 10, Comments: 2, Shares: 1, Impressions: 100, Followers: 200, Hashtags: "#x #y"},
		{PostID: "b", PostDate: "2024-03-10 20:00:00", Platform: "Twitter", ContentType: "text",
			Likes: 1, Impressions: 10, Followers: 0},
	}
	f, err := features.Derive(posts)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	records, err := RecordsFromFrame(f)
	if err != nil {
		t.Fatalf("RecordsFromFrame() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("RecordsFromFrame() returned %d records, want 2", len(records))
	}
	r := records[0]
	if r.DayOfWeek != "Monday" || r.Hour != 9 || r.Hashtags != "#x #y" || !near(r.EngagementRate, 13.0/200) {
		t.Errorf("record a = %+v", r)
	}
	if !math.IsNaN(records[1].EngagementRate) {
		t.Errorf("record b rate = %v, want NaN for zero followers", records[1].EngagementRate)
	}
}

func TestPingAfterClose(t *testing.T) {
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after Close() error = nil, want error")
	}
}
