package models

// PlatformStats is the box-plot summary of engagement rate for one platform.
type PlatformStats struct {
	Platform string  `json:"platform"`
	Count    int64   `json:"count"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
}

// DayMean is the average engagement rate for a weekday.
type DayMean struct {
	Day     string  `json:"day"`
	Mean    float64 `json:"mean"`
	Count   int64   `json:"count"`
	HasData bool    `json:"has_data"`
}

// HourMean is the average engagement rate for an hour of day.
type HourMean struct {
	Hour  int     `json:"hour"`
	Mean  float64 `json:"mean"`
	Count int64   `json:"count"`
}

// HashtagCount is a hashtag and the number of posts using it.
type HashtagCount struct {
	Hashtag string `json:"hashtag"`
	Count   int64  `json:"count"`
}
