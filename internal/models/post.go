package models

// Post is one row of the raw dataset. Immutable once loaded.
type Post struct {
	PostID      string `json:"post_id"`
	PostDate    string `json:"post_date"`
	Platform    string `json:"platform"`
	ContentType string `json:"content_type"`
	Likes       int64  `json:"likes"`
	Comments    int64  `json:"comments"`
	Shares      int64  `json:"shares"`
	Impressions int64  `json:"impressions"`
	LinkClicks  int64  `json:"link_clicks"`
	Followers   int64  `json:"followers"`
	CaptionText string `json:"caption_text"`
	Hashtags    string `json:"hashtags"`
}
