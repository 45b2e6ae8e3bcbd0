package model

type PublishPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type StatsResult struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Value int64  `json:"value"`
}
