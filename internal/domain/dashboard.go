package domain

import "time"

// Dashboard is the public-facing projection written for the static
// client-side dashboard every run, regardless of whether anything changed.
type Dashboard struct {
	Name           string         `json:"name"`
	Affiliation    string         `json:"affiliation,omitempty"`
	ScholarURL     string         `json:"scholar_url"`
	TotalCitations int            `json:"total_citations"`
	HIndex         int            `json:"h_index"`
	I10Index       int            `json:"i10_index"`
	LastChecked    time.Time      `json:"last_checked"`
	Articles       []Publication  `json:"articles"`
	History        []HistoryPoint `json:"history"`
	LatestDiff     *LatestDiff    `json:"latest_diff"`
}

// LatestDiff summarizes the most recent run's changes for the dashboard's
// "new activity" banner. Nil when the last run detected nothing.
type LatestDiff struct {
	Gained        int `json:"gained"`
	ArticlesCount int `json:"articles_count"`
}
