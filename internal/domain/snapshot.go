package domain

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is a full point-in-time capture of a scholar's aggregate and
// per-publication citation metrics. The JSON shape is versionless: a document
// written by one run must always be readable as the previous snapshot of the
// next run, with unknown or missing fields decoding to their zero values.
type Snapshot struct {
	ScholarID      string        `json:"scholar_id"`
	Name           string        `json:"name"`
	Affiliation    string        `json:"affiliation,omitempty"`
	TotalCitations int           `json:"total_citations"`
	HIndex         int           `json:"h_index"`
	I10Index       int           `json:"i10_index"`
	Publications   []Publication `json:"publications"`
	ObservedAt     time.Time     `json:"observed_at"`
}

// Publication is one tracked work within a snapshot.
type Publication struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Year          string `json:"year,omitempty"`
	Link          string `json:"link,omitempty"`
	Authors       string `json:"authors,omitempty"`
	CitationCount int    `json:"citation_count"`
}

// HistoryPoint is one aggregate observation recorded per run, used for the
// dashboard's trend chart.
type HistoryPoint struct {
	Date           time.Time `json:"date"`
	TotalCitations int       `json:"total_citations"`
	HIndex         int       `json:"h_index"`
	I10Index       int       `json:"i10_index"`
}

// PublicationID derives a stable key for a publication. The provider id wins
// when present; otherwise the lowercased trimmed title is used, matching how
// consecutive snapshots are matched up.
func PublicationID(providerID, title string) string {
	if providerID != "" {
		return providerID
	}
	return strings.ToLower(strings.TrimSpace(title))
}

// Validate reports whether the snapshot is well-formed enough to diff
// against. A snapshot that fails validation must never reach the diff engine
// or overwrite the store.
func (s *Snapshot) Validate() error {
	if s.ScholarID == "" {
		return fmt.Errorf("snapshot has no scholar id")
	}
	if s.TotalCitations < 0 {
		return fmt.Errorf("negative total citations: %d", s.TotalCitations)
	}
	if s.HIndex < 0 || s.I10Index < 0 {
		return fmt.Errorf("negative index values: h=%d i10=%d", s.HIndex, s.I10Index)
	}
	for i, p := range s.Publications {
		if p.ID == "" {
			return fmt.Errorf("publication %d (%q) has empty id", i, p.Title)
		}
		if p.CitationCount < 0 {
			return fmt.Errorf("publication %q has negative citation count %d", p.ID, p.CitationCount)
		}
	}
	return nil
}
