package domain

// Delta is the computed difference between two snapshots, attributing
// citation gains to individual publications. Aggregate deltas and
// per-publication deltas are independent views over the provider's data and
// are never reconciled against each other.
type Delta struct {
	TotalDelta    int                `json:"total_delta"`
	HIndexDelta   int                `json:"h_index_delta"`
	I10IndexDelta int                `json:"i10_index_delta"`
	Publications  []PublicationDelta `json:"publications"`
	HasChanges    bool               `json:"has_changes"`
}

// PublicationDelta records a positive citation gain for a single publication.
// Entries with Gained <= 0 never appear in a Delta.
type PublicationDelta struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Year          string `json:"year,omitempty"`
	PreviousCount int    `json:"previous_count"`
	CurrentCount  int    `json:"current_count"`
	Gained        int    `json:"gained"`
}
