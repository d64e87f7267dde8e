package domain

import "context"

// NotificationService defines the interface for notification services
type NotificationService interface {
	// SendDelta sends a citation-gain notification rendered from the delta
	SendDelta(ctx context.Context, delta Delta, current *Snapshot) error

	// SendError sends an error notification with error details
	SendError(ctx context.Context, err error) error
}

// RunStats holds the final statistics for a completed run, logged and posted
// to the optional webhook channel.
type RunStats struct {
	TotalCitations    int
	HIndex            int
	I10Index          int
	TotalPublications int
	CitationsGained   int
	PublicationsMoved int
	FirstRun          bool
}
