package domain

import (
	"context"
)

// SnapshotRepository defines the interface for snapshot persistence.
// GetSnapshot returns (nil, nil) when no snapshot has ever been stored; the
// caller treats that as the first-run signal, not an error.
type SnapshotRepository interface {
	GetSnapshot(ctx context.Context, path SnapshotPath) (*Snapshot, error)
	StoreSnapshot(ctx context.Context, path SnapshotPath, snapshot *Snapshot) error
}

// DashboardRepository defines the interface for the dashboard projection
type DashboardRepository interface {
	StoreDashboard(ctx context.Context, path SnapshotPath, dashboard *Dashboard) error
}

// AliasRepository defines the interface for the publication alias map.
// The provider occasionally retitles publications, which would otherwise
// surface as brand-new entries with their full citation count; the alias map
// canonicalizes old ids to their current ones before diffing.
type AliasRepository interface {
	GetAliases(ctx context.Context, path string) (*AliasMap, error)
	StoreAliases(ctx context.Context, path string, aliases *AliasMap) error
}

// AliasMap maps superseded publication ids to their canonical replacements
type AliasMap struct {
	Aliases []Alias `yaml:"aliases"`
}

// Alias is a single id redirection
type Alias struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Resolve returns the canonical id for the given id, or the id itself when
// no alias applies. A nil map resolves everything to itself.
func (m *AliasMap) Resolve(id string) string {
	if m == nil {
		return id
	}
	for _, a := range m.Aliases {
		if a.From == id {
			return a.To
		}
	}
	return id
}

// HistoryRepo defines the interface for the citation history database.
// Record appends one point and prunes to the keep most recent in a single
// transaction.
type HistoryRepo interface {
	Record(ctx context.Context, point HistoryPoint, keep int) error
	Recent(ctx context.Context, n int) ([]HistoryPoint, error)
}
