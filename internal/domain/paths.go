package domain

import "path/filepath"

type SnapshotFile string

const (
	SnapshotStoreFile SnapshotFile = "citations.json"
	DashboardFile     SnapshotFile = "data.json"
	AliasFile         SnapshotFile = "aliases.yaml"
)

type SnapshotPath string

// Paths holds all the file paths for citewatch data
type Paths struct {
	RootDir       string
	SnapshotPath  SnapshotPath
	DashboardPath SnapshotPath
	AliasPath     string
	DatabaseDir   string
}

// NewPaths creates a new Paths instance with all paths initialized.
// Snapshot and alias data live under <root>/data, the dashboard projection
// under <root>/docs so it can be served as a static page.
func NewPaths(rootDir string) *Paths {
	dataDir := filepath.Join(rootDir, "data")
	return &Paths{
		RootDir:       rootDir,
		SnapshotPath:  SnapshotPath(filepath.Join(dataDir, string(SnapshotStoreFile))),
		DashboardPath: SnapshotPath(filepath.Join(rootDir, "docs", string(DashboardFile))),
		AliasPath:     filepath.Join(dataDir, string(AliasFile)),
		DatabaseDir:   dataDir,
	}
}
