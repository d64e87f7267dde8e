package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/citewatch/citewatch/internal/domain"
)

// FileRepository implements domain.SnapshotRepository, domain.DashboardRepository
// and domain.AliasRepository using file storage
type FileRepository struct {
	log zerolog.Logger
}

// NewFileRepository creates a new file-based repository
func NewFileRepository(log zerolog.Logger) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
	}
}

// Ensure FileRepository implements the repository interfaces
var _ domain.SnapshotRepository = (*FileRepository)(nil)
var _ domain.DashboardRepository = (*FileRepository)(nil)
var _ domain.AliasRepository = (*FileRepository)(nil)

// GetSnapshot retrieves the stored snapshot. A missing file is the first-run
// signal and returns (nil, nil); any other failure returns an error so the
// caller can decide whether to degrade or abort.
func (r *FileRepository) GetSnapshot(ctx context.Context, path domain.SnapshotPath) (*domain.Snapshot, error) {
	info, err := os.Stat(string(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	f, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	s := &domain.Snapshot{}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json from %s: %w", path, err)
	}

	return s, nil
}

// StoreSnapshot saves the snapshot, replacing any existing document. The
// write goes to a temp file in the same directory and is renamed into place
// so a reader never observes a partially written store.
func (r *FileRepository) StoreSnapshot(ctx context.Context, path domain.SnapshotPath, snapshot *domain.Snapshot) error {
	j, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.writeAtomic(string(path), j); err != nil {
		return err
	}

	r.log.Debug().Str("path", string(path)).Int("publications", len(snapshot.Publications)).Msg("stored snapshot")
	return nil
}

// StoreDashboard saves the dashboard projection with the same write discipline
func (r *FileRepository) StoreDashboard(ctx context.Context, path domain.SnapshotPath, dashboard *domain.Dashboard) error {
	j, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	if err := r.writeAtomic(string(path), j); err != nil {
		return err
	}

	r.log.Debug().Str("path", string(path)).Msg("stored dashboard data")
	return nil
}

// GetAliases retrieves the publication alias map. A missing file yields an
// empty map.
func (r *FileRepository) GetAliases(ctx context.Context, path string) (*domain.AliasMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.AliasMap{}, nil
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	am := &domain.AliasMap{}
	if err := yaml.Unmarshal(b, am); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return am, nil
}

// StoreAliases saves the publication alias map
func (r *FileRepository) StoreAliases(ctx context.Context, path string, aliases *domain.AliasMap) error {
	b, err := yaml.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	if err := r.writeAtomic(path, b); err != nil {
		return err
	}

	r.log.Debug().Str("path", path).Int("count", len(aliases.Aliases)).Msg("stored alias map")
	return nil
}

func (r *FileRepository) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
