package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citewatch/citewatch/internal/diff"
	"github.com/citewatch/citewatch/internal/domain"
	"github.com/citewatch/citewatch/internal/publisher"
	"github.com/citewatch/citewatch/internal/repository"
)

type stubScholarService struct {
	snapshot *domain.Snapshot
	err      error
}

func (s *stubScholarService) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return s.snapshot, s.err
}

type stubNotifier struct {
	deltas []domain.Delta
	errs   []error
	fail   error
}

func (s *stubNotifier) SendDelta(ctx context.Context, delta domain.Delta, current *domain.Snapshot) error {
	if s.fail != nil {
		return s.fail
	}
	s.deltas = append(s.deltas, delta)
	return nil
}

func (s *stubNotifier) SendError(ctx context.Context, err error) error {
	s.errs = append(s.errs, err)
	return nil
}

func newTestApp(t *testing.T, fetched *domain.Snapshot, notifier *stubNotifier, cfg *domain.Config) *App {
	t.Helper()

	log := zerolog.Nop()
	fileRepo := repository.NewFileRepository(log)

	return &App{
		log:                 log,
		config:              cfg,
		paths:               domain.NewPaths("."),
		snapshotRepo:        fileRepo,
		aliasRepo:           fileRepo,
		scholarService:      &stubScholarService{snapshot: fetched},
		diffService:         diff.NewService(log),
		publisherService:    publisher.NewService(log, cfg, fileRepo),
		notificationService: notifier,
	}
}

func fetchedSnapshot(total int, pubs ...domain.Publication) *domain.Snapshot {
	return &domain.Snapshot{
		ScholarID:      "R_1o4RIAAAAJ",
		Name:           "Test Scholar",
		TotalCitations: total,
		HIndex:         5,
		I10Index:       3,
		Publications:   pubs,
		ObservedAt:     time.Now().UTC(),
	}
}

func TestRun_FirstRunStoresWithoutNotifying(t *testing.T) {
	root := t.TempDir()
	notifier := &stubNotifier{}
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}
	a := newTestApp(t, fetchedSnapshot(42, domain.Publication{ID: "p1", Title: "P1", CitationCount: 42}), notifier, cfg)

	require.NoError(t, a.Run(root))

	// First run: snapshot stored, dashboard published, no notification.
	assert.Empty(t, notifier.deltas)

	paths := domain.NewPaths(root)
	stored, err := repository.NewFileRepository(zerolog.Nop()).GetSnapshot(context.Background(), paths.SnapshotPath)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 42, stored.TotalCitations)
}

func TestRun_FirstRunNotifiesWhenConfigured(t *testing.T) {
	root := t.TempDir()
	notifier := &stubNotifier{}
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ", NotifyOnFirstRun: true}
	a := newTestApp(t, fetchedSnapshot(42, domain.Publication{ID: "p1", Title: "P1", CitationCount: 42}), notifier, cfg)

	require.NoError(t, a.Run(root))

	require.Len(t, notifier.deltas, 1)
	assert.Equal(t, 42, notifier.deltas[0].TotalDelta)
}

func TestRun_SecondRunNotifiesOnGain(t *testing.T) {
	root := t.TempDir()
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}

	first := newTestApp(t, fetchedSnapshot(40, domain.Publication{ID: "p1", Title: "P1", CitationCount: 40}), &stubNotifier{}, cfg)
	require.NoError(t, first.Run(root))

	notifier := &stubNotifier{}
	second := newTestApp(t, fetchedSnapshot(45, domain.Publication{ID: "p1", Title: "P1", CitationCount: 45}), notifier, cfg)
	require.NoError(t, second.Run(root))

	require.Len(t, notifier.deltas, 1)
	assert.Equal(t, 5, notifier.deltas[0].TotalDelta)
	require.Len(t, notifier.deltas[0].Publications, 1)
	assert.Equal(t, 5, notifier.deltas[0].Publications[0].Gained)
}

func TestRun_NoChangeNoNotification(t *testing.T) {
	root := t.TempDir()
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}
	snapshot := fetchedSnapshot(40, domain.Publication{ID: "p1", Title: "P1", CitationCount: 40})

	require.NoError(t, newTestApp(t, snapshot, &stubNotifier{}, cfg).Run(root))

	notifier := &stubNotifier{}
	require.NoError(t, newTestApp(t, snapshot, notifier, cfg).Run(root))
	assert.Empty(t, notifier.deltas)
}

func TestRun_NotifyFailureLeavesStoreUntouched(t *testing.T) {
	root := t.TempDir()
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}

	require.NoError(t, newTestApp(t, fetchedSnapshot(40, domain.Publication{ID: "p1", Title: "P1", CitationCount: 40}), &stubNotifier{}, cfg).Run(root))

	notifier := &stubNotifier{fail: assert.AnError}
	failing := newTestApp(t, fetchedSnapshot(45, domain.Publication{ID: "p1", Title: "P1", CitationCount: 45}), notifier, cfg)
	require.Error(t, failing.Run(root))

	// The failed run must not overwrite the last good snapshot, so the next
	// trigger retries the same delta.
	paths := domain.NewPaths(root)
	stored, err := repository.NewFileRepository(zerolog.Nop()).GetSnapshot(context.Background(), paths.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.TotalCitations)

	// The failure was reported through the error channel.
	require.Len(t, notifier.errs, 1)
}

func TestRun_FetchFailureAborts(t *testing.T) {
	root := t.TempDir()
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}

	notifier := &stubNotifier{}
	a := newTestApp(t, nil, notifier, cfg)
	a.scholarService = &stubScholarService{err: assert.AnError}

	require.Error(t, a.Run(root))
	assert.Empty(t, notifier.deltas)
	require.Len(t, notifier.errs, 1)
}

func TestApplyAliases(t *testing.T) {
	previous := &domain.Snapshot{
		Publications: []domain.Publication{
			{ID: "old title", CitationCount: 7},
			{ID: "kept", CitationCount: 2},
		},
	}
	aliases := &domain.AliasMap{Aliases: []domain.Alias{{From: "old title", To: "new title"}}}

	applyAliases(previous, aliases)

	assert.Equal(t, "new title", previous.Publications[0].ID)
	assert.Equal(t, "kept", previous.Publications[1].ID)

	// Nil snapshot must be a no-op.
	applyAliases(nil, aliases)
}

func TestRun_AliasPreservesHistoryAcrossRetitle(t *testing.T) {
	root := t.TempDir()
	cfg := &domain.Config{ScholarID: "R_1o4RIAAAAJ"}

	first := newTestApp(t, fetchedSnapshot(10, domain.Publication{ID: "old title", Title: "Old Title", CitationCount: 10}), &stubNotifier{}, cfg)
	require.NoError(t, first.Run(root))

	// Provider retitled the publication; the alias map redirects the old id.
	paths := domain.NewPaths(root)
	fileRepo := repository.NewFileRepository(zerolog.Nop())
	require.NoError(t, fileRepo.StoreAliases(context.Background(), paths.AliasPath, &domain.AliasMap{
		Aliases: []domain.Alias{{From: "old title", To: "new title"}},
	}))

	notifier := &stubNotifier{}
	second := newTestApp(t, fetchedSnapshot(12, domain.Publication{ID: "new title", Title: "New Title", CitationCount: 12}), notifier, cfg)
	require.NoError(t, second.Run(root))

	// Without the alias the retitled publication would report 12 gained.
	require.Len(t, notifier.deltas, 1)
	require.Len(t, notifier.deltas[0].Publications, 1)
	assert.Equal(t, 2, notifier.deltas[0].Publications[0].Gained)
}
