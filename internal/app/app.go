package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/config"
	"github.com/citewatch/citewatch/internal/database"
	"github.com/citewatch/citewatch/internal/diff"
	"github.com/citewatch/citewatch/internal/domain"
	"github.com/citewatch/citewatch/internal/logger"
	"github.com/citewatch/citewatch/internal/notification"
	"github.com/citewatch/citewatch/internal/publisher"
	"github.com/citewatch/citewatch/internal/repository"
	"github.com/citewatch/citewatch/internal/scholar"
)

// maxHistoryPoints caps the stored run history.
const maxHistoryPoints = 365

// App represents the main application with all dependencies initialized
type App struct {
	log                 zerolog.Logger
	config              *domain.Config
	paths               *domain.Paths
	snapshotRepo        domain.SnapshotRepository
	aliasRepo           domain.AliasRepository
	scholarService      scholar.Service
	diffService         diff.Service
	publisherService    publisher.Service
	notificationService domain.NotificationService
}

// NewApp creates a new application instance with all dependencies initialized
func NewApp() (*App, error) {
	log := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fileRepo := repository.NewFileRepository(log)
	var snapshotRepo domain.SnapshotRepository = fileRepo
	var aliasRepo domain.AliasRepository = fileRepo

	return &App{
		log:                 log,
		config:              cfg,
		snapshotRepo:        snapshotRepo,
		aliasRepo:           aliasRepo,
		scholarService:      scholar.NewService(log, cfg),
		diffService:         diff.NewService(log),
		publisherService:    publisher.NewService(log, cfg, fileRepo),
		notificationService: notification.NewService(log, cfg),
	}, nil
}

// Run executes one full check: fetch, diff, notify, persist, publish.
// The snapshot store is only updated after a successful diff-and-notify
// cycle, so a failed run leaves the last good state for the next trigger.
func (a *App) Run(rootPath string) (err error) {
	ctx := context.Background()

	// Send error notification if run fails
	defer func() {
		if err != nil {
			if notifyErr := a.notificationService.SendError(ctx, err); notifyErr != nil {
				a.log.Warn().Err(notifyErr).Msg("Failed to send error notification")
			}
		}
	}()

	a.paths = domain.NewPaths(rootPath)

	db, err := database.NewDB(a.paths.DatabaseDir, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	historyRepo := database.NewHistoryRepo(a.log, db)

	// A corrupt previous snapshot degrades to a first run rather than
	// aborting: the diff stays mathematically correct and the store is
	// rewritten atomically at the end of this run.
	previous, err := a.snapshotRepo.GetSnapshot(ctx, a.paths.SnapshotPath)
	if err != nil {
		a.log.Warn().Err(err).Msg("Previous snapshot unreadable, treating as first run")
		previous = nil
		err = nil
	}
	firstRun := previous == nil
	if firstRun {
		a.log.Info().Msg("No previous snapshot found, this is the first run")
	} else {
		a.log.Info().Int("total_citations", previous.TotalCitations).Msg("Loaded previous snapshot")
	}

	current, err := a.scholarService.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch current snapshot: %w", err)
	}

	aliases, err := a.aliasRepo.GetAliases(ctx, a.paths.AliasPath)
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to load alias map, continuing without aliases")
		aliases = &domain.AliasMap{}
	}
	applyAliases(previous, aliases)

	delta, err := a.diffService.ComputeDelta(previous, current)
	if err != nil {
		return fmt.Errorf("failed to compute delta: %w", err)
	}

	if diff.ShouldNotify(delta) && (!firstRun || a.config.NotifyOnFirstRun) {
		a.log.Info().Int("gained", delta.TotalDelta).Msg("Detected new citations, sending notification")
		if err := a.notificationService.SendDelta(ctx, delta, current); err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}
	} else {
		a.log.Info().Msg("No new citations detected")
	}

	if err := a.snapshotRepo.StoreSnapshot(ctx, a.paths.SnapshotPath, current); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	if err := historyRepo.Record(ctx, domain.HistoryPoint{
		Date:           current.ObservedAt,
		TotalCitations: current.TotalCitations,
		HIndex:         current.HIndex,
		I10Index:       current.I10Index,
	}, maxHistoryPoints); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}

	history, err := historyRepo.Recent(ctx, maxHistoryPoints)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if err := a.publisherService.Publish(ctx, a.paths.DashboardPath, current, delta, history); err != nil {
		return fmt.Errorf("failed to publish dashboard: %w", err)
	}

	stats := buildRunStats(current, delta, firstRun)
	a.log.Info().
		Int("total_citations", stats.TotalCitations).
		Int("h_index", stats.HIndex).
		Int("i10_index", stats.I10Index).
		Int("total_publications", stats.TotalPublications).
		Int("citations_gained", stats.CitationsGained).
		Int("publications_moved", stats.PublicationsMoved).
		Bool("first_run", stats.FirstRun).
		Msg("=== CHECK COMPLETE ===")

	return nil
}

// applyAliases canonicalizes publication ids in the previous snapshot so
// retitled publications keep their citation history across snapshots.
func applyAliases(snapshot *domain.Snapshot, aliases *domain.AliasMap) {
	if snapshot == nil || aliases == nil || len(aliases.Aliases) == 0 {
		return
	}
	for i := range snapshot.Publications {
		snapshot.Publications[i].ID = aliases.Resolve(snapshot.Publications[i].ID)
	}
}

func buildRunStats(current *domain.Snapshot, delta domain.Delta, firstRun bool) domain.RunStats {
	return domain.RunStats{
		TotalCitations:    current.TotalCitations,
		HIndex:            current.HIndex,
		I10Index:          current.I10Index,
		TotalPublications: len(current.Publications),
		CitationsGained:   delta.TotalDelta,
		PublicationsMoved: len(delta.Publications),
		FirstRun:          firstRun,
	}
}

// GenerateAliases writes a starter alias map listing every publication id in
// the stored snapshot, so retitle redirections can be filled in by hand.
func (a *App) GenerateAliases(rootPath string) error {
	ctx := context.Background()
	a.paths = domain.NewPaths(rootPath)

	snapshot, err := a.snapshotRepo.GetSnapshot(ctx, a.paths.SnapshotPath)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil {
		return fmt.Errorf("no stored snapshot, run a check first")
	}

	existing, err := a.aliasRepo.GetAliases(ctx, a.paths.AliasPath)
	if err != nil {
		return fmt.Errorf("failed to load alias map: %w", err)
	}

	known := make(map[string]struct{}, len(existing.Aliases))
	for _, al := range existing.Aliases {
		known[al.To] = struct{}{}
	}

	for _, p := range snapshot.Publications {
		if _, ok := known[p.ID]; ok {
			continue
		}
		existing.Aliases = append(existing.Aliases, domain.Alias{From: "", To: p.ID})
	}

	if err := a.aliasRepo.StoreAliases(ctx, a.paths.AliasPath, existing); err != nil {
		return fmt.Errorf("failed to store alias map: %w", err)
	}

	a.log.Info().Str("path", a.paths.AliasPath).Int("entries", len(existing.Aliases)).Msg("Generated alias map")
	return nil
}

// History prints the recorded history through the logger, most recent last.
func (a *App) History(rootPath string, n int) error {
	ctx := context.Background()
	a.paths = domain.NewPaths(rootPath)

	db, err := database.NewDB(a.paths.DatabaseDir, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	historyRepo := database.NewHistoryRepo(a.log, db)
	points, err := historyRepo.Recent(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	for _, p := range points {
		a.log.Info().
			Time("date", p.Date).
			Int("total_citations", p.TotalCitations).
			Int("h_index", p.HIndex).
			Int("i10_index", p.I10Index).
			Msg("history point")
	}

	if len(points) == 0 {
		a.log.Info().Msg("No history recorded yet")
	}

	return nil
}
