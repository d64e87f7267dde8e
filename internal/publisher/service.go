package publisher

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

const (
	// maxDashboardArticles limits the publication table served to the dashboard.
	maxDashboardArticles = 50
	// maxDashboardHistory limits the trend chart to the most recent points.
	maxDashboardHistory = 90
)

// Service builds and writes the public dashboard projection. It runs every
// run, whether or not anything changed.
type Service interface {
	Publish(ctx context.Context, path domain.SnapshotPath, snapshot *domain.Snapshot, delta domain.Delta, history []domain.HistoryPoint) error
}

type service struct {
	log           zerolog.Logger
	config        *domain.Config
	dashboardRepo domain.DashboardRepository
}

func NewService(log zerolog.Logger, config *domain.Config, dashboardRepo domain.DashboardRepository) Service {
	return &service{
		log:           log.With().Str("module", "publisher").Logger(),
		config:        config,
		dashboardRepo: dashboardRepo,
	}
}

func (s *service) Publish(ctx context.Context, path domain.SnapshotPath, snapshot *domain.Snapshot, delta domain.Delta, history []domain.HistoryPoint) error {
	dashboard := Build(s.config, snapshot, delta, history)

	if err := s.dashboardRepo.StoreDashboard(ctx, path, dashboard); err != nil {
		return errors.Wrap(err, "failed to store dashboard data")
	}

	s.log.Info().Str("path", string(path)).Msg("Published dashboard data")
	return nil
}

// Build assembles the dashboard projection from the new snapshot, the run's
// delta and the recorded history.
func Build(config *domain.Config, snapshot *domain.Snapshot, delta domain.Delta, history []domain.HistoryPoint) *domain.Dashboard {
	articles := snapshot.Publications
	if len(articles) > maxDashboardArticles {
		articles = articles[:maxDashboardArticles]
	}
	if len(history) > maxDashboardHistory {
		history = history[len(history)-maxDashboardHistory:]
	}

	d := &domain.Dashboard{
		Name:           snapshot.Name,
		Affiliation:    snapshot.Affiliation,
		ScholarURL:     config.ScholarURL(),
		TotalCitations: snapshot.TotalCitations,
		HIndex:         snapshot.HIndex,
		I10Index:       snapshot.I10Index,
		LastChecked:    snapshot.ObservedAt,
		Articles:       articles,
		History:        history,
	}

	if delta.HasChanges {
		d.LatestDiff = &domain.LatestDiff{
			Gained:        delta.TotalDelta,
			ArticlesCount: len(delta.Publications),
		}
	}

	return d
}
