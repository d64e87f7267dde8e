package scholar

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

// Service fetches the current metrics snapshot from the provider. The
// snapshot it returns is validated; a snapshot that cannot be fetched or
// fails validation aborts the run before any diffing happens.
type Service interface {
	FetchSnapshot(ctx context.Context) (*domain.Snapshot, error)
}

type service struct {
	log    zerolog.Logger
	config *domain.Config
	api    *SerpAPIClient
	scrape *ProfileScraper
}

func NewService(log zerolog.Logger, config *domain.Config) Service {
	return &service{
		log:    log.With().Str("module", "scholar").Logger(),
		config: config,
		api:    NewSerpAPIClient(log, config.SerpAPIKey),
		scrape: NewProfileScraper(log, config),
	}
}

func (s *service) FetchSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	mode := s.config.FetchMode
	if mode == domain.FetchModeAuto || mode == "" {
		if s.config.SerpAPIKey != "" {
			mode = domain.FetchModeAPI
		} else {
			mode = domain.FetchModeScrape
		}
	}

	var (
		snapshot *domain.Snapshot
		err      error
	)
	switch mode {
	case domain.FetchModeAPI:
		snapshot, err = s.api.FetchSnapshot(ctx, s.config.ScholarID)
	case domain.FetchModeScrape:
		snapshot, err = s.scrape.FetchSnapshot(ctx, s.config.ScholarID)
	default:
		return nil, errors.Errorf("unknown fetch mode: %s", mode)
	}
	if err != nil {
		return nil, err
	}

	if snapshot.Name == "" {
		snapshot.Name = s.config.ScholarName
	}
	for i := range snapshot.Publications {
		snapshot.Publications[i].Title = StripTags(snapshot.Publications[i].Title)
	}

	if err := snapshot.Validate(); err != nil {
		return nil, errors.Wrap(err, "fetched snapshot failed validation")
	}

	s.log.Info().
		Str("mode", string(mode)).
		Int("total_citations", snapshot.TotalCitations).
		Int("h_index", snapshot.HIndex).
		Int("i10_index", snapshot.I10Index).
		Int("publications", len(snapshot.Publications)).
		Msg("Fetched current snapshot")

	return snapshot, nil
}
