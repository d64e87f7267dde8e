package diff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

// ErrDuplicatePublication is returned when the current snapshot contains two
// publications with the same id. Duplicates are a contract violation by the
// fetcher; silently summing them would misattribute gains downstream, so the
// engine fails loudly instead.
var ErrDuplicatePublication = errors.New("duplicate publication id in snapshot")

type Service interface {
	// ComputeDelta reconciles the previous snapshot against the current one.
	// A nil previous snapshot is treated as empty: every current citation
	// counts as gained. Pure function of its inputs, no I/O.
	ComputeDelta(previous *domain.Snapshot, current *domain.Snapshot) (domain.Delta, error)
}

type service struct {
	log zerolog.Logger
}

func NewService(log zerolog.Logger) Service {
	return &service{
		log: log.With().Str("module", "diff").Logger(),
	}
}

func (s *service) ComputeDelta(previous *domain.Snapshot, current *domain.Snapshot) (domain.Delta, error) {
	if previous == nil {
		previous = &domain.Snapshot{}
	}

	prevCounts := make(map[string]int, len(previous.Publications))
	for _, p := range previous.Publications {
		prevCounts[p.ID] = p.CitationCount
	}

	seen := make(map[string]struct{}, len(current.Publications))
	gains := []domain.PublicationDelta{}
	for _, p := range current.Publications {
		if _, dup := seen[p.ID]; dup {
			return domain.Delta{}, fmt.Errorf("%w: %q", ErrDuplicatePublication, p.ID)
		}
		seen[p.ID] = struct{}{}

		// Newly indexed publications have no previous entry and count in full.
		prev := prevCounts[p.ID]
		gained := p.CitationCount - prev
		if gained <= 0 {
			// Decreases (provider corrections/merges) are filtered, not
			// clamped; they still flow into the aggregate delta below.
			continue
		}

		gains = append(gains, domain.PublicationDelta{
			ID:            p.ID,
			Title:         p.Title,
			Year:          p.Year,
			PreviousCount: prev,
			CurrentCount:  p.CitationCount,
			Gained:        gained,
		})
	}

	// Largest gain first; id ascending keeps equal gains deterministic.
	sort.SliceStable(gains, func(i, j int) bool {
		if gains[i].Gained != gains[j].Gained {
			return gains[i].Gained > gains[j].Gained
		}
		return gains[i].ID < gains[j].ID
	})

	d := domain.Delta{
		TotalDelta:    current.TotalCitations - previous.TotalCitations,
		HIndexDelta:   current.HIndex - previous.HIndex,
		I10IndexDelta: current.I10Index - previous.I10Index,
		Publications:  gains,
	}
	d.HasChanges = len(d.Publications) > 0 || d.TotalDelta > 0

	s.log.Debug().
		Int("total_delta", d.TotalDelta).
		Int("publications_gained", len(d.Publications)).
		Bool("has_changes", d.HasChanges).
		Msg("computed delta")

	return d, nil
}

// ShouldNotify is the alert predicate, kept apart from the diff math so the
// policy can grow thresholds without touching the engine.
func ShouldNotify(delta domain.Delta) bool {
	return delta.HasChanges
}
