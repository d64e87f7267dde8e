package scholar

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/citewatch/citewatch/internal/domain"
)

const defaultScrapeBaseURL = "https://scholar.google.com"

// citationForViewRe extracts the provider-assigned publication id from an
// article link on the profile page.
var citationForViewRe = regexp.MustCompile(`citation_for_view=[^:&]+:([^&]+)`)

// ProfileScraper fetches a snapshot by scraping the public Google Scholar
// profile page. Used when no SerpAPI key is configured.
type ProfileScraper struct {
	log     zerolog.Logger
	config  *domain.Config
	baseURL string
}

type ScraperOption func(*ProfileScraper)

func WithScrapeBaseURL(baseURL string) ScraperOption {
	return func(s *ProfileScraper) {
		s.baseURL = baseURL
	}
}

// NewProfileScraper creates a new profile page scraper
func NewProfileScraper(log zerolog.Logger, config *domain.Config, opts ...ScraperOption) *ProfileScraper {
	s := &ProfileScraper{
		log:     log.With().Str("module", "scholar").Str("client", "scrape").Logger(),
		config:  config,
		baseURL: defaultScrapeBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchSnapshot scrapes the profile page, paginating through the article
// table until a page adds no new rows. Every page is fetched from the
// network on every call; citation counts go stale otherwise.
func (s *ProfileScraper) FetchSnapshot(ctx context.Context, scholarID string) (*domain.Snapshot, error) {
	s.log.Info().Str("scholar_id", scholarID).Msg("Scraping public profile page..")

	snapshot := &domain.Snapshot{
		ScholarID:  scholarID,
		ObservedAt: time.Now().UTC(),
	}

	var collectorOpts []colly.CollectorOption
	if s.baseURL == defaultScrapeBaseURL {
		collectorOpts = append(collectorOpts, colly.AllowedDomains("scholar.google.com"))
	}
	c := colly.NewCollector(collectorOpts...)

	extensions.RandomUserAgent(c)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*scholar.google*",
		Delay:       2 * time.Second,
		RandomDelay: 2 * time.Second,
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = errors.Wrapf(err, "request to %s failed with status %d", r.Request.URL, r.StatusCode)
	})

	c.OnRequest(func(r *colly.Request) {
		s.log.Debug().Str("url", r.URL.String()).Msg("visiting")
	})

	c.OnHTML("#gsc_prf_in", func(e *colly.HTMLElement) {
		snapshot.Name = e.Text
	})

	affiliationSet := false
	c.OnHTML("div.gsc_prf_il", func(e *colly.HTMLElement) {
		if !affiliationSet {
			snapshot.Affiliation = e.Text
			affiliationSet = true
		}
	})

	// Stats table: the "All" column holds total citations, h-index and
	// i10-index in row order, interleaved with the recent-years column.
	c.OnHTML("table#gsc_rsb_st", func(e *colly.HTMLElement) {
		cells := e.ChildTexts("td.gsc_rsb_std")
		if len(cells) < 5 {
			return
		}
		snapshot.TotalCitations = parseCount(cells[0])
		snapshot.HIndex = parseCount(cells[2])
		snapshot.I10Index = parseCount(cells[4])
	})

	rowsOnPage := 0
	c.OnHTML("tr.gsc_a_tr", func(e *colly.HTMLElement) {
		title := e.ChildText("a.gsc_a_at")
		if title == "" {
			return
		}
		rowsOnPage++

		link := e.Request.AbsoluteURL(e.ChildAttr("a.gsc_a_at", "href"))
		providerID := ""
		if m := citationForViewRe.FindStringSubmatch(link); m != nil {
			providerID = m[1]
		}

		authors := ""
		if gray := e.ChildTexts("div.gs_gray"); len(gray) > 0 {
			authors = gray[0]
		}

		snapshot.Publications = append(snapshot.Publications, domain.Publication{
			ID:            domain.PublicationID(providerID, title),
			Title:         title,
			Year:          e.ChildText("td.gsc_a_y span"),
			Link:          link,
			Authors:       authors,
			CitationCount: parseCount(e.ChildText("td.gsc_a_c a")),
		})
	})

	for start := 0; start <= maxArticles; start += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rowsOnPage = 0
		url := fmt.Sprintf("%s/citations?user=%s&hl=en&cstart=%d&pagesize=%d", s.baseURL, scholarID, start, pageSize)
		if err := c.Visit(url); err != nil {
			return nil, errors.Wrap(err, "failed to visit profile page")
		}
		if scrapeErr != nil {
			return nil, scrapeErr
		}
		if rowsOnPage < pageSize {
			break
		}
	}

	return snapshot, nil
}

func parseCount(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
