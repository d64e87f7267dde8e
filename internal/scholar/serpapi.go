package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/citewatch/citewatch/internal/domain"
)

const (
	serpAPIBaseURL = "https://serpapi.com/search.json"

	// pageSize is the maximum number of articles per SerpAPI page.
	pageSize = 100
	// maxArticles caps pagination as a safety stop.
	maxArticles = 500

	// serpAPIRateLimit keeps the client inside SerpAPI's allowed request rate.
	serpAPIRateLimit = 1.0
)

// apiKeyTransport appends the SerpAPI key to every outgoing request
type apiKeyTransport struct {
	Transport http.RoundTripper
	APIKey    string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Transport == nil {
		t.Transport = http.DefaultTransport
	}
	q := req.URL.Query()
	q.Set("api_key", t.APIKey)
	req.URL.RawQuery = q.Encode()
	return t.Transport.RoundTrip(req)
}

// serpAuthorResponse is the subset of the google_scholar_author engine
// response that citewatch consumes.
type serpAuthorResponse struct {
	Error  string `json:"error"`
	Author struct {
		Name         string `json:"name"`
		Affiliations string `json:"affiliations"`
	} `json:"author"`
	CitedBy struct {
		Table []map[string]struct {
			All int `json:"all"`
		} `json:"table"`
	} `json:"cited_by"`
	Articles []serpArticle `json:"articles"`
	Paging   struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
}

type serpArticle struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Authors    string `json:"authors"`
	Year       string `json:"year"`
	CitationID string `json:"citation_id"`
	CitedBy    struct {
		Value int `json:"value"`
	} `json:"cited_by"`
}

// SerpAPIClient is a rate-limited client for the SerpAPI
// google_scholar_author engine.
type SerpAPIClient struct {
	log        zerolog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// SerpAPIOption configures a SerpAPIClient.
type SerpAPIOption func(*SerpAPIClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) SerpAPIOption {
	return func(c *SerpAPIClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) SerpAPIOption {
	return func(c *SerpAPIClient) {
		c.httpClient = hc
	}
}

// NewSerpAPIClient creates a new SerpAPI client
func NewSerpAPIClient(log zerolog.Logger, apiKey string, opts ...SerpAPIOption) *SerpAPIClient {
	c := &SerpAPIClient{
		log: log.With().Str("module", "scholar").Str("client", "serpapi").Logger(),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &apiKeyTransport{APIKey: apiKey},
		},
		limiter: rate.NewLimiter(rate.Limit(serpAPIRateLimit), 1),
		baseURL: serpAPIBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchSnapshot fetches the author profile and all articles, paginating
// until the provider returns an empty page or the article cap is reached.
func (c *SerpAPIClient) FetchSnapshot(ctx context.Context, scholarID string) (*domain.Snapshot, error) {
	c.log.Info().Str("scholar_id", scholarID).Msg("Fetching profile from SerpAPI..")

	profile, err := c.fetchPage(ctx, scholarID, 0, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch author profile")
	}

	snapshot := &domain.Snapshot{
		ScholarID:   scholarID,
		Name:        profile.Author.Name,
		Affiliation: profile.Author.Affiliations,
		ObservedAt:  time.Now().UTC(),
	}

	for _, row := range profile.CitedBy.Table {
		if v, ok := row["citations"]; ok {
			snapshot.TotalCitations = v.All
		}
		if v, ok := row["h_index"]; ok {
			snapshot.HIndex = v.All
		}
		if v, ok := row["i10_index"]; ok {
			snapshot.I10Index = v.All
		}
	}

	// Articles are fetched separately with a stable sort so pagination stays
	// consistent across pages.
	var articles []serpArticle
	for start := 0; start <= maxArticles; start += pageSize {
		c.log.Debug().Int("start", start).Msg("Fetching article page")
		page, err := c.fetchPage(ctx, scholarID, start, "pubdate")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch articles at offset %d", start)
		}
		if len(page.Articles) == 0 {
			break
		}
		articles = append(articles, page.Articles...)
		if len(page.Articles) < pageSize {
			break
		}
	}

	for _, a := range articles {
		snapshot.Publications = append(snapshot.Publications, domain.Publication{
			ID:            domain.PublicationID(a.CitationID, a.Title),
			Title:         a.Title,
			Year:          a.Year,
			Link:          a.Link,
			Authors:       a.Authors,
			CitationCount: a.CitedBy.Value,
		})
	}

	return snapshot, nil
}

func (c *SerpAPIClient) fetchPage(ctx context.Context, scholarID string, start int, sortBy string) (*serpAuthorResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter wait")
	}

	params := url.Values{}
	params.Set("engine", "google_scholar_author")
	params.Set("author_id", scholarID)
	params.Set("hl", "en")
	params.Set("num", strconv.Itoa(pageSize))
	if start > 0 {
		params.Set("start", strconv.Itoa(start))
	}
	if sortBy != "" {
		params.Set("sort", sortBy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	out := &serpAuthorResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", out.Error)
	}

	return out, nil
}
