package scholar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citewatch/citewatch/internal/domain"
)

func profilePage(total int) string {
	return fmt.Sprintf(`<html><body>
<div id="gsc_prf_in">Test Scholar</div>
<div class="gsc_prf_il">Example University</div>
<table id="gsc_rsb_st"><tbody>
<tr><td class="gsc_rsb_std">%d</td><td class="gsc_rsb_std">120</td></tr>
<tr><td class="gsc_rsb_std">14</td><td class="gsc_rsb_std">9</td></tr>
<tr><td class="gsc_rsb_std">17</td><td class="gsc_rsb_std">11</td></tr>
</tbody></table>
<table><tbody>
<tr class="gsc_a_tr">
<td><a class="gsc_a_at" href="/citations?view_op=view_citation&citation_for_view=R_1o4RIAAAAJ:abc123">Paper One</a>
<div class="gs_gray">A Author, B Author</div></td>
<td class="gsc_a_c"><a>%d</a></td>
<td class="gsc_a_y"><span>2024</span></td>
</tr>
</tbody></table>
</body></html>`, total, total)
}

func TestProfileScraper_FetchSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "R_1o4RIAAAAJ", r.URL.Query().Get("user"))
		fmt.Fprint(w, profilePage(742))
	}))
	defer server.Close()

	scraper := NewProfileScraper(zerolog.Nop(), &domain.Config{}, WithScrapeBaseURL(server.URL))

	snapshot, err := scraper.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.NoError(t, err)

	assert.Equal(t, "Test Scholar", snapshot.Name)
	assert.Equal(t, "Example University", snapshot.Affiliation)
	assert.Equal(t, 742, snapshot.TotalCitations)
	assert.Equal(t, 14, snapshot.HIndex)
	assert.Equal(t, 17, snapshot.I10Index)

	require.Len(t, snapshot.Publications, 1)
	assert.Equal(t, "abc123", snapshot.Publications[0].ID)
	assert.Equal(t, "Paper One", snapshot.Publications[0].Title)
	assert.Equal(t, 742, snapshot.Publications[0].CitationCount)
}

func TestProfileScraper_ConsecutiveFetchesSeeFreshData(t *testing.T) {
	// Each call must refetch the page from the network. A cached response
	// would freeze the counts and every later diff would come up empty.
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if requests.Load() == 1 {
			fmt.Fprint(w, profilePage(40))
			return
		}
		fmt.Fprint(w, profilePage(45))
	}))
	defer server.Close()

	scraper := NewProfileScraper(zerolog.Nop(), &domain.Config{}, WithScrapeBaseURL(server.URL))

	first, err := scraper.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.NoError(t, err)
	assert.Equal(t, 40, first.TotalCitations)

	second, err := scraper.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.NoError(t, err)
	assert.Equal(t, 45, second.TotalCitations)

	assert.EqualValues(t, 2, requests.Load())
}

func TestProfileScraper_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewProfileScraper(zerolog.Nop(), &domain.Config{}, WithScrapeBaseURL(server.URL))

	_, err := scraper.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.Error(t, err)
}
