package scholar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileBody = `{
	"author": {"name": "Negar Arabzadeh", "affiliations": "University of Waterloo"},
	"cited_by": {"table": [
		{"citations": {"all": 742}},
		{"h_index": {"all": 14}},
		{"i10_index": {"all": 17}}
	]}
}`

const articlesBody = `{
	"articles": [
		{"title": "Query Performance Prediction", "citation_id": "R_1o4RIAAAAJ:abc", "year": "2021", "cited_by": {"value": 120}},
		{"title": "Dense Retrieval at Scale", "citation_id": "R_1o4RIAAAAJ:def", "year": "2023", "cited_by": {"value": 45}}
	]
}`

func TestSerpAPIClient_FetchSnapshot(t *testing.T) {
	var sawAPIKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "test-key" {
			sawAPIKey = true
		}
		assert.Equal(t, "google_scholar_author", r.URL.Query().Get("engine"))
		assert.Equal(t, "R_1o4RIAAAAJ", r.URL.Query().Get("author_id"))

		if r.URL.Query().Get("sort") == "pubdate" {
			fmt.Fprint(w, articlesBody)
			return
		}
		fmt.Fprint(w, profileBody)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(zerolog.Nop(), "test-key", WithBaseURL(srv.URL))
	snapshot, err := c.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.NoError(t, err)

	assert.True(t, sawAPIKey)
	assert.Equal(t, "Negar Arabzadeh", snapshot.Name)
	assert.Equal(t, "University of Waterloo", snapshot.Affiliation)
	assert.Equal(t, 742, snapshot.TotalCitations)
	assert.Equal(t, 14, snapshot.HIndex)
	assert.Equal(t, 17, snapshot.I10Index)

	require.Len(t, snapshot.Publications, 2)
	assert.Equal(t, "R_1o4RIAAAAJ:abc", snapshot.Publications[0].ID)
	assert.Equal(t, 120, snapshot.Publications[0].CitationCount)
	assert.Equal(t, "R_1o4RIAAAAJ:def", snapshot.Publications[1].ID)
	assert.NoError(t, snapshot.Validate())
}

func TestSerpAPIClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "Invalid API key"}`)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(zerolog.Nop(), "bad-key", WithBaseURL(srv.URL))
	_, err := c.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSerpAPIClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(zerolog.Nop(), "test-key", WithBaseURL(srv.URL))
	_, err := c.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.Error(t, err)
}

func TestSerpAPIClient_EmptyArticleList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") == "pubdate" {
			fmt.Fprint(w, `{"articles": []}`)
			return
		}
		fmt.Fprint(w, profileBody)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(zerolog.Nop(), "test-key", WithBaseURL(srv.URL))
	snapshot, err := c.FetchSnapshot(context.Background(), "R_1o4RIAAAAJ")
	require.NoError(t, err)

	// Aggregate metrics without per-article data is a valid snapshot.
	assert.Empty(t, snapshot.Publications)
	assert.Equal(t, 742, snapshot.TotalCitations)
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Dense Retrieval at Scale", want: "Dense Retrieval at Scale"},
		{name: "embedded markup", in: "On the <i>robustness</i> of rankers", want: "On the robustness of rankers"},
		{name: "entity", in: "P&amp;R methods", want: "P&R methods"},
		{name: "whitespace", in: "  padded title ", want: "padded title"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}
