package scholar

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes any markup the provider embeds in publication titles,
// keeping only text content. Titles are matched across snapshots by value,
// so stray tags would break publication identity.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tok.Text())
		}
	}
}
