// Package search locates a trust's board-papers index page via web search.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/pkg/duckduckgo"
)

// urlKeywords identify a board-papers index page by its URL.
var urlKeywords = []string{
	"board-papers", "board-meeting", "board-meetings", "boardpapers",
	"board/meetings", "trust-board", "board-of-directors",
	"board_papers", "board-pack", "governors/meetings",
}

// ErrNotFound is returned when no query produced a matching page.
var ErrNotFound = eris.New("search: no board papers page found")

// Finder locates a trust's board-papers index page.
type Finder struct {
	client     duckduckgo.Client
	maxResults int
}

// NewFinder creates a Finder backed by the given search client.
func NewFinder(client duckduckgo.Client, maxResults int) *Finder {
	if maxResults <= 0 {
		maxResults = 8
	}
	return &Finder{client: client, maxResults: maxResults}
}

// Queries returns the search queries for a trust, in priority order.
func Queries(trust string) []string {
	return []string{
		fmt.Sprintf(`"%s" board papers 2025 OR 2026 site:nhs.uk`, trust),
		fmt.Sprintf(`"%s" board meeting papers site:nhs.uk`, trust),
		fmt.Sprintf(`"%s" NHS "board papers" site:nhs.uk`, trust),
		fmt.Sprintf(`"%s" NHS board papers minutes 2026`, trust),
	}
}

// Find runs the queries in order and returns the first result URL containing
// a board-papers keyword. A failed query is logged and skipped, not fatal.
// Returns ErrNotFound when no query matches.
func (f *Finder) Find(ctx context.Context, trust string) (string, error) {
	for _, q := range Queries(trust) {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "search: context cancelled")
		}

		results, err := f.client.Search(ctx, q, duckduckgo.WithMaxResults(f.maxResults))
		if err != nil {
			zap.L().Warn("search query failed",
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}

		for _, r := range results {
			if matchesBoardPapers(r.URL) {
				zap.L().Info("found board papers page",
					zap.String("query", q),
					zap.String("url", r.URL),
				)
				return r.URL, nil
			}
		}
	}

	return "", ErrNotFound
}

func matchesBoardPapers(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, kw := range urlKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
