package main

import (
	"net/http"
	"time"

	"github.com/trustwatch/boardpapers-cli/internal/analyse"
	"github.com/trustwatch/boardpapers-cli/internal/extract"
	"github.com/trustwatch/boardpapers-cli/internal/fetcher"
	"github.com/trustwatch/boardpapers-cli/internal/search"
	anthropicpkg "github.com/trustwatch/boardpapers-cli/pkg/anthropic"
	"github.com/trustwatch/boardpapers-cli/pkg/duckduckgo"
)

// newFinder builds the search stage from config.
func newFinder() *search.Finder {
	ddg := duckduckgo.NewClient(
		duckduckgo.WithBaseURL(cfg.Search.BaseURL),
		duckduckgo.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		}),
	)
	return search.NewFinder(ddg, cfg.Search.MaxResults)
}

// newFetcher builds the download stage from config.
func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:    time.Duration(cfg.Download.TimeoutSecs) * time.Second,
		MinBytes:   cfg.Download.MinBytes,
		RatePerSec: cfg.Download.RatePerSec,
		RateBurst:  cfg.Download.RateBurst,
	})
}

// newExtractor builds the extraction stage from config.
func newExtractor() (*extract.Extractor, error) {
	return extract.New(extract.Options{
		AgendaPages:   cfg.Extract.AgendaPages,
		CharsPerPage:  cfg.Extract.CharsPerPage,
		SectionWindow: cfg.Extract.SectionWindow,
		MinChunk:      cfg.Extract.MinChunk,
		TopicsFile:    cfg.Extract.TopicsFile,
	})
}

// newAnalyser builds the analysis stage from config, with an optional model
// override from the command line.
func newAnalyser(modelOverride string) *analyse.Analyser {
	model := cfg.Anthropic.Model
	if modelOverride != "" {
		model = modelOverride
	}
	return analyse.New(anthropicpkg.NewClient(cfg.Anthropic.Key), analyse.Options{
		Model:        model,
		MaxTokens:    cfg.Anthropic.MaxTokens,
		CharLimit:    cfg.Analyse.CharLimit,
		TemplatePath: cfg.Analyse.TemplatePath,
	})
}
