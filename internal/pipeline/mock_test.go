package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/trustwatch/boardpapers-cli/internal/analyse"
	"github.com/trustwatch/boardpapers-cli/internal/extract"
	"github.com/trustwatch/boardpapers-cli/internal/fetcher"
)

// --- Finder Mock ---

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) Find(ctx context.Context, trustName string) (string, error) {
	args := m.Called(ctx, trustName)
	return args.String(0), args.Error(1)
}

// --- Fetcher Mock ---

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockFetcher) FetchDocument(ctx context.Context, docURL, referer string) ([]byte, error) {
	args := m.Called(ctx, docURL, referer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Run(paths []string) *extract.Corpus {
	args := m.Called(paths)
	return args.Get(0).(*extract.Corpus)
}

// --- Analyser Mock ---

type mockAnalyser struct {
	mock.Mock
}

func (m *mockAnalyser) Run(ctx context.Context, corpus *extract.Corpus, trustName, boardPapersURL string) (*analyse.Result, error) {
	args := m.Called(ctx, corpus, trustName, boardPapersURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyse.Result), args.Error(1)
}

// --- Scripted Prompter ---

// scriptPrompter replays canned answers and records every prompt it was
// asked.
type scriptPrompter struct {
	answers []string
	asked   []string
	err     error
}

func (s *scriptPrompter) Ask(prompt string) (string, error) {
	s.asked = append(s.asked, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// --- Ensure interface compliance ---
var (
	_ Finder          = (*mockFinder)(nil)
	_ fetcher.Fetcher = (*mockFetcher)(nil)
	_ Extractor       = (*mockExtractor)(nil)
	_ Analyser        = (*mockAnalyser)(nil)
	_ Prompter        = (*scriptPrompter)(nil)
)
