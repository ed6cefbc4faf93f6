// Package extract pulls targeted text out of board-paper PDFs. It reads the
// agenda from the front of each document, follows agenda page references to
// the sections worth summarising, and falls back to coarse thirds when the
// agenda gives no usable references.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	AgendaPages   int    // pages read from the front of each document
	CharsPerPage  int    // per-page text cap, in runes
	SectionWindow int    // pages read from each located section start
	MinChunk      int    // minimum chunk size for the thirds fallback
	TopicsFile    string // optional YAML file of extra topics
}

// Extractor turns PDFs into an ordered corpus of labelled sections.
type Extractor struct {
	opts   Options
	topics []compiledTopic
}

// New builds an Extractor, loading extra topics from Options.TopicsFile when
// set.
func New(opts Options) (*Extractor, error) {
	if opts.AgendaPages <= 0 {
		opts.AgendaPages = 6
	}
	if opts.CharsPerPage <= 0 {
		opts.CharsPerPage = 3000
	}
	if opts.SectionWindow <= 0 {
		opts.SectionWindow = 30
	}
	if opts.MinChunk <= 0 {
		opts.MinChunk = 20
	}

	var extra []Topic
	if opts.TopicsFile != "" {
		var err error
		extra, err = loadTopicsFile(opts.TopicsFile)
		if err != nil {
			return nil, err
		}
	}
	topics, err := compileTopics(extra)
	if err != nil {
		return nil, err
	}

	return &Extractor{opts: opts, topics: topics}, nil
}

// Run extracts every PDF into a fresh corpus. Documents that cannot be
// opened are logged and skipped so one corrupt file does not sink the batch.
func (e *Extractor) Run(paths []string) *Corpus {
	corpus := &Corpus{}
	for _, path := range paths {
		doc, err := Open(path)
		if err != nil {
			zap.L().Error("could not open pdf", zap.String("path", path), zap.Error(err))
			continue
		}
		zap.L().Info("reading pdf",
			zap.String("label", doc.Label),
			zap.Int("pages", doc.NumPages()))

		e.extractOne(corpus, doc.Label, doc)

		if err := doc.Close(); err != nil {
			zap.L().Warn("close pdf", zap.String("label", doc.Label), zap.Error(err))
		}
	}
	return corpus
}

// extractOne reads the agenda pages first, then either follows agenda page
// references or reads the document in thirds.
func (e *Extractor) extractOne(corpus *Corpus, label string, src PageSource) {
	total := src.NumPages()

	agenda := e.PageText(src, 0, e.opts.AgendaPages)
	corpus.Add(label+"__agenda", agenda)

	located := e.LocateSections(agenda, total)
	if len(located) > 0 {
		names := make([]string, len(located))
		for i, l := range located {
			names[i] = l.Topic
		}
		zap.L().Info("sections found in agenda",
			zap.String("label", label),
			zap.Strings("sections", names))

		for _, l := range located {
			text := e.PageText(src, l.Start, l.Start+e.opts.SectionWindow)
			corpus.Add(label+"__"+l.Topic, text)
		}
		return
	}

	zap.L().Info("no agenda page refs found, reading in thirds", zap.String("label", label))
	chunk := total / 3
	if chunk < e.opts.MinChunk {
		chunk = e.opts.MinChunk
	}
	corpus.Add(label+"__part_1", e.PageText(src, 0, chunk))
	corpus.Add(label+"__part_2", e.PageText(src, chunk, chunk*2))
	corpus.Add(label+"__part_3", e.PageText(src, chunk*2, total))
}

// PageText concatenates the text of pages [start, end), clamped to the
// document. Blank and unreadable pages are skipped; each remaining page is
// capped at CharsPerPage runes and prefixed with a 1-indexed page marker.
func (e *Extractor) PageText(src PageSource, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > src.NumPages() {
		end = src.NumPages()
	}

	var parts []string
	for i := start; i < end; i++ {
		text, ok := src.Page(i)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("-- Page %d --\n%s", i+1, truncateRunes(text, e.opts.CharsPerPage)))
	}
	return strings.Join(parts, "\n")
}

// Located is a section start discovered in the agenda.
type Located struct {
	Topic string
	Start int // 0-indexed page
}

// LocateSections scans agenda text for topic headings trailed by a page
// reference. Matches are only accepted between page 3 and the page count:
// smaller numbers are usually agenda item numbers, larger ones cross-document
// noise. Results follow topic order with 0-indexed start pages.
func (e *Extractor) LocateSections(agendaText string, totalPages int) []Located {
	lowered := strings.ToLower(agendaText)

	var found []Located
	for _, t := range e.topics {
		m := t.re.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		page, err := strconv.Atoi(m[1])
		if err != nil || page < 3 || page > totalPages {
			continue
		}
		found = append(found, Located{Topic: t.name, Start: page - 1})
	}
	return found
}

// truncateRunes caps s at n runes without splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
