package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoc is an in-memory PageSource.
type fakeDoc struct {
	pages  []string
	failed map[int]bool
}

func (f *fakeDoc) NumPages() int { return len(f.pages) }

func (f *fakeDoc) Page(i int) (string, bool) {
	if i < 0 || i >= len(f.pages) || f.failed[i] {
		return "", false
	}
	return f.pages[i], true
}

// numberedDoc builds a fake document whose page i holds "content of page
// i+1".
func numberedDoc(pages int) *fakeDoc {
	doc := &fakeDoc{pages: make([]string, pages)}
	for i := range doc.pages {
		doc.pages[i] = fmt.Sprintf("content of page %d", i+1)
	}
	return doc
}

func newExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func findSection(c *Corpus, key string) (string, bool) {
	for _, s := range c.Sections() {
		if s.Key == key {
			return s.Text, true
		}
	}
	return "", false
}

func TestNew_Defaults(t *testing.T) {
	e := newExtractor(t, Options{})

	assert.Equal(t, 6, e.opts.AgendaPages)
	assert.Equal(t, 3000, e.opts.CharsPerPage)
	assert.Equal(t, 30, e.opts.SectionWindow)
	assert.Equal(t, 20, e.opts.MinChunk)
	assert.Len(t, e.topics, 5)
}

func TestPageText(t *testing.T) {
	e := newExtractor(t, Options{})
	doc := &fakeDoc{pages: []string{"first page", "second page", "third page"}}

	got := e.PageText(doc, 0, 3)

	want := "-- Page 1 --\nfirst page\n-- Page 2 --\nsecond page\n-- Page 3 --\nthird page"
	assert.Equal(t, want, got)
}

func TestPageText_SkipsBlankAndFailedPages(t *testing.T) {
	e := newExtractor(t, Options{})
	doc := &fakeDoc{
		pages:  []string{"first page", "  \n\t ", "third page", "broken"},
		failed: map[int]bool{3: true},
	}

	got := e.PageText(doc, 0, 4)

	assert.Equal(t, "-- Page 1 --\nfirst page\n-- Page 3 --\nthird page", got)
}

func TestPageText_ClampsToDocument(t *testing.T) {
	e := newExtractor(t, Options{})
	doc := &fakeDoc{pages: []string{"only page"}}

	assert.Equal(t, "-- Page 1 --\nonly page", e.PageText(doc, -5, 99))
}

func TestPageText_StartBeyondDocument(t *testing.T) {
	e := newExtractor(t, Options{})
	doc := &fakeDoc{pages: []string{"a", "b"}}

	assert.Empty(t, e.PageText(doc, 10, 20))
}

func TestPageText_CapsPageLength(t *testing.T) {
	e := newExtractor(t, Options{CharsPerPage: 5})
	doc := &fakeDoc{pages: []string{"£12.3m deficit reported"}}

	// The cap counts runes, so the two-byte pound sign is one character.
	assert.Equal(t, "-- Page 1 --\n£12.3", e.PageText(doc, 0, 1))
}

func TestLocateSections(t *testing.T) {
	e := newExtractor(t, Options{})
	agenda := "BOARD AGENDA\n" +
		"4. Chief Executive's Report .............. 12\n" +
		"7. Finance Report ........................ 42\n"

	got := e.LocateSections(agenda, 120)

	require.Len(t, got, 2)
	assert.Equal(t, Located{Topic: "ceo_report", Start: 11}, got[0])
	assert.Equal(t, Located{Topic: "finance", Start: 41}, got[1])
}

func TestLocateSections_RejectsItemNumbers(t *testing.T) {
	e := newExtractor(t, Options{})

	// "2" is an agenda item number, not a page reference.
	got := e.LocateSections("Quality Account .... 2", 120)

	assert.Empty(t, got)
}

func TestLocateSections_RejectsPagesBeyondDocument(t *testing.T) {
	e := newExtractor(t, Options{})

	got := e.LocateSections("Finance Report .... 42", 30)

	assert.Empty(t, got)
}

func TestLocateSections_TopicOrder(t *testing.T) {
	e := newExtractor(t, Options{})

	// Workforce appears first in the text but finance ranks first.
	agenda := "Workforce Update .... 80\nFinance Report .... 42"
	got := e.LocateSections(agenda, 120)

	require.Len(t, got, 2)
	assert.Equal(t, "finance", got[0].Topic)
	assert.Equal(t, "workforce", got[1].Topic)
}

func TestLocateSections_ReferenceMustStayOnLine(t *testing.T) {
	e := newExtractor(t, Options{})

	// The page number sits on the next line, so the heading has no usable
	// reference.
	got := e.LocateSections("Finance Report\n42", 120)

	assert.Empty(t, got)
}

func TestExtractOne_AgendaDriven(t *testing.T) {
	e := newExtractor(t, Options{})
	doc := numberedDoc(60)
	doc.pages[0] = "AGENDA\n" +
		"4. Chief Executive's Report .... 12\n" +
		"7. Finance Report .............. 42\n"

	corpus := &Corpus{}
	e.extractOne(corpus, "pack.pdf", doc)

	sections := corpus.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "pack.pdf__agenda", sections[0].Key)
	assert.Equal(t, "pack.pdf__ceo_report", sections[1].Key)
	assert.Equal(t, "pack.pdf__finance", sections[2].Key)

	// ceo_report window covers pages 12-41.
	assert.Contains(t, sections[1].Text, "-- Page 12 --")
	assert.Contains(t, sections[1].Text, "-- Page 41 --")
	assert.NotContains(t, sections[1].Text, "-- Page 42 --")

	// finance starts at page 42 and the window clamps at the last page.
	assert.Contains(t, sections[2].Text, "-- Page 42 --")
	assert.Contains(t, sections[2].Text, "-- Page 60 --")
}

func TestExtractOne_ThirdsFallback(t *testing.T) {
	e := newExtractor(t, Options{})
	corpus := &Corpus{}

	// No agenda references anywhere, 90 pages, so thirds of 30.
	e.extractOne(corpus, "pack.pdf", numberedDoc(90))

	sections := corpus.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, "pack.pdf__agenda", sections[0].Key)
	assert.Equal(t, "pack.pdf__part_1", sections[1].Key)
	assert.Equal(t, "pack.pdf__part_2", sections[2].Key)
	assert.Equal(t, "pack.pdf__part_3", sections[3].Key)

	assert.Contains(t, sections[1].Text, "-- Page 1 --")
	assert.Contains(t, sections[1].Text, "-- Page 30 --")
	assert.NotContains(t, sections[1].Text, "-- Page 31 --")

	assert.Contains(t, sections[2].Text, "-- Page 31 --")
	assert.Contains(t, sections[2].Text, "-- Page 60 --")

	assert.Contains(t, sections[3].Text, "-- Page 61 --")
	assert.Contains(t, sections[3].Text, "-- Page 90 --")
}

func TestExtractOne_ThirdsMinChunk(t *testing.T) {
	e := newExtractor(t, Options{})
	corpus := &Corpus{}

	// 40 pages: a third would be 13, so the 20-page floor applies and the
	// final chunk is empty.
	e.extractOne(corpus, "pack.pdf", numberedDoc(40))

	part1, ok := findSection(corpus, "pack.pdf__part_1")
	require.True(t, ok)
	assert.Contains(t, part1, "-- Page 20 --")
	assert.NotContains(t, part1, "-- Page 21 --")

	part2, ok := findSection(corpus, "pack.pdf__part_2")
	require.True(t, ok)
	assert.Contains(t, part2, "-- Page 21 --")
	assert.Contains(t, part2, "-- Page 40 --")

	part3, ok := findSection(corpus, "pack.pdf__part_3")
	require.True(t, ok)
	assert.Empty(t, part3)
}

func TestExtractOne_AgendaKeyAlwaysPresent(t *testing.T) {
	e := newExtractor(t, Options{})
	corpus := &Corpus{}

	// Every page is blank, yet the agenda section still appears.
	e.extractOne(corpus, "pack.pdf", &fakeDoc{pages: make([]string, 9)})

	agenda, ok := findSection(corpus, "pack.pdf__agenda")
	require.True(t, ok)
	assert.Empty(t, agenda)
}

func TestRun_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "notapdf.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a pdf"), 0o644))

	e := newExtractor(t, Options{})
	corpus := e.Run([]string{garbage, filepath.Join(dir, "missing.pdf")})

	assert.Zero(t, corpus.Len())
}

func TestOpen_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-9.9 nonsense"), 0o644))

	_, err := Open(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.pdf")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.pdf"))

	require.Error(t, err)
}

func TestNew_TopicsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	yaml := "topics:\n" +
		"  - name: digital\n" +
		"    pattern: 'digital (?:update|report)'\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	e := newExtractor(t, Options{TopicsFile: path})
	require.Len(t, e.topics, 6)

	// Extra topics rank behind the built-ins.
	agenda := "Digital Update .... 8\nFinance Report .... 22"
	got := e.LocateSections(agenda, 60)
	require.Len(t, got, 2)
	assert.Equal(t, Located{Topic: "finance", Start: 21}, got[0])
	assert.Equal(t, Located{Topic: "digital", Start: 7}, got[1])
}

func TestNew_TopicsFileDuplicateName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	yaml := "topics:\n" +
		"  - name: finance\n" +
		"    pattern: 'financial summary'\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := New(Options{TopicsFile: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate topic "finance"`)
}

func TestNew_TopicsFileBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	yaml := "topics:\n" +
		"  - name: broken\n" +
		"    pattern: '(unclosed'\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := New(Options{TopicsFile: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `compile topic "broken"`)
}

func TestNew_TopicsFileEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	yaml := "topics:\n" +
		"  - name: ''\n" +
		"    pattern: 'something'\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := New(Options{TopicsFile: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty")
}

func TestNew_TopicsFileMissing(t *testing.T) {
	_, err := New(Options{TopicsFile: filepath.Join(t.TempDir(), "nope.yaml")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read topics file")
}

func TestCorpus_PreservesOrder(t *testing.T) {
	c := &Corpus{}
	c.Add("b", "2")
	c.Add("a", "1")
	c.Add("c", "")

	require.Equal(t, 3, c.Len())
	assert.Equal(t, []Section{
		{Key: "b", Text: "2"},
		{Key: "a", Text: "1"},
		{Key: "c", Text: ""},
	}, c.Sections())
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "££", truncateRunes("£££", 2))
	assert.Equal(t, "", truncateRunes("anything", 0))
}
