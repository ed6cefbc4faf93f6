// Package links discovers candidate document links on a board-papers index page.
package links

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Link is a candidate document link found on an index page.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// docExtensions mark a href as a document by suffix.
var docExtensions = []string{".pdf", ".zip", ".docx", ".doc"}

// docKeywords mark a href as a document by substring. NHS CMSes often serve
// files through extension-less download endpoints.
var docKeywords = []string{"download", "document", "/file", "attachment", "board-paper", "agenda"}

// priorityTerms pick out the most recent board pack when ranking links.
var priorityTerms = []string{
	"2026", "2025", "january", "february", "march", "april",
	"november", "october", "board-pack", "combined", "agenda",
}

// Extract parses an index page and returns document links in page order,
// deduplicated by resolved URL. Relative hrefs are resolved against indexURL.
func Extract(page []byte, indexURL string) ([]Link, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, eris.Wrapf(err, "links: parse index url %q", indexURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, eris.Wrap(err, "links: parse page")
	}

	var out []Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}

		if !isDocumentHref(strings.ToLower(href)) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref).String()
		if seen[full] {
			return
		}
		seen[full] = true

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			text = href
		}
		out = append(out, Link{Text: truncate(text, 120), URL: full})
	})

	return out, nil
}

// isDocumentHref reports whether a lowercased href looks like a document link.
func isDocumentHref(href string) bool {
	for _, ext := range docExtensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	for _, kw := range docKeywords {
		if strings.Contains(href, kw) {
			return true
		}
	}
	return false
}

// PickBest heuristically selects the most recent board pack from a list of
// links. Preference order: a link whose text or URL mentions a priority term,
// then the first PDF, then the first link. Empty input returns "".
func PickBest(links []Link) string {
	if len(links) == 0 {
		return ""
	}

	for _, l := range links {
		combined := strings.ToLower(l.Text + " " + l.URL)
		for _, term := range priorityTerms {
			if strings.Contains(combined, term) {
				return l.URL
			}
		}
	}

	for _, l := range links {
		if strings.Contains(strings.ToLower(l.URL), ".pdf") {
			return l.URL
		}
	}

	return links[0].URL
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
