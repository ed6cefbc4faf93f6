package extract

import (
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// PageSource yields per-page text for a document. Document implements it
// over a parsed PDF; tests substitute in-memory pages.
type PageSource interface {
	NumPages() int
	// Page returns the raw text of the 0-indexed page. ok is false when the
	// page cannot be read.
	Page(i int) (text string, ok bool)
}

// Document is an opened PDF ready for page-range extraction.
type Document struct {
	Label string
	file  *os.File
	r     *pdf.Reader
	pages int
}

// Open opens a PDF for extraction. The pdf library panics on some malformed
// files; panics are recovered and returned as errors.
func Open(path string) (*Document, error) {
	f, r, err := openReader(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open %s", filepath.Base(path))
	}
	pages, err := countPages(r)
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "extract: open %s", filepath.Base(path))
	}

	return &Document{
		Label: filepath.Base(path),
		file:  f,
		r:     r,
		pages: pages,
	}, nil
}

func openReader(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			f, r, err = nil, nil, eris.Errorf("parse pdf: %v", rec)
		}
	}()
	f, r, err = pdf.Open(path)
	return f, r, err
}

func countPages(r *pdf.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, eris.Errorf("page count: %v", rec)
		}
	}()
	return r.NumPage(), nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.pages }

// Page returns the plain text of the 0-indexed page. Malformed content
// streams make the pdf library error or panic; either counts as a failed
// page.
func (d *Document) Page(i int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	if i < 0 || i >= d.pages {
		return "", false
	}
	page := d.r.Page(i + 1)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return text, true
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}
