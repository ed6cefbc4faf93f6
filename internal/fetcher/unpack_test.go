package fetcher

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	data []byte
}

func makeZIP(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSavePayload_DirectPDF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := []byte("%PDF-1.7 fake pdf content")
	paths, err := SavePayload(data, dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "board_papers.pdf"), paths[0])

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSavePayload_ZipExtractsOnlyPDFs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := makeZIP(t, []zipEntry{
		{name: "pack/01-agenda.pdf", data: []byte("agenda pdf")},
		{name: "pack/notes.docx", data: []byte("not a pdf")},
		{name: "__MACOSX/._01-agenda.pdf", data: []byte("resource fork")},
		{name: "pack/02-Minutes.PDF", data: []byte("minutes pdf")},
	})

	paths, err := SavePayload(data, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	// Archive order preserved, names flattened to basenames.
	assert.Equal(t, filepath.Join(dir, "01-agenda.pdf"), paths[0])
	assert.Equal(t, filepath.Join(dir, "02-Minutes.PDF"), paths[1])

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "agenda pdf", string(got))

	// Non-PDF member was not written anywhere.
	_, err = os.Stat(filepath.Join(dir, "notes.docx"))
	assert.True(t, os.IsNotExist(err))
}

func TestSavePayload_ZipSkipsDirectories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("papers/")
	require.NoError(t, err)
	f, err := w.Create("papers/report.pdf")
	require.NoError(t, err)
	_, err = f.Write([]byte("report"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	paths, err := SavePayload(buf.Bytes(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), paths[0])
}

func TestSavePayload_BadZip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// PK magic but not a valid archive.
	_, err := SavePayload([]byte("PK\x03\x04garbage"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open zip")
}

func TestSavePayload_CreatesDestDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "run", "docs")

	paths, err := SavePayload([]byte("%PDF-1.7"), dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	_, err = os.Stat(paths[0])
	require.NoError(t, err)
}

func TestSavePayload_ZipNoPDFMembers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := makeZIP(t, []zipEntry{
		{name: "readme.txt", data: []byte("hello")},
	})

	paths, err := SavePayload(data, dir)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
