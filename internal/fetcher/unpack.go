package fetcher

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SavePayload writes a downloaded payload to destDir and returns the local
// PDF paths. ZIP archives (payload starts with the "PK" magic) are unpacked
// to their PDF members; anything else is saved as board_papers.pdf.
func SavePayload(data []byte, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "fetcher: create dest dir")
	}

	if bytes.HasPrefix(data, []byte("PK")) {
		return extractPDFs(data, destDir)
	}

	path := filepath.Join(destDir, "board_papers.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, eris.Wrap(err, "fetcher: write pdf")
	}
	return []string{path}, nil
}

// extractPDFs unpacks the .pdf members of a ZIP archive to destDir, skipping
// directories and macOS resource-fork entries. Extracted files are written
// under the basename of their archive path.
func extractPDFs(data []byte, destDir string) ([]string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open zip")
	}

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			continue
		}

		name := filepath.Base(f.Name)
		if name == "" || name == "." || name == "/" {
			name = fmt.Sprintf("extracted_%d.pdf", len(extracted))
		}
		destPath := filepath.Join(destDir, name)
		if err := writeZIPEntry(f, destPath); err != nil {
			return extracted, err
		}
		zap.L().Info("extracted pdf from archive",
			zap.String("name", name),
			zap.Uint64("bytes", f.UncompressedSize64),
		)
		extracted = append(extracted, destPath)
	}

	return extracted, nil
}

func writeZIPEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrap(err, "fetcher: open zip entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrap(err, "fetcher: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrap(err, "fetcher: write file")
	}
	return nil
}
