package analyse

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/internal/extract"
)

// BuildCorpusText flattens a corpus into one prompt body. Sections are
// concatenated in corpus order under banner headers until the character
// budget would be exceeded, at which point the remaining sections are
// dropped. Blank sections are skipped.
func BuildCorpusText(corpus *extract.Corpus, charLimit int) string {
	var b strings.Builder
	total := 0
	for _, s := range corpus.Sections() {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		header := fmt.Sprintf("\n\n=== %s ===\n", strings.ReplaceAll(strings.ToUpper(s.Key), "_", " "))
		if total+len(header)+len(s.Text) > charLimit {
			zap.L().Warn("character limit reached, dropping remaining sections",
				zap.Int("limit", charLimit),
				zap.String("first_dropped", s.Key))
			break
		}
		b.WriteString(header)
		b.WriteString(s.Text)
		total += len(header) + len(s.Text)
	}
	return b.String()
}

// LoadTemplate reads the prompt template from disk. A missing template is a
// hard error so a broken install fails before any tokens are spent.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "analyse: read prompt template %s", path)
	}
	return string(data), nil
}

// RenderTemplate fills the placeholders in a prompt template.
func RenderTemplate(tmpl, trustName, boardPapersURL, extractedText string) string {
	return strings.NewReplacer(
		"{{TRUST_NAME}}", trustName,
		"{{BOARD_PAPERS_URL}}", boardPapersURL,
		"{{EXTRACTED_TEXT}}", extractedText,
	).Replace(tmpl)
}
