// Package pipeline runs the end-to-end board papers analysis: find the
// trust's board papers page, pick and download the latest pack, extract the
// sections worth reading, and ask Claude for story leads.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/internal/analyse"
	"github.com/trustwatch/boardpapers-cli/internal/extract"
	"github.com/trustwatch/boardpapers-cli/internal/fetcher"
	"github.com/trustwatch/boardpapers-cli/internal/links"
)

// Finder resolves a trust name to its board papers page.
type Finder interface {
	Find(ctx context.Context, trustName string) (string, error)
}

// Extractor turns downloaded PDFs into a corpus of labelled sections.
type Extractor interface {
	Run(paths []string) *extract.Corpus
}

// Analyser produces story leads from an extracted corpus.
type Analyser interface {
	Run(ctx context.Context, corpus *extract.Corpus, trustName, boardPapersURL string) (*analyse.Result, error)
}

// Request describes one analysis run.
type Request struct {
	TrustName  string
	ManualURL  string   // board papers page, skips the search stage
	ManualPDFs []string // local PDFs, skip discovery and download
	WorkDir    string   // defaults to a fresh temp directory
}

// Stage statuses recorded on a Result.
const (
	StageComplete = "complete"
	StageFailed   = "failed"
	StageSkipped  = "skipped"
)

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Result captures one end-to-end run.
type Result struct {
	RunID          string        `json:"run_id"`
	TrustName      string        `json:"trust_name"`
	BoardPapersURL string        `json:"board_papers_url,omitempty"`
	DocumentURL    string        `json:"document_url,omitempty"`
	WorkDir        string        `json:"work_dir"`
	PDFPaths       []string      `json:"pdf_paths,omitempty"`
	Sections       int           `json:"sections"`
	Model          string        `json:"model,omitempty"`
	InputTokens    int64         `json:"input_tokens"`
	OutputTokens   int64         `json:"output_tokens"`
	Leads          string        `json:"leads,omitempty"`
	OutputPath     string        `json:"output_path,omitempty"`
	Stages         []StageResult `json:"stages"`
}

// Pipeline wires the stages together.
type Pipeline struct {
	finder    Finder
	fetcher   fetcher.Fetcher
	extractor Extractor
	analyser  Analyser
	prompter  Prompter
}

// New creates a Pipeline. A nil prompter declines every question, which
// suits unattended runs.
func New(finder Finder, f fetcher.Fetcher, ex Extractor, an Analyser, prompter Prompter) *Pipeline {
	if prompter == nil {
		prompter = NoInput{}
	}
	return &Pipeline{
		finder:    finder,
		fetcher:   f,
		extractor: ex,
		analyser:  an,
		prompter:  prompter,
	}
}

// Run executes the full analysis for one trust. The returned Result carries
// per-stage outcomes even when Run fails partway.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.TrustName) == "" {
		return nil, eris.New("pipeline: trust name is required")
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("trust", req.TrustName))
	log.Info("pipeline: starting board papers analysis")

	result := &Result{RunID: runID, TrustName: req.TrustName}

	stage := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start).Milliseconds()

		sr := StageResult{Name: name, Status: StageComplete, DurationMS: elapsed}
		if err != nil {
			sr.Status = StageFailed
			sr.Error = err.Error()
			log.Error("pipeline: stage failed",
				zap.String("stage", name),
				zap.Int64("duration_ms", elapsed),
				zap.Error(err))
		} else {
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", elapsed))
		}
		result.Stages = append(result.Stages, sr)
		return err
	}

	skip := func(name, reason string) {
		log.Info("pipeline: stage skipped", zap.String("stage", name), zap.String("reason", reason))
		result.Stages = append(result.Stages, StageResult{Name: name, Status: StageSkipped})
	}

	ask := func(prompt string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "pipeline: cancelled")
		}
		answer, err := p.prompter.Ask(prompt)
		if err != nil {
			return "", eris.Wrap(err, "pipeline: prompt")
		}
		return strings.TrimSpace(answer), nil
	}

	workDir := req.WorkDir
	if workDir == "" {
		var err error
		workDir, err = os.MkdirTemp("", "nhspapers_*")
		if err != nil {
			return result, eris.Wrap(err, "pipeline: create work dir")
		}
	}
	result.WorkDir = workDir

	// Stage 1: find the board papers page.
	boardURL := req.ManualURL
	if boardURL != "" {
		skip("search", "url provided")
		log.Info("pipeline: using provided url", zap.String("url", boardURL))
	} else {
		err := stage("search", func() error {
			found, err := p.finder.Find(ctx, req.TrustName)
			if err != nil {
				return err
			}
			boardURL = found
			return nil
		})
		if err != nil {
			answer, askErr := ask("Could not find the board papers page automatically. Paste the board papers URL")
			if askErr != nil {
				return result, askErr
			}
			boardURL = answer
		}
	}
	result.BoardPapersURL = boardURL

	// Stages 2 and 3: pick a document link and download it.
	var pdfPaths []string
	if len(req.ManualPDFs) > 0 {
		skip("discover", "pdf provided")
		skip("download", "pdf provided")
		log.Info("pipeline: using provided pdfs", zap.Strings("paths", req.ManualPDFs))
		pdfPaths = req.ManualPDFs
	} else {
		if boardURL == "" {
			return result, eris.New("pipeline: no board papers url to fetch")
		}

		// A failed index fetch is not fatal: the operator can still paste a
		// direct document URL.
		var found []links.Link
		_ = stage("discover", func() error {
			page, err := p.fetcher.FetchPage(ctx, boardURL)
			if err != nil {
				return err
			}
			ls, err := links.Extract(page, boardURL)
			if err != nil {
				return err
			}
			found = ls
			return nil
		})

		var docURL string
		if len(found) > 0 {
			docURL = links.PickBest(found)
			log.Info("pipeline: auto-selected document",
				zap.Int("links", len(found)),
				zap.String("url", docURL))

			answer, askErr := ask(chooseLinkPrompt(found, docURL))
			if askErr != nil {
				return result, askErr
			}
			if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 0 && n < len(found) {
				docURL = found[n].URL
			}
		} else {
			answer, askErr := ask("No document links found on the index page. Paste the direct PDF URL")
			if askErr != nil {
				return result, askErr
			}
			if answer == "" {
				return result, eris.New("pipeline: no document links found")
			}
			docURL = answer
		}
		result.DocumentURL = docURL

		var payload []byte
		err := stage("download", func() error {
			data, err := p.fetcher.FetchDocument(ctx, docURL, boardURL)
			if err != nil {
				return err
			}
			payload = data
			return nil
		})
		if err != nil {
			answer, askErr := ask("This site blocks automated downloads. Path to a manually downloaded PDF (or press Enter to stop)")
			if askErr != nil {
				return result, askErr
			}
			if answer == "" {
				return result, eris.New("pipeline: download failed and no manual pdf provided")
			}
			pdfPaths = []string{answer}
			skip("unpack", "manual pdf")
		} else {
			err = stage("unpack", func() error {
				paths, unpackErr := fetcher.SavePayload(payload, workDir)
				if len(paths) > 0 {
					if unpackErr != nil {
						log.Warn("pipeline: archive only partially unpacked", zap.Error(unpackErr))
					}
					pdfPaths = paths
					return nil
				}
				if unpackErr != nil {
					return unpackErr
				}
				return eris.New("pipeline: archive contained no pdfs")
			})
			if err != nil {
				return result, err
			}
		}
	}

	if len(pdfPaths) == 0 {
		return result, eris.New("pipeline: no pdfs to process")
	}
	result.PDFPaths = pdfPaths

	// Stage 4: extract targeted text.
	var corpus *extract.Corpus
	err := stage("extract", func() error {
		c := p.extractor.Run(pdfPaths)
		if c.Len() == 0 {
			return eris.New("pipeline: no text extracted from any pdf")
		}
		corpus = c
		return nil
	})
	if err != nil {
		return result, err
	}
	result.Sections = corpus.Len()

	// Stage 5: analyse with Claude.
	var analysis *analyse.Result
	err = stage("analyse", func() error {
		res, err := p.analyser.Run(ctx, corpus, req.TrustName, boardURL)
		if err != nil {
			return err
		}
		analysis = res
		return nil
	})
	if err != nil {
		return result, err
	}
	result.Leads = analysis.Leads
	result.Model = analysis.Model
	result.InputTokens = analysis.Usage.InputTokens
	result.OutputTokens = analysis.Usage.OutputTokens

	outPath := filepath.Join(workDir, strings.ReplaceAll(req.TrustName, " ", "_")+"_leads.md")
	if err := os.WriteFile(outPath, []byte(analysis.Leads), 0o644); err != nil {
		return result, eris.Wrap(err, "pipeline: write leads")
	}
	result.OutputPath = outPath

	log.Info("pipeline: analysis complete",
		zap.Int("sections", result.Sections),
		zap.String("output", outPath))

	return result, nil
}
