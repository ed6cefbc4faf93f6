// Package analyse prompts Claude with a trust's extracted board-paper text
// and returns the story leads it finds.
package analyse

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/internal/extract"
	"github.com/trustwatch/boardpapers-cli/pkg/anthropic"
)

// Options configures an Analyser. Zero values fall back to defaults.
type Options struct {
	Model        string
	MaxTokens    int64
	CharLimit    int    // prompt body budget, in bytes
	TemplatePath string // prompt template on disk
}

// Analyser assembles the prompt and runs the model call.
type Analyser struct {
	client anthropic.Client
	opts   Options
}

// New builds an Analyser over an Anthropic client.
func New(client anthropic.Client, opts Options) *Analyser {
	if opts.Model == "" {
		opts.Model = "claude-opus-4-6"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.CharLimit <= 0 {
		opts.CharLimit = 400_000
	}
	if opts.TemplatePath == "" {
		opts.TemplatePath = "prompt_template.txt"
	}
	return &Analyser{client: client, opts: opts}
}

// Result is the outcome of one analysis call.
type Result struct {
	Leads string
	Model string
	Usage anthropic.TokenUsage
}

// Run renders the prompt from the corpus and asks the model for story leads.
func (a *Analyser) Run(ctx context.Context, corpus *extract.Corpus, trustName, boardPapersURL string) (*Result, error) {
	tmpl, err := LoadTemplate(a.opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	body := BuildCorpusText(corpus, a.opts.CharLimit)
	prompt := RenderTemplate(tmpl, trustName, boardPapersURL, body)

	zap.L().Info("sending corpus to model",
		zap.String("model", a.opts.Model),
		zap.Int("corpus_chars", len(body)))

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(a.opts.Model, "analyse")

	leads := firstText(resp)
	if leads == "" {
		return nil, eris.New("analyse: model returned no text content")
	}

	return &Result{
		Leads: leads,
		Model: a.opts.Model,
		Usage: resp.Usage,
	}, nil
}

// firstText returns the first text block of a response.
func firstText(resp *anthropic.MessageResponse) string {
	for _, b := range resp.Content {
		if b.Type == "text" && b.Text != "" {
			return b.Text
		}
	}
	return ""
}
