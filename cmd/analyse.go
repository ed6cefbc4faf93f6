package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/internal/pipeline"
)

var (
	analyseURL     string
	analysePDFs    []string
	analyseModel   string
	analyseNoInput bool
	analyseJSON    bool
)

var analyseCmd = &cobra.Command{
	Use:   "analyse <trust name>",
	Short: "Find, download, and analyse a trust's latest board papers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		trust := strings.Join(args, " ")

		if err := cfg.Validate("analyse"); err != nil {
			return err
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		var prompter pipeline.Prompter
		if !analyseNoInput {
			prompter = newIOPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		}

		p := pipeline.New(newFinder(), newFetcher(), extractor, newAnalyser(analyseModel), prompter)

		result, err := p.Run(ctx, pipeline.Request{
			TrustName:  trust,
			ManualURL:  analyseURL,
			ManualPDFs: analysePDFs,
		})
		if err != nil {
			return eris.Wrap(err, "analyse run")
		}

		zap.L().Info("analysis complete",
			zap.String("trust", trust),
			zap.Int("sections", result.Sections),
			zap.Int64("input_tokens", result.InputTokens),
			zap.Int64("output_tokens", result.OutputTokens),
		)

		if analyseJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Leads)
		fmt.Fprintf(out, "\n(Saved to %s)\n", result.OutputPath)
		return nil
	},
}

func init() {
	analyseCmd.Flags().StringVar(&analyseURL, "url", "", "board papers index URL (skips search)")
	analyseCmd.Flags().StringArrayVar(&analysePDFs, "pdf", nil, "local PDF path (skips download, repeatable)")
	analyseCmd.Flags().StringVar(&analyseModel, "model", "", "Claude model (default from config)")
	analyseCmd.Flags().BoolVar(&analyseNoInput, "no-input", false, "never prompt for input, fail instead")
	analyseCmd.Flags().BoolVar(&analyseJSON, "json", false, "print the full run result as JSON")
	rootCmd.AddCommand(analyseCmd)
}
