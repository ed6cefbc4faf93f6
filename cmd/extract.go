package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/trustwatch/boardpapers-cli/internal/analyse"
)

var (
	extractJSON bool
	extractFull bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf> [pdf...]",
	Short: "Extract targeted sections from local board paper PDFs",
	Long:  "Runs the agenda-driven extraction on local PDFs and prints what would be sent for analysis, without calling the model.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}

		corpus := extractor.Run(args)
		if corpus.Len() == 0 {
			return eris.New("no text extracted from any pdf")
		}

		out := cmd.OutOrStdout()

		if extractJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(corpus.Sections())
		}

		if extractFull {
			fmt.Fprintln(out, analyse.BuildCorpusText(corpus, cfg.Analyse.CharLimit))
			return nil
		}

		for _, s := range corpus.Sections() {
			fmt.Fprintf(out, "%-50s %8d chars\n", s.Key, len(s.Text))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print extracted sections as JSON")
	extractCmd.Flags().BoolVar(&extractFull, "full", false, "print the assembled corpus text instead of a summary")
	rootCmd.AddCommand(extractCmd)
}
