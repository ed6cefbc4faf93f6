package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustwatch/boardpapers-cli/internal/links"
)

var searchJSON bool

// searchResult is the JSON shape of the search command's output.
type searchResult struct {
	TrustName      string       `json:"trust_name"`
	BoardPapersURL string       `json:"board_papers_url"`
	Links          []links.Link `json:"links,omitempty"`
	Best           string       `json:"best,omitempty"`
}

var searchCmd = &cobra.Command{
	Use:   "search <trust name>",
	Short: "Find a trust's board papers page and list its document links",
	Long:  "Runs the discovery stages only: finds the board papers page and lists the document links on it, without downloading or analysing anything.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		trust := strings.Join(args, " ")

		if err := cfg.Validate("search"); err != nil {
			return err
		}

		url, err := newFinder().Find(ctx, trust)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		res := searchResult{TrustName: trust, BoardPapersURL: url}

		// Listing the page's document links is best effort; the URL alone is
		// still a useful answer when the index page refuses automated fetches.
		if page, fetchErr := newFetcher().FetchPage(ctx, url); fetchErr != nil {
			zap.L().Warn("could not fetch index page", zap.String("url", url), zap.Error(fetchErr))
		} else if found, extractErr := links.Extract(page, url); extractErr != nil {
			zap.L().Warn("could not parse index page", zap.String("url", url), zap.Error(extractErr))
		} else {
			res.Links = found
			res.Best = links.PickBest(found)
		}

		if searchJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.BoardPapersURL)
		for _, l := range res.Links {
			marker := " "
			if l.URL == res.Best {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n    %s\n", marker, l.Text, l.URL)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(searchCmd)
}
