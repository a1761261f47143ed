package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// searchFlags are shared by search and summarize.
type searchFlags struct {
	topK       int
	strategy   string
	expansions int
	day        string
	from       string
	to         string
	timeout    time.Duration
	json       bool
}

var searchOpts searchFlags

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find suppliers for a request",
	Long: `Finds suppliers whose profiles match a natural-language request.

The request is routed to a role, decomposed and expanded into several
phrasings, searched concurrently and fused into one ranking. Candidates are
scored by similarity plus rating; give --day, --from and --to to check
availability.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd, &searchOpts)
	addJSONFlag(searchCmd, &searchOpts)
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags) {
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", 0, "fused hits kept before scoring (0 = configured)")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "fusion strategy: rrf, score, oracle or external")
	cmd.Flags().IntVar(&f.expansions, "expansions", 0, "alternative phrasings per request (0 = configured)")
	cmd.Flags().StringVar(&f.day, "day", "", "weekday for the availability check, e.g. monday")
	cmd.Flags().StringVar(&f.from, "from", "", "start of the availability window, HH:MM")
	cmd.Flags().StringVar(&f.to, "to", "", "end of the availability window, HH:MM")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "request timeout (0 = configured)")
}

func addJSONFlag(cmd *cobra.Command, f *searchFlags) {
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
}

// options converts flags to search options.
func (f *searchFlags) options() (domain.SearchOptions, error) {
	opts := domain.SearchOptions{
		TopK:       f.topK,
		Expansions: f.expansions,
		Timeout:    f.timeout,
	}
	if f.strategy != "" {
		s := domain.FusionStrategy(f.strategy)
		if !s.IsValid() {
			return opts, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, f.strategy)
		}
		opts.Strategy = s
	}
	if f.day != "" || f.from != "" || f.to != "" {
		w, err := domain.ParseTimeWindow(f.day, f.from, f.to)
		if err != nil {
			return opts, err
		}
		opts.Window = &w
	}
	return opts, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return unavailable("search")
	}

	opts, err := searchOpts.options()
	if err != nil {
		return err
	}

	candidates, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchOpts.json {
		return outputJSON(cmd, candidates)
	}
	outputCandidates(cmd, candidates, opts.Window != nil)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputCandidates(cmd *cobra.Command, candidates []domain.RankedCandidate, withWindow bool) {
	if len(candidates) == 0 {
		cmd.Println("No suppliers found.")
		return
	}

	cmd.Println("Suppliers:")
	cmd.Println()
	for i := range candidates {
		c := candidates[i]
		name := c.OwnerName
		if name == "" {
			name = c.OwnerID
		}

		// Format: [N] Name (score) role
		cmd.Printf("  [%d] %s (%.3f) %s\n", i+1, accentColor(name), c.FinalScore, c.Role)
		cmd.Printf("      Similarity: %.3f  Rating: %.1f", c.Similarity, c.AverageRating)
		if c.Verified {
			cmd.Printf("  %s", successColor("verified"))
		}
		if withWindow {
			if c.Available {
				cmd.Printf("  %s", successColor("available"))
			} else {
				cmd.Printf("  %s", warnColor("unavailable"))
			}
		}
		cmd.Println()
		cmd.Printf("      %s\n", snippet(c.Text, 160))
		cmd.Println()
	}
}

// snippet shortens text to at most n runes.
func snippet(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n-3]) + "..."
}
