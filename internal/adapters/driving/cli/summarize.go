package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

var summarizeOpts searchFlags

var summarizeCmd = &cobra.Command{
	Use:     "summarize [query]",
	Aliases: []string{"match"},
	Short:   "Search and recommend one supplier",
	Long: `Runs a search and asks the LLM for a structured recommendation:
the chosen supplier, their key strengths and the reasoning.

Without an LLM provider the recommendation explains that no summary could be
produced; the ranked suppliers are still shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	addSearchFlags(summarizeCmd, &summarizeOpts)
	addJSONFlag(summarizeCmd, &summarizeOpts)
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return unavailable("search")
	}

	opts, err := summarizeOpts.options()
	if err != nil {
		return err
	}

	result, err := searchService.Match(cmd.Context(), args[0], opts)
	if summarizeOpts.json && result != nil {
		if jsonErr := outputJSON(cmd, result); jsonErr != nil {
			return jsonErr
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	outputCandidates(cmd, result.Candidates, opts.Window != nil)
	outputSummary(cmd, result.Summary)
	return nil
}

func outputSummary(cmd *cobra.Command, s domain.Summary) {
	cmd.Println("Recommendation:")
	if s.CandidateName != "" {
		cmd.Printf("  %s\n", accentColor(s.CandidateName))
	}
	for _, strength := range s.KeyStrengths {
		cmd.Printf("  - %s\n", strength)
	}
	if s.Reasoning != "" {
		cmd.Printf("  %s\n", s.Reasoning)
	}
}
