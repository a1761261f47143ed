package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

var ingestRole string

var ingestCmd = &cobra.Command{
	Use:   "ingest [owner-id] [file]",
	Short: "Ingest a supplier profile document",
	Long: `Reads a supplier profile (PDF, DOCX, Markdown or plain text), splits it
into sentence-aligned passages, embeds them and replaces every passage
previously stored for the supplier.

The supplier's roles are detected with the LLM unless --role is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestRole, "role", "r", "", "role to assign instead of detecting one")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return unavailable("ingest")
	}

	result, err := ingestService.IngestFile(cmd.Context(), args[0], args[1], ingestRole)
	if errors.Is(err, domain.ErrNoContent) {
		cmd.Printf("%s %s produced no passages; nothing stored for %s\n", warnColor("Warning:"), args[1], args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printIngestResult(cmd, result)
	return nil
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	cmd.Printf("%s %d passages for %s\n", successColor("Ingested"), result.ChunkCount, result.OwnerID)
	roles := "none detected"
	if len(result.Roles) > 0 {
		roles = strings.Join(result.Roles, ", ")
	}
	cmd.Printf("  Roles: %s\n", roles)
	cmd.Printf("  Document: %s\n", result.DocumentID)
}
