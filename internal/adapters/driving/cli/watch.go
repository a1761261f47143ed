package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/connectors/filesystem"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/logger"
	"github.com/custodia-labs/tradematch/internal/normalisers"
)

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Ingest supplier profiles as they change",
	Long: `Ingests every supported profile document under a directory, then keeps
watching it and re-ingests files as they are created or modified.

The file name without extension is the supplier ID, so profiles/acme.pdf
belongs to supplier "acme". Removing a file leaves its passages in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "do not ingest existing files on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return unavailable("ingest")
	}

	w := filesystem.New(args[0], normalisers.IsSupportedFile)
	if err := w.Validate(); err != nil {
		return err
	}
	defer w.Close()

	ctx := cmd.Context()

	if !watchSkipInitial {
		files, err := w.Scan(ctx)
		if err != nil {
			return err
		}
		for _, path := range files {
			ingestPath(ctx, cmd, path)
		}
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])

	for change := range changes {
		switch change.Type {
		case filesystem.ChangeCreated, filesystem.ChangeUpdated:
			ingestPath(ctx, cmd, change.Path)
		case filesystem.ChangeDeleted:
			logger.Info("%s removed; passages for %s kept", change.Path, filesystem.OwnerIDFromPath(change.Path))
		}
	}
	return nil
}

// ingestPath ingests one file and reports the outcome without stopping the watch.
func ingestPath(ctx context.Context, cmd *cobra.Command, path string) {
	ownerID := filesystem.OwnerIDFromPath(path)
	result, err := ingestService.IngestFile(ctx, ownerID, path, "")
	switch {
	case errors.Is(err, domain.ErrNoContent):
		cmd.Printf("%s %s produced no passages\n", warnColor("Skipped"), path)
	case err != nil:
		cmd.PrintErrln(fmt.Sprintf("%s %s: %v", warnColor("Failed"), path, err))
	default:
		printIngestResult(cmd, result)
	}
}
