// Package cli implements the tradematch command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Services available to commands. Any may be nil; commands report what is missing.
var (
	settingsService  driving.SettingsService
	searchService    driving.SearchService
	ingestService    driving.IngestService
	directoryService driving.DirectoryService

	// unavailableErr explains why search and ingestion are missing.
	unavailableErr error
)

// GlobalOptions are the persistent root flags.
type GlobalOptions struct {
	Verbose   bool
	ConfigDir string
	DataDir   string
	Gops      bool
}

// Services is what a bootstrap hands to the commands.
type Services struct {
	Settings  driving.SettingsService
	Search    driving.SearchService
	Ingest    driving.IngestService
	Directory driving.DirectoryService

	// Unavailable explains why Search or Ingest are nil.
	Unavailable error
}

// Bootstrap builds services once the root flags are parsed. The returned
// function releases them after the command finishes.
type Bootstrap func(opts GlobalOptions) (*Services, func() error, error)

var (
	globalOpts GlobalOptions
	bootstrap  Bootstrap
	cleanup    func() error
)

var (
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	accentColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "tradematch",
	Short: "Match customer requests to local service suppliers",
	Long: `tradematch ingests supplier profile documents, indexes them as embedded
passages and answers natural-language requests with a ranked list of suppliers
and a short recommendation.

Configure providers with 'tradematch settings wizard', seed the supplier
directory with 'tradematch directory import', then ingest profiles and search.`,
	SilenceUsage:      true,
	PersistentPreRunE: runRootPreRun,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if cleanup == nil {
			return nil
		}
		err := cleanup()
		cleanup = nil
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.tradematch)")
	flags.StringVar(&globalOpts.DataDir, "data-dir", "", "data directory (default ~/.tradematch/data)")
	flags.BoolVar(&globalOpts.Gops, "gops", false, "start the gops diagnostics agent")
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s Services) {
	settingsService = s.Settings
	searchService = s.Search
	ingestService = s.Ingest
	directoryService = s.Directory
	unavailableErr = s.Unavailable
}

// Execute runs the root command until it completes or the process is interrupted.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runRootPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)

	if globalOpts.Gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Warn("gops: %v", err)
		}
	}

	// version needs nothing wired
	if bootstrap == nil || cmd == versionCmd {
		return nil
	}

	services, closeFn, err := bootstrap(globalOpts)
	if err != nil {
		return err
	}
	SetServices(*services)
	cleanup = closeFn
	return nil
}

// unavailable builds the error returned when a service is missing.
func unavailable(name string) error {
	if unavailableErr != nil {
		return fmt.Errorf("%s unavailable: %w", name, unavailableErr)
	}
	return errors.New(name + " service not configured")
}
