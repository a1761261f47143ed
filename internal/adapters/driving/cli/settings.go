package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/services"
)

// stdin is the wizard's input; tests replace it.
var stdin = bufio.NewReader(os.Stdin)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the passage store and pipeline tuning.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  tradematch settings set pipeline.top_k 5
  tradematch settings set pipeline.strategy oracle
  tradematch settings set pipeline.taxonomy "plumber, electrician, barber"

Run 'tradematch settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every setting key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
	},
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure providers and the fusion strategy step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for ingestion and search.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return unavailable("settings")
		}
		return configureEmbeddingProvider(cmd, stdin)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM used for routing, query expansion, re-ranking and summaries.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return unavailable("settings")
		}
		return configureLLMProvider(cmd, stdin)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

//nolint:gocyclo // One section per settings group
func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return unavailable("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	if settings.LLM.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.2f/s (burst %d)\n", settings.LLM.RequestsPerSecond, settings.LLM.Burst)
	}
	cmd.Println()

	// Rerank settings
	cmd.Println("[Rerank]")
	if settings.Rerank.Provider == "" {
		cmd.Println("  Provider: (none)")
	} else {
		printProvider(cmd, settings.Rerank.Provider, settings.Rerank.Model,
			settings.Rerank.BaseURL, settings.Rerank.APIKey, settings.Rerank.IsConfigured())
	}
	cmd.Println()

	// Vector store settings
	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", settings.VectorStore.Backend)
	if settings.VectorStore.Backend == domain.VectorBackendQdrant {
		cmd.Printf("  URL: %s\n", settings.VectorStore.URL)
		cmd.Printf("  Collection: %s\n", settings.VectorStore.Collection)
		if settings.VectorStore.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.VectorStore.APIKey))
		}
	}
	cmd.Printf("  Candidates: %d\n", settings.VectorStore.NumCandidates)
	cmd.Println()

	// Pipeline settings
	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  Strategy: %s\n", p.Strategy.Description())
	cmd.Printf("  Top K: %d\n", p.TopK)
	cmd.Printf("  Expansions: %d\n", p.Expansions)
	cmd.Printf("  Chunking: %d words max, more than %d chars\n", p.MaxWords, p.MinChars)
	cmd.Printf("  Max roles: %d\n", p.MaxRoles)
	cmd.Printf("  Timeouts: search %s, oracle %s\n", p.SearchTimeout, p.OracleTimeout)
	cmd.Printf("  Taxonomy: %s\n", strings.Join(p.Taxonomy, ", "))
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("%s %v\n", warnColor("Warning:"), err)
		cmd.Println("Run 'tradematch settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return unavailable("settings")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s %s\n", successColor("Set"), args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return unavailable("settings")
	}

	cmd.Println("tradematch Settings Wizard")
	cmd.Println("==========================")
	cmd.Println()

	// Step 1: Embedding provider (required)
	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Ingestion and search both need an embedding provider.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, stdin); err != nil {
		return err
	}

	// Step 2: LLM provider (optional)
	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Print("Configure an LLM for routing, expansion and summaries? [Y/n]: ")
	if answer := strings.ToLower(readLine(stdin)); answer == "" || answer == "y" || answer == "yes" {
		if err := configureLLMProvider(cmd, stdin); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped. Searches will use the default query and no summaries.")
		cmd.Println()
	}

	// Step 3: Fusion strategy
	cmd.Println("Step 3: Select Fusion Strategy")
	cmd.Println("------------------------------")
	strategies := domain.AllFusionStrategies()
	for i, s := range strategies {
		cmd.Printf("  %d. %s\n", i+1, s.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(stdin), len(strategies), 1)
	strategy := strategies[idx-1]

	if strategy == domain.FusionExternal {
		if err := configureRerankProvider(cmd, stdin); err != nil {
			return err
		}
	}
	if err := settingsService.SetStrategy(strategy); err != nil {
		return fmt.Errorf("failed to set strategy: %w", err)
	}
	cmd.Printf("Set fusion strategy to: %s\n\n", strategy.Description())

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("%s %v\n", warnColor("Warning:"), err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	model, apiKey, err := promptModelAndKey(cmd, reader, selectedProvider, domain.DefaultEmbeddingModels()[selectedProvider])
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	model, apiKey, err := promptModelAndKey(cmd, reader, selectedProvider, domain.DefaultLLMModels()[selectedProvider])
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureRerankProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("The external strategy uses the Cohere rerank API.")
	model, apiKey, err := promptModelAndKey(cmd, reader, domain.AIProviderCohere, domain.DefaultRerankModel)
	if err != nil {
		return err
	}
	if err := settingsService.SetRerankProvider(domain.AIProviderCohere, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure reranker: %w", err)
	}
	cmd.Printf("Reranker configured: %s (%s)\n", domain.AIProviderCohere.Description(), model)
	return nil
}

func promptModelAndKey(
	cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider, defaultModel string,
) (model, apiKey string, err error) {
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model = readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", errors.New("API key is required for this provider")
		}
	}
	return model, apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, otherwise a plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if reader == stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
