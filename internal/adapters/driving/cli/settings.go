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

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking and retrieval options.

Use subcommands to configure a single provider or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping providers",
	Long: `Validate the stored settings, then contact the embedding and LLM
providers to confirm they are reachable.`,
	RunE: runSettingsCheck,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding, LLM and OCR providers.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider that embeds chunks and questions.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderSetting(cmd, embeddingRole)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the language model that answers questions.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderSetting(cmd, llmRole)
	},
}

var settingsOCRCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Configure OCR provider",
	Long:  `Configure the engine that reads text from question images and image uploads.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProviderSetting(cmd, ocrRole)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsOCRCmd)
	rootCmd.AddCommand(settingsCmd)
}

// providerRole describes one configurable provider binding.
type providerRole struct {
	title     string
	providers func() []domain.AIProvider
	defaults  func() map[domain.AIProvider]string
	set       func(p domain.AIProvider, model, apiKey string) error
	validate  func() error
}

var (
	embeddingRole = providerRole{
		title:     "Embedding",
		providers: domain.AllEmbeddingProviders,
		defaults:  domain.DefaultEmbeddingModels,
		set: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetEmbeddingProvider(p, model, apiKey)
		},
		validate: func() error { return settingsService.ValidateEmbeddingConfig() },
	}
	llmRole = providerRole{
		title:     "LLM",
		providers: domain.AllLLMProviders,
		defaults:  domain.DefaultLLMModels,
		set: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetLLMProvider(p, model, apiKey)
		},
		validate: func() error { return settingsService.ValidateLLMConfig() },
	}
	ocrRole = providerRole{
		title:     "OCR",
		providers: domain.AllOCRProviders,
		defaults:  domain.DefaultOCRModels,
		set: func(p domain.AIProvider, model, apiKey string) error {
			return settingsService.SetOCRProvider(p, model, apiKey)
		},
	}
)

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[General]")
	cmd.Printf("  Data directory: %s\n", settings.DataDir)
	cmd.Printf("  Server address: %s\n", settings.ServerAddr)
	cmd.Printf("  Session store: %s\n", settings.SessionStore)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d (overlap %d)\n", settings.Chunking.Size, settings.Chunking.Overlap)
	cmd.Printf("  PDF window: %d (overlap %d)\n", settings.Chunking.PDFSize, settings.Chunking.PDFOverlap)
	if len(settings.Pipeline.Processors) > 0 {
		cmd.Printf("  Processors: %s\n", strings.Join(settings.Pipeline.Processors, ", "))
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Max chunks: %d\n", settings.MaxChunks)
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding, settings.Timeouts.Embedding.String())
	if settings.EmbeddingRPS > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.EmbeddingRPS)
	}
	cmd.Println()
	printProvider(cmd, "LLM", settings.LLM, settings.Timeouts.LLM.String())
	cmd.Println()
	printProvider(cmd, "OCR", settings.OCR, settings.Timeouts.OCR.String())
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docqa settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, title string, p domain.ProviderSettings, timeout string) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", p.Provider.Description())
	if p.Model != "" {
		cmd.Printf("  Model: %s\n", p.Model)
	}
	if p.Provider == domain.AIProviderOllama && p.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", p.BaseURL)
	}
	if p.Provider.RequiresAPIKey() {
		if p.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(p.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Timeout: %s\n", timeout)
	status := "configured"
	if !p.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Settings: OK")

	var failed []error
	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, err)
	} else {
		cmd.Println("OK")
	}

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = append(failed, err)
	} else {
		cmd.Println("OK")
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d provider check(s) failed", len(failed))
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	cmd.Println("docqa Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	steps := []providerRole{embeddingRole, llmRole, ocrRole}
	for i, role := range steps {
		heading := fmt.Sprintf("Step %d: Configure %s Provider", i+1, role.title)
		cmd.Println(heading)
		cmd.Println(strings.Repeat("-", len(heading)))
		if err := configureProvider(cmd, reader, role); err != nil {
			return err
		}
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runProviderSetting(cmd *cobra.Command, role providerRole) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), role)
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, role providerRole) error {
	cmd.Printf("Select %s Provider\n", role.title)
	providers := role.providers()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := role.defaults()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := role.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", strings.ToLower(role.title), err)
	}

	if role.validate != nil {
		cmd.Print("Validating configuration... ")
		if err := role.validate(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("%s configuration validation failed: %w", strings.ToLower(role.title), err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("%s provider configured: %s (%s)\n\n", role.title, selected.Description(), model)
	return nil
}

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

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
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
