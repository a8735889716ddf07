package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"modelmind/internal/service"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

func initConfiguration(cmd *cobra.Command, args []string) error {
	configPath := "modelmind.yaml"
	if len(args) > 0 {
		configPath = args[0]
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	dir := filepath.Dir(configPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := configMgr.CreateSampleConfig(configPath); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Printf("✅ Configuration file created at %s\n", configPath)
	fmt.Println("\n📝 API keys are read from the environment or a .env file:")
	fmt.Println("  - OpenAI:       OPENAI_API_KEY")
	fmt.Println("  - Google:       GOOGLE_API_KEY")
	fmt.Println("  - Groq:         GROQ_API_KEY")
	fmt.Println("  - Hugging Face: HUGGINGFACE_API_KEY")
	fmt.Println("  - DeepSeek:     DEEPSEEK_API_KEY")
	fmt.Println("\nA provider entry may also set api_key and base_url directly.")

	return nil
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage ModelMind configuration files and settings.`,
	}

	initConfigCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new configuration file listing the built-in model catalog.
If no path is provided, creates modelmind.yaml in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initConfiguration,
	}

	showConfigCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the current configuration settings and which providers have an API key.`,
		RunE:  showConfig,
	}

	validateConfigCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  `Validate the current configuration file for errors.`,
		RunE:  validateConfig,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initConfigCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(validateConfigCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	config := configMgr.GetConfig()
	if config == nil {
		return fmt.Errorf("no configuration loaded")
	}

	fmt.Println("Current Configuration:")
	fmt.Println("=====================")

	fmt.Printf("Temperature: %.1f\n", config.Compare.Temperature)
	fmt.Printf("Concurrency: %d\n", config.Compare.Concurrency)
	fmt.Printf("Timeout: %s\n", config.Compare.Timeout)
	fmt.Printf("Assist provider: %s\n", orDefault(config.Assist.Provider, "first available"))
	fmt.Printf("Server address: %s\n", config.Server.Address)

	fmt.Println("\nProviders:")
	table := uitable.New()
	table.AddRow("#", "NAME", "KIND", "MODEL", "API KEY", "AVAILABLE")
	for i, p := range config.Compare.Providers {
		available := "no"
		if p.Available() {
			available = "yes"
		}
		table.AddRow(i+1, p.Name, p.Kind, p.Model, maskAPIKey(p.Credential), available)
	}
	fmt.Println(table)

	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	config := configMgr.GetConfig()
	if config == nil {
		return fmt.Errorf("no configuration loaded")
	}

	available := service.AvailableProviders(config.Compare.Providers)

	fmt.Println("✅ Configuration is valid")
	fmt.Printf("Found %d provider(s) configured, %d with an API key\n", len(config.Compare.Providers), len(available))
	if len(available) == 0 {
		fmt.Println("⚠️  No provider can be used until an API key is set.")
	}

	return nil
}

func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
