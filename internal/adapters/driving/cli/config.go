package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change pilah configuration.

Settings live in config.toml under the config directory. Environment
variables such as GEMINI_API_KEY and PILAH_STREAM_URL override stored values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting by its dotted key.

Examples:
  pilah config set camera.stream_url http://192.168.4.102:81/stream
  pilah config set serial.port /dev/ttyUSB0
  pilah config set llm.provider ollama`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the AI providers are reachable",
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func settingsService() (driving.SettingsService, error) {
	b, err := backend()
	if err != nil {
		return nil, err
	}
	svc := b.SettingsService()
	if svc == nil {
		return nil, errors.New("settings service not configured")
	}
	return svc, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Camera]")
	cmd.Printf("  Backend: %s\n", settings.Camera.Backend)
	cmd.Printf("  Stream URL: %s\n", settings.Camera.StreamURL)
	cmd.Printf("  Frame: %dx%d\n", settings.Camera.Width, settings.Camera.Height)
	cmd.Printf("  Brightness: alpha %.2f, beta %.0f\n", settings.Preprocess.Alpha, settings.Preprocess.Beta)
	cmd.Println()

	cmd.Println("[Detector]")
	cmd.Printf("  Endpoint: %s\n", settings.Detector.Endpoint)
	cmd.Printf("  Model: %s\n", settings.Detector.Model)
	cmd.Printf("  Confidence: %.2f\n", settings.Detector.Confidence)
	cmd.Printf("  Selection: %s\n", settings.Detector.Selection)
	cmd.Printf("  Classes: %s\n", strings.Join(settings.Detector.Classes, ", "))
	cmd.Printf("  Timeout: %s\n", settings.Detector.Timeout)
	cmd.Println()

	cmd.Println("[Serial]")
	cmd.Printf("  Backend: %s\n", settings.Serial.Backend)
	cmd.Printf("  Port: %s\n", settings.Serial.Port)
	cmd.Printf("  Baud: %d\n", settings.Serial.Baud)
	cmd.Println()

	cmd.Println("[Display]")
	cmd.Printf("  Backend: %s\n", settings.Display.Backend)
	cmd.Printf("  Address: %s\n", settings.Display.Addr)
	cmd.Printf("  Title: %s\n", settings.Display.Title)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", settings.Store.Driver)
	if settings.Store.DSN != "" {
		cmd.Printf("  DSN: %s\n", maskAPIKey(settings.Store.DSN))
	}
	cmd.Printf("  Data dir: %s\n", settings.Store.DataDir)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Dir: %s\n", settings.Index.Dir)
	cmd.Printf("  Mode: %s\n", settings.Index.Mode)
	cmd.Printf("  Top K: %d\n", settings.Index.TopK)
	cmd.Printf("  Min similarity: %.2f\n", settings.Index.MinSimilarity)
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Requests per minute: %d\n", settings.LLM.RequestsPerMinute)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.BaseURL,
		settings.Embedding.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Watch: %s\n", yesNo(settings.Server.Watch))
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pilah config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() || baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") || key == "store.dsn" {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	var failed bool

	cmd.Print("Validating embedding provider... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	cmd.Print("Validating LLM provider... ")
	if err := svc.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	if failed {
		return errors.New("provider validation failed")
	}
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
