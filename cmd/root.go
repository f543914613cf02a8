package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/shaharishay14/service-tracker/internal/config"
)

var (
	// Global flags (wired to config/viper)
	cfgFile string
	quiet   bool
	// HTTP/retry flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "service-tracker",
	Short: "Service Tracker: analyze roadside-assistance service requests",
	Long: `Service Tracker loads roadside-assistance service-request records,
computes descriptive statistics and key insights, and produces a downloadable
text report with an optional AI-generated narrative.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.service-tracker/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
}

func loadConfig() {
	// A local .env can carry the API key and Postgres credentials.
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
}

// activeConfig returns the loaded config, falling back to pure defaults when
// loading failed.
func activeConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DefaultModel:            "openai/gpt-4o-mini",
		MaxTokens:               2000,
		Temperature:             0.3,
		HTTPTimeoutSec:          60,
		RetryMaxAttempts:        3,
		RetryBaseDelayMs:        500,
		RetryMaxDelayMs:         4000,
		ProblematicRegionFactor: 1.2,
		ComplexIssueFactor:      1.1,
		DataFile:                "service_requests.json",
	}
}
