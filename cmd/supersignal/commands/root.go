package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/supersignal/pkg/config"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	env       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "supersignal",
	Short: "Security risk screener",
	Long: `supersignal - security risk screener

Fetches company data from Yahoo Finance and FinViz, merges it into one
record per ticker and flags jurisdiction, ADR and float risks.

Usage:
  go run ./cmd/supersignal [command]

Examples:
  go run ./cmd/supersignal screen -t AAPL -t BABA
  go run ./cmd/supersignal screen -t aapl,baba --format csv
  go run ./cmd/supersignal serve
  go run ./cmd/supersignal thresholds`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error), overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json|console), overrides LOG_FORMAT")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
}

// loadConfig reads the environment and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if env != "" {
		cfg.Env = env
	}
	return cfg, nil
}
