package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/supersignal/internal/risk"
	"github.com/wonny/supersignal/internal/screenconfig"
)

// thresholdsCmd represents the thresholds command
var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show the effective screening configuration",
	Long: `Validate a screening file and print the effective thresholds,
source priority, rule catalogue and config hash.

Example:
  go run ./cmd/supersignal thresholds
  go run ./cmd/supersignal thresholds -c config/screen.example.yaml`,
	RunE: runThresholds,
}

var thresholdsConfigFile string

func init() {
	rootCmd.AddCommand(thresholdsCmd)

	thresholdsCmd.Flags().StringVarP(&thresholdsConfigFile, "config", "c", "", "screening YAML (default SCREEN_CONFIG_FILE)")
}

func runThresholds(cmd *cobra.Command, args []string) error {
	path := thresholdsConfigFile
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Screen.ConfigFile
	}

	sc, _, err := screenconfig.Load(path)
	if err != nil {
		return err
	}
	hash, err := screenconfig.Hash(sc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}

	PrintDoubleSeparator(out)
	fmt.Fprintf(out, "  Screening config\n")
	PrintSeparator(out)
	PrintKeyValue(out, "Source", sourceLabel(path), 8)
	PrintKeyValue(out, "Hash", hash, 8)
	PrintSeparator(out)
	fmt.Fprint(out, string(data))
	PrintSeparator(out)

	rules := risk.DefaultRules()
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{fmt.Sprintf("%d", i+1), string(r.Kind), r.Severity.String()}
	}
	PrintTable(out, []string{"#", "Rule", "Severity"}, []int{2, 24, 8}, rows)
	return nil
}

func sourceLabel(path string) string {
	if path == "" {
		return "built-in defaults"
	}
	return path
}
