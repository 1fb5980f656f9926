package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/supersignal/internal/batch"
	"github.com/wonny/supersignal/internal/contracts"
	"github.com/wonny/supersignal/internal/render"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen [TICKER...]",
	Short: "Screen tickers for risk flags",
	Long: `Screen one or more tickers and print a risk report for each.

Tickers can be given as arguments or with -t, repeated or comma-separated.
Without any ticker the command prompts for symbols until a blank line.

Exit status is non-zero unless at least one report was produced and the
batch finished before --batch-timeout.

Example:
  go run ./cmd/supersignal screen -t AAPL -t BABA
  go run ./cmd/supersignal screen aapl,baba --format json
  go run ./cmd/supersignal screen -t NIO --batch-timeout 20s`,
	RunE: runScreen,
}

var (
	screenTickers      []string
	screenFormat       string
	screenWorkers      int
	screenConfigFile   string
	screenFetchTimeout time.Duration
	screenBatchTimeout time.Duration
	screenNoCache      bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringArrayVarP(&screenTickers, "ticker", "t", nil, "ticker symbol (repeatable, comma-separated)")
	screenCmd.Flags().StringVarP(&screenFormat, "format", "f", render.FormatText, "output format (text|json|csv)")
	screenCmd.Flags().IntVarP(&screenWorkers, "workers", "w", 0, "concurrent tickers (default SCREEN_WORKERS)")
	screenCmd.Flags().StringVarP(&screenConfigFile, "config", "c", "", "screening YAML with thresholds and source priority")
	screenCmd.Flags().DurationVar(&screenFetchTimeout, "fetch-timeout", 0, "per provider call timeout (default SCREEN_FETCH_TIMEOUT)")
	screenCmd.Flags().DurationVar(&screenBatchTimeout, "batch-timeout", 0, "whole batch timeout, 0 = none")
	screenCmd.Flags().BoolVar(&screenNoCache, "no-cache", false, "bypass the provider cache")
}

func runScreen(cmd *cobra.Command, args []string) error {
	formatter, err := render.New(screenFormat)
	if err != nil {
		return err
	}

	tickers := batch.NormalizeTickers(append(screenTickers, args...)...)
	if len(tickers) == 0 {
		tickers = batch.NormalizeTickers(promptTickers(cmd.InOrStdin(), cmd.ErrOrStderr())...)
	}
	if len(tickers) == 0 {
		return batch.ErrNoTickers
	}

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if screenWorkers > 0 {
		cfg.Screen.Workers = screenWorkers
	}
	if screenFetchTimeout > 0 {
		cfg.Screen.FetchTimeout = screenFetchTimeout
	}
	if screenBatchTimeout > 0 {
		cfg.Screen.BatchTimeout = screenBatchTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Wire providers, cache and coordinator
	a, err := newApp(ctx, cfg, appOptions{screenConfig: screenConfigFile, noCache: screenNoCache})
	if err != nil {
		return err
	}
	defer a.Close()

	// 3. Screen
	res, err := a.coordinator.Screen(ctx, tickers, a.screenCfg.Thresholds)
	if err != nil {
		return err
	}

	// 4. Report
	if err := formatter.Format(cmd.OutOrStdout(), res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return outcomeError(res)
}

// promptTickers reads symbols line by line until a blank line or EOF
func promptTickers(in io.Reader, out io.Writer) []string {
	var tickers []string
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Ticker (blank to finish): ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return tickers
		}
		line := sc.Text()
		if len(batch.NormalizeTickers(line)) == 0 {
			return tickers
		}
		tickers = append(tickers, line)
	}
}

// outcomeError turns a non-success batch into a non-zero exit
func outcomeError(res *contracts.BatchResult) error {
	switch res.Outcome {
	case contracts.OutcomeSuccess:
		return nil
	case contracts.OutcomeIncomplete:
		return fmt.Errorf("batch %s incomplete: timed out before every ticker finished", res.RunID)
	default:
		return fmt.Errorf("batch %s failed: no ticker produced a report", res.RunID)
	}
}
