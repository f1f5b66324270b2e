package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"MoverScan/internal/di"
	"MoverScan/internal/domain/models"
	"MoverScan/pkg/config"
)

// Exit codes for the scan command, so shell pipelines can tell "movers
// found" from "clean scan, nothing moving" from "scan broke".
const (
	exitMovers  = 0
	exitFailure = 1
	exitEmpty   = 2
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "moverscan",
		Short:         "Pre-market mover discovery engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "path to config file")

	root.AddCommand(newScanCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitFailure)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and scheduled scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			return app.Run()
		},
	}
}

func newScanCmd() *cobra.Command {
	var (
		universeName string
		minChange    float64
		minRVOL      float64
		requireRVOL  bool
		maxSpread    float64
		positiveOnly bool
		maxResults   int
		timeout      time.Duration
		jsonOut      bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan pass and print the movers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnv(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dryRun {
				// Rank and print only; nothing reaches the sinks.
				cfg.Sinks.Kafka.Enabled = false
				cfg.Sinks.ClickHouse.Enabled = false
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer app.Shutdown()

			policy := app.Policy()
			if cmd.Flags().Changed("min-change-percent") {
				sanitized, ok := config.SanitizeMinChange(minChange)
				if !ok {
					fmt.Fprintf(os.Stderr, "min-change-percent %.1f outside [%.0f, %.0f], using %.0f\n",
						minChange, config.MinChangeFloor, config.MinChangeCeil, sanitized)
				}
				policy.MinAbsChangePercent = sanitized
			}
			if cmd.Flags().Changed("min-relative-volume") {
				policy.MinRelativeVolume = minRVOL
			}
			if cmd.Flags().Changed("require-relative-volume") {
				policy.RequireRelativeVolume = requireRVOL
			}
			if cmd.Flags().Changed("max-spread-percent") {
				policy.MaxSpreadPercent = maxSpread
			}
			if cmd.Flags().Changed("positive-only") {
				policy.PositiveOnly = positiveOnly
			}
			if cmd.Flags().Changed("max-results") {
				policy.MaxResults = maxResults
			}
			if timeout <= 0 {
				timeout = cfg.Scan.Timeout
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := app.ScanOnce(ctx, universeName, &policy)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printResult(result)
			}

			if len(result.Candidates) == 0 {
				os.Exit(exitEmpty)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&universeName, "universe", "u", "", "universe name (default from config)")
	cmd.Flags().Float64Var(&minChange, "min-change-percent", config.DefaultMinChange, "minimum absolute change percent (5-20)")
	cmd.Flags().Float64Var(&minRVOL, "min-relative-volume", 0, "minimum relative volume ratio")
	cmd.Flags().BoolVar(&requireRVOL, "require-relative-volume", false, "reject symbols whose RVOL cannot be computed")
	cmd.Flags().Float64Var(&maxSpread, "max-spread-percent", 0, "maximum bid/ask spread percent (0 = no cap)")
	cmd.Flags().BoolVar(&positiveOnly, "positive-only", true, "gainers only; false includes losers")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "truncate output to N movers (0 = config default)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "scan deadline (0 = config default)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the full result as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan and print without emitting to sinks")

	return cmd
}

func printResult(result *models.ScanResult) {
	r := result.Report
	fmt.Printf("universe=%s scanned=%d fetched=%d failed=%d filtered=%d complete=%t duration=%s\n",
		r.Universe, r.Scanned, r.Fetched, r.FailedFetches, r.Filtered, r.Complete, r.Duration.Round(time.Millisecond))
	if result.Market != nil {
		fmt.Printf("market: sentiment=%s quality=%s\n", result.Market.Sentiment, result.Market.Quality)
	}
	if len(result.Candidates) == 0 {
		fmt.Println("no movers matched the policy")
		return
	}

	fmt.Printf("%-4s %-8s %10s %8s %8s %8s %10s  %s\n", "RANK", "SYMBOL", "PRICE", "CHG%", "RVOL", "VOL", "VWAP", "HEADLINE")
	for _, c := range result.Candidates {
		fmt.Printf("%-4d %-8s %10s %8s %8s %8s %10s  %s\n",
			c.Rank,
			c.Snapshot.Symbol,
			fmtFloat(c.Snapshot.ActivePrice(), "%.2f"),
			fmtFloat(c.Metrics.ChangePercent, "%+.1f"),
			fmtFloat(c.Metrics.RelativeVolumeRatio, "%.1fx"),
			fmtVolume(c.Snapshot.ActiveVolume()),
			fmtFloat(c.Metrics.VWAP, "%.2f"),
			truncate(c.NewsHeadline, 60),
		)
	}
}

func fmtFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func fmtVolume(v int64) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(v)/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
