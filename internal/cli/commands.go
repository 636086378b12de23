package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"MarketFeed/internal/di"
	"MarketFeed/pkg/config"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// NewRootCmd creates the marketfeed root command.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "marketfeed",
		Short:         "MarketFeed - market data aggregation and economic alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `MarketFeed serves prices, company context, news and economic indicators
from FMP, Polygon, FRED and Yahoo Finance, and raises alerts on significant
moves in watched economic series.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Configuration file path")

	load := func() (*config.Config, error) {
		return config.LoadWithEnv(configPath)
	}

	rootCmd.AddCommand(newServeCmd(load))
	rootCmd.AddCommand(newDemoCmd(load))
	rootCmd.AddCommand(newEconomyCmd(load))
	return rootCmd
}

type configLoader func() (*config.Config, error)

// newServeCmd runs the HTTP API with the alert schedule.
func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, alert stream and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

// newDemoCmd walks through every market data operation for a few tickers.
func newDemoCmd(load configLoader) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "demo [TICKER...]",
		Short: "Print prices, context, fundamentals and history for tickers",
		Long: `Print a console walk-through of the market data operations.
Example: marketfeed demo AAPL MSFT --days 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			tk, err := di.InitializeToolkit(cfg)
			if err != nil {
				return fmt.Errorf("toolkit initialization failed: %w", err)
			}
			tickers := args
			if len(tickers) == 0 {
				tickers = []string{"AAPL", "MSFT"}
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), tk, tickers, days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 5, "Days of price history to show")
	return cmd
}

// newEconomyCmd prints the headline indicators and the watched series summary.
func newEconomyCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "economy",
		Short: "Print key economic indicators and the watched series summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			tk, err := di.InitializeToolkit(cfg)
			if err != nil {
				return fmt.Errorf("toolkit initialization failed: %w", err)
			}
			return runEconomy(cmd.Context(), cmd.OutOrStdout(), tk)
		},
	}
}

func runDemo(ctx context.Context, w io.Writer, tk *di.Toolkit, tickers []string, days int) error {
	fmt.Fprintln(w, Title(fmt.Sprintf("MarketFeed demo (%s provider)", tk.Provider.Name())))

	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		fmt.Fprintln(w, Title(t))

		if mc, err := tk.Provider.GetMarketContext(ctx, t); err == nil {
			fmt.Fprintln(w, Section("Market context", ContextRows(mc)))
		} else {
			fmt.Fprintf(w, "market context unavailable: %v\n", err)
		}

		if p, err := tk.MarketData.GetCompanyProfile(ctx, t); err == nil {
			fmt.Fprintln(w, Section("Profile", ProfileRows(p)))
		}
		if f, err := tk.MarketData.GetFinancialSummary(ctx, t); err == nil {
			fmt.Fprintln(w, Section("Financials", FinancialRows(f)))
		}
		if prices, err := tk.Provider.GetHistoricalPrices(ctx, t, days); err == nil && len(prices) > 0 {
			fmt.Fprintln(w, Section(fmt.Sprintf("Last %d days", days), HistoryRows(prices)))
		}
		if moved, err := tk.Provider.IsSignificantMove(ctx, t, 5, 1); err == nil && moved {
			fmt.Fprintf(w, "%s moved more than 5%% today\n", t)
		}
	}
	return nil
}

// runEconomy is a one-shot view; alert checks need a baseline from an earlier
// run, so they only happen under serve.
func runEconomy(ctx context.Context, w io.Writer, tk *di.Toolkit) error {
	if !tk.MarketData.FREDAvailable() {
		return fmt.Errorf("FRED is not configured: set FRED_API_KEY")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	fmt.Fprintln(w, Title("Key economic indicators"))
	fmt.Fprintln(w, Section("FRED", IndicatorRows(tk.MarketData.GetKeyEconomicIndicators(ctx))))

	if tk.Alerts.Enabled() {
		fmt.Fprintln(w, Section("Watched indicators", SummaryRows(tk.Alerts.Summary(ctx))))
	}
	return nil
}
