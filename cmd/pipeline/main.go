package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stock-advisor/internal/app"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/store"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

var (
	configPath string
	a          *app.App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Ingest market data and query the stock advisor offline",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if err := logger.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := trace.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
		}

		cfg, err := store.LoadOrDefault(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a, err = app.Build(cmd.Context(), cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(ctx)
		if a != nil {
			return a.Close()
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file path")

	fetchCmd.Flags().StringSlice("tickers", nil, "tickers to ingest (default: configured universe)")
	riskCmd.Flags().String("level", "LOW", "risk tier: LOW, MEDIUM or HIGH")
	riskCmd.Flags().Int("limit", 10, "maximum symbols to list")
	recommendCmd.Flags().Int("window", 0, "news window in days (default: configured)")
	journalCmd.Flags().String("day", "", "UTC day as YYYY-MM-DD (default: today)")
	journalCmd.Flags().Bool("csv", false, "write the per-symbol summary CSV instead of printing entries")

	rootCmd.AddCommand(fetchCmd, riskCmd, recommendCmd, journalCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch hourly bars and headlines into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers, _ := cmd.Flags().GetStringSlice("tickers")
		if len(tickers) == 0 {
			tickers = a.Config.Tickers
		}
		results, err := a.Pipeline.Run(cmd.Context(), tickers)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			status := "ok"
			if r.Err != nil {
				status = r.Err.Error()
				failed++
			}
			fmt.Printf("%-6s prices=%-4d news=%-4d %s\n", r.Symbol, r.Prices, r.News, status)
		}
		if failed == len(results) && failed > 0 {
			return fmt.Errorf("all %d tickers failed", failed)
		}
		return nil
	},
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Rank stored symbols by risk tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		limit, _ := cmd.Flags().GetInt("limit")
		tier, err := types.ParseRiskTier(level)
		if err != nil {
			return err
		}
		items, err := a.Risk.RecommendByLevel(cmd.Context(), tier, limit)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"level": tier, "items": items})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [symbol]",
	Short: "Compute a recommendation for one symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		window, _ := cmd.Flags().GetInt("window")
		if window == 0 {
			window = a.Config.Recommend.WindowDays
		}
		res, err := a.Recommender.Recommend(cmd.Context(), strings.ToUpper(args[0]), window)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recommendations served on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("day")
		day := time.Now().UTC()
		if raw != "" {
			var err error
			if day, err = time.Parse("2006-01-02", raw); err != nil {
				return fmt.Errorf("invalid --day: %w", err)
			}
		}
		if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
			path, err := a.Journal.Summarize(day)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Println("no recommendations recorded on", day.Format("2006-01-02"))
				return nil
			}
			fmt.Println("summary written:", path)
			return nil
		}
		entries, err := a.Journal.Read(day)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
