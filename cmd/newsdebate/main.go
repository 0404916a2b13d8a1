package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsDebate/internal/app"
	"NewsDebate/internal/config"
	"NewsDebate/internal/logging"
)

var (
	batchSize    int
	batchWorkers int
	drainMode    bool
	nextOnly     bool
	migrateFirst bool
)

var rootCmd = &cobra.Command{
	Use:           "newsdebate",
	Short:         "Runs multi-agent debates over stored news articles",
	Long:          `Claims pending articles, debates each one with an LLM engine and stores the resulting synthesis and verdict.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one batch of pending articles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			if nextOnly {
				outcome, err := a.Pipeline().ProcessNext(ctx)
				if err != nil {
					return err
				}
				if outcome == nil {
					fmt.Println("No articles to process")
					return nil
				}
				return printJSON(outcome)
			}
			result, err := a.Run(ctx, batchSize, batchWorkers, drainMode)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var resetStuckCmd = &cobra.Command{
	Use:   "reset-stuck",
	Short: "Return articles left in processing to the backlog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			n, err := a.Articles().ResetStuck(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Reset %d articles\n", n)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show article counts per status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			stats, err := a.Articles().Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(stats)
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled batches and the admin HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			if migrateFirst {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
			}
			return a.Serve(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.Migrate(ctx)
		})
	},
}

func init() {
	processCmd.Flags().IntVar(&batchSize, "size", 0, "Articles per batch (defaults to batch.size)")
	processCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Concurrent batches when draining (defaults to batch.workers)")
	processCmd.Flags().BoolVar(&drainMode, "drain", false, "Keep processing until the backlog is empty")
	processCmd.Flags().BoolVar(&nextOnly, "next", false, "Process a single article")
	processCmd.MarkFlagsMutuallyExclusive("drain", "next")

	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "Ensure the schema before serving")

	rootCmd.AddCommand(processCmd, resetStuckCmd, statsCmd, serveCmd, migrateCmd)
}

func withApp(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	return fn(ctx, application)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
