// Command notifier runs one notifier pass from the command line, for
// cron-style scheduling or manual inspection.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/config"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/container"
	"github.com/developersatisa/gestor-back-facturas-pendientes/pkg/utils"
)

var (
	configPath string
	cutoff     string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Send reminders for follow-up actions that have come due",
	Long: `Scans follow-up actions whose reminder date has elapsed and dispatches
their reminders through the configured channels. Actions already marked sent
are never re-selected, so repeated invocations are safe.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "path to the configuration file")
	rootCmd.Flags().StringVar(&cutoff, "fecha", "", "cutoff date YYYY-MM-DD (default: now)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list due actions without sending anything")
}

func run(cmd *cobra.Command, args []string) error {
	_ = gotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	now := time.Now()
	if cutoff != "" {
		// A date-only cutoff covers the whole day.
		day, err := time.ParseInLocation("2006-01-02", cutoff, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --fecha, expected YYYY-MM-DD: %w", err)
		}
		now = day.Add(24*time.Hour - time.Second)
	}

	app, err := container.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	ctx := context.Background()

	if dryRun {
		scan, err := app.Notifier().ListDue(ctx, now)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		logger.Info("Dry run: due actions listed, nothing sent",
			zap.Int("due", len(scan.Due)),
			zap.Int("skipped", len(scan.Skipped)))
		for _, action := range scan.Due {
			logger.Info("Due action",
				zap.Int64("id", action.ID),
				zap.String("tercero", action.Tercero),
				zap.String("invoice", action.InvoiceRef()),
				zap.String("kind", action.Kind))
		}
		return nil
	}

	summary, err := app.Notifier().RunOnce(ctx, now)
	if err != nil {
		return fmt.Errorf("notifier run failed: %w", err)
	}
	logger.Info("Notifier run complete",
		zap.Int("attempted", summary.Attempted),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
