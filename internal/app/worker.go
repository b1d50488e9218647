package app

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"bilca_backend/internal/logger"
	"bilca_backend/internal/tracing"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the review reminder scheduler",
	Long:  `Run the review reminder job on its cron schedule until interrupted`,
	RunE:  runWorker,
}

var remindOnce bool

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send due review reminders",
	Long:  `Run the review reminder job. With --once (the default) a single pass runs and its summary is printed.`,
	RunE:  runRemind,
}

func init() {
	remindCmd.Flags().BoolVar(&remindOnce, "once", true, "run a single pass and exit")
	rootCmd.AddCommand(workerCmd, remindCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Reminder.Enabled {
		logger.Warn("Review reminders are disabled (reminder.enabled=false)")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName, cfg.Server.Env)
	if err != nil {
		logger.Warn("Failed to initialize tracing, continuing without it", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	application, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	g, ctx := errgroup.WithContext(ctx)
	worker := application.ReminderWorker()
	g.Go(func() error {
		return worker.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		return err
	}
	logger.Info("Worker shutting down gracefully")
	return nil
}

func runRemind(cmd *cobra.Command, args []string) error {
	if !remindOnce {
		return runWorker(cmd, args)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	summary, err := application.ReminderWorker().RunOnce(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
