package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/synctech/synctech/internal/budget"
	"github.com/synctech/synctech/internal/config"
	"github.com/synctech/synctech/internal/db"
	"github.com/synctech/synctech/internal/finance"
	"github.com/synctech/synctech/internal/server"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the SyncTech API server",
		Long: `Starts the REST API and the background finance sweep that marks
overdue installments and expires stale budgets on the configured schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "synctech.yaml", "path to SyncTech config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the configured listen port")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	go runFinanceSweep(ctx, gormDB, cfg.Finance.OverdueSweep)

	return server.Start(ctx, server.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  out,
	})
}

// runFinanceSweep fires the overdue/expiry sweep on the cron schedule until
// ctx is cancelled. One sweep runs immediately at startup so a restart never
// leaves stale statuses waiting for the next scheduled fire.
func runFinanceSweep(ctx context.Context, gormDB *gorm.DB, expr string) {
	sweep := func() {
		now := time.Now()
		if n, err := finance.MarkOverdue(gormDB, now); err != nil {
			log.Printf("sweep: mark overdue: %v", err)
		} else if n > 0 {
			log.Printf("sweep: marked %d entries overdue", n)
		}
		if n, err := budget.ExpireStale(gormDB, now); err != nil {
			log.Printf("sweep: expire budgets: %v", err)
		} else if n > 0 {
			log.Printf("sweep: expired %d budgets", n)
		}
	}

	sweep()

	timer := time.NewTimer(nextSweepDuration(expr))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			sweep()
			timer.Reset(nextSweepDuration(expr))
		}
	}
}

// nextSweepDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Falls back to an hourly cadence on parse error so
// a bad expression degrades instead of disabling the sweep.
func nextSweepDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		log.Printf("sweep: bad cron expression %q: %v", expr, err)
		return time.Hour
	}
	d := time.Until(sched.Next(time.Now()))
	if d <= 0 {
		return time.Minute
	}
	return d
}
