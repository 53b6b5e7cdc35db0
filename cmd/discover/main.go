package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rawhoneyguide/honeyscout/internal/config"
	"github.com/rawhoneyguide/honeyscout/internal/logging"
	"github.com/rawhoneyguide/honeyscout/internal/metrics"
	"github.com/rawhoneyguide/honeyscout/internal/report"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "discover and validate without inserting rows or sending email; the report is written to stdout")
	migrate := flag.Bool("migrate", false, "apply embedded schema migrations before the run")
	once := flag.Bool("once", false, "run once and exit even when DISCOVERY_SCHEDULE is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOut := os.Stdout
	if *dryRun {
		logOut = os.Stderr
	}
	logger, err := logging.NewWithWriter(cfg.Logging, logOut)
	if err != nil {
		logging.Bootstrap().Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	var sender report.Sender = report.NewMailer(report.MailerConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Password: cfg.Mail.Password,
	}, logger)
	if *dryRun {
		sender = report.NewWriterSender(os.Stdout)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		sender:  sender,
		dryRun:  *dryRun,
		migrate: *migrate || cfg.Database.Migrate,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if cfg.Schedule != "" && !*once {
		err = a.serve(ctx)
	} else {
		err = a.runOnce(ctx)
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}
