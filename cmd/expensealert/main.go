package main

import (
	"os"

	"expensealert/internal/amqp"
	"expensealert/internal/budget"
	"expensealert/internal/cli"
	"expensealert/internal/limits"
	"expensealert/internal/log"
	"expensealert/internal/notify"
	"expensealert/internal/services"
	"expensealert/internal/watch"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting expensealert")

	cfg := cli.LoadAndValidateConfig(logger)

	ledger := cli.InitLedger(logger, cfg.SQLiteDBPath)
	defer ledger.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// Sync budget limits from the external mapping before watching begins.
	mapping, err := limits.LoadFile(cfg.LimitsFile)
	if err != nil {
		logger.Error("Failed to load budget limits", log.FieldError, err, log.FieldPath, cfg.LimitsFile)
		os.Exit(1)
	}
	if err := ledger.UpsertLimits(ctx, mapping); err != nil {
		logger.Error("Failed to sync budget limits", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Budget limits loaded", log.FieldPath, cfg.LimitsFile, "categories", len(mapping))

	// Pick the alert notification surface.
	var notifier notify.Notifier
	switch cfg.NotifierBackend {
	case "amqp":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		notifier = notify.NewAMQPNotifier(client)
		logger.Info("Initialized AMQP notifier", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	default:
		notifier = notify.NewLogNotifier()
		logger.Info("Initialized log notifier")
	}

	processor := services.NewInvoiceProcessor(ledger, budget.NewEvaluator(ledger), notifier)

	pipeline := watch.NewPipeline(watch.Config{
		Dir:         cfg.WatchDir,
		Extension:   cfg.InvoiceExtension,
		SettleDelay: cfg.SettleDelay,
		QueueSize:   cfg.EventQueueSize,
	}, processor)

	logger.Info("Monitoring directory", log.FieldWatchDir, cfg.WatchDir)
	if err := pipeline.Run(ctx); err != nil {
		logger.Error("Watch pipeline failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("expensealert stopped gracefully")
}
