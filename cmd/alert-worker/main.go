package main

import (
	"context"
	"errors"
	"os"

	"expensealert/internal/amqp"
	"expensealert/internal/cli"
	"expensealert/internal/log"
	"expensealert/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting alert-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// This process is the user-facing end of the notification pipeline:
	// alerts are rendered on the console.
	alertWorker := worker.NewAlertWorker(os.Stdout)

	err = client.ConsumeAlerts(ctx, func(msg *amqp.BudgetAlertMessage) error {
		return alertWorker.HandleAlert(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("alert-worker stopped gracefully", "alerts_presented", alertWorker.Received())
}
