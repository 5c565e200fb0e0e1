// Package services orchestrates the per-event pipeline body: parse one
// invoice document, append it to the ledger, evaluate the category
// budget, and surface any alert.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"expensealert/internal/budget"
	"expensealert/internal/core"
	"expensealert/internal/log"
	"expensealert/internal/notify"
	"expensealert/internal/parser"
)

// Appender is the write side of the ledger the processor needs.
type Appender interface {
	Append(ctx context.Context, inv core.Invoice) (int64, error)
}

// InvoiceProcessor handles one detected invoice file end to end.
type InvoiceProcessor struct {
	ledger    Appender
	evaluator *budget.Evaluator
	notifier  notify.Notifier
}

func NewInvoiceProcessor(ledger Appender, evaluator *budget.Evaluator, notifier notify.Notifier) *InvoiceProcessor {
	return &InvoiceProcessor{
		ledger:    ledger,
		evaluator: evaluator,
		notifier:  notifier,
	}
}

// ProcessFile runs parse, append, evaluate and notify for one file.
//
// A parse failure drops the event: the error is returned for logging
// but nothing is written. An append failure leaves the event with no
// side effects at all; evaluation only runs once the record is stored,
// so an alert can never be raised from a sum the append is missing
// from. Notification failures are logged and not retried.
func (p *InvoiceProcessor) ProcessFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &core.ParseError{Path: path, Reason: "read file", Err: err}
	}

	inv, err := parser.Parse(raw)
	if err != nil {
		var pe *core.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return err
	}

	id, err := p.ledger.Append(ctx, inv)
	if err != nil {
		return fmt.Errorf("append invoice from %s: %w", path, err)
	}

	slog.InfoContext(ctx, "Invoice processed",
		log.FieldRecordID, id,
		log.FieldInvoiceID, inv.ExternalID,
		log.FieldCategory, inv.Category,
		log.FieldAmount, inv.Amount,
		log.FieldPath, path)

	alert, err := p.evaluator.Evaluate(ctx, inv.Category)
	if err != nil {
		return fmt.Errorf("evaluate budget for %q: %w", inv.Category, err)
	}
	if alert == nil {
		return nil
	}

	if err := p.notifier.Notify(ctx, *alert); err != nil {
		slog.ErrorContext(ctx, "Failed to deliver budget alert",
			log.FieldError, err,
			log.FieldCategory, alert.Category)
	}
	return nil
}
