// Package worker presents consumed budget alerts to the operator.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"expensealert/internal/amqp"
	"expensealert/internal/log"
)

// AlertWorker is the consuming end of the alert queue: it renders each
// alert on the given writer and keeps simple delivery counters.
type AlertWorker struct {
	out io.Writer

	mu       sync.Mutex
	received int64
}

func NewAlertWorker(out io.Writer) *AlertWorker {
	return &AlertWorker{out: out}
}

// HandleAlert processes a single budget alert message from the queue.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if _, err := fmt.Fprintln(w.out, msg.Message); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}

	w.mu.Lock()
	w.received++
	count := w.received
	w.mu.Unlock()

	slog.InfoContext(ctx, "Budget alert presented",
		log.FieldCategory, msg.Category,
		log.FieldTotal, msg.TotalSpent,
		log.FieldLimit, msg.Limit,
		"sent_at", msg.Timestamp,
		"received_total", count)

	return nil
}

// Received reports how many alerts this worker has presented.
func (w *AlertWorker) Received() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.received
}
