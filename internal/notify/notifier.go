// Package notify defines the external notification surface for budget
// alerts. The core only guarantees a fully-formed alert is handed to
// the notifier once; presentation and delivery retries are the
// collaborator's concern.
package notify

import (
	"context"
	"log/slog"

	"expensealert/internal/core"
	"expensealert/internal/log"
)

// Notifier receives a budget alert for user-visible presentation.
type Notifier interface {
	Notify(ctx context.Context, alert core.BudgetAlert) error
}

// LogNotifier writes alerts to the structured log. It is the default
// backend when no AMQP transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, alert core.BudgetAlert) error {
	slog.WarnContext(ctx, alert.Message,
		log.FieldCategory, alert.Category,
		log.FieldTotal, alert.TotalSpent,
		log.FieldLimit, alert.Limit)
	return nil
}

// AlertPublisher is satisfied by the AMQP client.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert core.BudgetAlert) error
}

// AMQPNotifier forwards alerts to a message queue for an external
// presenter process to consume.
type AMQPNotifier struct {
	publisher AlertPublisher
}

func NewAMQPNotifier(publisher AlertPublisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: publisher}
}

func (n *AMQPNotifier) Notify(ctx context.Context, alert core.BudgetAlert) error {
	return n.publisher.PublishAlert(ctx, alert)
}
