package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"expensealert/internal/budget"
	"expensealert/internal/core"
)

// memLedger is an in-memory stand-in for the SQLite ledger.
type memLedger struct {
	records   []core.Invoice
	limits    map[string]float64
	appendErr error
	reads     int
}

func (m *memLedger) Append(ctx context.Context, inv core.Invoice) (int64, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	m.records = append(m.records, inv)
	return int64(len(m.records)), nil
}

func (m *memLedger) TotalSpent(ctx context.Context, category string) (*float64, error) {
	m.reads++
	var total float64
	found := false
	for _, r := range m.records {
		if r.Category == category {
			total += r.Amount
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return &total, nil
}

func (m *memLedger) LimitFor(ctx context.Context, category string) (*float64, error) {
	if limit, ok := m.limits[category]; ok {
		return &limit, nil
	}
	return nil, nil
}

type recordingNotifier struct {
	alerts []core.BudgetAlert
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, alert core.BudgetAlert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

func writeInvoice(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProcessor(ledger *memLedger, notifier *recordingNotifier) *InvoiceProcessor {
	return NewInvoiceProcessor(ledger, budget.NewEvaluator(ledger), notifier)
}

func TestProcessFileAppendsAndAlerts(t *testing.T) {
	ledger := &memLedger{
		records: []core.Invoice{{ExternalID: "old", Amount: 70, Category: "Food"}},
		limits:  map[string]float64{"Food": 100},
	}
	notifier := &recordingNotifier{}
	proc := newProcessor(ledger, notifier)

	path := writeInvoice(t, `<invoice><id>INV-9</id><date>2026-03-01</date><amount>40</amount><category>Food</category></invoice>`)
	if err := proc.ProcessFile(context.Background(), path); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if len(ledger.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(ledger.records))
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.alerts))
	}
	if notifier.alerts[0].TotalSpent != 110 || notifier.alerts[0].Limit != 100 {
		t.Fatalf("unexpected alert: %+v", notifier.alerts[0])
	}
}

func TestProcessFileUnderLimitNoAlert(t *testing.T) {
	ledger := &memLedger{limits: map[string]float64{"Food": 100}}
	notifier := &recordingNotifier{}
	proc := newProcessor(ledger, notifier)

	path := writeInvoice(t, `<invoice><amount>40</amount><category>Food</category></invoice>`)
	if err := proc.ProcessFile(context.Background(), path); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(notifier.alerts))
	}
}

func TestProcessFileParseFailureDropsEvent(t *testing.T) {
	ledger := &memLedger{}
	proc := newProcessor(ledger, &recordingNotifier{})

	path := writeInvoice(t, "not markup at all")
	err := proc.ProcessFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *core.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *core.ParseError, got %T", err)
	}
	if pe.Path != path {
		t.Fatalf("parse error should carry the file path, got %q", pe.Path)
	}
	if len(ledger.records) != 0 {
		t.Fatal("parse failure must not write to the ledger")
	}
}

func TestProcessFileMissingFile(t *testing.T) {
	proc := newProcessor(&memLedger{}, &recordingNotifier{})

	err := proc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "gone.xml"))
	var pe *core.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *core.ParseError, got %v", err)
	}
}

func TestProcessFileAppendFailureSkipsEvaluation(t *testing.T) {
	ledger := &memLedger{appendErr: errors.New("disk full"), limits: map[string]float64{"Food": 1}}
	notifier := &recordingNotifier{}
	proc := newProcessor(ledger, notifier)

	path := writeInvoice(t, `<invoice><amount>40</amount><category>Food</category></invoice>`)
	if err := proc.ProcessFile(context.Background(), path); err == nil {
		t.Fatal("expected storage error")
	}
	if ledger.reads != 0 {
		t.Fatal("evaluation must not run when the append failed")
	}
	if len(notifier.alerts) != 0 {
		t.Fatal("no alert may fire for an unapplied append")
	}
}

func TestProcessFileNotifyFailureIsNotFatal(t *testing.T) {
	ledger := &memLedger{limits: map[string]float64{"Food": 10}}
	notifier := &recordingNotifier{err: errors.New("queue down")}
	proc := newProcessor(ledger, notifier)

	path := writeInvoice(t, `<invoice><amount>40</amount><category>Food</category></invoice>`)
	if err := proc.ProcessFile(context.Background(), path); err != nil {
		t.Fatalf("notify failure must not fail the event, got %v", err)
	}
}
