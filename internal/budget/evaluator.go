// Package budget decides whether a category's cumulative spend has
// exceeded its configured limit.
package budget

import (
	"context"
	"fmt"

	"expensealert/internal/core"
)

// Ledger is the read-only aggregation surface the evaluator needs.
type Ledger interface {
	TotalSpent(ctx context.Context, category string) (*float64, error)
	LimitFor(ctx context.Context, category string) (*float64, error)
}

type Evaluator struct {
	ledger Ledger
}

func NewEvaluator(ledger Ledger) *Evaluator {
	return &Evaluator{ledger: ledger}
}

// Evaluate compares the category's total spend against its limit and
// returns an alert when the total strictly exceeds the limit. A missing
// total or missing limit yields no alert: absence of a limit is not an
// alertable condition. Read-only; the ledger is never mutated.
func (e *Evaluator) Evaluate(ctx context.Context, category string) (*core.BudgetAlert, error) {
	total, err := e.ledger.TotalSpent(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", category, err)
	}
	if total == nil {
		return nil, nil
	}

	limit, err := e.ledger.LimitFor(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", category, err)
	}
	if limit == nil {
		return nil, nil
	}

	if *total > *limit {
		alert := core.NewBudgetAlert(category, *total, *limit)
		return &alert, nil
	}
	return nil, nil
}
