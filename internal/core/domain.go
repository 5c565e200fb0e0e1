package core

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCategory is the bucket invoices fall into when the source
// document carries no usable category.
const DefaultCategory = "Miscellaneous"

type (
	// Invoice is one normalized expense record extracted from a source
	// document. Immutable after creation; only the category may be
	// rewritten later, through the ledger's Recategorize operation.
	Invoice struct {
		ExternalID string
		Date       string
		Amount     float64
		Category   string
	}

	// CategoryLimit is the maximum allowed cumulative spend for a
	// category. Upserted as a whole unit, last write wins.
	CategoryLimit struct {
		Category string
		Limit    float64
	}

	// BudgetAlert is produced when a category's cumulative spend
	// exceeds its configured limit. Transient, never persisted.
	BudgetAlert struct {
		Category   string
		TotalSpent float64
		Limit      float64
		Message    string
	}
)

var (
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyCategory  = errors.New("empty category")
)

// NormalizeCategory maps absent or blank categories to DefaultCategory.
func NormalizeCategory(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultCategory
	}
	return s
}

func (inv Invoice) Validate() error {
	if inv.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(inv.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (cl CategoryLimit) Validate() error {
	if strings.TrimSpace(cl.Category) == "" {
		return ErrEmptyCategory
	}
	if cl.Limit < 0 {
		return fmt.Errorf("category %q: negative limit", cl.Category)
	}
	return nil
}

// NewBudgetAlert builds an alert with both figures formatted to two
// decimal places in the message.
func NewBudgetAlert(category string, totalSpent, limit float64) BudgetAlert {
	return BudgetAlert{
		Category:   category,
		TotalSpent: totalSpent,
		Limit:      limit,
		Message: fmt.Sprintf(
			"ALERT: Total spending in category '%s' (%.2f) exceeds the budget limit of %.2f.",
			category, totalSpent, limit),
	}
}
