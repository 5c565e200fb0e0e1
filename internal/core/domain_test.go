package core

import (
	"strings"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Food", "Food"},
		{"", DefaultCategory},
		{"   ", DefaultCategory},
		{"\t\n", DefaultCategory},
		{" Utilities", " Utilities"}, // non-blank input passes through untouched
	}
	for i, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Fatalf("case %d: NormalizeCategory(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestInvoiceValidate(t *testing.T) {
	good := Invoice{ExternalID: "INV-1", Date: "2026-01-15", Amount: 12.5, Category: "Food"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Invoice{Amount: 0, Category: "Food"}).Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	bads := []Invoice{
		{Amount: -1, Category: "Food"},
		{Amount: 10, Category: ""},
		{Amount: 10, Category: "   "},
	}
	for i, inv := range bads {
		if err := inv.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryLimitValidate(t *testing.T) {
	if err := (CategoryLimit{Category: "Food", Limit: 0}).Validate(); err != nil {
		t.Fatalf("zero limit should be valid, got %v", err)
	}
	if err := (CategoryLimit{Category: "", Limit: 10}).Validate(); err == nil {
		t.Fatal("expected error for empty category")
	}
	if err := (CategoryLimit{Category: "Food", Limit: -5}).Validate(); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestNewBudgetAlertMessage(t *testing.T) {
	alert := NewBudgetAlert("Food", 110.0, 100.0)

	if alert.Category != "Food" || alert.TotalSpent != 110.0 || alert.Limit != 100.0 {
		t.Fatalf("unexpected alert fields: %+v", alert)
	}
	for _, want := range []string{"Food", "110.00", "100.00"} {
		if !strings.Contains(alert.Message, want) {
			t.Fatalf("message %q missing %q", alert.Message, want)
		}
	}
}
