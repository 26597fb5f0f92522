package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2020-09-01", NewDate(2020, 9, 1), true},
		{" 2024-02-29 ", NewDate(2024, 2, 29), true},
		{"2023-02-29", Date{}, false},
		{"2020-9-1", Date{}, false},
		{"01-09-2020", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || !got.Equal(tc.want.Time) {
			t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	d := DateOf(time.Date(2020, 9, 15, 23, 59, 0, 0, time.UTC))
	if d.String() != "2020-09-15" {
		t.Fatalf("unexpected date %s", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", d.Time)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": Income, "EXPENSE": Expense, " Income ": Income} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: MaxAmountCents}).Validate(); err != nil {
		t.Fatalf("expected ok at the cap, got %v", err)
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "FOOD", Kind: Expense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Category{
		{Name: "", Kind: Expense},
		{Name: "Food", Kind: Expense},
		{Name: "FOOD", Kind: ""},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:     Income,
		Amount:   Money{Cents: 100},
		Date:     NewDate(2025, 1, 1),
		Category: "SALARY",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "", Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Category: "C"},
		{Kind: Income, Amount: Money{Cents: 0}, Date: NewDate(2025, 1, 1), Category: "C"},
		{Kind: Income, Amount: Money{Cents: 1}, Date: Date{}, Category: "C"},
		{Kind: Income, Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1), Category: " "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	sep := Transaction{Kind: Income, Date: NewDate(2020, 9, 1)}
	oct := Transaction{Kind: Expense, Date: NewDate(2020, 10, 1)}
	month := MonthKey{Year: 2020, Month: time.September}

	cases := []struct {
		f    Filter
		tx   Transaction
		want bool
	}{
		{Filter{}, sep, true},
		{Filter{Kind: Income}, sep, true},
		{Filter{Kind: Expense}, sep, false},
		{Filter{Month: month}, sep, true},
		{Filter{Month: month}, oct, false},
		{Filter{Kind: Expense, Month: month}, oct, false},
		{Filter{Kind: Income, Month: month}, sep, true},
	}
	for i, tc := range cases {
		if got := tc.f.Matches(tc.tx); got != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
	}
}
