package core

import "testing"

func entry(id string, kind Kind, cents int64, date Date) Entry {
	return Entry{
		ID:           id,
		Kind:         kind,
		Amount:       Money{Cents: cents},
		CategoryID:   "exp_other",
		CategoryName: "อื่นๆ",
		CategoryIcon: "📦",
		Note:         "test",
		Date:         date,
	}
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		entry("a", Expense, 4500, "2026-08-01"),
		entry("b", Income, 2000000, "2026-08-15"),
		entry("c", Expense, 12000, "2026-07-31"), // outside period
		entry("d", Income, 50000, "2026-09-01"),  // outside period
	}

	s := Summarize(entries, "2026-08")
	if s.Income.Cents != 2000000 {
		t.Errorf("income: expected 2000000, got %d", s.Income.Cents)
	}
	if s.Expense.Cents != 4500 {
		t.Errorf("expense: expected 4500, got %d", s.Expense.Cents)
	}
	if s.Balance.Cents != 1995500 {
		t.Errorf("balance: expected 1995500, got %d", s.Balance.Cents)
	}
	if s.Count != 2 {
		t.Errorf("count: expected 2, got %d", s.Count)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "2026-08")
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 || s.Count != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeIsPure(t *testing.T) {
	entries := []Entry{
		entry("a", Expense, 100, "2026-08-01"),
		entry("b", Income, 300, "2026-08-02"),
	}
	first := Summarize(entries, "2026-08")
	second := Summarize(entries, "2026-08")
	if first != second {
		t.Fatalf("repeated calls differ: %+v vs %+v", first, second)
	}
}
