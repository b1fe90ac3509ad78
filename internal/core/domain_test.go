package core

import (
	"errors"
	"testing"
	"time"
)

func TestEntryValidate(t *testing.T) {
	valid := entry("id-1", Expense, 4500, "2026-08-31")
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Entry)
		want   error
	}{
		{"empty id", func(e *Entry) { e.ID = "" }, ErrEmptyID},
		{"bad kind", func(e *Entry) { e.Kind = "transfer" }, ErrInvalidKind},
		{"zero amount", func(e *Entry) { e.Amount.Cents = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Entry) { e.Amount.Cents = -100 }, ErrInvalidAmount},
		{"bad date", func(e *Entry) { e.Date = "31/08/2026" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		e := valid
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDatePeriod(t *testing.T) {
	if p := Date("2026-08-31").Period(); p != "2026-08" {
		t.Fatalf("expected 2026-08, got %s", p)
	}
	if p := Date("bad").Period(); p != "" {
		t.Fatalf("expected empty period for short date, got %q", p)
	}
}

func TestNewDateUsesLocation(t *testing.T) {
	bkk, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 2026-08-31 23:30 UTC is already 2026-09-01 in Bangkok.
	utc := time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	if d := NewDate(utc.In(bkk)); d != "2026-09-01" {
		t.Fatalf("expected 2026-09-01, got %s", d)
	}
}

func TestEntrySigned(t *testing.T) {
	if got := entry("a", Income, 500, "2026-08-01").Signed(); got != 500 {
		t.Fatalf("income: expected 500, got %d", got)
	}
	if got := entry("b", Expense, 500, "2026-08-01").Signed(); got != -500 {
		t.Fatalf("expense: expected -500, got %d", got)
	}
}
