package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind distinguishes income from expense entries.
	Kind string

	Money struct {
		Cents int64
	}

	// Date is a calendar date in the ledger owner's reporting timezone,
	// formatted YYYY-MM-DD.
	Date string

	// Period is a calendar month, formatted YYYY-MM.
	Period string

	// Entry is one recorded transaction. Entries are immutable once
	// created; the ledger only ever removes them whole from the tail.
	Entry struct {
		ID           string
		Kind         Kind
		Amount       Money
		CategoryID   string
		CategoryName string
		CategoryIcon string
		Note         string
		Date         Date
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid entry kind")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyID       = errors.New("empty entry id")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewDate formats t as a calendar date in t's location.
func NewDate(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

func (d Date) Validate() error {
	if _, err := time.Parse("2006-01-02", string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Period returns the calendar month the date falls in.
func (d Date) Period() Period {
	if len(d) < 7 {
		return ""
	}
	return Period(d[:7])
}

// CurrentPeriod returns the current calendar month in loc.
func CurrentPeriod(loc *time.Location) Period {
	return Period(time.Now().In(loc).Format("2006-01"))
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return errors.New("empty category id")
	}
	if len(e.Note) > 500 {
		return errors.New("note too long (max 500 characters)")
	}
	return nil
}

// Signed returns the amount with the sign implied by the entry kind,
// positive for income and negative for expenses.
func (e Entry) Signed() int64 {
	if e.Kind == Expense {
		return -e.Amount.Cents
	}
	return e.Amount.Cents
}
