package core

// MonthlySummary is derived on demand from a ledger snapshot and never
// persisted.
type MonthlySummary struct {
	Period  Period
	Income  Money
	Expense Money
	Balance Money
	Count   int
}

// Summarize filters entries to the given period and sums by kind. It is
// pure: repeated calls on the same snapshot yield equal results.
func Summarize(entries []Entry, p Period) MonthlySummary {
	s := MonthlySummary{Period: p}
	for _, e := range entries {
		if e.Date.Period() != p {
			continue
		}
		switch e.Kind {
		case Income:
			s.Income.Cents += e.Amount.Cents
		case Expense:
			s.Expense.Cents += e.Amount.Cents
		default:
			continue
		}
		s.Count++
	}
	s.Balance = Money{Cents: s.Income.Cents - s.Expense.Cents}
	return s
}
