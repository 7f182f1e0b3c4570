package prompt

import (
	"github.com/shopspring/decimal"

	"khata-advisor/internal/domain"
)

// recentLimit is how many trailing transactions are quoted in the prompt.
const recentLimit = 10

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Summary is the aggregate view of a transaction list that the prompt embeds.
type Summary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Count         int
	// Categories holds expense totals in first-seen order.
	Categories []CategoryTotal
	Recent     []domain.Transaction
}

// Net is income minus expenses.
func (s Summary) Net() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// Summarize aggregates transactions without mutating them. Entries whose type
// is neither income nor expense only count towards Count.
func Summarize(transactions []domain.Transaction) Summary {
	s := Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Count:         len(transactions),
	}
	index := make(map[string]int)
	for _, t := range transactions {
		switch {
		case t.IsIncome():
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case t.IsExpense():
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			i, ok := index[t.Category]
			if !ok {
				index[t.Category] = len(s.Categories)
				s.Categories = append(s.Categories, CategoryTotal{Category: t.Category, Amount: t.Amount})
				continue
			}
			s.Categories[i].Amount = s.Categories[i].Amount.Add(t.Amount)
		}
	}

	start := 0
	if len(transactions) > recentLimit {
		start = len(transactions) - recentLimit
	}
	s.Recent = append([]domain.Transaction(nil), transactions[start:]...)
	return s
}
