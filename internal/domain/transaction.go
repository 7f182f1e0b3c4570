package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction types understood by the summary.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single ledger entry owned by the host application. Amount
// is signed; JSON numbers and numeric strings both decode, and it always
// encodes as a bare JSON number.
type Transaction struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

func (t Transaction) IsIncome() bool  { return t.Type == TypeIncome }
func (t Transaction) IsExpense() bool { return t.Type == TypeExpense }

type transactionJSON struct {
	Type        string      `json:"type"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

// MarshalJSON writes Amount unquoted; decimal's default encoding is a string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		Type:        t.Type,
		Amount:      json.Number(t.Amount.String()),
		Category:    t.Category,
		Description: t.Description,
	})
}
