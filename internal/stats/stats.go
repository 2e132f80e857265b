package stats

import (
	"sort"

	"financeflow/internal/models"

	"github.com/shopspring/decimal"
)

const UnknownCategory = "unknown category"

type View string

const (
	ViewExpenses View = "expenses"
	ViewIncome   View = "income"
)

func (v View) Valid() bool {
	return v == ViewExpenses || v == ViewIncome
}

type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Summarize totals positive amounts as income and the magnitude of negative ones as expense.
// Deleted transactions are skipped.
func Summarize(txs []models.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		if tx.IsDeleted {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		switch {
		case amount.IsPositive():
			s.Income = s.Income.Add(amount)
		case amount.IsNegative():
			s.Expense = s.Expense.Add(amount.Abs())
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

type CategoryTotal struct {
	CategoryID string          `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// ByCategory groups one direction of money flow by category name, largest first.
// Transactions pointing at a missing category are grouped under UnknownCategory.
func ByCategory(txs []models.Transaction, categories []models.Category, view View) []CategoryTotal {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	totals := map[string]*CategoryTotal{}
	var order []string
	for _, tx := range txs {
		if tx.IsDeleted {
			continue
		}
		if view == ViewExpenses && tx.Amount >= 0 || view == ViewIncome && tx.Amount <= 0 {
			continue
		}
		name, ok := names[tx.CategoryID]
		id := tx.CategoryID
		if !ok {
			name, id = UnknownCategory, ""
		}
		ct, ok := totals[name]
		if !ok {
			ct = &CategoryTotal{CategoryID: id, Name: name}
			totals[name] = ct
			order = append(order, name)
		}
		ct.Total = ct.Total.Add(decimal.NewFromFloat(tx.Amount).Abs())
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// WalletBalance is the initial balance plus every live transaction booked against the wallet.
func WalletBalance(w models.Wallet, txs []models.Transaction) decimal.Decimal {
	balance := decimal.NewFromFloat(w.InitialBalance)
	for _, tx := range txs {
		if tx.IsDeleted || tx.WalletID != w.ID {
			continue
		}
		balance = balance.Add(decimal.NewFromFloat(tx.Amount))
	}
	return balance
}

// Balances derives every wallet's balance on the fly, keyed by wallet id.
func Balances(wallets []models.Wallet, txs []models.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(wallets))
	for _, w := range wallets {
		out[w.ID] = WalletBalance(w, txs)
	}
	return out
}
