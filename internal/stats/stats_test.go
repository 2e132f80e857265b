package stats_test

import (
	"testing"

	"financeflow/internal/models"
	"financeflow/internal/stats"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txs() []models.Transaction {
	return []models.Transaction{
		{ID: "t1", WalletID: "w1", CategoryID: "food", Amount: -0.1},
		{ID: "t2", WalletID: "w1", CategoryID: "food", Amount: -0.2},
		{ID: "t3", WalletID: "w1", CategoryID: "salary", Amount: 1000},
		{ID: "t4", WalletID: "w2", CategoryID: "gone", Amount: -5},
		{ID: "t5", WalletID: "w1", CategoryID: "rent", Amount: -400, IsDeleted: true},
	}
}

func categories() []models.Category {
	return []models.Category{
		{ID: "food", Name: "Food", Type: models.CategoryExpense},
		{ID: "salary", Name: "Salary", Type: models.CategoryIncome},
		{ID: "rent", Name: "Rent", Type: models.CategoryExpense},
	}
}

func TestSummarize(t *testing.T) {
	s := stats.Summarize(txs())
	assert.True(t, s.Income.Equal(decimal.NewFromInt(1000)), s.Income.String())
	// 0.1 + 0.2 + 5 exactly, no float drift
	assert.Equal(t, "5.3", s.Expense.String())
	assert.Equal(t, "994.7", s.Balance.String())
}

func TestByCategory_Expenses(t *testing.T) {
	got := stats.ByCategory(txs(), categories(), stats.ViewExpenses)
	require.Len(t, got, 2)
	assert.Equal(t, stats.UnknownCategory, got[0].Name)
	assert.Equal(t, "5", got[0].Total.String())
	assert.Equal(t, "Food", got[1].Name)
	assert.Equal(t, "food", got[1].CategoryID)
	assert.Equal(t, "0.3", got[1].Total.String())
}

func TestByCategory_Income(t *testing.T) {
	got := stats.ByCategory(txs(), categories(), stats.ViewIncome)
	require.Len(t, got, 1)
	assert.Equal(t, "Salary", got[0].Name)
}

func TestWalletBalance(t *testing.T) {
	w1 := models.Wallet{ID: "w1", InitialBalance: 100}
	assert.Equal(t, "1099.7", stats.WalletBalance(w1, txs()).String())

	balances := stats.Balances([]models.Wallet{w1, {ID: "w2"}}, txs())
	assert.Equal(t, "-5", balances["w2"].String())
}
