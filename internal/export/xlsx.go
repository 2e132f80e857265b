package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"financeflow/internal/models"
	"financeflow/internal/stats"

	"github.com/xuri/excelize/v2"
)

const (
	UnknownWallet = "unknown wallet"

	SheetTransactions = "Transactions"
	SheetSummary      = "Summary"
)

type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Workbook renders the live transactions into a transactions sheet and a per-category summary.
// Dangling wallet or category references are written as "unknown wallet" / "unknown category".
func (e *Exporter) Workbook(txs []models.Transaction, wallets []models.Wallet, categories []models.Category) ([]byte, error) {
	start := time.Now()

	walletNames := make(map[string]string, len(wallets))
	for _, w := range wallets {
		walletNames[w.ID] = w.Name
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the transactions sheet
	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	headers := []any{"Date", "Wallet", "Category", "Type", "Amount", "Note", "Sync Status"}
	if err := f.SetSheetRow(SheetTransactions, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, tx := range txs {
		if tx.IsDeleted {
			continue
		}
		wallet, ok := walletNames[tx.WalletID]
		if !ok {
			wallet = UnknownWallet
		}
		category, ok := categoryNames[tx.CategoryID]
		if !ok {
			category = stats.UnknownCategory
		}
		note := ""
		if tx.Note != nil {
			note = *tx.Note
		}
		values := []any{
			tx.Date.Format("2006-01-02"),
			wallet,
			category,
			string(models.TypeForAmount(tx.Amount)),
			tx.Amount,
			note,
			string(tx.SyncStatus),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetTransactions, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(SheetTransactions, "A", "A", 12)
	_ = f.SetColWidth(SheetTransactions, "B", "C", 22)
	_ = f.SetColWidth(SheetTransactions, "F", "F", 48)

	if err := writeSummary(f, txs, categories); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("Export finished",
		slog.Int("rows", row-2),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, txs []models.Transaction, categories []models.Category) error {
	sum := stats.Summarize(txs)
	rows := [][]any{
		{"Income", sum.Income.InexactFloat64()},
		{"Expense", sum.Expense.InexactFloat64()},
		{"Balance", sum.Balance.InexactFloat64()},
		{},
		{"Expenses by category", ""},
	}
	for _, ct := range stats.ByCategory(txs, categories, stats.ViewExpenses) {
		rows = append(rows, []any{ct.Name, ct.Total.InexactFloat64()})
	}
	rows = append(rows, []any{}, []any{"Income by category", ""})
	for _, ct := range stats.ByCategory(txs, categories, stats.ViewIncome) {
		rows = append(rows, []any{ct.Name, ct.Total.InexactFloat64()})
	}

	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 24)
	return nil
}
