// Package report renders an ordered transaction sequence into the tabular
// export consumed by downloads and emailed reports.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"expenseflow/internal/core"
)

// Columns of the exported table, in order.
var Header = []string{"Date", "Category", "Remark", "Type", "Amount"}

// Row renders one transaction as export cells. An absent remark becomes "-";
// amounts use fixed two-decimal formatting.
func Row(t core.Transaction) []string {
	remark := t.RemarkOrEmpty()
	if remark == "" {
		remark = "-"
	}
	return []string{
		t.Date.String(),
		t.Category,
		remark,
		string(t.Kind),
		t.Amount.String(),
	}
}

// WriteCSV renders the full report for one user. The first row carries the
// owner, the second the header, then one row per transaction in the order
// given.
func WriteCSV(owner string, txns []core.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Transactions Report for", owner}); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, t := range txns {
		if err := w.Write(Row(t)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
