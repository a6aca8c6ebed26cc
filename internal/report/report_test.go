package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"expenseflow/internal/core"
)

func strptr(s string) *string { return &s }

func TestRowFormatting(t *testing.T) {
	txn := core.Transaction{
		Kind:     core.Expense,
		Category: "Food",
		Amount:   core.AmountFromFloat(50),
		Date:     core.NewDate(2024, 3, 1),
		Remark:   strptr("lunch"),
	}
	row := Row(txn)
	want := []string{"2024-03-01", "Food", "lunch", "Expense", "50.00"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("cell %d: got %q want %q", i, row[i], want[i])
		}
	}
}

func TestRowMissingRemarkRendersDash(t *testing.T) {
	txn := core.Transaction{
		Kind:     core.Income,
		Category: "Salary",
		Amount:   core.AmountFromFloat(1000),
		Date:     core.NewDate(2024, 3, 2),
	}
	if row := Row(txn); row[2] != "-" {
		t.Fatalf("remark cell: got %q want -", row[2])
	}
}

func TestWriteCSV(t *testing.T) {
	txns := []core.Transaction{
		{Kind: core.Expense, Category: "Food", Amount: core.AmountFromFloat(50), Date: core.NewDate(2024, 3, 1), Remark: strptr("lunch")},
		{Kind: core.Income, Category: "Salary", Amount: core.AmountFromFloat(1000), Date: core.NewDate(2024, 3, 2)},
	}

	data, err := WriteCSV("alice@example.com", txns)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1 // title row has fewer cells than data rows
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	// title + header + 2 rows
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0][1] != "alice@example.com" {
		t.Fatalf("title row: %v", records[0])
	}
	if strings.Join(records[1], ",") != "Date,Category,Remark,Type,Amount" {
		t.Fatalf("header row: %v", records[1])
	}
	if records[3][4] != "1000.00" {
		t.Fatalf("amount formatting: %v", records[3])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	data, err := WriteCSV("alice@example.com", nil)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1 // title row has fewer cells than header
	records, err := r.ReadAll()
	if err != nil || len(records) != 2 {
		t.Fatalf("empty report should still carry title and header: %d %v", len(records), err)
	}
}
