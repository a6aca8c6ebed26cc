package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"1000", "1000.00", true},
		{"0", "0.00", true},
		{"12.345", "12.35", true}, // rounds half up on the third decimal
		{"  7.5 ", "7.50", true},
		{"-1", "", false},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q): unexpected error %v", i, tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d (%q): expected error", i, tc.in)
			}
			continue
		}
		if got.String() != tc.want {
			t.Fatalf("case %d (%q): got %s want %s", i, tc.in, got, tc.want)
		}
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := AmountFromFloat(1000.00)
	b := AmountFromFloat(50.00)

	if got := a.Sub(b).String(); got != "950.00" {
		t.Fatalf("sub: got %s", got)
	}
	if got := b.Add(b).String(); got != "100.00" {
		t.Fatalf("add: got %s", got)
	}
	if !ZeroAmount.IsZero() {
		t.Fatal("zero amount should report zero")
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	a := AmountFromFloat(12.30)
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "12.30" {
		t.Fatalf("marshal: got %s", data)
	}

	var back Amount
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(a) {
		t.Fatalf("round trip mismatch: %s != %s", back, a)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Owner:    "alice@example.com",
		Kind:     Expense,
		Category: "Food",
		Amount:   AmountFromFloat(1),
		Date:     NewDate(2024, 3, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Owner: "", Kind: Expense, Category: "c", Date: NewDate(2024, 1, 1)},
		{Owner: "a@b.c", Kind: "Transfer", Category: "c", Date: NewDate(2024, 1, 1)},
		{Owner: "a@b.c", Kind: Income, Category: "", Date: NewDate(2024, 1, 1)},
		{Owner: "a@b.c", Kind: Income, Category: "c"}, // zero date
	}
	for i, txn := range bads {
		if err := txn.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestParseKindAndTheme(t *testing.T) {
	if _, err := ParseKind("Income"); err != nil {
		t.Fatalf("Income should parse: %v", err)
	}
	if _, err := ParseKind("income"); err == nil {
		t.Fatal("kind is case-sensitive, lowercase should fail")
	}
	if th, err := ParseTheme(""); err != nil || th != ThemeLight {
		t.Fatalf("empty theme should default to light, got %v %v", th, err)
	}
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatal("toggle should flip themes")
	}
}
