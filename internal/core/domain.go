package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"

	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// DefaultCurrency is assigned to newly registered users.
	DefaultCurrency = "₹ (INR)"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	// Theme is the user's UI preference.
	Theme string

	// Date is a calendar date with no time component. The embedded time is
	// always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record owned by one user.
	Transaction struct {
		ID       int64
		Owner    string // user email
		Kind     Kind
		Category string
		Amount   Amount
		Date     Date
		Remark   *string // nil when the user left no annotation
	}

	// User is an account holder. PasswordHash is opaque to everything but
	// the auth package.
	User struct {
		Email        string
		PasswordHash string
		Currency     string
		Theme        Theme
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidTheme  = errors.New("invalid theme")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// ParseKind validates a kind string coming from a form or API payload.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Income, Expense:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// ParseTheme validates a theme string. Empty defaults to light.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	case "":
		return ThemeLight, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the invariants every stored transaction must hold: a
// non-empty owner and category, a kind in {Income, Expense}, a real date.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Owner) == "" {
		return ErrEmptyOwner
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// RemarkOrEmpty returns the remark text, treating a missing remark as "".
// Sorting and report rendering both rely on this normalization.
func (t Transaction) RemarkOrEmpty() string {
	if t.Remark == nil {
		return ""
	}
	return *t.Remark
}
