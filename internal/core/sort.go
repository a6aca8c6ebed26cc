package core

import (
	"sort"
	"strings"
)

// SortMode is the closed set of orderings a caller can request. Unknown
// values map to SortNone, which leaves the sequence in retrieval order.
type SortMode int

const (
	SortNone SortMode = iota
	SortDateAsc
	SortDateDesc
	SortCategoryAsc
	SortCategoryDesc
	SortRemarkAsc
	SortRemarkDesc
	SortTypeAsc
	SortTypeDesc
	SortAmountAsc
	SortAmountDesc
)

var sortModeNames = map[string]SortMode{
	"date_asc":      SortDateAsc,
	"date_desc":     SortDateDesc,
	"category_asc":  SortCategoryAsc,
	"category_desc": SortCategoryDesc,
	"remark_asc":    SortRemarkAsc,
	"remark_desc":   SortRemarkDesc,
	"type_asc":      SortTypeAsc,
	"type_desc":     SortTypeDesc,
	"amount_asc":    SortAmountAsc,
	"amount_desc":   SortAmountDesc,
}

// ParseSortMode maps a query-string value to a SortMode. Unrecognized
// values are not an error; they simply select SortNone.
func ParseSortMode(s string) SortMode {
	if m, ok := sortModeNames[strings.TrimSpace(s)]; ok {
		return m
	}
	return SortNone
}

func (m SortMode) String() string {
	for name, mode := range sortModeNames {
		if mode == m {
			return name
		}
	}
	return "none"
}

// lessFunc orders two transactions in ascending key order. Equal keys
// return false from both orientations, which keeps the stable sort stable.
type lessFunc func(a, b Transaction) bool

func lessDate(a, b Transaction) bool {
	return a.Date.Time.Before(b.Date.Time)
}

func lessCategory(a, b Transaction) bool {
	return strings.ToLower(a.Category) < strings.ToLower(b.Category)
}

func lessRemark(a, b Transaction) bool {
	return strings.ToLower(a.RemarkOrEmpty()) < strings.ToLower(b.RemarkOrEmpty())
}

func lessType(a, b Transaction) bool {
	return strings.ToLower(string(a.Kind)) < strings.ToLower(string(b.Kind))
}

// lessAmount compares through float64. Amounts are stored fixed-point, but
// the comparison has always been done in float space; kept as-is.
func lessAmount(a, b Transaction) bool {
	return a.Amount.Float64() < b.Amount.Float64()
}

// SortTransactions orders txns in place according to mode. The sort is
// stable: equal keys keep their retrieval order. SortNone is a no-op.
func SortTransactions(txns []Transaction, mode SortMode) {
	var less lessFunc
	desc := false

	switch mode {
	case SortDateAsc:
		less = lessDate
	case SortDateDesc:
		less, desc = lessDate, true
	case SortCategoryAsc:
		less = lessCategory
	case SortCategoryDesc:
		less, desc = lessCategory, true
	case SortRemarkAsc:
		less = lessRemark
	case SortRemarkDesc:
		less, desc = lessRemark, true
	case SortTypeAsc:
		less = lessType
	case SortTypeDesc:
		less, desc = lessType, true
	case SortAmountAsc:
		less = lessAmount
	case SortAmountDesc:
		less, desc = lessAmount, true
	case SortNone:
		return
	default:
		return
	}

	if desc {
		sort.SliceStable(txns, func(i, j int) bool { return less(txns[j], txns[i]) })
		return
	}
	sort.SliceStable(txns, func(i, j int) bool { return less(txns[i], txns[j]) })
}
