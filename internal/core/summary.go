package core

import (
	"fmt"
	"sort"
	"time"
)

// Summary aggregates a transaction set into the numbers the dashboard shows.
type Summary struct {
	TotalIncome  Amount
	TotalExpense Amount
	Balance      Amount
}

// Summarize computes income, expense and balance totals. An empty input
// yields all zeros, never an error.
func Summarize(txns []Transaction) Summary {
	s := Summary{TotalIncome: ZeroAmount, TotalExpense: ZeroAmount, Balance: ZeroAmount}
	for _, t := range txns {
		switch t.Kind {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// CategoryAmount is one slice of the category breakdown.
type CategoryAmount struct {
	Category string
	Amount   Amount
}

// CategoryBreakdown sums expense amounts per category. Income rows are
// excluded. The result is sorted by category name for deterministic output.
func CategoryBreakdown(txns []Transaction) []CategoryAmount {
	sums := make(map[string]Amount)
	for _, t := range txns {
		if t.Kind != Expense {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	out := make([]CategoryAmount, 0, len(sums))
	for category, amount := range sums {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Bucketing selects the date truncation for time-series aggregation.
type Bucketing int

const (
	BucketMonthly Bucketing = iota
	BucketWeekly
	BucketDaily
)

// SeriesPoint is one bucket of the income/expense time series.
type SeriesPoint struct {
	Bucket  string // "2024-03", "2024-W12" or "2024-03-01"
	Income  Amount
	Expense Amount
}

// TimeSeries groups transactions by a date truncation, summing amounts per
// bucket per kind. Buckets are returned in ascending label order, which for
// the formats used here is also chronological order.
func TimeSeries(txns []Transaction, b Bucketing) []SeriesPoint {
	points := make(map[string]*SeriesPoint)
	for _, t := range txns {
		key := bucketKey(t.Date, b)
		p, ok := points[key]
		if !ok {
			p = &SeriesPoint{Bucket: key, Income: ZeroAmount, Expense: ZeroAmount}
			points[key] = p
		}
		switch t.Kind {
		case Income:
			p.Income = p.Income.Add(t.Amount)
		case Expense:
			p.Expense = p.Expense.Add(t.Amount)
		}
	}

	out := make([]SeriesPoint, 0, len(points))
	for _, p := range points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

func bucketKey(d Date, b Bucketing) string {
	switch b {
	case BucketWeekly:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case BucketDaily:
		return d.String()
	default:
		return d.Format("2006-01")
	}
}

// WeekdayAmount is the expense total for one day of the week.
type WeekdayAmount struct {
	Weekday time.Weekday
	Amount  Amount
}

// WeekdayPattern sums expense amounts by day of week, Sunday through
// Saturday, including zero entries so charts get a full week.
func WeekdayPattern(txns []Transaction) []WeekdayAmount {
	out := make([]WeekdayAmount, 7)
	for i := range out {
		out[i] = WeekdayAmount{Weekday: time.Weekday(i), Amount: ZeroAmount}
	}
	for _, t := range txns {
		if t.Kind != Expense {
			continue
		}
		wd := t.Date.Weekday()
		out[wd].Amount = out[wd].Amount.Add(t.Amount)
	}
	return out
}
