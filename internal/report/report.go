// Package report contains pure grouping, filtering and aggregation helpers
// over in-memory transaction lists. Nothing here touches the network or the
// stores; views call these on every render.
package report

import (
	"sort"

	"lifeassistant/internal/core"
)

// KindGroup is one category partition with its net signed total in cents.
type KindGroup struct {
	Kind         string
	Transactions []core.Transaction
	TotalCents   int64
}

// DateGroup is one grouping-date partition.
type DateGroup struct {
	Date         string
	Transactions []core.Transaction
}

// PieSlice is one sector of a proportional chart. Sweep angles of all slices
// for a list sum to 360 degrees.
type PieSlice struct {
	Kind       string
	TotalCents int64
	StartAngle float64
	EndAngle   float64
	Fraction   float64
}

// GroupByKind partitions transactions by category, sorted by category name
// ascending. Each group's total is the signed sum of its members: +value for
// incomes, -value for expenses.
func GroupByKind(ts []core.Transaction) []KindGroup {
	byKind := make(map[string][]core.Transaction)
	for _, t := range ts {
		byKind[t.Kind] = append(byKind[t.Kind], t)
	}

	groups := make([]KindGroup, 0, len(byKind))
	for kind, members := range byKind {
		var total int64
		for _, t := range members {
			total += t.SignedCents()
		}
		groups = append(groups, KindGroup{Kind: kind, Transactions: members, TotalCents: total})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Kind < groups[j].Kind })
	return groups
}

// GroupByDate partitions transactions by their grouping date, most recent
// group first.
func GroupByDate(ts []core.Transaction) []DateGroup {
	byDate := make(map[string][]core.Transaction)
	for _, t := range ts {
		byDate[t.Timestamp] = append(byDate[t.Timestamp], t)
	}

	groups := make([]DateGroup, 0, len(byDate))
	for date, members := range byDate {
		groups = append(groups, DateGroup{Date: date, Transactions: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

// PieSlices filters to one direction, aggregates per category in ascending
// category order, and assigns each category a sweep proportional to its share
// of the filtered total. An empty or zero-total input yields no slices.
func PieSlices(ts []core.Transaction, income bool) []PieSlice {
	totals := make(map[string]int64)
	for _, t := range ts {
		if t.Income == income {
			totals[t.Kind] += t.Value.Cents
		}
	}

	kinds := make([]string, 0, len(totals))
	var sum int64
	for kind, total := range totals {
		kinds = append(kinds, kind)
		sum += total
	}
	if sum == 0 {
		return nil
	}
	sort.Strings(kinds)

	slices := make([]PieSlice, 0, len(kinds))
	start := 0.0
	for _, kind := range kinds {
		fraction := float64(totals[kind]) / float64(sum)
		sweep := fraction * 360.0
		slices = append(slices, PieSlice{
			Kind:       kind,
			TotalCents: totals[kind],
			StartAngle: start,
			EndAngle:   start + sweep,
			Fraction:   fraction,
		})
		start += sweep
	}
	return slices
}

// Filter composes the two direction toggles: a transaction passes if it is an
// income and incomes are shown, or an expense and expenses are shown. Both
// toggles off yields an empty set; both on yields the unfiltered list.
func Filter(ts []core.Transaction, showIncomes, showExpenses bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		if (showIncomes && t.Income) || (showExpenses && !t.Income) {
			out = append(out, t)
		}
	}
	return out
}

// SignedTotal is the signed cents sum of the whole list. It always equals the
// sum of GroupByKind group totals for the same list.
func SignedTotal(ts []core.Transaction) int64 {
	var total int64
	for _, t := range ts {
		total += t.SignedCents()
	}
	return total
}
