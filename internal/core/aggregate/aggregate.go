// Package aggregate computes sums, counts, groupings and rankings over records.
// Every helper tolerates absent columns and null cells.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"dashboard-service/internal/domain"
)

// SumColumn adds the numeric values of col. Null and non-numeric cells add 0.
func SumColumn(records []domain.Record, col string) float64 {
	total := decimal.Zero
	for _, r := range records {
		if v, ok := r.Number(col); ok {
			total = total.Add(decimal.NewFromFloat(v))
		}
	}
	f, _ := total.Float64()
	return f
}

// CountNonNull counts records holding a value in col.
func CountNonNull(records []domain.Record, col string) int {
	n := 0
	for _, r := range records {
		if !r.IsNull(col) {
			n++
		}
	}
	return n
}

// Group is one bucket of GroupSum. Null groups records whose key cell is empty.
type Group struct {
	Key   string  `json:"key"`
	Null  bool    `json:"null"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// GroupSum totals valueCol per stringified groupCol, in order of first occurrence.
// Records with a null key share one Null group.
func GroupSum(records []domain.Record, groupCol, valueCol string) []Group {
	type acc struct {
		group Group
		total decimal.Decimal
	}
	var order []*acc
	byKey := make(map[string]*acc)
	var null *acc

	for _, r := range records {
		var a *acc
		if r.IsNull(groupCol) {
			if null == nil {
				null = &acc{group: Group{Null: true}, total: decimal.Zero}
				order = append(order, null)
			}
			a = null
		} else {
			key := r.Text(groupCol)
			if a = byKey[key]; a == nil {
				a = &acc{group: Group{Key: key}, total: decimal.Zero}
				byKey[key] = a
				order = append(order, a)
			}
		}
		a.group.Count++
		if v, ok := r.Number(valueCol); ok {
			a.total = a.total.Add(decimal.NewFromFloat(v))
		}
	}

	out := make([]Group, 0, len(order))
	for _, a := range order {
		a.group.Total, _ = a.total.Float64()
		out = append(out, a.group)
	}
	return out
}

// SortByTotalDesc returns the groups ordered by total, largest first; equal
// totals keep their order.
func SortByTotalDesc(groups []Group) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// TopGroups is GroupSum without the null group, sorted and cut to n.
func TopGroups(records []domain.Record, groupCol, valueCol string, n int) []Group {
	var groups []Group
	for _, g := range GroupSum(records, groupCol, valueCol) {
		if !g.Null {
			groups = append(groups, g)
		}
	}
	groups = SortByTotalDesc(groups)
	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// TopN returns the n records with the greatest rankCol, descending. Ties keep
// source order; records without a numeric rankCol are not ranked.
func TopN(records []domain.Record, rankCol string, n int) []domain.Record {
	if n <= 0 {
		return nil
	}
	type ranked struct {
		rec   domain.Record
		value float64
	}
	var candidates []ranked
	for _, r := range records {
		if v, ok := r.Number(rankCol); ok {
			candidates = append(candidates, ranked{rec: r, value: v})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].value > candidates[j].value })
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]domain.Record, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.rec)
	}
	return out
}

// ValueCount is one row of ValueCounts.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts non-null values of col, most frequent first.
func ValueCounts(records []domain.Record, col string) []ValueCount {
	var out []ValueCount
	idx := make(map[string]int)
	for _, r := range records {
		if r.IsNull(col) {
			continue
		}
		key := r.Text(col)
		if i, ok := idx[key]; ok {
			out[i].Count++
			continue
		}
		idx[key] = len(out)
		out = append(out, ValueCount{Value: key, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// MonthTotal is one YYYY-MM bucket of MonthlySum.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// MonthlySum buckets records by the month of dateCol, oldest first. Records
// without a date are left out.
func MonthlySum(records []domain.Record, dateCol, valueCol string) []MonthTotal {
	var dated []domain.Record
	for _, r := range records {
		if _, ok := r.Date(dateCol); ok {
			dated = append(dated, r)
		}
	}
	groups := GroupSum(withMonthKey(dated, dateCol), monthKey, valueCol)

	out := make([]MonthTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, MonthTotal{Month: g.Key, Total: g.Total, Count: g.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

const monthKey = "\x00month"

func withMonthKey(records []domain.Record, dateCol string) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		d, _ := r.Date(dateCol)
		rec := r.Clone()
		rec[monthKey] = d.Format("2006-01")
		out = append(out, rec)
	}
	return out
}

// Distinct returns the sorted non-null values of col, as offered by filters.
func Distinct(records []domain.Record, col string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if r.IsNull(col) {
			continue
		}
		v := r.Text(col)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterEquals keeps records whose stringified col equals value.
func FilterEquals(records []domain.Record, col, value string) []domain.Record {
	var out []domain.Record
	for _, r := range records {
		if !r.IsNull(col) && r.Text(col) == value {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps records where any field contains term, ignoring case. An empty
// term keeps everything.
func Search(records []domain.Record, term string) []domain.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]domain.Record(nil), records...)
	}
	var out []domain.Record
	for _, r := range records {
		for _, v := range r {
			if strings.Contains(strings.ToLower(domain.FormatValue(v)), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// CountContains counts records whose col contains any of the substrings.
func CountContains(records []domain.Record, col string, substrs ...string) int {
	n := 0
	for _, r := range records {
		text := r.Text(col)
		for _, s := range substrs {
			if strings.Contains(text, s) {
				n++
				break
			}
		}
	}
	return n
}
