// package dashboard/service.go
package dashboard

import (
	"fmt"
	"math"

	"dashboard-service/internal/core/aggregate"
	"dashboard-service/internal/domain"
)

const (
	topLimit    = 15
	statusLimit = 10
)

// FilterOption lists the values offered by one selector of a module screen.
type FilterOption struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Ranked is one bar of a module ranking: a group total, or a single record
// with its detail columns.
type Ranked struct {
	Label  string         `json:"label"`
	Value  float64        `json:"value"`
	Count  int            `json:"count"`
	Detail map[string]any `json:"detail,omitempty"`
}

// Breakdown is a value-count chart over one column.
type Breakdown struct {
	Title  string                 `json:"title"`
	Column string                 `json:"column"`
	Counts []aggregate.ValueCount `json:"counts"`
}

// Comparison lists several amounts per label, in Series order.
type Comparison struct {
	Title  string          `json:"title"`
	Series []string        `json:"series"`
	Rows   []ComparisonRow `json:"rows"`
}

type ComparisonRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Summary is everything a module screen shows for one kind.
type Summary struct {
	Kind       domain.EntityKind      `json:"kind"`
	Title      string                 `json:"title"`
	Count      int                    `json:"count"`
	KPIs       []domain.KPI           `json:"kpis"`
	Filters    []FilterOption         `json:"filters"`
	Applied    map[string]string      `json:"applied,omitempty"`
	Top        []Ranked               `json:"top"`
	Monthly    []aggregate.MonthTotal `json:"monthly"`
	Status     []aggregate.ValueCount `json:"status"`
	Breakdowns []Breakdown            `json:"breakdowns,omitempty"`
	Comparison *Comparison            `json:"comparison,omitempty"`
}

// Overview is the general dashboard across kinds.
type Overview struct {
	Counts           []domain.KPI           `json:"counts"`
	Totals           []domain.KPI           `json:"totals"`
	OrdersByStatus   []aggregate.ValueCount `json:"orders_by_status"`
	MonthlyInvoicing []aggregate.MonthTotal `json:"monthly_invoicing"`
	MinorWorksStatus []aggregate.ValueCount `json:"minor_works_status"`
	ContractsStatus  []aggregate.ValueCount `json:"contracts_status"`
	OrdersByType     []aggregate.Group      `json:"orders_by_type"`
}

// Stats describes one numeric column, as the explorer's quick analysis does.
type Stats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Service computes module summaries over loaded record sets.
type Service interface {
	Summarize(set *domain.RecordSet, filters map[string]string) (*Summary, error)
	Overview(sets domain.Sets) *Overview
	Describe(records []domain.Record, column string) Stats
}

type service struct {
	registry []domain.SheetSpec
}

func NewService(registry []domain.SheetSpec) Service {
	return &service{registry: registry}
}

// Summarize builds the screen of set's kind. Filters map a selector column to
// the wanted value; empty values and unknown columns are ignored. Selector
// options always come from the unfiltered set.
func (s *service) Summarize(set *domain.RecordSet, filters map[string]string) (*Summary, error) {
	if set == nil {
		return nil, domain.ErrNoWorkbook
	}
	spec, ok := s.spec(set.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, set.Kind)
	}
	scr := screens[set.Kind]

	out := &Summary{Kind: set.Kind, Title: spec.Title}
	for _, col := range scr.filters {
		if set.HasColumn(col) {
			out.Filters = append(out.Filters, FilterOption{Column: col, Values: aggregate.Distinct(set.Records, col)})
		}
	}

	records := set.Records
	for _, col := range scr.filters {
		value, ok := filters[col]
		if !ok || value == "" {
			continue
		}
		if out.Applied == nil {
			out.Applied = make(map[string]string)
		}
		out.Applied[col] = value
		records = aggregate.FilterEquals(records, col, value)
	}

	out.Count = len(records)
	out.KPIs = kpis(scr.metrics, records)
	if scr.rankBy != "" {
		out.Top = rank(scr, records)
	}
	if scr.dateColumn != "" {
		out.Monthly = aggregate.MonthlySum(records, scr.dateColumn, spec.AmountColumn)
	}
	if scr.statusColumn != "" {
		out.Status = aggregate.ValueCounts(records, scr.statusColumn)
	}
	for _, b := range scr.breakdowns {
		if !set.HasColumn(b.column) {
			continue
		}
		counts := aggregate.ValueCounts(records, b.column)
		if b.limit > 0 {
			counts = head(counts, b.limit)
		}
		out.Breakdowns = append(out.Breakdowns, Breakdown{Title: b.title, Column: b.column, Counts: counts})
	}
	if scr.comparison != nil && hasColumns(set, scr.comparison) {
		out.Comparison = compare(scr.comparison, records)
	}
	return out, nil
}

func rank(scr screen, records []domain.Record) []Ranked {
	limit := scr.rankLimit
	if limit == 0 {
		limit = topLimit
	}

	out := []Ranked{}
	if scr.rankMode == rankGroups {
		for _, g := range aggregate.TopGroups(records, scr.rankBy, scr.rankValue, limit) {
			out = append(out, Ranked{Label: g.Key, Value: g.Total, Count: g.Count})
		}
		return out
	}

	// records are ranked first and nameless ones dropped after, so they still use a slot
	for _, r := range aggregate.TopN(records, scr.rankValue, limit) {
		if r.IsNull(scr.rankBy) {
			continue
		}
		value, _ := r.Number(scr.rankValue)
		entry := Ranked{Label: r.Text(scr.rankBy), Value: value, Count: 1}
		for _, col := range scr.rankDetail {
			if !r.IsNull(col) {
				if entry.Detail == nil {
					entry.Detail = make(map[string]any, len(scr.rankDetail))
				}
				entry.Detail[col] = r.Get(col)
			}
		}
		out = append(out, entry)
	}
	return out
}

func hasColumns(set *domain.RecordSet, c *comparison) bool {
	if !set.HasColumn(c.label) {
		return false
	}
	for _, col := range c.series {
		if !set.HasColumn(col) {
			return false
		}
	}
	return true
}

func compare(c *comparison, records []domain.Record) *Comparison {
	out := &Comparison{Title: c.title, Series: c.series, Rows: []ComparisonRow{}}

	var complete []domain.Record
	for _, r := range records {
		if r.IsNull(c.label) {
			continue
		}
		ok := true
		for _, col := range c.series {
			if _, isNum := r.Number(col); !isNum {
				ok = false
				break
			}
		}
		if ok {
			complete = append(complete, r)
		}
	}

	if !c.grouped {
		for _, r := range aggregate.TopN(complete, c.series[0], c.limit) {
			row := ComparisonRow{Label: r.Text(c.label), Values: make([]float64, len(c.series))}
			for i, col := range c.series {
				row.Values[i], _ = r.Number(col)
			}
			out.Rows = append(out.Rows, row)
		}
		return out
	}

	others := make([]map[string]float64, len(c.series))
	for i, col := range c.series[1:] {
		totals := make(map[string]float64)
		for _, g := range aggregate.GroupSum(complete, c.label, col) {
			totals[g.Key] = g.Total
		}
		others[i+1] = totals
	}
	for _, g := range aggregate.TopGroups(complete, c.label, c.series[0], c.limit) {
		row := ComparisonRow{Label: g.Key, Values: make([]float64, len(c.series))}
		row.Values[0] = g.Total
		for i := 1; i < len(c.series); i++ {
			row.Values[i] = others[i][g.Key]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func kpis(metrics []metric, records []domain.Record) []domain.KPI {
	out := make([]domain.KPI, 0, len(metrics))
	for _, m := range metrics {
		switch m.kind {
		case metricCount:
			out = append(out, domain.KPI{Label: m.label, Value: float64(len(records))})
		case metricSum:
			out = append(out, domain.KPI{Label: m.label, Value: aggregate.SumColumn(records, m.column), Money: true})
		case metricContains:
			out = append(out, domain.KPI{Label: m.label, Value: float64(aggregate.CountContains(records, m.column, m.substrs...))})
		}
	}
	return out
}

func (s *service) Overview(sets domain.Sets) *Overview {
	ov := &Overview{
		Counts: []domain.KPI{
			{Label: "ÓRDENES DE COMPRA", Value: float64(sets[domain.KindOrdenes].Len())},
			{Label: "CONTRATOS ONE TEAM", Value: float64(sets[domain.KindContratos].Len())},
			{Label: "PROYECTOS OBRA MENOR", Value: float64(sets[domain.KindObraMenor].Len())},
			{Label: "PREFACTURAS", Value: float64(sets[domain.KindPrefacturas].Len())},
		},
		Totals: []domain.KPI{
			{Label: "TOTAL ÓRDENES DE COMPRA", Value: aggregate.SumColumn(sets.Records(domain.KindOrdenes), "IMPORTE TOTAL"), Money: true},
			{Label: "TOTAL CONTRATOS", Value: aggregate.SumColumn(sets.Records(domain.KindContratos), "Importe Total"), Money: true},
			{Label: "TOTAL FACTURADO 2025", Value: aggregate.SumColumn(sets.Records(domain.KindFacturacion2025), "Total (MXN)"), Money: true},
		},
	}

	ordenes := sets.Records(domain.KindOrdenes)
	ov.OrdersByStatus = aggregate.ValueCounts(ordenes, "ESTADO")
	ov.OrdersByType = aggregate.TopGroups(ordenes, "TIPO DE PROYECTO", "IMPORTE TOTAL", -1)
	ov.MonthlyInvoicing = aggregate.MonthlySum(sets.Records(domain.KindFacturacion2025), "Fecha", "Total (MXN)")
	ov.ContractsStatus = head(aggregate.ValueCounts(sets.Records(domain.KindContratos), "Estatus Operativo"), statusLimit)

	if obra := sets[domain.KindObraMenor]; obra != nil {
		for _, col := range []string{"ESTATUS_OPERACIÓN REAL", "ESTATUS OPERACIÓN ESTIMADO"} {
			if obra.HasColumn(col) {
				ov.MinorWorksStatus = head(aggregate.ValueCounts(obra.Records, col), statusLimit)
				break
			}
		}
	}
	return ov
}

// Describe reports count, sum, mean and range of the numeric cells of column.
func (s *service) Describe(records []domain.Record, column string) Stats {
	st := Stats{Column: column, Min: math.Inf(1), Max: math.Inf(-1)}
	for _, r := range records {
		v, ok := r.Number(column)
		if !ok {
			continue
		}
		st.Count++
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	if st.Count == 0 {
		st.Min, st.Max = 0, 0
		return st
	}
	st.Sum = aggregate.SumColumn(records, column)
	st.Mean = st.Sum / float64(st.Count)
	return st
}

func (s *service) spec(kind domain.EntityKind) (domain.SheetSpec, bool) {
	for _, spec := range s.registry {
		if spec.Kind == kind {
			return spec, true
		}
	}
	return domain.SheetSpec{}, false
}

func head(counts []aggregate.ValueCount, n int) []aggregate.ValueCount {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}
