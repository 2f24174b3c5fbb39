// Package export turns a business-unit view into a report document and renders
// it as Markdown, HTML or XLSX. It also writes record sets as CSV downloads.
package export

import (
	"time"

	"dashboard-service/internal/core/aggregate"
	"dashboard-service/internal/domain"
)

// DefaultMaxRows bounds every report table.
const DefaultMaxRows = 30

// Summary is one line of the report's KPI strip.
type Summary struct {
	Kind   domain.EntityKind `json:"kind"`
	Title  string            `json:"title"`
	Count  int               `json:"count"`
	Amount float64           `json:"amount"`
}

// Table holds the display columns of one kind and its first rows.
type Table struct {
	Kind    domain.EntityKind `json:"kind"`
	Title   string            `json:"title"`
	Columns []string          `json:"columns"`
	Money   []bool            `json:"money"`
	Rows    [][]any           `json:"rows"`
	Total   int               `json:"total"`
}

// isMoney reports whether column i holds currency amounts.
func (t Table) isMoney(i int) bool {
	return i < len(t.Money) && t.Money[i]
}

// Truncated reports whether the table shows fewer rows than the view holds.
func (t Table) Truncated() bool {
	return t.Total > len(t.Rows)
}

// Document is the renderer-independent content of a unit report.
type Document struct {
	Unit        string    `json:"unit"`
	GeneratedAt time.Time `json:"generated_at"`
	Summaries   []Summary `json:"summaries"`
	Tables      []Table   `json:"tables"`
}

// Build lays out the report of view. Kinds follow registry order and only the
// kinds present in the view appear. Each table keeps the display columns the
// sheet actually had and at most maxRows records in view order.
func Build(view *domain.View, generatedAt time.Time, registry []domain.SheetSpec, maxRows int) *Document {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	doc := &Document{GeneratedAt: generatedAt}
	if view == nil {
		return doc
	}
	doc.Unit = view.Unit

	for _, spec := range registry {
		rs, ok := view.Sets[spec.Kind]
		if !ok || rs.Len() == 0 {
			continue
		}

		doc.Summaries = append(doc.Summaries, Summary{
			Kind:   spec.Kind,
			Title:  spec.Title,
			Count:  rs.Len(),
			Amount: aggregate.SumColumn(rs.Records, spec.AmountColumn),
		})

		cols := rs.ExistingColumns(spec.DisplayColumns)
		money := make([]bool, len(cols))
		for i, c := range cols {
			money[i] = contains(spec.NumericColumns, c)
		}
		records := rs.Records
		if len(records) > maxRows {
			records = records[:maxRows]
		}
		rows := make([][]any, 0, len(records))
		for _, r := range records {
			row := make([]any, len(cols))
			for i, c := range cols {
				row[i] = r.Get(c)
			}
			rows = append(rows, row)
		}
		doc.Tables = append(doc.Tables, Table{
			Kind:    spec.Kind,
			Title:   spec.Title,
			Columns: cols,
			Money:   money,
			Rows:    rows,
			Total:   rs.Len(),
		})
	}
	return doc
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
