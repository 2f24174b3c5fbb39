package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dashboard-service/internal/core/typing"
	"dashboard-service/internal/domain"
)

// LoadSheet extracts one typed record set from the workbook. Declared date and
// numeric columns missing from the sheet are ignored; rows without a key are
// dropped. Other columns keep the type stored in the file. Failures come back
// as *domain.LoadError.
func LoadSheet(wb Workbook, spec domain.SheetSpec) (*domain.RecordSet, error) {
	if !hasSheet(wb, spec.SheetName) {
		return nil, &domain.LoadError{
			Kind:   spec.Kind,
			Sheet:  spec.SheetName,
			Type:   domain.MissingSheet,
			Reason: "la hoja no existe en el libro",
		}
	}

	malformed := func(reason string, err error) error {
		return &domain.LoadError{Kind: spec.Kind, Sheet: spec.SheetName, Type: domain.MalformedSheet, Reason: reason, Err: err}
	}

	rows, err := wb.Rows(spec.SheetName)
	if err != nil {
		return nil, malformed("no se pudo leer la hoja", err)
	}
	if spec.HeaderOffset < 0 || len(rows) <= spec.HeaderOffset {
		return nil, malformed(fmt.Sprintf("no hay fila de encabezado en la posición %d", spec.HeaderOffset), nil)
	}

	header := cellValues(rows[spec.HeaderOffset])
	body := rows[spec.HeaderOffset+1:]

	width := len(header)
	for _, row := range body {
		if len(row) > width {
			width = len(row)
		}
	}

	columns, recognized := buildColumns(header, width)
	if recognized == 0 {
		return nil, malformed("sin columnas reconocibles", nil)
	}

	keyIdx := indexOf(columns, spec.KeyColumn)
	if keyIdx < 0 {
		return nil, malformed(fmt.Sprintf("falta la columna clave %q", spec.KeyColumn), nil)
	}

	dateCols := toSet(spec.DateColumns)
	numCols := toSet(spec.NumericColumns)

	set := &domain.RecordSet{Kind: spec.Kind, Columns: columns}
	for _, row := range body {
		if keyIdx >= len(row) || typing.IsNullCell(row[keyIdx].Value) {
			continue
		}
		rec := make(domain.Record, len(columns))
		for i, col := range columns {
			var cell Cell
			if i < len(row) {
				cell = row[i]
			}
			rec[col] = coerceCell(cell, col, dateCols, numCols)
		}
		// a declared date/numeric key that fails coercion is null, so the row goes too
		if rec[spec.KeyColumn] == nil {
			continue
		}
		set.Records = append(set.Records, rec)
	}

	return set, nil
}

func coerceCell(cell Cell, col string, dateCols, numCols map[string]struct{}) any {
	if _, ok := dateCols[col]; ok {
		if t, ok := typing.ParseDate(cell.Value); ok {
			return t
		}
		return nil
	}
	if _, ok := numCols[col]; ok {
		if f, ok := typing.ParseCurrency(cell.Value); ok {
			return f
		}
		return nil
	}
	if typing.IsNullCell(cell.Value) {
		return nil
	}

	value := strings.TrimSpace(cell.Value)
	switch cell.Kind {
	case DateCell:
		if t, ok := typing.ParseDate(value); ok {
			return t
		}
		if f, ok := parseNumber(value); ok {
			return f
		}
	case NumberCell:
		if f, ok := parseNumber(value); ok {
			return f
		}
	}
	return value
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func cellValues(row []Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Value
	}
	return out
}

// buildColumns trims header names, names blank headers "Unnamed: <i>" and
// suffixes repeats as NAME.1, NAME.2. It also returns how many headers were
// non-blank.
func buildColumns(header []string, width int) ([]string, int) {
	columns := make([]string, 0, width)
	seen := make(map[string]int, width)
	recognized := 0

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		} else {
			recognized++
		}

		if _, taken := seen[name]; taken {
			base := name
			for n := seen[base]; ; n++ {
				candidate := fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[candidate]; !taken {
					name = candidate
					seen[base] = n + 1
					break
				}
			}
		}
		seen[name] = 1
		columns = append(columns, name)
	}
	return columns, recognized
}

func hasSheet(wb Workbook, name string) bool {
	for _, s := range wb.SheetNames() {
		if s == name {
			return true
		}
	}
	return false
}

func indexOf(cols []string, col string) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
