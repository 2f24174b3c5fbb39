package workbook

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// CellKind is what a stored cell holds, as far as the file tells.
type CellKind int

const (
	TextCell CellKind = iota
	NumberCell
	DateCell
)

// Cell is one raw cell value plus its stored kind. Number and date cells carry
// the unformatted value, so dates come back as serial numbers.
type Cell struct {
	Value string
	Kind  CellKind
}

// Workbook is a read-only view over the sheets of a spreadsheet file.
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]Cell, error)
	Close() error
}

// OpenWorkbook parses workbook bytes, trying .xlsx first and falling back to the
// legacy .xls format.
func OpenWorkbook(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		return &xlsxWorkbook{file: f}, nil
	}

	wb, errXLS := xls.OpenReader(bytes.NewReader(data))
	if errXLS != nil {
		return nil, fmt.Errorf("formato de libro no soportado: xlsx: %v, xls: %w", err, errXLS)
	}
	return newXLSWorkbook(&wb), nil
}

type xlsxWorkbook struct {
	file *excelize.File
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) Rows(sheet string) ([][]Cell, error) {
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	dateStyles := make(map[int]bool)
	rows := make([][]Cell, len(raw))
	for r, values := range raw {
		row := make([]Cell, len(values))
		for c, v := range values {
			row[c] = Cell{Value: v}
			if strings.TrimSpace(v) != "" {
				row[c].Kind = w.cellKind(sheet, c+1, r+1, dateStyles)
			}
		}
		rows[r] = row
	}
	return rows, nil
}

func (w *xlsxWorkbook) cellKind(sheet string, col, row int, dateStyles map[int]bool) CellKind {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return TextCell
	}
	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return TextCell
	}
	switch typ {
	case excelize.CellTypeDate:
		return DateCell
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
	default:
		return TextCell
	}

	styleID, err := w.file.GetCellStyle(sheet, axis)
	if err != nil {
		return NumberCell
	}
	isDate, ok := dateStyles[styleID]
	if !ok {
		isDate = w.isDateStyle(styleID)
		dateStyles[styleID] = isDate
	}
	if isDate {
		return DateCell
	}
	return NumberCell
}

func (w *xlsxWorkbook) isDateStyle(styleID int) bool {
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}
	return isDateFormatID(style.NumFmt)
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

type xlsWorkbook struct {
	names []string
	rows  map[string][][]Cell
}

func newXLSWorkbook(wb *xls.Workbook) *xlsWorkbook {
	w := &xlsWorkbook{rows: make(map[string][][]Cell)}
	dateXF := make(map[int]bool)
	for _, sheet := range wb.GetSheets() {
		name := sheet.GetName()
		var allRows [][]Cell
		for _, row := range sheet.GetRows() {
			var cells []Cell
			for _, cell := range row.GetCols() {
				c := Cell{Value: cell.GetString()}
				switch cell.GetType() {
				case "*record.Number", "*record.Rk":
					c.Kind = NumberCell
					xf := cell.GetXFIndex()
					isDate, ok := dateXF[xf]
					if !ok {
						isDate = xlsDateXF(wb, xf)
						dateXF[xf] = isDate
					}
					if isDate {
						c.Kind = DateCell
					}
				}
				cells = append(cells, c)
			}
			allRows = append(allRows, cells)
		}
		w.names = append(w.names, name)
		w.rows[name] = allRows
	}
	return w
}

// xlsDateXF reports whether the extended format at index xf renders dates.
// Broken format tables read as not-a-date.
func xlsDateXF(wb *xls.Workbook, xf int) (isDate bool) {
	defer func() {
		if recover() != nil {
			isDate = false
		}
	}()
	rec := wb.GetXFbyIndex(xf)
	id := rec.GetFormatIndex()
	if id < 164 {
		return isDateFormatID(id)
	}
	format := wb.GetFormatByIndex(id)
	return isDateFormat(format.String())
}

func (w *xlsWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *xlsWorkbook) Rows(sheet string) ([][]Cell, error) {
	rows, ok := w.rows[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %s does not exist", sheet)
	}
	return rows, nil
}

func (w *xlsWorkbook) Close() error { return nil }

// built-in number formats that render a calendar date
var dateFormatIDs = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateFormatID(id int) bool {
	return dateFormatIDs[id]
}

// isDateFormat looks for day or year tokens outside quoted literals, escapes
// and bracketed sections. A bare "m" is left out since it also means minutes.
func isDateFormat(code string) bool {
	var inQuote, inBracket, escaped bool
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '\\':
			escaped = true
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			switch unicode.ToLower(r) {
			case 'd', 'y':
				return true
			}
		}
	}
	return false
}
