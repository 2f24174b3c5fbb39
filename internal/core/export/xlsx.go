package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Reporte"

// RenderXLSX writes the report into a single worksheet, sections stacked top
// to bottom with a blank row between them.
func RenderXLSX(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: "004481"}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, row: 1}
	w.write(title, "Reporte de sucursal: "+doc.Unit)
	w.write(0, "Generado: "+doc.GeneratedAt.Format(headerTimeLayout))
	w.row++

	if len(doc.Tables) == 0 {
		w.write(0, "Sin registros para la sucursal seleccionada.")
	} else {
		w.write(title, "Resumen")
		w.write(bold, "Módulo", "Registros", "Importe")
		for _, s := range doc.Summaries {
			w.write(0, s.Title, s.Count, formatMoney(s.Amount))
		}
	}

	for _, t := range doc.Tables {
		w.row++
		w.write(title, t.Title)
		header := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = c
		}
		w.write(bold, header...)
		for _, row := range t.Rows {
			cells := make([]any, len(row))
			for i, v := range row {
				cells[i] = formatCell(v, t.isMoney(i))
			}
			w.write(0, cells...)
		}
		if t.Truncated() {
			w.write(0, footnote(t))
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("error al escribir XLSX: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error al escribir XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows to the report sheet and keeps the first error.
type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *sheetWriter) write(style int, values ...any) {
	if w.err != nil {
		return
	}
	if len(values) == 0 {
		w.row++
		return
	}
	start, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(reportSheet, start, &values); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		end, err := excelize.CoordinatesToCellName(len(values), w.row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellStyle(reportSheet, start, end, style); err != nil {
			w.err = err
			return
		}
	}
	w.row++
}
