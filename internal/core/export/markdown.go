package export

import (
	"bytes"
	"fmt"
	"strings"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// RenderMarkdown writes the canonical report text. The other renderers derive
// their content from the same document.
func RenderMarkdown(doc *Document) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Reporte de sucursal: %s\n\n", escapeCell(doc.Unit))
	fmt.Fprintf(&b, "Generado: %s\n\n", doc.GeneratedAt.Format(headerTimeLayout))

	if len(doc.Tables) == 0 {
		b.WriteString("Sin registros para la sucursal seleccionada.\n")
		return b.Bytes()
	}

	b.WriteString("## Resumen\n\n")
	b.WriteString("| Módulo | Registros | Importe |\n")
	b.WriteString("| --- | ---: | ---: |\n")
	for _, s := range doc.Summaries {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escapeCell(s.Title), s.Count, formatMoney(s.Amount))
	}

	for _, t := range doc.Tables {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Title)
		if len(t.Columns) == 0 {
			fmt.Fprintf(&b, "%d registros sin columnas de detalle.\n", t.Total)
			continue
		}
		header := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			header[i] = escapeCell(c)
		}
		writeRow(&b, header)
		sep := make([]string, len(t.Columns))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = escapeCell(formatCell(v, t.isMoney(i)))
			}
			writeRow(&b, cells)
		}
		if t.Truncated() {
			fmt.Fprintf(&b, "\n_%s_\n", footnote(t))
		}
	}
	return b.Bytes()
}

func writeRow(b *bytes.Buffer, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func escapeCell(s string) string {
	return strings.TrimSpace(cellEscaper.Replace(s))
}
