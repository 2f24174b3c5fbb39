// Package workbooktest builds in-memory .xlsx workbooks for tests.
package workbooktest

import (
	"fmt"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture, rows written from A1 down.
type Sheet struct {
	Name string
	Rows [][]any
}

// Build writes the sheets into a new workbook and returns its bytes.
func Build(t testing.TB, sheets ...Sheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("new sheet %q: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("write row %d of %q: %v", r+1, sheet.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Date is a shorthand for a calendar date in UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ControlSheets returns a small but complete control workbook: every registered
// sheet with a title row where the real one has it, plus one row per sheet that
// lacks its key.
func ControlSheets() []Sheet {
	title := func(s string) []any { return []any{s} }
	return []Sheet{
		{Name: "REGISTRO ORDEN DE COMPRA", Rows: [][]any{
			title("REGISTRO ORDEN DE COMPRA 2025"),
			{" ID. PEDIDO COMPRADOR ", "FECHA", "IMPORTE TOTAL", "ESTADO", "NOMBRE DEL PROYECTO O SUCURSAL", "TIPO DE PROYECTO", "IMPORTE DE CIERRE"},
			{"OC-001", Date(2025, time.January, 10), 1000.5, "ABIERTA", "SUCURSAL CENTRO NORTE", "MANTENIMIENTO", 900},
			{"OC-002", Date(2025, time.February, 3), "2,500.00", "CERRADA", "Sucursal Monterrey Valle", "OBRA", nil},
			{nil, Date(2025, time.February, 4), 777, "ABIERTA", "SUCURSAL CENTRO NORTE", "OBRA", nil},
			{"OC-003", "no es fecha", "abc", "ABIERTA", "Torre Sur", "MANTENIMIENTO", 100},
		}},
		{Name: "CONTRATOS || ONE TEAM", Rows: [][]any{
			title("CONTRATOS"),
			{"ID Folio Contrato", "CR", "Proyecto / Obra", "Importe Total", "Total Pagado", "Por pagar", "Estatus Operativo", "Fecha de Recepción"},
			{"CT-10", "4501", "CENTRO NORTE — EDIFICIO PRINCIPAL", 50000, 20000, 30000, "EN PROCESO", "15/03/2025"},
			{"CT-11", "4502", "VALLE ORIENTE", 12000, 12000, 0, "TERMINADO", nil},
		}},
		{Name: "OBRA MENOR", Rows: [][]any{
			title("OBRA MENOR"),
			{"ID_PROYECTO", "SUCURSAL", "PROYECTO", "PRESUPUESTO_INICIAL", "ESTATUS_OPERACIÓN REAL", "FECHA INICIO"},
			{"OM-1", "Centro Norte", "Impermeabilización", 8000, "EN EJECUCIÓN", Date(2025, time.April, 1)},
			{"", "Centro Norte", "Sin clave", 1, "EN EJECUCIÓN", nil},
		}},
		{Name: "Facturación 2025", Rows: [][]any{
			{"NO.", "Fecha", "Razón social", "Subtotal (MXN)", "Impuestos (MXN)", "Total (MXN)", "Estatus Comprobante"},
			{"F-1", Date(2025, time.January, 20), "SERVMAC", 1000, 160, 1160, "Vigente"},
			{"F-2", Date(2025, time.January, 28), "SERVMAC", 500, 80, 580, "Vigente"},
			{"F-3", Date(2025, time.March, 2), "SERVMAC", 100, 16, 116, "Cancelado"},
		}},
		{Name: "CONTROL DE PREFACTURAS", Rows: [][]any{
			title("PREFACTURAS"),
			{"Folio Interno", "CR", "Proyecto / Obra", "Monto (sin IVA)", "IVA", "Total", "Estatus"},
			{"PF-1", "4501", "SUCURSAL CENTRO NORTE", 1000, 160, 1160, "ACEPTADA"},
		}},
		{Name: "CONTROL DE FIANZAS", Rows: [][]any{
			title("FIANZAS"),
			{"CR", "Proyecto", "Monto de contrato", "Monto Garantizado Fianza", "Estatus Vigencia", "Vencimiento"},
			{"4501", "Centro Norte", 50000, 5000, "Vencida", Date(2024, time.December, 31)},
			{"4502", "Valle Oriente", 12000, 1200, "Vigente", Date(2026, time.June, 30)},
		}},
		{Name: "FACTURACIÓN", Rows: [][]any{
			{"NO.", "Fecha", "Total (MXN)"},
			{"A-1", Date(2025, time.May, 5), 300},
		}},
		{Name: "Copia de Facturas Adquira", Rows: [][]any{
			{"NÚMERO", "FECHA FACTURA", "PROYECTO RELACIONADO", "TOTAL FACTURA", "CATEGORIA"},
			{"FA-1", Date(2025, time.June, 1), "centro norte", 2000, "MATERIALES"},
		}},
		{Name: "Proyectos 2024", Rows: [][]any{
			title("PROYECTOS 2024"),
			{"Llave comité /Clave UDA", "CR", "Sucursal", "Importe de cierre", "Estatus"},
			{"UDA-9", "4503", "Torre Sur", 15000, "CERRADO"},
		}},
	}
}

// Names lists the sheet names of a fixture in order.
func Names(sheets []Sheet) []string {
	out := make([]string, 0, len(sheets))
	for _, s := range sheets {
		out = append(out, s.Name)
	}
	return out
}

// Without returns the fixture minus the named sheet.
func Without(sheets []Sheet, name string) []Sheet {
	var out []Sheet
	for _, s := range sheets {
		if s.Name != name {
			out = append(out, s)
		}
	}
	if len(out) == len(sheets) {
		panic(fmt.Sprintf("workbooktest: no sheet named %q", name))
	}
	return out
}
