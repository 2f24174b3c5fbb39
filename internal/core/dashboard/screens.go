package dashboard

import "dashboard-service/internal/domain"

type metricKind int

const (
	metricCount metricKind = iota
	metricSum
	metricContains
)

type metric struct {
	label   string
	kind    metricKind
	column  string
	substrs []string
}

func count(label string) metric { return metric{label: label, kind: metricCount} }

func sum(label, column string) metric { return metric{label: label, kind: metricSum, column: column} }

type rankMode int

const (
	// rankGroups sums rankValue per rankBy and keeps the largest totals.
	rankGroups rankMode = iota
	// rankRecords keeps the records with the largest rankValue, one bar each.
	rankRecords
)

// breakdown is an extra value-count chart of a screen. limit 0 keeps all.
type breakdown struct {
	title  string
	column string
	limit  int
}

// comparison puts several amount columns side by side per label, ranked by
// the first series. Rows missing any of the columns are skipped.
type comparison struct {
	title   string
	label   string
	series  []string
	grouped bool
	limit   int
}

// screen is the module layout of one kind: its KPI strip, filter selectors,
// ranking, monthly series and status breakdown.
type screen struct {
	metrics      []metric
	filters      []string
	rankBy       string
	rankValue    string
	rankMode     rankMode
	rankLimit    int // 0 is topLimit, negative keeps every group
	rankDetail   []string
	dateColumn   string
	statusColumn string
	breakdowns   []breakdown
	comparison   *comparison
}

var screens = map[domain.EntityKind]screen{
	domain.KindOrdenes: {
		metrics: []metric{
			count("TOTAL REGISTROS"),
			sum("IMPORTE TOTAL", "IMPORTE TOTAL"),
			sum("IMPORTE SIN IVA", "IMPORTE SIN IVA"),
			sum("IMPORTE CIERRES", "IMPORTE DE CIERRE"),
		},
		filters:      []string{"ESTADO", "TIPO DE PROYECTO"},
		rankBy:       "NOMBRE DEL PROYECTO O SUCURSAL",
		rankValue:    "IMPORTE TOTAL",
		dateColumn:   "FECHA",
		statusColumn: "ESTADO",
	},
	domain.KindContratos: {
		metrics: []metric{
			count("TOTAL CONTRATOS"),
			sum("IMPORTE TOTAL", "Importe Total"),
			sum("TOTAL PAGADO", "Total Pagado"),
			sum("POR PAGAR", "Por pagar"),
		},
		filters:      []string{"Estatus Operativo", "Estatus Cierre"},
		rankBy:       "Proyecto / Obra",
		rankValue:    "Importe Total",
		rankMode:     rankRecords,
		rankDetail:   []string{"CR"},
		dateColumn:   "Fecha de Recepción",
		statusColumn: "Estatus Operativo",
		comparison: &comparison{
			title:   "PAGADO VS POR PAGAR",
			label:   "Proyecto / Obra",
			series:  []string{"Total Pagado", "Por pagar"},
			grouped: true,
			limit:   20,
		},
	},
	domain.KindObraMenor: {
		metrics: []metric{
			count("TOTAL PROYECTOS"),
			sum("PRESUPUESTO INICIAL", "PRESUPUESTO_INICIAL"),
			sum("IMPORTE CIERRE", "IMPORTE_DE_CIERRE_ADMINISTRATIVO_PARCIAL"),
			sum("TOTAL PAGADO", "Total Pagado"),
		},
		filters:      []string{"PROYECTO", "ESTATUS_OPERACIÓN REAL", "ASIGNADO_A"},
		dateColumn:   "FECHA INICIO",
		statusColumn: "ESTATUS_OPERACIÓN REAL",
		breakdowns: []breakdown{
			{title: "PROYECTOS POR TIPO", column: "PROYECTO"},
			{title: "ASIGNACIÓN POR PERSONA", column: "ASIGNADO_A", limit: 15},
		},
		comparison: &comparison{
			title:  "VARIACIÓN PRESUPUESTAL",
			label:  "SUCURSAL",
			series: []string{"PRESUPUESTO_INICIAL", "IMPORTE_DE_CIERRE_ADMINISTRATIVO_PARCIAL"},
			limit:  20,
		},
	},
	domain.KindFacturacion2025: invoiceScreen,
	domain.KindPrefacturas: {
		metrics: []metric{
			count("TOTAL PREFACTURAS"),
			sum("MONTO SIN IVA", "Monto (sin IVA)"),
			sum("IVA TOTAL", "IVA"),
			sum("TOTAL", "Total"),
		},
		filters:      []string{"Estatus"},
		rankBy:       "Proyecto / Obra",
		rankValue:    "Total",
		rankMode:     rankRecords,
		rankDetail:   []string{"CR"},
		dateColumn:   "Fecha solicitud",
		statusColumn: "Estatus",
	},
	domain.KindFianzas: {
		metrics: []metric{
			count("TOTAL FIANZAS"),
			sum("MONTO CONTRATOS", "Monto de contrato"),
			sum("MONTO GARANTIZADO", "Monto Garantizado Fianza"),
			{label: "FIANZAS VENCIDAS", kind: metricContains, column: "Estatus Vigencia", substrs: []string{"Vencid", "vencid"}},
		},
		filters:      []string{"Estatus Expedición", "Estatus Vigencia"},
		rankBy:       "Proyecto",
		rankValue:    "Monto de contrato",
		rankMode:     rankRecords,
		dateColumn:   "Vencimiento",
		statusColumn: "Estatus Vigencia",
		breakdowns: []breakdown{
			{title: "AFIANZADORAS", column: "Afianzadora"},
		},
	},
	domain.KindFacturacionAdquira: invoiceScreen,
	domain.KindFacturasAdquira: {
		metrics: []metric{
			count("TOTAL FACTURAS"),
			sum("BASE IMPONIBLE", "BASE IMPONIBLE"),
			sum("TOTAL IMPUESTOS", "TOTAL IMPUESTOS"),
			sum("TOTAL FACTURADO", "TOTAL FACTURA"),
		},
		filters:      []string{"CATEGORIA"},
		rankBy:       "CATEGORIA",
		rankValue:    "TOTAL FACTURA",
		rankLimit:    -1,
		dateColumn:   "FECHA FACTURA",
		statusColumn: "ESTADO",
	},
	domain.KindProyectos2024: {
		metrics: []metric{
			count("TOTAL PROYECTOS"),
			sum("IMPORTE CIERRE", "Importe de cierre"),
			sum("TOTAL PAGADO", "Total Pagado"),
			sum("POR PAGAR", "Por pagar"),
		},
		filters:      []string{"Estatus"},
		rankBy:       "Sucursal",
		rankValue:    "Importe de cierre",
		rankMode:     rankRecords,
		statusColumn: "Estatus",
	},
}

var invoiceScreen = screen{
	metrics: []metric{
		count("TOTAL FACTURAS"),
		sum("SUBTOTAL", "Subtotal (MXN)"),
		sum("IMPUESTOS", "Impuestos (MXN)"),
		sum("TOTAL FACTURADO", "Total (MXN)"),
	},
	filters:      []string{"Estatus Comprobante", "FDP"},
	rankBy:       "Razón social",
	rankValue:    "Total (MXN)",
	dateColumn:   "Fecha",
	statusColumn: "Estatus Comprobante",
}
