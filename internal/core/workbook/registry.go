package workbook

import "dashboard-service/internal/domain"

// Registry returns the sheets of the control workbook in load order.
func Registry() []domain.SheetSpec {
	return []domain.SheetSpec{
		{
			Kind:         domain.KindOrdenes,
			Title:        "Órdenes de Compra",
			SheetName:    "REGISTRO ORDEN DE COMPRA",
			HeaderOffset: 1,
			DateColumns:  []string{"FECHA", "FECHA DE PUBLICACIÓN"},
			NumericColumns: []string{
				"IMPORTE TOTAL", "IMPORTE SIN IVA", "IMPORTE DE LA ORDEN [TOTAL IMPORTE CONTRATO] -SIN IVA",
				"IMPORTE CORRESPONDIENTE A CANTIDAD EXPEDIDA", "IMPORTE DE CIERRE", "BALANCE",
			},
			KeyColumn: "ID. PEDIDO COMPRADOR",
			NameField: "NOMBRE DEL PROYECTO O SUCURSAL",
			DisplayColumns: []string{
				"ID. PEDIDO COMPRADOR", "FECHA", "IMPORTE TOTAL", "ESTADO", "ORDEN",
				"NOMBRE DEL PROYECTO O SUCURSAL", "TIPO DE PROYECTO", "IMPORTE DE CIERRE", "ESTATUS",
			},
			AmountColumn: "IMPORTE TOTAL",
		},
		{
			Kind:         domain.KindContratos,
			Title:        "Contratos One Team",
			SheetName:    "CONTRATOS || ONE TEAM",
			HeaderOffset: 1,
			DateColumns: []string{
				"Fecha de asignación proyecto", "Fecha inicio vigencia anexo", "Fecha de Recepción",
				"Fecha Firma Interna", "Fecha de detonación", "Fecha de cierre operación (Acta final)", "Fecha envío cierre",
			},
			NumericColumns: []string{
				"Importe Acción", "Importe Certificación", "Importe Total", "Importe Cierre Administrativo",
				"Total Pagado", "Por pagar", "Por devolver",
			},
			KeyColumn: "ID Folio Contrato",
			NameField: "Proyecto / Obra",
			DisplayColumns: []string{
				"ID Folio Contrato", "CR", "Proyecto / Obra", "Importe Total",
				"Estatus Operativo", "Estatus Cierre", "Total Pagado", "Por pagar",
				"Supervisor asignado para coordinación / revisión",
			},
			AmountColumn: "Importe Total",
		},
		{
			Kind:         domain.KindObraMenor,
			Title:        "Obra Menor",
			SheetName:    "OBRA MENOR",
			HeaderOffset: 1,
			DateColumns: []string{
				"FECHA_DE_ASIGNACIÓN", "FECHA INICIO", "FECHA FIN", "FECHA FIN REAL",
				"FECHA CORREO DETONACIÓN", "FECHA CIERRE ADMINISTRATIVO",
			},
			NumericColumns: []string{
				"PRESUPUESTO_INICIAL", "IMPORTE_DE_CIERRE_ADMINISTRATIVO_PARCIAL", "Importe UDA",
				"Total Pagado", "VARIACIÓN_PRESUPUESTAL",
			},
			KeyColumn: "ID_PROYECTO",
			NameField: "SUCURSAL",
			DisplayColumns: []string{
				"ID_PROYECTO", "SUCURSAL", "PROYECTO", "TRABAJO", "ASIGNADO_A",
				"ESTATUS_OPERACIÓN REAL", "PRESUPUESTO_INICIAL",
				"IMPORTE_DE_CIERRE_ADMINISTRATIVO_PARCIAL", "Total Pagado",
			},
			AmountColumn: "PRESUPUESTO_INICIAL",
		},
		{
			Kind:           domain.KindFacturacion2025,
			Title:          "Facturación 2025",
			SheetName:      "Facturación 2025",
			HeaderOffset:   0,
			DateColumns:    []string{"Fecha"},
			NumericColumns: []string{"Subtotal (MXN)", "Impuestos (MXN)", "Total (MXN)"},
			KeyColumn:      "NO.",
			DisplayColumns: []string{
				"FDP", "Fecha", "NO.", "Razón social", "Estatus Comprobante",
				"Subtotal (MXN)", "Impuestos (MXN)", "Total (MXN)", "ORDEN DE COMPRA",
			},
			AmountColumn: "Total (MXN)",
		},
		{
			Kind:           domain.KindPrefacturas,
			Title:          "Control de Prefacturas",
			SheetName:      "CONTROL DE PREFACTURAS",
			HeaderOffset:   1,
			DateColumns:    []string{"Fecha solicitud", "Fecha Emisión", "Fecha de aceptación", "Fecha de factura"},
			NumericColumns: []string{"Monto (sin IVA)", "IVA", "Total"},
			KeyColumn:      "Folio Interno",
			NameField:      "Proyecto / Obra",
			DisplayColumns: []string{
				"Folio Interno", "Folio Pre Factura", "CR", "Proyecto / Obra",
				"Fecha solicitud", "Monto (sin IVA)", "Total", "Estatus",
				"¿Se emitió factura?", "Folio factura",
			},
			AmountColumn: "Total",
		},
		{
			Kind:         domain.KindFianzas,
			Title:        "Control de Fianzas",
			SheetName:    "CONTROL DE FIANZAS",
			HeaderOffset: 1,
			DateColumns:  []string{"Fecha Solicitud Fianza", "Fecha Emisión", "Vencimiento"},
			NumericColumns: []string{
				"Monto de contrato", "Monto + IVA", "Importe a afianzar || Cumplimiento",
				"Importe a afianzar || Buena calidad", "Monto Garantizado Fianza",
			},
			KeyColumn: "CR",
			NameField: "Proyecto",
			DisplayColumns: []string{
				"CR", "Proyecto", "Anexo de Obra", "Afianzadora", "No. Fianza",
				"Monto de contrato", "Monto Garantizado Fianza", "Estatus Expedición",
				"Vencimiento", "Estatus Vigencia",
			},
			AmountColumn: "Monto de contrato",
		},
		{
			Kind:           domain.KindFacturacionAdquira,
			Title:          "Facturación Adquira",
			SheetName:      "FACTURACIÓN",
			HeaderOffset:   0,
			DateColumns:    []string{"Fecha"},
			NumericColumns: []string{"Subtotal (MXN)", "Impuestos (MXN)", "Total (MXN)"},
			KeyColumn:      "NO.",
			DisplayColumns: []string{
				"FDP", "Fecha", "NO.", "Razón social", "Estatus Comprobante",
				"Subtotal (MXN)", "Impuestos (MXN)", "Total (MXN)", "ORDEN DE COMPRA",
			},
			AmountColumn: "Total (MXN)",
		},
		{
			Kind:           domain.KindFacturasAdquira,
			Title:          "Facturas Adquira (Copia)",
			SheetName:      "Copia de Facturas Adquira",
			HeaderOffset:   0,
			DateColumns:    []string{"FECHA FACTURA"},
			NumericColumns: []string{"BASE IMPONIBLE", "TOTAL IMPUESTOS", "TOTAL FACTURA"},
			KeyColumn:      "NÚMERO",
			NameField:      "PROYECTO RELACIONADO",
			DisplayColumns: []string{
				"NÚMERO", "FECHA FACTURA", "PEDIDO", "CATEGORIA", "PROYECTO RELACIONADO",
				"BASE IMPONIBLE", "TOTAL IMPUESTOS", "TOTAL FACTURA", "ESTADO", "ESTATUS DE FACTURA",
			},
			AmountColumn: "TOTAL FACTURA",
		},
		{
			Kind:           domain.KindProyectos2024,
			Title:          "Proyectos 2024",
			SheetName:      "Proyectos 2024",
			HeaderOffset:   1,
			NumericColumns: []string{"Importe de cierre", "Total Pagado", "Por pagar", "Por devolver", "Importe CFE"},
			KeyColumn:      "Llave comité /Clave UDA",
			NameField:      "Sucursal",
			DisplayColumns: []string{
				"Llave comité /Clave UDA", "CR", "Sucursal", "Proyecto",
				"Importe de cierre", "Asignado a", "Estatus", "Días transcurridos",
				"Total Pagado", "Por pagar",
			},
			AmountColumn: "Importe de cierre",
		},
	}
}

// SpecFor looks up the registry entry of a kind.
func SpecFor(registry []domain.SheetSpec, kind domain.EntityKind) (domain.SheetSpec, bool) {
	for _, s := range registry {
		if s.Kind == kind {
			return s, true
		}
	}
	return domain.SheetSpec{}, false
}
