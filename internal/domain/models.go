// package domain/models.go
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntityKind identifies one workbook-derived record set.
type EntityKind string

// Entity kinds loaded from the control workbook.
const (
	KindOrdenes            EntityKind = "ordenes"
	KindContratos          EntityKind = "contratos"
	KindObraMenor          EntityKind = "obra_menor"
	KindFacturacion2025    EntityKind = "facturacion_2025"
	KindPrefacturas        EntityKind = "prefacturas"
	KindFianzas            EntityKind = "fianzas"
	KindFacturacionAdquira EntityKind = "facturacion_adquira"
	KindFacturasAdquira    EntityKind = "facturas_adquira"
	KindProyectos2024      EntityKind = "proyectos_2024"
)

var (
	// ErrNoWorkbook is returned when no workbook has been loaded yet.
	ErrNoWorkbook = errors.New("no hay un libro de trabajo cargado")
	// ErrUnknownKind is returned for an entity kind outside the registry.
	ErrUnknownKind = errors.New("tipo de entidad desconocido")
)

// SheetSpec declares how one sheet is extracted and typed.
type SheetSpec struct {
	Kind           EntityKind `json:"kind"`
	Title          string     `json:"title"`
	SheetName      string     `json:"sheet_name"`
	HeaderOffset   int        `json:"header_offset"`
	DateColumns    []string   `json:"date_columns"`
	NumericColumns []string   `json:"numeric_columns"`
	KeyColumn      string     `json:"key_column"`
	// NameField is empty for kinds that take no part in business-unit resolution.
	NameField      string   `json:"name_field,omitempty"`
	DisplayColumns []string `json:"display_columns"`
	AmountColumn   string   `json:"amount_column"`
}

// HasNameField reports whether the kind takes part in business-unit resolution.
func (s SheetSpec) HasNameField() bool {
	return s.NameField != ""
}

// Record is one typed row. Values are nil, string, float64 or time.Time.
type Record map[string]any

// Get returns the raw value of a column; absent columns read as nil.
func (r Record) Get(col string) any {
	if r == nil {
		return nil
	}
	return r[col]
}

// IsNull reports whether the column is absent or holds no value.
func (r Record) IsNull(col string) bool {
	return r.Get(col) == nil
}

// Number returns the numeric value of a column, if it holds one.
func (r Record) Number(col string) (float64, bool) {
	switch v := r.Get(col).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Date returns the date value of a column, if it holds one.
func (r Record) Date(col string) (time.Time, bool) {
	v, ok := r.Get(col).(time.Time)
	return v, ok
}

// Text stringifies a column value. Nil becomes "".
func (r Record) Text(col string) string {
	return FormatValue(r.Get(col))
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatValue renders a cell value as plain text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}

// RecordSet is the ordered, read-only result of loading one sheet.
type RecordSet struct {
	Kind    EntityKind `json:"kind"`
	Columns []string   `json:"columns"`
	Records []Record   `json:"records"`
}

// Len returns the number of records; a nil set has none.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// HasColumn reports whether the sheet carried the column.
func (rs *RecordSet) HasColumn(col string) bool {
	if rs == nil {
		return false
	}
	for _, c := range rs.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Filter returns a new set holding the records accepted by keep, in order.
func (rs *RecordSet) Filter(keep func(Record) bool) *RecordSet {
	out := &RecordSet{Kind: rs.Kind, Columns: append([]string(nil), rs.Columns...)}
	for _, r := range rs.Records {
		if keep(r) {
			out.Records = append(out.Records, r.Clone())
		}
	}
	return out
}

// WithRecords returns a set sharing this set's kind and columns.
func (rs *RecordSet) WithRecords(records []Record) *RecordSet {
	return &RecordSet{Kind: rs.Kind, Columns: append([]string(nil), rs.Columns...), Records: records}
}

// ExistingColumns keeps the wanted columns the set actually has, in wanted order.
func (rs *RecordSet) ExistingColumns(wanted []string) []string {
	var cols []string
	for _, c := range wanted {
		if rs.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Sets maps each loaded kind to its record set. A missing kind means zero records.
type Sets map[EntityKind]*RecordSet

// Records returns the records of a kind, or nil when the kind is absent.
func (s Sets) Records(kind EntityKind) []Record {
	if rs, ok := s[kind]; ok && rs != nil {
		return rs.Records
	}
	return nil
}

// ErrorType classifies sheet load failures.
type ErrorType string

const (
	MissingSheet   ErrorType = "missing_sheet"
	MalformedSheet ErrorType = "malformed_sheet"
)

// LoadError reports why one sheet could not become a record set.
type LoadError struct {
	Kind   EntityKind `json:"kind"`
	Sheet  string     `json:"sheet"`
	Type   ErrorType  `json:"type"`
	Reason string     `json:"reason"`
	Err    error      `json:"-"`
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hoja %q (%s): %s", e.Sheet, e.Type, e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadResult is a partial-success report of one workbook load.
type LoadResult struct {
	ID       string       `json:"id"`
	Digest   string       `json:"digest"`
	Source   string       `json:"source"`
	LoadedAt time.Time    `json:"loaded_at"`
	Sets     Sets         `json:"-"`
	Errors   []*LoadError `json:"errors"`
}

// View is the per-kind subset belonging to one selected business unit.
type View struct {
	Unit        string   `json:"unit"`
	Sets        Sets     `json:"sets"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Empty reports whether no kind matched the selection.
func (v *View) Empty() bool {
	return v == nil || len(v.Sets) == 0
}

// KPI is one labelled figure of a summary strip.
type KPI struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Money bool    `json:"money"`
}
