package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dashboard-service/internal/api/responses"
	"dashboard-service/internal/core/aggregate"
	"dashboard-service/internal/core/dashboard"
	"dashboard-service/internal/core/export"
	"dashboard-service/internal/domain"
)

const (
	defaultRecordLimit = 500
	maxRecordLimit     = 5000
)

// reserved query keys of the explorer endpoints; every other key filters a column.
var reservedQuery = map[string]bool{"search": true, "limit": true, "offset": true, "column": true, "encoding": true}

// DashboardHandler serves the general dashboard and the per-module screens.
type DashboardHandler struct {
	cache       Snapshotter
	registry    []domain.SheetSpec
	dashboard   dashboard.Service
	export      export.Service
	csvEncoding export.Encoding
}

func NewDashboardHandler(cache Snapshotter, registry []domain.SheetSpec, dash dashboard.Service, exp export.Service, csvEncoding export.Encoding) *DashboardHandler {
	if csvEncoding == "" {
		csvEncoding = export.DefaultEncoding
	}
	return &DashboardHandler{
		cache:       cache,
		registry:    registry,
		dashboard:   dash,
		export:      exp,
		csvEncoding: csvEncoding,
	}
}

// RecordsPage is one page of the data explorer.
type RecordsPage struct {
	Kind     domain.EntityKind `json:"kind"`
	Columns  []string          `json:"columns"`
	Total    int               `json:"total"`
	Matched  int               `json:"matched"`
	Offset   int               `json:"offset"`
	Records  []domain.Record   `json:"records"`
	Filtered map[string]string `json:"filtered,omitempty"`
}

// HandleOverview serves the general dashboard.
func (h *DashboardHandler) HandleOverview(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	responses.Success(c, h.dashboard.Overview(res.Sets), "")
}

// HandleRecords lists the records of one kind. "search" matches any field;
// other query keys naming a column keep records equal to the value.
func (h *DashboardHandler) HandleRecords(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	set, _, ok := kindSet(c, res, h.registry)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", defaultRecordLimit)
	if err != nil || limit < 0 {
		responses.Error(c, http.StatusBadRequest, "Parámetro limit inválido")
		return
	}
	if limit > maxRecordLimit {
		limit = maxRecordLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		responses.Error(c, http.StatusBadRequest, "Parámetro offset inválido")
		return
	}

	records, filtered := explore(c, set)

	page := RecordsPage{
		Kind:    set.Kind,
		Columns: set.Columns,
		Total:   set.Len(),
		Matched: len(records),
		Offset:  offset,
		Records: []domain.Record{},
	}
	if len(filtered) > 0 {
		page.Filtered = filtered
	}
	if offset < len(records) {
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		page.Records = records[offset:end]
	}
	responses.Success(c, page, fmt.Sprintf("Se encontraron %d registros", len(records)))
}

// HandleSummary serves a module screen; query keys select filter values.
func (h *DashboardHandler) HandleSummary(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	set, _, ok := kindSet(c, res, h.registry)
	if !ok {
		return
	}

	filters := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}
	summary, err := h.dashboard.Summarize(set, filters)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Error al resumir el módulo", err.Error())
		return
	}
	responses.Success(c, summary, "")
}

// explore applies the explorer query: "search" over every field, then one
// equality filter per query key naming a column.
func explore(c *gin.Context, set *domain.RecordSet) ([]domain.Record, map[string]string) {
	records := aggregate.Search(set.Records, c.Query("search"))
	filtered := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if reservedQuery[key] || len(values) == 0 || !set.HasColumn(key) {
			continue
		}
		filtered[key] = values[0]
		records = aggregate.FilterEquals(records, key, values[0])
	}
	return records, filtered
}

// HandleStats describes one numeric column of the explored records of a kind.
func (h *DashboardHandler) HandleStats(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	set, _, ok := kindSet(c, res, h.registry)
	if !ok {
		return
	}
	column := c.Query("column")
	if !set.HasColumn(column) {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Columna desconocida: %q", column))
		return
	}
	records, _ := explore(c, set)
	responses.Success(c, h.dashboard.Describe(records, column), "")
}

// HandleExportCSV downloads the explored records of a kind as CSV.
func (h *DashboardHandler) HandleExportCSV(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	set, _, ok := kindSet(c, res, h.registry)
	if !ok {
		return
	}

	enc := h.csvEncoding
	if q := c.Query("encoding"); q != "" {
		parsed, err := export.ParseEncoding(q)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, "Codificación no soportada", err.Error())
			return
		}
		enc = parsed
	}

	records, _ := explore(c, set)
	var buf bytes.Buffer
	if err := h.export.WriteCSV(&buf, set.WithRecords(records), enc); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Error al generar el CSV", err.Error())
		return
	}

	charset := "utf-8"
	if enc == export.EncodingCP1252 {
		charset = "windows-1252"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", set.Kind))
	c.Data(http.StatusOK, "text/csv; charset="+charset, buf.Bytes())
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
