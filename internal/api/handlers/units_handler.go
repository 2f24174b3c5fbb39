package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dashboard-service/internal/api/responses"
	"dashboard-service/internal/core/export"
	"dashboard-service/internal/core/units"
	"dashboard-service/internal/domain"
)

// UnitsHandler serves the business-unit ("sucursal") views and their reports.
type UnitsHandler struct {
	cache  Snapshotter
	units  units.Service
	export export.Service
	now    func() time.Time
}

func NewUnitsHandler(cache Snapshotter, unitSvc units.Service, exp export.Service) *UnitsHandler {
	return &UnitsHandler{cache: cache, units: unitSvc, export: exp, now: time.Now}
}

// UnitView is the API shape of a resolved unit: per-kind record counts and
// the records themselves.
type UnitView struct {
	Unit        string                    `json:"unit"`
	Counts      map[domain.EntityKind]int `json:"counts"`
	Sets        domain.Sets               `json:"sets"`
	Suggestions []string                  `json:"suggestions,omitempty"`
}

// HandleList lists every known business-unit name.
func (h *UnitsHandler) HandleList(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	names := h.units.ListBusinessUnits(res.Sets)
	if names == nil {
		names = []string{}
	}
	responses.Success(c, names, fmt.Sprintf("%d sucursales", len(names)))
}

// HandleView resolves the unit named by ?name=. No match is not an error: the
// response carries an empty view and suggestions.
func (h *UnitsHandler) HandleView(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		responses.Error(c, http.StatusBadRequest, "Parámetro name requerido")
		return
	}

	view := h.units.Resolve(res.Sets, name)
	out := UnitView{Unit: view.Unit, Counts: map[domain.EntityKind]int{}, Sets: view.Sets, Suggestions: view.Suggestions}
	for kind, set := range view.Sets {
		out.Counts[kind] = set.Len()
	}

	msg := ""
	if view.Empty() {
		msg = fmt.Sprintf("No se encontraron registros para %q", name)
	}
	responses.Success(c, out, msg)
}

// HandleExport renders the report of the unit named by ?name= in ?format=.
func (h *UnitsHandler) HandleExport(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		responses.Error(c, http.StatusBadRequest, "Parámetro name requerido")
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Formato no soportado", err.Error())
		return
	}

	view := h.units.Resolve(res.Sets, name)
	if view.Empty() {
		responses.Error(c, http.StatusNotFound, fmt.Sprintf("No se encontraron registros para %q", name), view.Suggestions...)
		return
	}

	generatedAt := h.now()
	doc := h.export.Build(view, generatedAt)
	data, err := h.export.Render(doc, format)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Error al generar el reporte", err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+export.FileName(view.Unit, generatedAt, format))
	c.Data(http.StatusOK, format.ContentType(), data)
}
