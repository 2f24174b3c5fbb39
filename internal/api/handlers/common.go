package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashboard-service/internal/api/responses"
	"dashboard-service/internal/core/workbook"
	"dashboard-service/internal/domain"
)

// Snapshotter hands out the current workbook load.
type Snapshotter interface {
	Current() (*domain.LoadResult, error)
}

// currentResult writes the error response itself when no workbook is loaded.
func currentResult(c *gin.Context, cache Snapshotter) (*domain.LoadResult, bool) {
	res, err := cache.Current()
	if err != nil {
		if errors.Is(err, domain.ErrNoWorkbook) {
			responses.Error(c, http.StatusServiceUnavailable, "No hay un libro de trabajo cargado", err.Error())
		} else {
			responses.Error(c, http.StatusInternalServerError, "Error al consultar el libro de trabajo", err.Error())
		}
		return nil, false
	}
	return res, true
}

// kindSet resolves the :kind path parameter against the registry and the
// current load. A registered kind that failed to load reports its sheet error.
func kindSet(c *gin.Context, res *domain.LoadResult, registry []domain.SheetSpec) (*domain.RecordSet, domain.SheetSpec, bool) {
	kind := domain.EntityKind(c.Param("kind"))
	spec, ok := workbook.SpecFor(registry, kind)
	if !ok {
		responses.Error(c, http.StatusNotFound, fmt.Sprintf("Tipo de entidad desconocido: %s", kind), domain.ErrUnknownKind.Error())
		return nil, spec, false
	}
	set, ok := res.Sets[kind]
	if !ok {
		var reasons []string
		for _, e := range res.Errors {
			if e.Kind == kind {
				reasons = append(reasons, e.Error())
			}
		}
		responses.Error(c, http.StatusNotFound, fmt.Sprintf("La hoja %q no se cargó", spec.SheetName), reasons...)
		return nil, spec, false
	}
	return set, spec, true
}

// WorkbookStatus describes the loaded workbook for API clients.
type WorkbookStatus struct {
	*domain.LoadResult
	Kinds []KindStatus `json:"kinds"`
}

// KindStatus is the load outcome of one registered kind.
type KindStatus struct {
	Kind    domain.EntityKind `json:"kind"`
	Title   string            `json:"title"`
	Sheet   string            `json:"sheet"`
	Loaded  bool              `json:"loaded"`
	Records int               `json:"records"`
}

func newWorkbookStatus(res *domain.LoadResult, registry []domain.SheetSpec) WorkbookStatus {
	status := WorkbookStatus{LoadResult: res}
	for _, spec := range registry {
		set, ok := res.Sets[spec.Kind]
		status.Kinds = append(status.Kinds, KindStatus{
			Kind:    spec.Kind,
			Title:   spec.Title,
			Sheet:   spec.SheetName,
			Loaded:  ok,
			Records: set.Len(),
		})
	}
	return status
}
