package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dashboard-service/internal/api/responses"
	"dashboard-service/internal/core/workbook"
	"dashboard-service/internal/domain"
)

// WorkbookLoader loads workbook bytes or files into the shared snapshot.
type WorkbookLoader interface {
	Snapshotter
	Load(ctx context.Context, data []byte, source string, origin workbook.Origin) (*domain.LoadResult, error)
	LoadFile(ctx context.Context, path string, origin workbook.Origin) (*domain.LoadResult, error)
}

// WorkbookHandler handles uploads, reloads and status of the control workbook.
type WorkbookHandler struct {
	cache      WorkbookLoader
	registry   []domain.SheetSpec
	candidates []string
	maxUpload  int64
	logger     *zap.Logger
}

// NewWorkbookHandler creates a workbook handler. candidates are the paths
// searched on reload, in order.
func NewWorkbookHandler(cache WorkbookLoader, registry []domain.SheetSpec, candidates []string, maxUpload int64, logger *zap.Logger) *WorkbookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookHandler{
		cache:      cache,
		registry:   registry,
		candidates: candidates,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

// HandleUpload loads a workbook sent as the multipart field "file".
func (h *WorkbookHandler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo Excel (.xlsx, .xls) no encontrado o inválido")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" && ext != ".xlsm" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensión de archivo no soportada: %s", ext))
		return
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("El archivo excede el límite de %d bytes", h.maxUpload))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "No se pudo abrir el archivo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "No se pudo leer el archivo", err.Error())
		return
	}

	res, err := h.cache.Load(c.Request.Context(), data, fileHeader.Filename, workbook.OriginUpload)
	if err != nil {
		h.logger.Warn("upload rejected", zap.String("file", fileHeader.Filename), zap.Error(err))
		responses.Error(c, http.StatusUnprocessableEntity, "El archivo no es un libro de Excel válido", err.Error())
		return
	}
	responses.Success(c, newWorkbookStatus(res, h.registry), loadMessage(res))
}

// HandleReload reloads the workbook from the first configured path that exists.
func (h *WorkbookHandler) HandleReload(c *gin.Context) {
	path, err := workbook.ResolvePath(h.candidates...)
	if err != nil {
		responses.Error(c, http.StatusNotFound, "No se encontró el archivo de datos", err.Error())
		return
	}

	res, err := h.cache.LoadFile(c.Request.Context(), path, workbook.OriginReload)
	if err != nil {
		h.logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		responses.Error(c, http.StatusUnprocessableEntity, "No se pudo cargar el libro de trabajo", err.Error())
		return
	}
	responses.Success(c, newWorkbookStatus(res, h.registry), loadMessage(res))
}

// HandleStatus reports the loaded workbook and the per-sheet outcome.
func (h *WorkbookHandler) HandleStatus(c *gin.Context) {
	res, ok := currentResult(c, h.cache)
	if !ok {
		return
	}
	responses.Success(c, newWorkbookStatus(res, h.registry), "")
}

func loadMessage(res *domain.LoadResult) string {
	if len(res.Errors) == 0 {
		return fmt.Sprintf("Libro cargado: %d hojas", len(res.Sets))
	}
	return fmt.Sprintf("Libro cargado parcialmente: %d hojas, %d con errores", len(res.Sets), len(res.Errors))
}
