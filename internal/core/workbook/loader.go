// Package workbook turns the control workbook into typed record sets, one per
// registered sheet, and keeps the current load in a content-addressed cache.
package workbook

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dashboard-service/internal/domain"
	"dashboard-service/internal/metrics"
)

// Loader runs LoadSheet over a fixed registry.
type Loader struct {
	registry []domain.SheetSpec
	logger   *zap.Logger
}

// NewLoader creates a loader; a nil registry means Registry().
func NewLoader(registry []domain.SheetSpec, logger *zap.Logger) *Loader {
	if registry == nil {
		registry = Registry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{registry: registry, logger: logger}
}

// Registry returns the sheet specs the loader works with.
func (l *Loader) Registry() []domain.SheetSpec {
	return l.registry
}

// Load extracts every registered sheet. A sheet that fails is left out of
// Sets and reported in Errors; the rest still load.
func (l *Loader) Load(wb Workbook) *domain.LoadResult {
	result := &domain.LoadResult{
		ID:       uuid.New().String(),
		LoadedAt: time.Now(),
		Sets:     make(domain.Sets, len(l.registry)),
	}

	for _, spec := range l.registry {
		set, err := LoadSheet(wb, spec)
		if err != nil {
			var loadErr *domain.LoadError
			if !errors.As(err, &loadErr) {
				loadErr = &domain.LoadError{
					Kind:   spec.Kind,
					Sheet:  spec.SheetName,
					Type:   domain.MalformedSheet,
					Reason: "error inesperado",
					Err:    err,
				}
			}
			result.Errors = append(result.Errors, loadErr)
			metrics.RecordSheetError(string(spec.Kind), string(loadErr.Type))
			l.logger.Warn("sheet skipped",
				zap.String("kind", string(spec.Kind)),
				zap.String("sheet", spec.SheetName),
				zap.String("error_type", string(loadErr.Type)),
				zap.Error(loadErr),
			)
			continue
		}

		result.Sets[spec.Kind] = set
		l.logger.Debug("sheet loaded",
			zap.String("kind", string(spec.Kind)),
			zap.String("sheet", spec.SheetName),
			zap.Int("records", set.Len()),
			zap.Int("columns", len(set.Columns)),
		)
	}

	return result
}
