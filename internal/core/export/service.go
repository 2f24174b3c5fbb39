package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"dashboard-service/internal/domain"
	"dashboard-service/internal/metrics"
)

// Format is a report output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("formato de exportación no soportado")

// ParseFormat maps a query value to a Format. Empty selects Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Service renders unit reports and CSV downloads.
type Service interface {
	Build(view *domain.View, generatedAt time.Time) *Document
	Render(doc *Document, format Format) ([]byte, error)
	WriteCSV(w io.Writer, set *domain.RecordSet, enc Encoding) error
}

type service struct {
	registry []domain.SheetSpec
	maxRows  int
}

// NewService creates an export service; maxRows <= 0 selects DefaultMaxRows.
func NewService(registry []domain.SheetSpec, maxRows int) Service {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &service{registry: registry, maxRows: maxRows}
}

func (s *service) Build(view *domain.View, generatedAt time.Time) *Document {
	return Build(view, generatedAt, s.registry, s.maxRows)
}

func (s *service) Render(doc *Document, format Format) (data []byte, err error) {
	defer func() { metrics.RecordExport(string(format), err) }()

	switch format {
	case FormatMarkdown:
		return RenderMarkdown(doc), nil
	case FormatHTML:
		return RenderHTML(doc)
	case FormatXLSX:
		return RenderXLSX(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (s *service) WriteCSV(w io.Writer, set *domain.RecordSet, enc Encoding) (err error) {
	defer func() { metrics.RecordExport("csv", err) }()
	return WriteCSV(w, set, enc)
}

// FileName is the suggested download name of a unit report.
func FileName(unit string, generatedAt time.Time, format Format) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		}
		return -1
	}, strings.TrimSpace(unit))
	if slug == "" {
		slug = "sucursal"
	}
	return fmt.Sprintf("reporte_%s_%s.%s", slug, generatedAt.Format("20060102_1504"), format)
}
